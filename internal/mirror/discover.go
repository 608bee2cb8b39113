package mirror

import (
	"context"
	"errors"
	"fmt"

	"logmirror/internal/remote"
)

// ErrNoInstances is returned by Resolve when nothing matched.
var ErrNoInstances = errors.New("no instances to mirror")

// Resolve returns the instances to mirror: the explicit list when all is
// false, otherwise every discoverable instance running engine (empty matches
// all). Duplicates are dropped and order is preserved.
func Resolve(ctx context.Context, src remote.Source, explicit []string, all bool, engine string) ([]string, error) {
	var ids []string
	if all {
		discoverer, ok := src.(remote.Discoverer)
		if !ok {
			return nil, errors.New("source does not support instance discovery")
		}
		instances, err := discoverer.ListInstances(ctx)
		if err != nil {
			return nil, fmt.Errorf("discover instances: %w", err)
		}
		for _, inst := range remote.FilterByEngine(instances, engine) {
			ids = append(ids, inst.ID)
		}
	} else {
		ids = explicit
	}

	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup || id == "" {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	if len(out) == 0 {
		return nil, ErrNoInstances
	}
	return out, nil
}
