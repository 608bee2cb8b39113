package remote

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
)

// InitialMarker is the marker for a file that has never been read.
const InitialMarker Marker = "0"

// Marker is an opaque cursor issued by the remote API. Only identity
// comparisons are meaningful.
type Marker string

// Instance names one remote database instance.
type Instance struct {
	ID     string `json:"id"`
	Engine string `json:"engine"`
	Status string `json:"status"`
}

// LogFile describes one remote log file as reported by a listing.
type LogFile struct {
	Name        string
	Size        int64
	LastWritten int64
}

// BaseName returns the final element of the remote file name, which is the
// local file name used for the mirror.
func (f LogFile) BaseName() string {
	return path.Base(f.Name)
}

// Portion is one bounded read of a remote log file.
type Portion struct {
	Data        []byte
	NextMarker  Marker
	MorePending bool
}

// Source is the remote log API consumed by the synchronization engine.
//
// ListLogFiles returns files ordered by creation time ascending; the last
// element is the file the instance is currently appending to. createdAfter is
// POSIX seconds and zero disables the cutoff.
type Source interface {
	ListLogFiles(ctx context.Context, instance string, createdAfter int64) ([]LogFile, error)
	ReadPortion(ctx context.Context, instance, fileName string, marker Marker, maxLines int) (Portion, error)
}

// Discoverer enumerates instances visible to the configured account.
type Discoverer interface {
	ListInstances(ctx context.Context) ([]Instance, error)
}

// FilterByEngine keeps instances whose engine equals engine. An empty engine
// keeps everything.
func FilterByEngine(instances []Instance, engine string) []Instance {
	if engine == "" {
		return instances
	}
	out := make([]Instance, 0, len(instances))
	for _, inst := range instances {
		if inst.Engine == engine {
			out = append(out, inst)
		}
	}
	return out
}

// Active returns the last file of a listing, the one the instance is writing.
func Active(files []LogFile) (LogFile, bool) {
	if len(files) == 0 {
		return LogFile{}, false
	}
	return files[len(files)-1], true
}

// ValidateInstanceID rejects identifiers that cannot name a single directory
// below the mirror root.
func ValidateInstanceID(id string) error {
	switch {
	case strings.TrimSpace(id) == "":
		return errors.New("instance identifier is empty")
	case id == "." || id == "..":
		return fmt.Errorf("instance identifier %q is not a valid directory name", id)
	case strings.ContainsAny(id, `/\`):
		return fmt.Errorf("instance identifier %q must not contain path separators", id)
	}
	return nil
}
