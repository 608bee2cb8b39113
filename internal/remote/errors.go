package remote

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnavailable marks transient failures: the service is unreachable or
	// the instance is unknown.
	ErrUnavailable = errors.New("source unavailable")
	// ErrRejected marks requests the service refused, such as an unknown
	// marker or file name. Retrying with the same input will not help.
	ErrRejected = errors.New("source rejected request")
)

// Wrap tags err with marker and the instance/operation it happened in. A nil
// marker is treated as ErrUnavailable.
func Wrap(marker error, instance, operation string, err error) error {
	if marker == nil {
		marker = ErrUnavailable
	}
	detail := buildDetail(instance, operation)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Retryable reports whether a later attempt with the same input may succeed.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, ErrRejected)
}

// Kind returns a short label for the error class, used in log fields.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrRejected):
		return "rejected"
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	default:
		return "unknown"
	}
}

func buildDetail(instance, operation string) string {
	parts := make([]string, 0, 2)
	if instance = strings.TrimSpace(instance); instance != "" {
		parts = append(parts, instance)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if len(parts) == 0 {
		return "remote call"
	}
	return strings.Join(parts, ": ")
}
