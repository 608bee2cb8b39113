package api

import (
	"time"

	"logmirror/internal/mirror"
	"logmirror/internal/preflight"
)

// FromInstanceStatus converts a registry entry. stallPolls is the failure
// streak at which an instance counts as stalled; zero disables the flag.
func FromInstanceStatus(status mirror.InstanceStatus, stallPolls int) InstanceStatus {
	return InstanceStatus{
		Instance:        status.Instance,
		Phase:           string(status.Phase),
		ActiveFile:      status.ActiveFile,
		Marker:          status.Marker,
		BytesWritten:    status.BytesWritten,
		FilesDownloaded: status.FilesDownloaded,
		FilesSkipped:    status.FilesSkipped,
		FilesFailed:     status.FilesFailed,
		FailureStreak:   status.FailureStreak,
		Stalled:         stallPolls > 0 && status.FailureStreak >= stallPolls,
		LastPoll:        formatTime(status.LastPoll),
		LastError:       status.LastError,
		UpdatedAt:       formatTime(status.UpdatedAt),
	}
}

// FromInstanceStatuses converts a registry snapshot, preserving order.
func FromInstanceStatuses(statuses []mirror.InstanceStatus, stallPolls int) []InstanceStatus {
	out := make([]InstanceStatus, 0, len(statuses))
	for _, status := range statuses {
		out = append(out, FromInstanceStatus(status, stallPolls))
	}
	return out
}

// FromChecks converts preflight results.
func FromChecks(results []preflight.Result) []CheckResult {
	out := make([]CheckResult, 0, len(results))
	for _, r := range results {
		out = append(out, CheckResult{
			Name:     r.Name,
			Passed:   r.Passed,
			Required: r.Required,
			Detail:   r.Detail,
		})
	}
	return out
}

// FormatTime renders t in the API timestamp format.
func FormatTime(t time.Time) string {
	return formatTime(t)
}

// ParseTime parses an API timestamp. An empty string yields the zero time.
func ParseTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse(dateTimeFormat, value)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}
