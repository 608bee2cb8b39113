package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// InstanceStatus describes one mirrored instance in a transport-friendly format.
type InstanceStatus struct {
	Instance        string `json:"instance"`
	Phase           string `json:"phase"`
	ActiveFile      string `json:"activeFile,omitempty"`
	Marker          string `json:"marker,omitempty"`
	BytesWritten    int64  `json:"bytesWritten"`
	FilesDownloaded int    `json:"filesDownloaded"`
	FilesSkipped    int    `json:"filesSkipped"`
	FilesFailed     int    `json:"filesFailed"`
	FailureStreak   int    `json:"failureStreak"`
	Stalled         bool   `json:"stalled"`
	LastPoll        string `json:"lastPoll,omitempty"`
	LastError       string `json:"lastError,omitempty"`
	UpdatedAt       string `json:"updatedAt,omitempty"`
}

// CheckResult mirrors a preflight check outcome.
type CheckResult struct {
	Name     string `json:"name"`
	Passed   bool   `json:"passed"`
	Required bool   `json:"required"`
	Detail   string `json:"detail,omitempty"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running       bool          `json:"running"`
	PID           int           `json:"pid"`
	SessionID     string        `json:"sessionId,omitempty"`
	StartedAt     string        `json:"startedAt,omitempty"`
	TargetDir     string        `json:"targetDir"`
	LockFilePath  string        `json:"lockFilePath"`
	LogPath       string        `json:"logPath,omitempty"`
	MaxHistorical int           `json:"maxHistorical"`
	InFlight      int           `json:"historicalInFlight"`
	Instances     int           `json:"instances"`
	Checks        []CheckResult `json:"checks"`
}

// InstanceListResponse wraps every instance status.
type InstanceListResponse struct {
	Instances []InstanceStatus `json:"instances"`
}

// InstanceResponse wraps a single instance status.
type InstanceResponse struct {
	Instance InstanceStatus `json:"instance"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
}
