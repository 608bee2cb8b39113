package logging

const (
	// FieldComponent names the subsystem emitting the record.
	FieldComponent = "component"
	// FieldInstance names the remote database instance.
	FieldInstance = "instance"
	// FieldFile is the remote log file name.
	FieldFile = "file"
	// FieldLocalPath is the mirror path on local disk.
	FieldLocalPath = "local_path"
	// FieldMarker is the remote read cursor.
	FieldMarker = "marker"
	// FieldBytes counts bytes appended to a mirror.
	FieldBytes = "bytes"
	// FieldEventType classifies the record for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint tells the operator what to check next.
	FieldErrorHint = "error_hint"
	// FieldErrorKind carries the remote error class (unavailable, rejected).
	FieldErrorKind = "error_kind"
	// FieldImpact states the user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldAlert flags anomalies that need attention.
	FieldAlert = "alert"
	// FieldSessionID identifies one process run.
	FieldSessionID = "session_id"
	// FieldRunID matches the timestamp in the run log file name.
	FieldRunID = "run_id"
)
