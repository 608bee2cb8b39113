package mirror

import "errors"

var (
	// ErrLocalIO marks failures opening or writing mirror files.
	ErrLocalIO = errors.New("local io error")
	// ErrWorkerLaunch marks an instance whose worker could not be started.
	ErrWorkerLaunch = errors.New("worker launch failed")
)
