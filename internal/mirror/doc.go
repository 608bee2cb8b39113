// Package mirror is the synchronization engine that copies remote database
// log files to local disk.
//
// For each instance a Worker first runs Historical, which downloads every
// closed log file not already complete on disk, then hands the active file to
// Tailer, which polls it forever and follows rotations. The Orchestrator runs
// one Worker per instance and admits at most N of them into the historical
// phase at once through a Gate; tailing is not gated.
//
// Local layout is {targetDir}/{instance}/{base name of remote file}. Each
// Worker owns its instance directory, so no locking is needed across workers.
package mirror
