// Package daemon coordinates the long-running logmirror process.
//
// It owns the mirror orchestrator's lifecycle, takes a flock on the target
// directory so only one process appends to a mirror tree, and serves the
// optional read-only status API. Startup wiring (logging, source, preflight,
// signals) lives in daemonrun; the daemon focuses on start, stop, and status.
package daemon
