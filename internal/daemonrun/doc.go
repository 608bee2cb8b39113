// Package daemonrun wires a logmirror process together: run logging, the
// remote source, instance resolution, preflight, and the daemon lifecycle
// under SIGINT/SIGTERM.
package daemonrun
