// Command logmirror mirrors remote database log files to local disk.
//
// `logmirror run` catches up on closed log files and then tails the active
// file of every selected instance until interrupted. The remaining commands
// inspect the remote side (`files`, `instances`), a running process
// (`status`), or the configuration (`config`).
package main
