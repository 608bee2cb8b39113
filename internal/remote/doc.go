// Package remote defines the contract logmirror consumes from a database
// service's log API and the adapters that satisfy it.
//
// A Source lists an instance's log files and reads bounded portions of one file
// starting at an opaque Marker. Markers must be threaded strictly in sequence:
// the marker returned by one read is the only valid input for the next read of
// the same file. The RDS adapter talks to Amazon RDS; Throttle wraps any Source
// with a token-bucket limiter so many instances cannot flood the API.
package remote
