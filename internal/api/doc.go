// Package api defines the wire-format types of the status API and a client
// for it.
//
// DTOs use camelCase JSON tags. Timestamps use RFC3339 with milliseconds and
// are omitted when unset. FromInstanceStatus and FromChecks translate the
// mirror registry and preflight results so handlers never expose internal
// types directly.
package api
