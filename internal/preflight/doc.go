// Package preflight provides readiness checks for the mirror target and the
// remote log API.
//
// The daemon runs RunAll once before starting instance workers and includes
// the results in its status payload. A failed directory check stops startup;
// a failed source check is reported but workers still start and retry on
// their own schedule.
package preflight
