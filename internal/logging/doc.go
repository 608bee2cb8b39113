// Package logging assembles the structured slog loggers used across logmirror.
//
// It owns the console and JSON handlers, output routing to stdout and per-run
// log files, session tagging, and pruning of old run logs. Components receive a
// *slog.Logger at construction and derive scoped loggers with
// NewComponentLogger and ForInstance, so every line about an instance carries
// the same component/instance fields. There is no package-level logger.
package logging
