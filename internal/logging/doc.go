// Package logging assembles structured slog loggers and formatting helpers used
// across poolrecon.
//
// It owns the console and JSON handlers, centralizes level and output plumbing,
// and exposes context-aware helpers so pool workers can tag log lines with the
// ledger identifier, stage and run session. NewFromConfig fans every record out
// to stderr and to a JSON log file. The package also provides a no-op logger for
// tests and wiring code that cannot fail.
package logging
