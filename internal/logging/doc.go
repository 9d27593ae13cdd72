// Package logging builds the structured slog loggers the extraction pipeline
// writes through.
//
// It provides the console and JSON handlers, output routing to the terminal
// and the run log file, retention for old run logs, context helpers that
// stamp lines with run IDs, stages, and archives, and a sampler for
// throttling progress output. A no-op logger is available for tests and
// wiring code that cannot fail.
package logging
