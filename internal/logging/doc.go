// Package logging assembles the structured slog loggers used across the
// archiver. It owns the console and JSON handlers, centralizes level and
// output plumbing, and exposes context-aware helpers so pipeline code
// automatically tags log lines with the segment, station, and correlation ID
// in flight. A no-op logger is provided for tests.
package logging
