// Package logging provides structured logging for spinbridge.
//
// It wraps the standard library's log/slog with configuration-driven
// setup (level, format, destination) and service-wide default fields.
// Every component receives a *Logger and tags its records via With,
// so a single acquisition session can be filtered out of mixed logs.
package logging
