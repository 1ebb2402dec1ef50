// Package logging builds the slog loggers used throughout Plume.
//
// Two output formats exist: an aligned console format with optional ANSI
// color (TTY-aware) and line-delimited JSON. Component loggers carry a
// standardized component attribute; WithContext lifts project, section,
// phase, user, and correlation identifiers out of a context.Context so every
// log line about the same operation shares the same keys.
package logging
