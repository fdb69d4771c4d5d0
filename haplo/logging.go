// Package haplo carries the module's ambient logging defaults. It does not
// wrap the node, link, arena, and search packages; those are used directly.
package haplo

import (
	"log/slog"
	"os"
)

// DefaultLevel is the log level new loggers use when no override is given.
var DefaultLevel = slog.LevelInfo

// NewLogger returns a structured logger writing JSON to stderr at level.
// The search package logs through slog.Default() unless a logger is passed
// in with search.WithLogger.
func NewLogger(level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}

// NewTextLogger returns a structured logger writing human-readable text to
// stderr, useful for local runs and tests.
func NewTextLogger(level slog.Level) *slog.Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}
