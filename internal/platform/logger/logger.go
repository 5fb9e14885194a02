// Package logger provides structured logging for the ship server.
// Every subsystem transition surfaced by the engine is traceable through Event.
package logger

import (
	"io"
	"log/slog"
	"os"
)

// Logger provides structured logging with context.
type Logger struct {
	slog *slog.Logger
}

// Options selects the handler and level.
type Options struct {
	Level  string // debug, info, warn, error
	JSON   bool
	Output io.Writer
}

// NewLogger creates a text logger at info level on stdout.
func NewLogger() *Logger {
	return New(Options{Level: "info"})
}

// New creates a logger from options.
func New(opts Options) *Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	handlerOpts := &slog.HandlerOptions{Level: parseLevel(opts.Level)}

	var handler slog.Handler
	if opts.JSON {
		handler = slog.NewJSONHandler(out, handlerOpts)
	} else {
		handler = slog.NewTextHandler(out, handlerOpts)
	}
	return &Logger{slog: slog.New(handler)}
}

// Discard returns a logger that drops everything. Used by tests and the
// scenario runner.
func Discard() *Logger {
	return New(Options{Level: "error", Output: io.Discard})
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// With returns a logger carrying extra attributes.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{slog: l.slog.With(args...)}
}

// Debug logs diagnostic messages.
func (l *Logger) Debug(msg string, args ...any) {
	l.slog.Debug(msg, args...)
}

// Info logs informational messages.
func (l *Logger) Info(msg string, args ...any) {
	l.slog.Info(msg, args...)
}

// Warn logs warning messages.
func (l *Logger) Warn(msg string, args ...any) {
	l.slog.Warn(msg, args...)
}

// Error logs error messages.
func (l *Logger) Error(msg string, args ...any) {
	l.slog.Error(msg, args...)
}

// Event logs a simulation event for a ship.
func (l *Logger) Event(eventType string, actorID string, details string) {
	l.slog.Info("event", "type", eventType, "actor", actorID, "details", details)
}
