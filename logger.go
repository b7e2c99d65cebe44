package spmv

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Logger wraps slog.Logger with benchmark-specific helpers.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	}))
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// WithRunID adds a run_id field to the logger.
func (l *Logger) WithRunID(id string) *Logger {
	return &Logger{
		Logger: l.Logger.With("run_id", id),
	}
}

// LogLoad logs reading the input matrix.
func (l *Logger) LogLoad(ctx context.Context, path string, rows, cols, nonzeros int, d time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "load failed",
			"path", path,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "matrix loaded",
		"path", path,
		"rows", rows,
		"cols", cols,
		"nonzeros", nonzeros,
		"duration", d,
	)
}

// LogConvert logs the coordinate to compressed row conversion.
func (l *Logger) LogConvert(ctx context.Context, nonzeros, emptyRows int, d time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "conversion failed",
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "matrix converted",
		"nonzeros", nonzeros,
		"empty_rows", emptyRows,
		"duration", d,
	)
}

// LogBenchmark logs the outcome of the timed runs.
func (l *Logger) LogBenchmark(ctx context.Context, threads, runs int, mean, stddev time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "benchmark failed",
			"threads", threads,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "benchmark completed",
		"threads", threads,
		"runs", runs,
		"mean", mean,
		"stddev", stddev,
	)
}

// LogPublish logs writing a report to a sink.
func (l *Logger) LogPublish(ctx context.Context, sink, name string, size int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "publish failed",
			"sink", sink,
			"name", name,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "report published",
		"sink", sink,
		"name", name,
		"bytes", size,
	)
}
