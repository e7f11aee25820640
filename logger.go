package aegis

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with segmentation-specific context.
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
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithMethod adds the segmentation method field to the logger.
func (l *Logger) WithMethod(method string) *Logger {
	return &Logger{
		Logger: l.Logger.With("method", method),
	}
}

// WithExtent adds raster extent fields to the logger.
func (l *Logger) WithExtent(rows, cols, bands int) *Logger {
	return &Logger{
		Logger: l.Logger.With("rows", rows, "cols", cols, "bands", bands),
	}
}

// WithSeed adds the randomization seed field to the logger.
func (l *Logger) WithSeed(seed uint64) *Logger {
	return &Logger{
		Logger: l.Logger.With("seed", seed),
	}
}

// LogRun logs the outcome of a full segmentation run.
func (l *Logger) LogRun(ctx context.Context, method string, segments int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "segmentation failed",
			"method", method,
			"duration", duration,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "segmentation completed",
			"method", method,
			"segments", segments,
			"duration", duration,
		)
	}
}
