package towertrack

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with tracker-specific helpers.
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
	return &Logger{Logger: slog.New(handler)}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	return &Logger{Logger: slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{Logger: slog.New(handler)}
}

// WithUser adds a user id field to the logger.
func (l *Logger) WithUser(id int64) *Logger {
	return &Logger{Logger: l.Logger.With("user_id", id)}
}

// LogCatalogLoad logs a catalog load.
func (l *Logger) LogCatalogLoad(ctx context.Context, badges, areas, skipped int) {
	if skipped > 0 {
		l.WarnContext(ctx, "catalog loaded with skipped records",
			"badges", badges,
			"areas", areas,
			"skipped", skipped,
		)
	} else {
		l.InfoContext(ctx, "catalog loaded",
			"badges", badges,
			"areas", areas,
		)
	}
}

// LogSync logs a completion sync for a user.
func (l *Logger) LogSync(ctx context.Context, userID int64, awarded int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "sync failed",
			"user_id", userID,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "sync completed",
			"user_id", userID,
			"awarded", awarded,
		)
	}
}

// LogSnapshot logs a snapshot save or load.
func (l *Logger) LogSnapshot(ctx context.Context, op, name string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot "+op+" failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "snapshot "+op+" completed",
			"name", name,
		)
	}
}

// LogRestore logs a cache restore at startup.
func (l *Logger) LogRestore(ctx context.Context, users int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "cache restore failed",
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "cache restore completed",
			"users", users,
		)
	}
}
