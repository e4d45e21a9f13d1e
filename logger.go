package camelalloc

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with allocator-specific context.
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
// It is the allocator default: an allocator beneath the process must stay
// silent unless asked.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithArena adds an arena index field to the logger.
func (l *Logger) WithArena(idx int) *Logger {
	return &Logger{
		Logger: l.Logger.With("arena", idx),
	}
}

// LogInit logs the one-time binding of the memory space.
func (l *Logger) LogInit(ctx context.Context, arenas int) {
	l.InfoContext(ctx, "allocator initialized",
		"arenas", arenas,
		"max_bytes", MaxMemory,
	)
}

// LogChunkMapped logs a new chunk.
func (l *Logger) LogChunkMapped(ctx context.Context, arena, index, base, size int) {
	l.DebugContext(ctx, "chunk mapped",
		"arena", arena,
		"chunk", index,
		"base", base,
		"size", size,
	)
}

// LogAllocFailure logs an allocation that no arena could serve.
func (l *Logger) LogAllocFailure(ctx context.Context, layout Layout, p Pressure) {
	l.WarnContext(ctx, "allocation failed",
		"size", layout.Size,
		"align", layout.Align,
		"used", p.Used,
		"mapped", p.Size,
		"leaked", p.Leaked,
	)
}

// LogFatal logs an unrecoverable error right before the allocator halts.
func (l *Logger) LogFatal(ctx context.Context, err error) {
	l.ErrorContext(ctx, "fatal allocator error",
		"error", err,
	)
}
