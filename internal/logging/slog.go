package logging

import (
	"context"
	"log/slog"
)

// SlogLogger adapts a *slog.Logger to the Logger interface. Handler choice
// and output destination stay with the caller; this type only forwards.
type SlogLogger struct {
	inner *slog.Logger
}

var _ Logger = (*SlogLogger)(nil)

func NewSlogLogger(inner *slog.Logger) *SlogLogger {
	return &SlogLogger{inner: inner}
}

// With returns a child logger that stamps the given key/value pairs on
// every record it emits.
func (l *SlogLogger) With(args ...any) Logger {
	return &SlogLogger{inner: l.inner.With(args...)}
}

func (l *SlogLogger) Debug(ctx context.Context, msg string, args ...any) {
	l.inner.Log(ctx, slog.LevelDebug, msg, args...)
}

func (l *SlogLogger) Info(ctx context.Context, msg string, args ...any) {
	l.inner.Log(ctx, slog.LevelInfo, msg, args...)
}

func (l *SlogLogger) Warn(ctx context.Context, msg string, args ...any) {
	l.inner.Log(ctx, slog.LevelWarn, msg, args...)
}

func (l *SlogLogger) Error(ctx context.Context, msg string, args ...any) {
	l.inner.Log(ctx, slog.LevelError, msg, args...)
}
