package logging

import (
	"context"
	"io"
	"log/slog"
)

// SlogLogger adapts the standard library's slog to the Logger interface.
type SlogLogger struct {
	l *slog.Logger
}

var _ Logger = (*SlogLogger)(nil)

// NewSlogLogger wraps an already configured slog.Logger. Use it when the
// caller needs control over the handler, e.g. in tests.
func NewSlogLogger(l *slog.Logger) *SlogLogger {
	return &SlogLogger{l: l}
}

// NewJSONLogger returns a SlogLogger that writes one JSON object per line
// to w at the default level.
func NewJSONLogger(w io.Writer) *SlogLogger {
	return &SlogLogger{l: slog.New(slog.NewJSONHandler(w, nil))}
}

func (s *SlogLogger) Debug(ctx context.Context, msg string, args ...any) {
	s.l.DebugContext(ctx, msg, args...)
}

func (s *SlogLogger) Info(ctx context.Context, msg string, args ...any) {
	s.l.InfoContext(ctx, msg, args...)
}

func (s *SlogLogger) Warn(ctx context.Context, msg string, args ...any) {
	s.l.WarnContext(ctx, msg, args...)
}

func (s *SlogLogger) Error(ctx context.Context, msg string, args ...any) {
	s.l.ErrorContext(ctx, msg, args...)
}

// With returns a child logger whose records always carry the given
// key-value pairs.
func (s *SlogLogger) With(args ...any) Logger {
	return &SlogLogger{l: s.l.With(args...)}
}
