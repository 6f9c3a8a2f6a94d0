// Package logging defines the small structured-logging contract the server
// and its workers share. SlogLogger is the stock implementation.
package logging

import "context"

// Logger is a context-aware, structured logger. The variadic args are
// alternating key-value pairs:
//
//	log.Info(ctx, "workspace created", "workspace_id", id, "owner_id", ownerID)
type Logger interface {
	Info(ctx context.Context, msg string, args ...any)

	// Warn records unusual but non-fatal conditions.
	Warn(ctx context.Context, msg string, args ...any)

	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always carries the given pairs.
	With(args ...any) Logger
}
