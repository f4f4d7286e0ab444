// Package plog provides structured logging helpers shared by the facade
// and the internal playback dispatcher.
package plog

import (
	"context"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

type ctxKey string

const correlationIDKey ctxKey = "correlation_id"

var (
	once sync.Once
	base zerolog.Logger
)

// L returns the package-level logger, initialized lazily with console
// writer defaults suitable for local development.
func L() zerolog.Logger {
	once.Do(func() {
		base = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	})
	return base
}

// SetLogger overrides the package-level logger, e.g. to switch to JSON
// output in production or to silence logs in tests.
func SetLogger(l zerolog.Logger) {
	once.Do(func() {})
	base = l
}

// ContextWithCorrelationID stores a correlation id (one per facade call)
// on the context so the dispatcher's log lines can be joined back to the
// operation that issued the command.
func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, correlationIDKey, id)
}

// CorrelationIDFromContext extracts the correlation id, if any.
func CorrelationIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(correlationIDKey).(string); ok {
		return v
	}
	return ""
}

// WithContext enriches a logger with the correlation id carried on ctx.
func WithContext(ctx context.Context, logger zerolog.Logger) zerolog.Logger {
	if cid := CorrelationIDFromContext(ctx); cid != "" {
		return logger.With().Str("correlation_id", cid).Logger()
	}
	return logger
}

// WithComponent tags a logger with a component name, matching the
// convention used for "facade" / "dispatcher" / "router" log lines.
func WithComponent(component string) zerolog.Logger {
	return L().With().Str("component", component).Logger()
}
