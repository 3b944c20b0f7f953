// Package cache stores downloaded subtitle payloads so repeated fetches of the
// same candidate do not hit the catalog again.
package cache

import (
	"context"

	"github.com/rs/zerolog"
)

// EvictCallback is called when an entry is evicted from the cache.
// Redis evicts server-side and never calls it.
type EvictCallback func(key string, value []byte)

// Cache is a byte cache with per-entry TTL. Lookups never fail: backend
// errors are reported to the Logger and treated as misses.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte)
	Delete(ctx context.Context, key string)

	// Len returns the number of live entries.
	Len(ctx context.Context) int

	Close() error
}

// Logger receives backend errors that a Cache swallows.
type Logger interface {
	Error(msg string, err error)
}

type zerologLogger struct {
	logger zerolog.Logger
}

// NewZerologLogger adapts a zerolog logger to the cache Logger interface.
func NewZerologLogger(logger zerolog.Logger) Logger {
	return zerologLogger{logger: logger}
}

func (l zerologLogger) Error(msg string, err error) {
	l.logger.Error().Err(err).Str("component", "cache").Msg(msg)
}
