package store

import (
	"context"
	"fmt"
)

// Backend kinds accepted by Open.
const (
	KindSQLite = "sqlite"
	KindRedis  = "redis"
	KindMemory = "memory"
)

// Options selects and locates the backend built by Open.
type Options struct {
	Kind       string
	SQLitePath string
	RedisURL   string
}

// Open builds the process-wide backend once at startup. For KindRedis an
// unreachable server yields the in-process fallback, not an error.
func Open(ctx context.Context, o Options, opts ...Option) (Backend, error) {
	switch o.Kind {
	case KindSQLite, "":
		if o.SQLitePath == "" {
			return nil, fmt.Errorf("sqlite backend: database path is required")
		}
		return NewSQLiteBackend(o.SQLitePath, opts...)
	case KindRedis:
		return NewCacheBackend(ctx, o.RedisURL, opts...)
	case KindMemory:
		return NewMemoryBackend(opts...), nil
	default:
		return nil, fmt.Errorf("unknown backend %q (valid: sqlite, redis, memory)", o.Kind)
	}
}
