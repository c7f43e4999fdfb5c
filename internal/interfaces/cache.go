package interfaces

import (
	"context"
	"time"
)

// Cache is a key/value store with per-entry TTL, owned by the caller of the
// pipeline.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
