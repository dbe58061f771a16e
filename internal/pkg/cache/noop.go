package cache

import (
	"context"
	"time"
)

// noopStore is used when no cache backend is configured or the backend is
// unreachable at startup. Every read misses, so callers always compute from
// source: fail-open by construction.
type noopStore struct{}

// NewNoopStore returns a Store that never caches
func NewNoopStore() Store {
	return noopStore{}
}

func (noopStore) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, ErrMiss
}

func (noopStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return nil
}

func (noopStore) Delete(ctx context.Context, keys ...string) error {
	return nil
}
