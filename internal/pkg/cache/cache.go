package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"
)

// ErrMiss is returned by Store.Get when the key is absent or expired
var ErrMiss = errors.New("cache: key not found")

// Keys for the derived read views
const (
	KeyAvailableLots  = "user:available_lots"
	KeyAdminLots      = "admin:parking_lots"
	KeyDashboardStats = "admin:dashboard_stats"
)

// TTLs for the derived read views
const (
	TTLAvailableLots  = 2 * time.Minute
	TTLAdminLots      = 5 * time.Minute
	TTLDashboardStats = 2 * time.Minute
)

// Store is the capability interface injected into services. Implementations
// must be safe for concurrent use. A backend failure is reported as an error
// but callers treat the cache as best-effort and fall through to the source.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// GetOrCompute returns the cached value under key if present and unexpired;
// otherwise it runs compute, stores the result with the given TTL and returns
// it. Cache failures (backend down, decode error) are logged and never
// surface: the computed value is always returned.
func GetOrCompute[T any](ctx context.Context, store Store, key string, ttl time.Duration, compute func() (T, error)) (T, error) {
	raw, err := store.Get(ctx, key)
	if err == nil {
		var cached T
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
		log.Printf("⚠️ Cache decode failed for %s, recomputing", key)
	} else if !errors.Is(err, ErrMiss) {
		log.Printf("⚠️ Cache get %s: %v", key, err)
	}

	value, err := compute()
	if err != nil {
		return value, err
	}

	if raw, err := json.Marshal(value); err == nil {
		if err := store.Set(ctx, key, raw, ttl); err != nil {
			log.Printf("⚠️ Cache set %s: %v", key, err)
		}
	}
	return value, nil
}

// Invalidate removes the given keys. Errors are logged and swallowed:
// invalidation is attempted on every successful mutation, but a cache outage
// must never fail the operation itself.
func Invalidate(ctx context.Context, store Store, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := store.Delete(ctx, keys...); err != nil {
		log.Printf("⚠️ Cache invalidate %v: %v", keys, err)
	}
}
