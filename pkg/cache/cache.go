// Package cache is the key/value store behind sessions and CSRF tokens.
// Values are stored JSON-encoded. Redis is used when reachable; otherwise an
// in-process memory store keeps a single server working.
//
//	if err := cache.Connect(); err != nil {
//	    logger.Warn("cache: redis unavailable, using memory", "error", err)
//	}
//	cache.Set(ctx, "k", v, time.Minute)
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/shashiranjanraj/authflow/config"
	"github.com/shashiranjanraj/authflow/pkg/metrics"
)

// Store is a TTL key/value store of raw bytes.
type Store interface {
	// Get returns the value and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	// Driver names the backend for metrics ("redis" or "memory").
	Driver() string
}

var (
	mu      sync.RWMutex
	current Store = NewMemoryStore()
)

// Connect points the package at Redis (REDIS_ADDR). When Redis does not
// answer a ping the memory store stays active and the error is returned so
// the caller can decide whether that is fatal.
func Connect() error {
	store, err := NewRedisStore(context.Background(), config.RedisAddr(), config.RedisPassword())
	if err != nil {
		return fmt.Errorf("cache: redis ping: %w", err)
	}
	Use(store)
	return nil
}

// Use installs s as the package-wide store.
func Use(s Store) {
	mu.Lock()
	current = s
	mu.Unlock()
}

// Default returns the package-wide store.
func Default() Store {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// Get retrieves a cached value by key and unmarshals into dest.
// Returns true on a cache hit, false on miss or error.
func Get(ctx context.Context, key string, dest interface{}) bool {
	s := Default()
	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		metrics.CacheMisses.WithLabelValues(s.Driver()).Inc()
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		metrics.CacheMisses.WithLabelValues(s.Driver()).Inc()
		return false
	}
	metrics.CacheHits.WithLabelValues(s.Driver()).Inc()
	return true
}

// Set stores value under key for the given TTL. A zero TTL never expires.
func Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: marshal %s: %w", key, err)
	}
	return Default().Set(ctx, key, data, ttl)
}

// Del removes one or more keys.
func Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return Default().Del(ctx, keys...)
}

// Forget is an alias for Del (Laravel-style).
func Forget(ctx context.Context, key string) error {
	return Del(ctx, key)
}
