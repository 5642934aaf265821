// Package cache is the TTL key-value layer in front of the stats provider.
//
// Callers populate it on miss (read-through from the caller's side); nothing
// here ever talks to the upstream API. Every entry is disposable: clearing
// the backend only costs latency.
package cache

import (
	"context"
	"dota-tracker/internal/metrics"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Cache is a shared key-value store with per-key expiry. Get reports a miss
// with found=false and a nil error.
type Cache interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

var ErrInvalidTTL = errors.New("cache: ttl must be positive")

// GetJSON decodes the entry under key into dst. A payload that no longer
// decodes is dropped and reported as a miss.
func GetJSON(ctx context.Context, c Cache, key string, dst any) (bool, error) {
	kind := Kind(key)

	raw, found, err := c.Get(ctx, key)
	if err != nil {
		metrics.CacheLookups.WithLabelValues(kind, "error").Inc()
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}
	if !found {
		metrics.CacheLookups.WithLabelValues(kind, "miss").Inc()
		return false, nil
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("cache_key", key).Msg("dropping undecodable cache entry")
		_ = c.Delete(ctx, key)
		metrics.CacheLookups.WithLabelValues(kind, "miss").Inc()
		return false, nil
	}

	metrics.CacheLookups.WithLabelValues(kind, "hit").Inc()
	return true, nil
}

func SetJSON(ctx context.Context, c Cache, key string, v any, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	if err := c.Set(ctx, key, raw, ttl); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// Kind returns the namespace segment of a key ("matches", "match", ...).
func Kind(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return "unknown"
}
