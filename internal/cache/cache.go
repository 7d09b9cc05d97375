package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/factcompanion/internal/model"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// CacheKey derives a key for a provider lookup. The query is normalised so
// that whitespace and case differences share an entry.
func CacheKey(provider, query string) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(query), " "))
	hash := sha256.Sum256([]byte(normalized))
	return "factcompanion:v1:" + provider + ":" + hex.EncodeToString(hash[:])
}

// New builds the cache described by cfg. Redis replaces the local layers when
// configured; otherwise memory is always used and disk is added when Dir is set.
// It returns nil when caching is disabled.
func New(cfg model.CacheConfig) (Cache, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	if cfg.RedisURL != "" {
		c, err := NewRedisCache(cfg.RedisURL, cfg.TTL)
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		return c, nil
	}

	if cfg.Dir != "" {
		return NewLayeredCache(cfg.TTL, cfg.Dir, cfg.TTL), nil
	}

	return NewMemoryCache(cfg.TTL, 10*time.Minute), nil
}

// GetJSON decodes a cached JSON value into dst
func GetJSON(c Cache, key string, dst any) bool {
	data, ok := c.Get(key)
	if !ok {
		return false
	}
	return json.Unmarshal(data, dst) == nil
}

// SetJSON stores v as JSON
func SetJSON(c Cache, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal cache value: %w", err)
	}
	return c.Set(key, data, ttl)
}
