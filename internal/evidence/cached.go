package evidence

import (
	"context"
	"time"

	"github.com/ppiankov/factcompanion/internal/cache"
	"github.com/ppiankov/factcompanion/internal/model"
)

// CachedFactChecker memoizes non-empty successful fact-check lookups
type CachedFactChecker struct {
	next  FactChecker
	cache cache.Cache
	ttl   time.Duration
}

// NewCachedFactChecker wraps next; a nil cache returns next unchanged
func NewCachedFactChecker(next FactChecker, c cache.Cache, ttl time.Duration) FactChecker {
	if c == nil {
		return next
	}
	return &CachedFactChecker{next: next, cache: c, ttl: ttl}
}

func (c *CachedFactChecker) Check(ctx context.Context, claim string) ([]model.FactCheckResult, error) {
	key := cache.CacheKey("factcheck", claim)

	var cached []model.FactCheckResult
	if cache.GetJSON(c.cache, key, &cached) && len(cached) > 0 {
		return cached, nil
	}

	results, err := c.next.Check(ctx, claim)
	if err == nil && len(results) > 0 {
		_ = cache.SetJSON(c.cache, key, results, c.ttl)
	}
	return results, err
}

// CachedSearcher memoizes non-empty successful searches
type CachedSearcher struct {
	next  Searcher
	cache cache.Cache
	ttl   time.Duration
}

// NewCachedSearcher wraps next; a nil cache returns next unchanged
func NewCachedSearcher(next Searcher, c cache.Cache, ttl time.Duration) Searcher {
	if c == nil {
		return next
	}
	return &CachedSearcher{next: next, cache: c, ttl: ttl}
}

func (c *CachedSearcher) Search(ctx context.Context, claim string) ([]model.SearchResult, error) {
	key := cache.CacheKey("search", claim)

	var cached []model.SearchResult
	if cache.GetJSON(c.cache, key, &cached) && len(cached) > 0 {
		return cached, nil
	}

	results, err := c.next.Search(ctx, claim)
	if err == nil && len(results) > 0 {
		_ = cache.SetJSON(c.cache, key, results, c.ttl)
	}
	return results, err
}
