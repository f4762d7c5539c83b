package cache

import (
	"context"
	"time"

	"legal-navigator/internal/analysis"
)

// NoOpCache is the default when CACHE_PROVIDER=none, and the fallback when
// Redis is unreachable. Every lookup is a miss.
type NoOpCache struct{}

func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

func (c *NoOpCache) GetResult(ctx context.Context, key string) (*analysis.Result, error) {
	return nil, nil
}

func (c *NoOpCache) SetResult(ctx context.Context, key string, result analysis.Result, ttl time.Duration) error {
	return nil
}

func (c *NoOpCache) Close() error {
	return nil
}
