package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"legal-navigator/internal/analysis"
)

// Cache stores validated analysis results for repeated use cases.
type Cache interface {
	// GetResult retrieves a cached result by key.
	// Returns nil if not found.
	GetResult(ctx context.Context, key string) (*analysis.Result, error)

	// SetResult stores a result with TTL.
	SetResult(ctx context.Context, key string, result analysis.Result, ttl time.Duration) error

	// Close closes the cache connection.
	Close() error
}

// GenerateCacheKey derives a stable key from everything that shapes the
// answer. Whitespace and case differences in the use case share an entry.
func GenerateCacheKey(variant analysis.Variant, model, useCase string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(useCase)), " ")
	sum := sha256.Sum256([]byte(string(variant) + "\x00" + model + "\x00" + normalized))
	return hex.EncodeToString(sum[:])
}
