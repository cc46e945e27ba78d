// Package cache stores converted map artifacts between runs.
//
// Rasterizing an SVG with rsvg-convert dominates the cost of a PNG or PDF
// render. The output depends only on the SVG bytes and the conversion
// settings, so it is cached under a content hash of both; re-rendering an
// unchanged map with the same view skips the external tool entirely.
//
// Two implementations are provided:
//
//   - [FileCache] for the CLI, under $XDG_CACHE_HOME/papermap
//   - [NullCache] when caching is disabled (--no-cache) and in tests
package cache

import (
	"context"
	"time"
)

// DefaultTTL is how long a converted artifact stays valid.
const DefaultTTL = 7 * 24 * time.Hour

// Cache is a byte store with optional expiry.
type Cache interface {
	// Get returns the value for key and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases resources.
	Close() error
}

// ConvertKey identifies the conversion of svg to format at the given scale.
func ConvertKey(format string, scale float64, svg []byte) string {
	return hashKey("convert", format, scale, Hash(svg))
}
