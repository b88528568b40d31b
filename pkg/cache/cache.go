// Package cache stores photo metadata between runs.
//
// Reading the dimensions of a large photo set means opening every file, which
// dominates the run time on network drives. The loader asks a [Cache] first,
// keyed by [PhotoKey], and only decodes the image header on a miss.
//
// Implementations:
//
//   - [FileCache]: one JSON file per entry under a directory (CLI default)
//   - [RedisCache]: a shared Redis instance, for render farms reading the
//     same library
//   - [NullCache]: never stores anything (--no-cache)
package cache

import (
	"context"
	"fmt"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiration.
type Cache interface {
	// Get returns the stored value and true, or false on a miss. Expired and
	// corrupt entries are misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}

// DefaultTTL is how long photo metadata stays valid.
const DefaultTTL = 30 * 24 * time.Hour

// PhotoKey identifies the metadata of a file at path. Size and modification
// time are part of the key, so editing a photo invalidates its entry.
func PhotoKey(path string, size int64, modTime time.Time) string {
	return hashKey("photo", path, size, modTime.UTC().Format(time.RFC3339Nano))
}

// Describe returns a short human readable description of c for logs.
func Describe(c Cache) string {
	switch c := c.(type) {
	case *FileCache:
		return fmt.Sprintf("file %s", c.dir)
	case *RedisCache:
		return fmt.Sprintf("redis %s", c.addr)
	default:
		return "disabled"
	}
}
