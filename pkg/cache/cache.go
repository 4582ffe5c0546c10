// Package cache stores opaque byte payloads such as basemap tiles.
//
// Three backends implement [Cache]:
//
//   - [FileCache]: entries as JSON envelopes under the user cache directory
//   - [RedisCache]: a shared Redis instance, for teams rendering the same areas
//   - [NullCache]: never stores anything (--no-cache)
//
// Keys are free-form strings; use [Key] to build namespaced keys.
package cache

import (
	"context"
	"os"
	"path/filepath"
	"time"
)

// Cache is a context-aware byte store with per-entry expiry.
// A ttl of zero means the entry never expires.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// AppName names the cache subdirectory.
const AppName = "accimap"

// DefaultDir returns the per-user cache directory, e.g. ~/.cache/accimap.
func DefaultDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, AppName), nil
}
