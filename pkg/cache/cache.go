// Package cache stores analysis responses so that re-running the same request
// does not hit the analysis service again.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under ~/.cache/clustermap
//   - [RedisCache]: a shared Redis instance, for teams running one service
//   - [NullCache]: stores nothing, used with --no-cache
//
// # Keys
//
// Keys come from a [Keyer] so that every backend agrees on their shape.
// [ScopedKeyer] prefixes keys with a namespace, which the analysis client
// uses to keep responses from different servers apart.
package cache

import (
	"context"
	"errors"
	"time"
)

// DefaultTTL is how long analysis responses stay cached.
const DefaultTTL = 7 * 24 * time.Hour

// ErrClosed is returned by operations on a closed cache.
var ErrClosed = errors.New("cache closed")

// Cache is a byte-oriented key/value store with expiry.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by backends that can drop all their entries and
// say where they keep them.
type Clearer interface {
	Clear(ctx context.Context) error
	Location() string
}

// NullCache never stores anything. It stands in when caching is disabled.
type NullCache struct{}

func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error                     { return nil }
func (NullCache) Close() error                                             { return nil }

var _ Cache = NullCache{}
