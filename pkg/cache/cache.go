// Package cache provides byte-level caching for parsed reports.
//
// The pipeline stores the encoded parse result of a report under a key
// derived from the report's content hash and the parse options, so an
// unchanged report is never parsed twice. Two backends are provided:
//
//   - [FileCache]: one JSON file per entry under a cache directory (CLI)
//   - [NullCache]: never stores anything (--no-cache, tests)
//
// Keys are produced by a [Keyer]. [NewScopedKeyer] prefixes every key, which
// the CLI uses to namespace entries by build version.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value cache with optional expiry.
type Cache interface {
	// Get returns the data stored under key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl <= 0 never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// Default expiry per entry kind.
const (
	TTLReport = 7 * 24 * time.Hour
	TTLRender = 24 * time.Hour
)
