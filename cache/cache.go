// Package cache provides the shared page cache used by all open archives.
//
// The cache maps (archive identity, page index) to encoded page bytes and
// bounds total resident size with LRU eviction. Concurrent misses for the
// same key are coalesced into a single fetch, so foreground navigation and
// background read-ahead never duplicate work.
package cache

import (
	"strconv"

	"github.com/opencontainers/go-digest"
)

// Key identifies one page of one archive.
//
// The archive digest namespaces entries so pages never leak between
// archives that happen to share indices.
type Key struct {
	Archive digest.Digest
	Page    int
}

// String returns the singleflight key form.
func (k Key) String() string {
	return k.Archive.String() + "#" + strconv.Itoa(k.Page)
}

// FetchFunc loads page bytes on a cache miss.
type FetchFunc func() ([]byte, error)

// Cache stores encoded page bytes under a byte budget.
//
// Implementations must be safe for concurrent use. Returned slices are
// shared, not copied; callers must treat them as read-only.
type Cache interface {
	// GetOrFetch returns the cached bytes for key, or invokes fetch,
	// stores the result, and returns it. Concurrent calls for the same
	// key share a single fetch. Fetch errors are returned to every
	// waiting caller and are never cached, so the next call retries.
	GetOrFetch(key Key, fetch FetchFunc) ([]byte, error)

	// Contains reports whether key is resident without touching recency.
	Contains(key Key) bool

	// MaxBytes returns the configured byte budget (0 = unlimited).
	MaxBytes() int64

	// SizeBytes returns the current resident size in bytes.
	SizeBytes() int64

	// Len returns the number of resident entries.
	Len() int

	// Purge drops every resident entry.
	Purge()
}
