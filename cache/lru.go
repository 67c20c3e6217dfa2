package cache

import (
	"container/list"
	"sync"

	"golang.org/x/sync/singleflight"
)

// DefaultMaxBytes is the byte budget used when none is configured.
const DefaultMaxBytes int64 = 256 << 20

// LRU is a byte-budgeted, least-recently-used page cache.
//
// Entries only become resident once their fetch has settled; in-flight
// fetches live in the singleflight group, not in the eviction list, so
// eviction can never drop a fetch that callers are still waiting on.
// Evicted slices remain valid for readers that already hold them.
type LRU struct {
	maxBytes int64

	mu      sync.Mutex
	ll      *list.List // front is most recently used
	entries map[Key]*list.Element
	size    int64

	group singleflight.Group
}

type lruEntry struct {
	key  Key
	data []byte
}

var _ Cache = (*LRU)(nil)

// NewLRU creates a cache bounded to maxBytes. A non-positive maxBytes
// applies [DefaultMaxBytes].
func NewLRU(maxBytes int64) *LRU {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &LRU{
		maxBytes: maxBytes,
		ll:       list.New(),
		entries:  make(map[Key]*list.Element),
	}
}

// GetOrFetch implements Cache.
func (c *LRU) GetOrFetch(key Key, fetch FetchFunc) ([]byte, error) {
	if data, ok := c.get(key); ok {
		return data, nil
	}

	result, err, _ := c.group.Do(key.String(), func() (any, error) {
		// Double-check: another caller may have completed this fetch
		// between our lookup and acquiring the flight.
		if data, ok := c.get(key); ok {
			return data, nil
		}
		data, err := fetch()
		if err != nil {
			return nil, err
		}
		c.add(key, data)
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	data, _ := result.([]byte)
	return data, nil
}

// Contains implements Cache.
func (c *LRU) Contains(key Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}

// MaxBytes implements Cache.
func (c *LRU) MaxBytes() int64 { return c.maxBytes }

// SizeBytes implements Cache.
func (c *LRU) SizeBytes() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// Len implements Cache.
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Purge implements Cache.
func (c *LRU) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ll.Init()
	c.entries = make(map[Key]*list.Element)
	c.size = 0
}

func (c *LRU) get(key Key) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	elem, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.ll.MoveToFront(elem)
	return elem.Value.(*lruEntry).data, true
}

func (c *LRU) add(key Key, data []byte) {
	n := int64(len(data))
	if n > c.maxBytes {
		// A single page larger than the whole budget is returned to the
		// caller but not retained.
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		ent := elem.Value.(*lruEntry)
		c.size += n - int64(len(ent.data))
		ent.data = data
		c.ll.MoveToFront(elem)
	} else {
		c.entries[key] = c.ll.PushFront(&lruEntry{key: key, data: data})
		c.size += n
	}

	for c.size > c.maxBytes {
		oldest := c.ll.Back()
		if oldest == nil {
			break
		}
		ent := oldest.Value.(*lruEntry)
		c.ll.Remove(oldest)
		delete(c.entries, ent.key)
		c.size -= int64(len(ent.data))
	}
}
