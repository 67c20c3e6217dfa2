package comicfs

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/opencontainers/go-digest"
	"golang.org/x/sync/semaphore"

	"github.com/meigma/comicfs/cache"
)

// defaultPrefetchWindow is how many upcoming pages are scheduled after a
// navigation.
const defaultPrefetchWindow = 3

// prefetchConcurrency bounds simultaneous background fetches so
// read-ahead never saturates the backend. Foreground requests bypass
// the semaphore entirely and are therefore always served first.
const prefetchConcurrency = 2

// errStalePrefetch marks a read-ahead result that finished after a
// navigation jump superseded it. It is returned from inside the cache
// fetch so the result is discarded instead of cached.
var errStalePrefetch = errors.New("comicfs: stale prefetch generation")

// prefetcher schedules background retrieval of upcoming pages. Every
// navigation bumps a generation token; in-flight work from an earlier
// generation is not interrupted, its result is simply dropped on
// arrival.
type prefetcher struct {
	cache    cache.Cache
	backend  Backend
	identity digest.Digest
	count    int
	window   int
	logger   *slog.Logger

	sem *semaphore.Weighted
	gen atomic.Int64
}

func newPrefetcher(c cache.Cache, b Backend, identity digest.Digest, count, window int, logger *slog.Logger) *prefetcher {
	return &prefetcher{
		cache:    c,
		backend:  b,
		identity: identity,
		count:    count,
		window:   window,
		logger:   logger,
		sem:      semaphore.NewWeighted(prefetchConcurrency),
	}
}

// advance records a navigation to page n: it invalidates read-ahead from
// earlier navigations and schedules the next window pages.
func (p *prefetcher) advance(n int) {
	gen := p.gen.Add(1)
	for i := n + 1; i <= n+p.window && i < p.count; i++ {
		key := cache.Key{Archive: p.identity, Page: i}
		if p.cache.Contains(key) {
			continue
		}
		go p.fetch(key, gen)
	}
}

// invalidate drops all pending read-ahead without scheduling more.
func (p *prefetcher) invalidate() {
	p.gen.Add(1)
}

func (p *prefetcher) fetch(key cache.Key, gen int64) {
	ctx := context.Background()
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return
	}
	defer p.sem.Release(1)

	// Superseded while queued behind the semaphore.
	if p.gen.Load() != gen {
		return
	}

	_, err := p.cache.GetOrFetch(key, func() ([]byte, error) {
		data, err := p.backend.ReadPage(ctx, key.Page)
		if err != nil {
			return nil, err
		}
		if p.gen.Load() != gen {
			return nil, errStalePrefetch
		}
		return data, nil
	})
	switch {
	case err == nil:
	case errors.Is(err, errStalePrefetch):
		p.logger.Debug("read-ahead superseded", "page", key.Page)
	default:
		// Read-ahead failures are silent to the user; the page is
		// fetched again (and the error surfaced) if actually viewed.
		p.logger.Debug("read-ahead failed", "page", key.Page, "error", err)
	}
}
