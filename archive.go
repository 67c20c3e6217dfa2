package comicfs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/opencontainers/go-digest"

	"github.com/meigma/comicfs/cache"
	"github.com/meigma/comicfs/manifest"
)

// State is the archive handle lifecycle state.
type State int32

const (
	StateUnopened State = iota
	StateOpening
	StateReady
	StateFailed
	StateClosed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUnopened:
		return "unopened"
	case StateOpening:
		return "opening"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// sharedCache is the process-wide page cache used when no cache is
// injected, created on first open and shared by every handle so that
// switching between recently viewed archives stays fast.
var sharedCache = sync.OnceValue(func() cache.Cache {
	return cache.NewLRU(cache.DefaultMaxBytes)
})

// Archive is the handle to an open comic archive. It composes a backend
// with the shared page cache and a read-ahead scheduler, and is the only
// entry point used by the reader shell and the thumbnail command.
//
// An Archive owns its backend exclusively; the page cache is shared
// across all handles in the process.
type Archive struct {
	locator  Locator
	identity digest.Digest
	backend  Backend
	pages    []PageDescriptor
	byName   map[string]int

	cache   cache.Cache
	pre     *prefetcher
	decoder PixelDecoder
	logger  *slog.Logger
	client  *http.Client
	tool    *ExtractTool
	window  int

	state atomic.Int32
}

// Open opens the archive at path, detecting the container kind and
// establishing the page list. On failure the handle transitions to the
// failed state and the originating error is returned; errors.Is reports
// the failure kind ([ErrUnsupportedFormat], [ErrCorruptArchive],
// [ErrExternalToolMissing], [ErrManifestMissing], [ErrManifestParse],
// ...).
func Open(path string, opts ...Option) (*Archive, error) {
	a := &Archive{
		logger:  slog.New(slog.DiscardHandler),
		decoder: stdDecoder{},
		tool:    defaultExtractTool,
		window:  defaultPrefetchWindow,
	}
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}
	if a.cache == nil {
		a.cache = sharedCache()
	}

	a.state.Store(int32(StateOpening))
	if err := a.open(path); err != nil {
		a.state.Store(int32(StateFailed))
		return nil, err
	}
	a.state.Store(int32(StateReady))

	a.logger.Debug("archive opened",
		"path", path,
		"kind", a.locator.Kind.String(),
		"pages", len(a.pages))
	return a, nil
}

func (a *Archive) open(path string) error {
	kind, err := DetectKind(path)
	if err != nil {
		return err
	}
	a.locator = Locator{Path: path, Kind: kind}

	var backend Backend
	switch kind {
	case KindZip, KindWeb:
		// A .cbw is a zip carrier that must declare external pages.
		backend, err = openZipBackend(path)
	case KindRar:
		backend, err = openRarBackend(context.Background(), path, a.tool)
	}
	if err != nil {
		return err
	}

	backend, kind, err = a.upgradeToWeb(backend, kind)
	if err != nil {
		backend.Close()
		return err
	}

	a.locator.Kind = kind
	if kind == KindWeb {
		a.identity = webIdentity(backend.ManifestRaw())
	} else {
		a.identity = localIdentity(path)
	}
	a.backend = backend

	names := backend.PageNames()
	a.pages = make([]PageDescriptor, len(names))
	a.byName = make(map[string]int, len(names))
	for i, name := range names {
		a.pages[i] = PageDescriptor{
			Archive: a.identity,
			Index:   i,
			Name:    name,
			MIME:    pageMIME(name),
		}
		if kind == KindWeb {
			a.pages[i].URL = name
		}
		a.byName[name] = i
	}

	a.pre = newPrefetcher(a.cache, backend, a.identity, len(names), a.window, a.logger)
	return nil
}

// upgradeToWeb swaps in the web backend when the carrier's manifest
// declares external pages, keeping the carrier for embedded resources.
func (a *Archive) upgradeToWeb(carrier Backend, kind ContainerKind) (Backend, ContainerKind, error) {
	man := carrier.Manifest()
	raw := carrier.ManifestRaw()

	if kind == KindWeb {
		// Explicit .cbw: the manifest is mandatory and must parse.
		if raw == nil {
			return carrier, kind, fmt.Errorf("%w: %s", ErrManifestMissing, a.locator.Path)
		}
		if man == nil {
			return carrier, kind, manifestError(carrier)
		}
		if man.ExternalPages == nil {
			return carrier, kind, fmt.Errorf("%w: external_pages missing", ErrManifestParse)
		}
		return newWebBackend(man, raw, carrier, a.client), KindWeb, nil
	}

	if raw != nil && man == nil {
		// Embedded archive with an unreadable manifest: pages still
		// come from the container, so log and carry on.
		a.logger.Warn("ignoring unparsable manifest", "error", manifestError(carrier))
		return carrier, kind, nil
	}
	if man != nil && man.Metadata.WebArchive {
		return newWebBackend(man, raw, carrier, a.client), KindWeb, nil
	}
	return carrier, kind, nil
}

func manifestError(b Backend) error {
	switch be := b.(type) {
	case *zipBackend:
		return be.manErr
	case *rarBackend:
		return be.manErr
	default:
		return ErrManifestParse
	}
}

// State returns the handle's lifecycle state.
func (a *Archive) State() State {
	return State(a.state.Load())
}

func (a *Archive) ready() error {
	if s := a.State(); s != StateReady {
		return fmt.Errorf("%w: state %s", ErrNotReady, s)
	}
	return nil
}

// Locator returns the opened locator.
func (a *Archive) Locator() Locator { return a.locator }

// Identity returns the archive's cache namespace.
func (a *Archive) Identity() digest.Digest { return a.identity }

// Manifest returns the embedded manifest, or nil.
func (a *Archive) Manifest() *manifest.Manifest {
	if a.backend == nil {
		return nil
	}
	return a.backend.Manifest()
}

// PageCount returns the number of pages.
func (a *Archive) PageCount() (int, error) {
	if err := a.ready(); err != nil {
		return 0, err
	}
	return len(a.pages), nil
}

// Pages returns the ordered page descriptors.
func (a *Archive) Pages() ([]PageDescriptor, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}
	out := make([]PageDescriptor, len(a.pages))
	copy(out, a.pages)
	return out, nil
}

// Page returns the encoded bytes of page i and schedules read-ahead of
// the following pages. The returned slice is shared with the cache and
// must be treated as read-only.
func (a *Archive) Page(ctx context.Context, i int) ([]byte, error) {
	data, err := a.pageData(ctx, i)
	if err != nil {
		return nil, err
	}
	a.pre.advance(i)
	return data, nil
}

// pageData is the cache-backed fetch without read-ahead scheduling.
func (a *Archive) pageData(ctx context.Context, i int) ([]byte, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}
	if err := checkPageIndex(i, len(a.pages)); err != nil {
		return nil, fmt.Errorf("%w: %d of %d", err, i, len(a.pages))
	}

	key := cache.Key{Archive: a.identity, Page: i}
	fetch := func() ([]byte, error) {
		return a.backend.ReadPage(ctx, i)
	}

	data, err := a.cache.GetOrFetch(key, fetch)
	if errors.Is(err, errStalePrefetch) {
		// Joined a read-ahead flight that was invalidated mid-fetch;
		// this request is foreground, so fetch again.
		data, err = a.cache.GetOrFetch(key, fetch)
	}
	return data, err
}

// PageByName returns the encoded bytes of the page with the given entry
// name or URL.
func (a *Archive) PageByName(ctx context.Context, name string) ([]byte, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}
	i, ok := a.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: no page %q", ErrIndexOutOfRange, name)
	}
	return a.Page(ctx, i)
}

// RequestPage issues a non-blocking page request. The fetch runs in the
// background and resolves through the same cache path as Page, so
// concurrent requests for the same page share one fetch.
func (a *Archive) RequestPage(i int) *PageFuture {
	f := &PageFuture{done: make(chan struct{})}
	go func() {
		f.data, f.err = a.Page(context.Background(), i)
		close(f.done)
	}()
	return f
}

// Close releases backend resources and invalidates pending read-ahead.
// It is idempotent; pages already resident in the shared cache stay
// available to a future open of the same archive.
func (a *Archive) Close() error {
	if !a.state.CompareAndSwap(int32(StateReady), int32(StateClosed)) {
		return nil
	}
	a.pre.invalidate()
	return a.backend.Close()
}
