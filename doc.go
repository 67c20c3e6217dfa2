// Package comicfs enumerates and reads pages out of comic-archive
// containers: local ZIP-based archives (CBZ), RAR-based archives read
// through an external extraction tool (CBR), and web archives whose
// pages are remote URLs declared in an embedded manifest (CBW).
//
// An [Archive] is the single entry point. Opening a locator detects the
// container kind, selects a backend, and establishes the page list:
//
//	a, err := comicfs.Open("vol1.cbz")
//	if err != nil {
//	    return err
//	}
//	defer a.Close()
//	data, err := a.Page(ctx, 0)
//
// Page bytes are the raw encoded image; pixel decoding is delegated to
// a [PixelDecoder], injected or defaulted to the registered standard
// library codecs.
//
// # Caching and read-ahead
//
// All open archives share one page cache (see the cache subpackage): a
// byte-budgeted LRU with single-flight de-duplication of concurrent
// misses. Every call to [Archive.Page] also schedules background
// read-ahead of the following pages; a navigation jump invalidates
// read-ahead already in flight via generation tokens, so stale results
// are discarded instead of polluting the cache. Use
// [Archive.RequestPage] for a non-blocking page handle.
//
// # Thumbnails
//
// [Archive.Thumbnail] produces a JPEG preview, preferring a
// manifest-declared thumbnail source over page zero. The comicthumb
// command wraps it for shell integration.
package comicfs
