package comicfs

import (
	"context"

	"github.com/meigma/comicfs/manifest"
)

// Backend provides page listing and retrieval for one container kind.
//
// A backend is selected once at open time and owned by a single
// [Archive]; it holds no state shared with other handles. ReadPage and
// ReadByName return raw encoded image bytes; decoding to pixels is the
// caller's concern.
type Backend interface {
	// PageNames returns the ordered page list: image entries in natural
	// order for embedded containers, manifest URL order for web archives.
	PageNames() []string

	// ReadPage returns the encoded bytes of page i, or
	// [ErrIndexOutOfRange] when i is outside [0, len(PageNames())).
	ReadPage(ctx context.Context, i int) ([]byte, error)

	// ReadByName returns the encoded bytes of a named resource: an entry
	// name for embedded containers or a URL for web archives. Used for
	// manifest-declared thumbnails.
	ReadByName(ctx context.Context, name string) ([]byte, error)

	// Manifest returns the embedded manifest, or nil when the container
	// has none.
	Manifest() *manifest.Manifest

	// ManifestRaw returns the raw manifest bytes, or nil.
	ManifestRaw() []byte

	// Close releases container resources. It is idempotent.
	Close() error
}

// checkPageIndex bounds-checks i against the backend page list.
func checkPageIndex(i, count int) error {
	if i < 0 || i >= count {
		return ErrIndexOutOfRange
	}
	return nil
}
