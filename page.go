package comicfs

import (
	"path/filepath"
	"strings"

	"github.com/opencontainers/go-digest"
)

// PageDescriptor describes one page of an open archive. Indices are
// contiguous in [0, PageCount) and stable for the handle's lifetime.
type PageDescriptor struct {
	Archive digest.Digest
	Index   int

	// Name is the entry name inside the container, or the page URL for
	// web archives.
	Name string

	// MIME is declared from the name's extension.
	MIME string

	// URL is set for web archive pages only.
	URL string
}

// mimeByExt maps recognized image extensions to their MIME type. Entries
// outside this set are never surfaced as pages.
var mimeByExt = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".bmp":  "image/bmp",
}

// pageMIME returns the MIME type for a page name, or "" when the name is
// not a recognized image.
func pageMIME(name string) string {
	// Strip a URL query before looking at the extension.
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	return mimeByExt[strings.ToLower(filepath.Ext(name))]
}

// isImageName reports whether name looks like a page image.
func isImageName(name string) bool {
	return pageMIME(name) != ""
}
