package comicfs

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/opencontainers/go-digest"
)

// ContainerKind identifies how an archive stores its pages.
type ContainerKind int

const (
	// KindZip is a ZIP-based container (.cbz, .zip).
	KindZip ContainerKind = iota
	// KindRar is a RAR-based container read through an external tool
	// (.cbr, .rar).
	KindRar
	// KindWeb is a container whose pages are remote URLs declared in a
	// manifest (.cbw, or any container whose manifest sets
	// web_archive = true).
	KindWeb
)

// String returns the kind name.
func (k ContainerKind) String() string {
	switch k {
	case KindZip:
		return "zip"
	case KindRar:
		return "rar"
	case KindWeb:
		return "web"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Locator names an archive on disk together with its detected container
// kind. It is fixed once the archive is opened.
type Locator struct {
	Path string
	Kind ContainerKind
}

// DetectKind classifies a path by extension.
//
// A .cbw locator is a zip carrier that must contain a manifest; plain
// zip and rar containers may still be upgraded to [KindWeb] at open time
// when their manifest declares web_archive = true.
func DetectKind(path string) (ContainerKind, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cbz", ".zip":
		return KindZip, nil
	case ".cbr", ".rar":
		return KindRar, nil
	case ".cbw":
		return KindWeb, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// localIdentity derives the cache namespace for an embedded archive from
// its absolute path.
func localIdentity(path string) digest.Digest {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return digest.FromString(abs)
}

// webIdentity derives the cache namespace for a web archive from the raw
// manifest bytes, so two locators reaching byte-identical manifests share
// cache entries.
func webIdentity(manifestRaw []byte) digest.Digest {
	return digest.FromBytes(manifestRaw)
}
