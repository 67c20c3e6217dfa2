// Package manifest parses the TOML manifest embedded in comic archives.
//
// A manifest declares archive metadata and, for web archives, the ordered
// list of external page URLs. The current format is version 2; manifests
// without a version key are parsed under the same rules, and legacy
// manifests using the old [meta] table name are upgraded transparently.
package manifest

import (
	"errors"
	"fmt"

	"github.com/pelletier/go-toml/v2"
)

// Version is the manifest format version this package writes and the
// highest version it accepts.
const Version = 2

// ErrParse is returned when manifest text is malformed or violates the
// schema (bad TOML, unknown version, or a non-string URL list).
var ErrParse = errors.New("manifest: parse")

// Metadata describes the archive.
type Metadata struct {
	Title  string `toml:"title"`
	Author string `toml:"author"`

	// WebArchive marks archives whose pages are external URLs rather
	// than embedded entries.
	WebArchive bool `toml:"web_archive"`

	// DynamicArchive marks manifests produced by a generator script.
	// It is a provenance hint only; parsing and page access treat
	// dynamic and hand-authored manifests identically.
	DynamicArchive bool `toml:"dynamic_archive"`
}

// ExternalPages lists remote page URLs. Order defines page order.
type ExternalPages struct {
	URLs []string `toml:"urls"`
}

// Manifest is the parsed form of a manifest.toml.
type Manifest struct {
	Version       int            `toml:"version,omitempty"`
	Metadata      Metadata       `toml:"metadata"`
	ExternalPages *ExternalPages `toml:"external_pages,omitempty"`

	// Thumbnail optionally names a representative image: an entry path
	// for embedded archives or a URL for web archives.
	Thumbnail string `toml:"thumbnail,omitempty"`
}

// document is the wire shape, including the legacy [meta] table name.
// URLs is a pointer so a missing key and an empty list are distinguishable.
type document struct {
	Version    int       `toml:"version"`
	Metadata   *Metadata `toml:"metadata"`
	LegacyMeta *Metadata `toml:"meta"`
	ExternalPages *struct {
		URLs *[]string `toml:"urls"`
	} `toml:"external_pages"`
	Thumbnail string `toml:"thumbnail"`
}

// Parse decodes manifest text.
//
// Unknown keys are ignored for forward compatibility. Parse fails with an
// error wrapping [ErrParse] on malformed TOML, on a version newer than
// [Version], and when an [external_pages] table is present without a
// valid urls string list. An empty urls list is valid and describes a
// zero-page archive.
func Parse(data []byte) (*Manifest, error) {
	var doc document
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if doc.Version > Version {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrParse, doc.Version)
	}

	m := &Manifest{
		Version:   doc.Version,
		Thumbnail: doc.Thumbnail,
	}
	if doc.ExternalPages != nil {
		if doc.ExternalPages.URLs == nil {
			return nil, fmt.Errorf("%w: external_pages.urls missing", ErrParse)
		}
		m.ExternalPages = &ExternalPages{URLs: *doc.ExternalPages.URLs}
	}
	switch {
	case doc.Metadata != nil:
		m.Metadata = *doc.Metadata
	case doc.LegacyMeta != nil:
		// v0 manifests named the table [meta].
		m.Metadata = *doc.LegacyMeta
	}
	if m.Metadata.Title == "" {
		m.Metadata.Title = "Unknown"
	}
	if m.Metadata.Author == "" {
		m.Metadata.Author = "Unknown"
	}
	return m, nil
}

// PageURLs returns the external page list, or nil for embedded archives.
func (m *Manifest) PageURLs() []string {
	if m.ExternalPages == nil {
		return nil
	}
	return m.ExternalPages.URLs
}

// Encode renders the manifest as TOML at the current version.
func (m *Manifest) Encode() ([]byte, error) {
	out := *m
	out.Version = Version
	data, err := toml.Marshal(&out)
	if err != nil {
		return nil, fmt.Errorf("manifest: encode: %w", err)
	}
	return data, nil
}
