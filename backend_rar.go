package comicfs

import (
	"context"
	"slices"

	"github.com/meigma/comicfs/internal/natsort"
	"github.com/meigma/comicfs/manifest"
)

// rarBackend serves pages from a RAR-based container by delegating
// listing and extraction to an external tool. Every page read extracts
// into a scoped temporary directory that is released before returning.
type rarBackend struct {
	path   string
	tool   *ExtractTool
	names  []string
	man    *manifest.Manifest
	manRaw []byte
	manErr error
}

var _ Backend = (*rarBackend)(nil)

func openRarBackend(ctx context.Context, path string, tool *ExtractTool) (*rarBackend, error) {
	entries, err := tool.List(ctx, path)
	if err != nil {
		return nil, err
	}

	b := &rarBackend{path: path, tool: tool}
	for _, name := range entries {
		if isImageName(name) {
			b.names = append(b.names, name)
		}
	}
	natsort.Sort(b.names)

	if slices.Contains(entries, manifestEntryName) {
		raw, err := tool.ExtractFile(ctx, path, manifestEntryName)
		if err != nil {
			return nil, err
		}
		b.manRaw = raw
		b.man, b.manErr = manifest.Parse(raw)
	}
	return b, nil
}

func (b *rarBackend) PageNames() []string { return b.names }

func (b *rarBackend) ReadPage(ctx context.Context, i int) ([]byte, error) {
	if err := checkPageIndex(i, len(b.names)); err != nil {
		return nil, err
	}
	return b.tool.ExtractFile(ctx, b.path, b.names[i])
}

func (b *rarBackend) ReadByName(ctx context.Context, name string) ([]byte, error) {
	return b.tool.ExtractFile(ctx, b.path, name)
}

func (b *rarBackend) Manifest() *manifest.Manifest { return b.man }

func (b *rarBackend) ManifestRaw() []byte { return b.manRaw }

func (b *rarBackend) Close() error { return nil }
