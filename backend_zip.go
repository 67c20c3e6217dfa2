package comicfs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"sync"

	"github.com/klauspost/compress/zip"

	"github.com/meigma/comicfs/internal/natsort"
	"github.com/meigma/comicfs/manifest"
)

// manifestEntryName is the manifest's entry name inside a container.
const manifestEntryName = "manifest.toml"

// zipBackend serves pages from a ZIP-based container. The container
// stays open for the backend's lifetime; entry reads are independent
// section readers, so concurrent page reads are safe.
type zipBackend struct {
	rc        *zip.ReadCloser
	files     map[string]*zip.File
	names     []string
	man       *manifest.Manifest
	manRaw    []byte
	manErr    error
	closeOnce sync.Once
}

var _ Backend = (*zipBackend)(nil)

func openZipBackend(path string) (*zipBackend, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("comicfs: open %s: %w", path, err)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptArchive, path, err)
	}

	b := &zipBackend{
		rc:    rc,
		files: make(map[string]*zip.File, len(rc.File)),
	}
	for _, f := range rc.File {
		if f.FileInfo().IsDir() {
			continue
		}
		b.files[f.Name] = f
		if isImageName(f.Name) {
			b.names = append(b.names, f.Name)
		}
	}
	natsort.Sort(b.names)

	if mf, ok := b.files[manifestEntryName]; ok {
		raw, err := readZipEntry(mf)
		if err != nil {
			rc.Close()
			return nil, err
		}
		b.manRaw = raw
		b.man, b.manErr = manifest.Parse(raw)
	}
	return b, nil
}

func (b *zipBackend) PageNames() []string { return b.names }

func (b *zipBackend) ReadPage(ctx context.Context, i int) ([]byte, error) {
	if err := checkPageIndex(i, len(b.names)); err != nil {
		return nil, err
	}
	return b.ReadByName(ctx, b.names[i])
}

func (b *zipBackend) ReadByName(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, ok := b.files[name]
	if !ok {
		return nil, fmt.Errorf("comicfs: entry %q: %w", name, fs.ErrNotExist)
	}
	return readZipEntry(f)
}

func (b *zipBackend) Manifest() *manifest.Manifest { return b.man }

func (b *zipBackend) ManifestRaw() []byte { return b.manRaw }

func (b *zipBackend) Close() error {
	var err error
	b.closeOnce.Do(func() {
		err = b.rc.Close()
	})
	return err
}

func readZipEntry(f *zip.File) ([]byte, error) {
	r, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: entry %q: %v", ErrCorruptArchive, f.Name, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: entry %q: %v", ErrCorruptArchive, f.Name, err)
	}
	return data, nil
}
