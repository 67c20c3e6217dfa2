// Package testutil provides fixture helpers shared by comicfs tests:
// zip containers, tiny decodable images, and a scripted stand-in for
// the external RAR tool.
package testutil

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/klauspost/compress/zip"
)

// WriteZip creates a zip archive at path containing the given entries.
func WriteZip(tb testing.TB, path string, entries map[string][]byte) {
	tb.Helper()

	f, err := os.Create(path)
	if err != nil {
		tb.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	w := zip.NewWriter(f)
	for name, data := range entries {
		ew, err := w.Create(name)
		if err != nil {
			tb.Fatalf("create entry %s: %v", name, err)
		}
		if _, err := ew.Write(data); err != nil {
			tb.Fatalf("write entry %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		tb.Fatalf("close zip: %v", err)
	}
}

// PNG returns an encoded w-by-h PNG filled with the given color.
func PNG(tb testing.TB, w, h int, c color.Color) []byte {
	tb.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		tb.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// fakeUnrar emulates the unrar CLI surface the RAR backend depends on.
// The "archive" argument is a plain directory: bare listing prints its
// entries and extraction copies one of them into the destination.
const fakeUnrar = `#!/bin/sh
set -e
case "$1" in
  lb)
    ls -1 "$3"
    ;;
  x)
    mkdir -p "$5"
    cp "$3/$4" "$5$4"
    ;;
  *)
    exit 2
    ;;
esac
`

// FakeUnrar writes an executable script emulating unrar and returns its
// path. Archives passed to it must be directories (see FakeRarArchive).
func FakeUnrar(tb testing.TB) string {
	tb.Helper()

	if runtime.GOOS == "windows" {
		tb.Skip("fake unrar script requires a POSIX shell")
	}
	path := filepath.Join(tb.TempDir(), "unrar")
	if err := os.WriteFile(path, []byte(fakeUnrar), 0o755); err != nil {
		tb.Fatalf("write fake unrar: %v", err)
	}
	return path
}

// FakeRarArchive lays out entries as a directory readable by the
// FakeUnrar script and returns its path with the given extension.
func FakeRarArchive(tb testing.TB, ext string, entries map[string][]byte) string {
	tb.Helper()

	dir := filepath.Join(tb.TempDir(), "archive"+ext)
	if err := os.Mkdir(dir, 0o755); err != nil {
		tb.Fatalf("mkdir %s: %v", dir, err)
	}
	for name, data := range entries {
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			tb.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}
