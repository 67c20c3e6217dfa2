package comicfs

import (
	"bytes"
	"context"
	"image"
	"image/color"
	_ "image/jpeg"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/comicfs/internal/testutil"
)

func decodeDims(t *testing.T, data []byte) (int, int) {
	t.Helper()
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, "jpeg", format)
	return cfg.Width, cfg.Height
}

func TestThumbnailFromFirstPage(t *testing.T) {
	t.Parallel()

	path := writeCBZ(t, map[string][]byte{
		"p1.png": testutil.PNG(t, 64, 32, color.White),
	})
	a, err := Open(path, WithPageCache(freshCache()))
	require.NoError(t, err)
	defer a.Close()

	thumb, err := a.Thumbnail(context.Background(), 16)
	require.NoError(t, err)

	w, h := decodeDims(t, thumb)
	assert.Equal(t, 16, w)
	assert.Equal(t, 8, h)
}

func TestThumbnailPrefersManifestSource(t *testing.T) {
	t.Parallel()

	// The declared cover is landscape, the first page ("a1.png", which
	// sorts ahead of it) is portrait; the output orientation proves
	// which source was used.
	path := writeCBZ(t, map[string][]byte{
		"manifest.toml": []byte("thumbnail = \"cover.png\"\n\n[metadata]\ntitle = \"T\"\n"),
		"cover.png":     testutil.PNG(t, 40, 20, color.Black),
		"a1.png":        testutil.PNG(t, 20, 40, color.White),
	})
	a, err := Open(path, WithPageCache(freshCache()))
	require.NoError(t, err)
	defer a.Close()

	thumb, err := a.Thumbnail(context.Background(), 10)
	require.NoError(t, err)

	w, h := decodeDims(t, thumb)
	assert.Equal(t, 10, w)
	assert.Equal(t, 5, h)
}

func TestThumbnailFallsBackWhenDeclaredSourceMissing(t *testing.T) {
	t.Parallel()

	path := writeCBZ(t, map[string][]byte{
		"manifest.toml": []byte("thumbnail = \"gone.png\"\n\n[metadata]\ntitle = \"T\"\n"),
		"p1.png":        testutil.PNG(t, 32, 32, color.White),
	})
	a, err := Open(path, WithPageCache(freshCache()))
	require.NoError(t, err)
	defer a.Close()

	thumb, err := a.Thumbnail(context.Background(), 8)
	require.NoError(t, err)

	w, h := decodeDims(t, thumb)
	assert.Equal(t, 8, w)
	assert.Equal(t, 8, h)
}

func TestThumbnailEmptyArchive(t *testing.T) {
	t.Parallel()

	path := writeCBZ(t, map[string][]byte{
		"notes.txt": []byte("no images here"),
	})
	a, err := Open(path, WithPageCache(freshCache()))
	require.NoError(t, err)
	defer a.Close()

	_, err = a.Thumbnail(context.Background(), 0)
	assert.ErrorIs(t, err, ErrEmptyArchive)
}

func TestThumbnailNoUpscale(t *testing.T) {
	t.Parallel()

	path := writeCBZ(t, map[string][]byte{
		"p1.png": testutil.PNG(t, 4, 4, color.White),
	})
	a, err := Open(path, WithPageCache(freshCache()))
	require.NoError(t, err)
	defer a.Close()

	thumb, err := a.Thumbnail(context.Background(), 320)
	require.NoError(t, err)

	w, h := decodeDims(t, thumb)
	assert.Equal(t, 4, w)
	assert.Equal(t, 4, h)
}

func TestThumbnailBadImage(t *testing.T) {
	t.Parallel()

	path := writeCBZ(t, map[string][]byte{
		"p1.jpg": []byte("definitely not a jpeg"),
	})
	a, err := Open(path, WithPageCache(freshCache()))
	require.NoError(t, err)
	defer a.Close()

	_, err = a.Thumbnail(context.Background(), 0)
	assert.Error(t, err)
}

func TestScaleToFit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		w, h, size   int
		wantW, wantH int
	}{
		{"landscape", 200, 100, 50, 50, 25},
		{"portrait", 100, 200, 50, 25, 50},
		{"square", 128, 128, 32, 32, 32},
		{"already fits", 10, 10, 320, 10, 10},
		{"degenerate aspect", 1000, 1, 10, 10, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			src := image.NewRGBA(image.Rect(0, 0, tt.w, tt.h))
			got := scaleToFit(src, tt.size)
			assert.Equal(t, tt.wantW, got.Bounds().Dx())
			assert.Equal(t, tt.wantH, got.Bounds().Dy())
		})
	}
}
