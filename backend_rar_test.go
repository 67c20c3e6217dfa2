package comicfs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/comicfs/internal/testutil"
)

func fakeTool(t *testing.T) *ExtractTool {
	t.Helper()
	return NewExtractTool(testutil.FakeUnrar(t))
}

func TestRarBackendListAndRead(t *testing.T) {
	t.Parallel()

	path := testutil.FakeRarArchive(t, ".cbr", map[string][]byte{
		"page10.jpg": []byte("ten"),
		"page2.jpg":  []byte("two"),
		"readme.txt": []byte("skip me"),
	})

	b, err := openRarBackend(context.Background(), path, fakeTool(t))
	require.NoError(t, err)
	defer b.Close()

	assert.Equal(t, []string{"page2.jpg", "page10.jpg"}, b.PageNames())

	data, err := b.ReadPage(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, []byte("two"), data)

	_, err = b.ReadPage(context.Background(), 5)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestRarBackendManifest(t *testing.T) {
	t.Parallel()

	path := testutil.FakeRarArchive(t, ".cbr", map[string][]byte{
		"manifest.toml": []byte("[metadata]\ntitle = \"Rarred\"\n"),
		"p1.jpg":        []byte("img"),
	})

	b, err := openRarBackend(context.Background(), path, fakeTool(t))
	require.NoError(t, err)
	defer b.Close()

	require.NotNil(t, b.Manifest())
	assert.Equal(t, "Rarred", b.Manifest().Metadata.Title)
}

func TestRarBackendToolMissing(t *testing.T) {
	t.Parallel()

	tool := NewExtractTool("comicfs-test-no-such-unrar")
	_, err := openRarBackend(context.Background(), "whatever.cbr", tool)
	assert.ErrorIs(t, err, ErrExternalToolMissing)

	// Resolution is cached: the second use fails the same way without
	// probing again.
	_, err = tool.Resolve()
	assert.ErrorIs(t, err, ErrExternalToolMissing)
}

func TestRarBackendToolFailure(t *testing.T) {
	t.Parallel()

	// A real directory listing works, but extraction of a missing
	// entry makes the tool exit nonzero.
	path := testutil.FakeRarArchive(t, ".cbr", map[string][]byte{
		"p1.jpg": []byte("img"),
	})
	tool := fakeTool(t)

	_, err := tool.ExtractFile(context.Background(), path, "absent.jpg")
	assert.ErrorIs(t, err, ErrExternalToolFailure)
}
