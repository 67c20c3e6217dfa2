package comicfs

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/comicfs/manifest"
)

func webManifest(urls []string) *manifest.Manifest {
	return &manifest.Manifest{
		Metadata:      manifest.Metadata{Title: "Web", WebArchive: true},
		ExternalPages: &manifest.ExternalPages{URLs: urls},
	}
}

func TestWebBackendFetchesURLsInOrder(t *testing.T) {
	t.Parallel()

	var requests []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r.URL.Path)
		fmt.Fprintf(w, "body of %s", r.URL.Path)
	}))
	defer srv.Close()

	urls := []string{
		srv.URL + "/p0.jpg",
		srv.URL + "/p1.jpg",
		srv.URL + "/p2.jpg",
	}
	b := newWebBackend(webManifest(urls), []byte("raw"), nil, srv.Client())

	assert.Equal(t, urls, b.PageNames())

	ctx := context.Background()
	for i := range urls {
		data, err := b.ReadPage(ctx, i)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("body of /p%d.jpg", i), string(data))
	}
	assert.Equal(t, []string{"/p0.jpg", "/p1.jpg", "/p2.jpg"}, requests)

	_, err := b.ReadPage(ctx, len(urls))
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestWebBackendRetriesTransientFailure(t *testing.T) {
	t.Parallel()

	var attempts atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, "finally")
	}))
	defer srv.Close()

	b := newWebBackend(webManifest([]string{srv.URL + "/p.jpg"}), nil, nil, srv.Client())

	data, err := b.ReadPage(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, "finally", string(data))
	assert.Equal(t, int64(3), attempts.Load())
}

func TestWebBackendBoundedRetries(t *testing.T) {
	t.Parallel()

	var attempts atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	b := newWebBackend(webManifest([]string{srv.URL + "/p.jpg"}), nil, nil, srv.Client())

	_, err := b.ReadPage(context.Background(), 0)
	assert.ErrorIs(t, err, ErrNetworkFailure)
	// Initial attempt plus the bounded retries, no more.
	assert.Equal(t, int64(1+webFetchRetries), attempts.Load())
}

func TestWebBackendClientErrorNotRetried(t *testing.T) {
	t.Parallel()

	var attempts atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	b := newWebBackend(webManifest([]string{srv.URL + "/gone.jpg"}), nil, nil, srv.Client())

	_, err := b.ReadPage(context.Background(), 0)
	assert.ErrorIs(t, err, ErrNetworkFailure)
	assert.Equal(t, int64(1), attempts.Load())
}

func TestWebBackendReadByName(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "thumb bytes")
	}))
	defer srv.Close()

	b := newWebBackend(webManifest(nil), nil, nil, srv.Client())

	data, err := b.ReadByName(context.Background(), srv.URL+"/thumb.jpg")
	require.NoError(t, err)
	assert.Equal(t, "thumb bytes", string(data))

	// Non-URL names need a carrier container.
	_, err = b.ReadByName(context.Background(), "thumb.jpg")
	assert.Error(t, err)
}

func TestWebBackendEmptyURLList(t *testing.T) {
	t.Parallel()

	b := newWebBackend(webManifest([]string{}), nil, nil, nil)
	assert.Empty(t, b.PageNames())

	_, err := b.ReadPage(context.Background(), 0)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}
