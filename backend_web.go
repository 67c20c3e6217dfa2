package comicfs

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/meigma/comicfs/manifest"
)

// webFetchRetries bounds retries of a transient page fetch failure.
const webFetchRetries = 2

// webBackend serves pages declared as remote URLs in a manifest. The
// optional carrier is the container the manifest was found in; it still
// serves embedded resources such as a manifest-declared thumbnail entry.
//
// The backend performs no memoization of its own: the shared page cache
// is the only layer that keeps fetched bytes.
type webBackend struct {
	man     *manifest.Manifest
	manRaw  []byte
	urls    []string
	client  *http.Client
	carrier Backend
}

var _ Backend = (*webBackend)(nil)

func newWebBackend(man *manifest.Manifest, manRaw []byte, carrier Backend, client *http.Client) *webBackend {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &webBackend{
		man:     man,
		manRaw:  manRaw,
		urls:    man.PageURLs(),
		client:  client,
		carrier: carrier,
	}
}

func (b *webBackend) PageNames() []string { return b.urls }

func (b *webBackend) ReadPage(ctx context.Context, i int) ([]byte, error) {
	if err := checkPageIndex(i, len(b.urls)); err != nil {
		return nil, err
	}
	return b.fetch(ctx, b.urls[i])
}

func (b *webBackend) ReadByName(ctx context.Context, name string) ([]byte, error) {
	if isHTTPURL(name) {
		return b.fetch(ctx, name)
	}
	if b.carrier != nil {
		return b.carrier.ReadByName(ctx, name)
	}
	return nil, fmt.Errorf("comicfs: resource %q: %w", name, fs.ErrNotExist)
}

func (b *webBackend) Manifest() *manifest.Manifest { return b.man }

func (b *webBackend) ManifestRaw() []byte { return b.manRaw }

func (b *webBackend) Close() error {
	if b.carrier != nil {
		return b.carrier.Close()
	}
	return nil
}

// fetch retrieves url with bounded exponential-backoff retries. Client
// errors (4xx) are deterministic and fail immediately; network errors
// and server errors are retried.
func (b *webBackend) fetch(ctx context.Context, url string) ([]byte, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 200 * time.Millisecond
	policy.MaxInterval = 2 * time.Second

	op := func() ([]byte, error) {
		data, err := b.fetchOnce(ctx, url)
		if err != nil && ctx.Err() != nil {
			return nil, backoff.Permanent(err)
		}
		return data, err
	}
	return backoff.RetryWithData(op,
		backoff.WithContext(backoff.WithMaxRetries(policy, webFetchRetries), ctx))
}

func (b *webBackend) fetchOnce(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("%w: %s: %v", ErrNetworkFailure, url, err))
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %v", ErrNetworkFailure, url, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		// ok
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return nil, backoff.Permanent(fmt.Errorf("%w: GET %s: %s", ErrNetworkFailure, url, resp.Status))
	default:
		return nil, fmt.Errorf("%w: GET %s: %s", ErrNetworkFailure, url, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrNetworkFailure, url, err)
	}
	return data, nil
}

func isHTTPURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
