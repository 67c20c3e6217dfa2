package comicfs

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/meigma/comicfs/cache"
)

// Option configures an Archive at open time.
type Option func(*Archive) error

// WithLogger sets a logger for the handle. If unset, logs are discarded.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Archive) error {
		if logger != nil {
			a.logger = logger
		}
		return nil
	}
}

// WithPageCache overrides the process-wide shared page cache for this
// handle. Mostly useful in tests; production handles should share one
// cache so eviction accounting stays consistent.
func WithPageCache(c cache.Cache) Option {
	return func(a *Archive) error {
		if c == nil {
			return errors.New("comicfs: nil page cache")
		}
		a.cache = c
		return nil
	}
}

// WithHTTPClient sets the client used for web archive page fetches.
func WithHTTPClient(client *http.Client) Option {
	return func(a *Archive) error {
		a.client = client
		return nil
	}
}

// WithPixelDecoder injects the decoder used by Thumbnail.
func WithPixelDecoder(d PixelDecoder) Option {
	return func(a *Archive) error {
		if d == nil {
			return errors.New("comicfs: nil pixel decoder")
		}
		a.decoder = d
		return nil
	}
}

// WithPrefetchWindow sets how many upcoming pages are scheduled after
// each navigation. Zero disables read-ahead; negative is an error.
func WithPrefetchWindow(n int) Option {
	return func(a *Archive) error {
		if n < 0 {
			return errors.New("comicfs: negative prefetch window")
		}
		a.window = n
		return nil
	}
}

// WithExtractTool overrides the session-wide external tool resolver used
// for RAR containers.
func WithExtractTool(t *ExtractTool) Option {
	return func(a *Archive) error {
		if t == nil {
			return errors.New("comicfs: nil extract tool")
		}
		a.tool = t
		return nil
	}
}
