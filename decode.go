package comicfs

import (
	"bytes"
	"fmt"
	"image"

	// Registered codecs for the default decoder.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// PixelDecoder turns encoded page bytes into a raster image.
//
// The archive core is format-abstraction-only: it never inspects pixels
// itself. Callers with special codec needs inject their own decoder via
// WithPixelDecoder; the default delegates to the codecs registered with
// the standard image package.
type PixelDecoder interface {
	// Decode decodes data declared (or sniffed) as mimeType.
	Decode(data []byte, mimeType string) (image.Image, error)
}

// stdDecoder decodes via the registered image codecs, ignoring the
// declared MIME type in favor of content sniffing.
type stdDecoder struct{}

var _ PixelDecoder = stdDecoder{}

func (stdDecoder) Decode(data []byte, mimeType string) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("comicfs: decode %s page: %w", mimeType, err)
	}
	return img, nil
}
