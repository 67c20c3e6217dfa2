package comicfs

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"

	"golang.org/x/image/draw"
)

const (
	// DefaultThumbnailSize is the bounding box applied when Thumbnail is
	// called with a non-positive target size.
	DefaultThumbnailSize = 320

	thumbnailJPEGQuality = 85
)

// Thumbnail produces a JPEG preview of the archive, at most
// targetSize pixels on the longer edge with aspect ratio preserved.
//
// A manifest-declared thumbnail source is consulted first; otherwise
// page zero is decoded. An archive with no pages and no declared
// thumbnail fails with [ErrEmptyArchive].
func (a *Archive) Thumbnail(ctx context.Context, targetSize int) ([]byte, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}
	if targetSize <= 0 {
		targetSize = DefaultThumbnailSize
	}

	data, mimeType, err := a.thumbnailSource(ctx)
	if err != nil {
		return nil, err
	}

	img, err := a.decoder.Decode(data, mimeType)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	thumb := scaleToFit(img, targetSize)
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: thumbnailJPEGQuality}); err != nil {
		return nil, fmt.Errorf("comicfs: encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

func (a *Archive) thumbnailSource(ctx context.Context) ([]byte, string, error) {
	if man := a.backend.Manifest(); man != nil && man.Thumbnail != "" {
		data, err := a.backend.ReadByName(ctx, man.Thumbnail)
		if err == nil {
			return data, pageMIME(man.Thumbnail), nil
		}
		a.logger.Warn("declared thumbnail unavailable, falling back to first page",
			"source", man.Thumbnail, "error", err)
	}

	if len(a.pages) == 0 {
		return nil, "", ErrEmptyArchive
	}
	data, err := a.pageData(ctx, 0)
	if err != nil {
		return nil, "", err
	}
	return data, a.pages[0].MIME, nil
}

// scaleToFit downscales src to fit a size*size box, preserving aspect
// ratio. Images already inside the box are returned unscaled.
func scaleToFit(src image.Image, size int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= size && h <= size {
		return src
	}

	var nw, nh int
	if w >= h {
		nw = size
		nh = max(h*size/w, 1)
	} else {
		nh = size
		nw = max(w*size/h, 1)
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}
