package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gabriel-vasile/mimetype"
	"github.com/labstack/echo/v4"

	"github.com/storefront/ecommerce-api/internal/api/metrics"
	"github.com/storefront/ecommerce-api/internal/core/domain"
	"github.com/storefront/ecommerce-api/internal/core/ports"
)

const imageField = "image"

// DefaultMaxImageBytes caps uploads when no limit is configured.
const DefaultMaxImageBytes int64 = 5 << 20

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// readImage returns the optional image of a multipart request. The content
// type is sniffed from the bytes, never taken from the client. The returned
// release func must be called once the image has been stored.
func readImage(c echo.Context, maxBytes int64) (*ports.Image, func(), error) {
	noop := func() {}

	fh, err := c.FormFile(imageField)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, noop, nil
	}
	if err != nil {
		metrics.ImageUploadsTotal.WithLabelValues("rejected").Inc()
		return nil, noop, domain.Invalidf("invalid multipart form")
	}
	if fh.Size > maxBytes {
		metrics.ImageUploadsTotal.WithLabelValues("rejected").Inc()
		return nil, noop, domain.Invalidf("image must not exceed %d bytes", maxBytes)
	}

	f, err := fh.Open()
	if err != nil {
		metrics.ImageUploadsTotal.WithLabelValues("error").Inc()
		return nil, noop, err
	}
	release := func() { _ = f.Close() }

	mt, err := mimetype.DetectReader(f)
	if err != nil {
		release()
		metrics.ImageUploadsTotal.WithLabelValues("error").Inc()
		return nil, noop, err
	}
	if !mimetype.EqualsAny(mt.String(), allowedImageTypes...) {
		release()
		metrics.ImageUploadsTotal.WithLabelValues("rejected").Inc()
		return nil, noop, domain.Invalidf("image must be a JPEG, PNG, GIF or WebP file")
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		release()
		metrics.ImageUploadsTotal.WithLabelValues("error").Inc()
		return nil, noop, err
	}

	return &ports.Image{
		Field:       imageField,
		Extension:   mt.Extension(),
		ContentType: mt.String(),
		Size:        fh.Size,
		Body:        f,
	}, release, nil
}

// observeStored records a successfully persisted upload.
func observeStored(img *ports.Image) {
	if img == nil {
		return
	}
	metrics.ImageUploadsTotal.WithLabelValues("stored").Inc()
	metrics.ImageUploadBytes.Observe(float64(img.Size))
}
