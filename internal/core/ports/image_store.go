package ports

import (
	"context"
	"io"
)

// Image is an uploaded picture whose content type has already been sniffed.
type Image struct {
	Field       string
	Extension   string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ImageStore persists uploaded images and returns a reference that is
// stored on the owning record.
type ImageStore interface {
	Save(ctx context.Context, img Image) (ref string, err error)
	Delete(ctx context.Context, ref string) error
}

// ImageCleaner removes images that no record points to anymore.
type ImageCleaner interface {
	Enqueue(ref string)
}
