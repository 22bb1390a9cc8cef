// Package storage holds the image store adapters: a local directory served
// by the HTTP server, and an S3 compatible bucket.
package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ObjectName builds a collision free file name such as
// image-1700000000000-5b1c...-9f.png.
func ObjectName(field, ext string, now time.Time) string {
	if field == "" {
		field = "image"
	}
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return fmt.Sprintf("%s-%d-%s%s", field, now.UnixMilli(), uuid.NewString(), ext)
}
