package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/storefront/ecommerce-api/internal/core/domain"
	"github.com/storefront/ecommerce-api/internal/core/ports"
)

// LocalPrefix is the URL path local images are served under.
const LocalPrefix = "uploads"

// LocalStore writes images into a directory on disk. References look like
// uploads/<name> and are served statically by the router.
type LocalStore struct {
	dir string
	now func() time.Time
}

// NewLocalStore creates dir when missing.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{dir: dir, now: time.Now}, nil
}

// Dir returns the directory images are written to.
func (s *LocalStore) Dir() string { return s.dir }

func (s *LocalStore) Save(ctx context.Context, img ports.Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name := ObjectName(img.Field, img.Extension, s.now())
	full := filepath.Join(s.dir, name)

	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", &domain.StorageError{Op: "create image file", Err: err}
	}
	if _, err := io.Copy(f, img.Body); err != nil {
		_ = f.Close()
		_ = os.Remove(full)
		return "", &domain.StorageError{Op: "write image file", Err: err}
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(full)
		return "", &domain.StorageError{Op: "close image file", Err: err}
	}
	return path.Join(LocalPrefix, name), nil
}

// Delete removes the file behind ref. Unknown or foreign references are
// ignored, and only the base name is used so ref can never leave dir.
func (s *LocalStore) Delete(_ context.Context, ref string) error {
	name, ok := strings.CutPrefix(ref, LocalPrefix+"/")
	if !ok || name == "" {
		return nil
	}
	name = filepath.Base(filepath.Clean("/" + name))
	if name == "/" || name == "." {
		return nil
	}

	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &domain.StorageError{Op: "remove image file", Err: err}
	}
	return nil
}
