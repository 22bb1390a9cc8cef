package storage

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/ecommerce-api/internal/core/ports"
)

func TestObjectName(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	re := regexp.MustCompile(`^image-1700000000123-[0-9a-f-]{36}\.png$`)

	assert.Regexp(t, re, ObjectName("image", ".png", now))
	assert.Regexp(t, re, ObjectName("", "png", now))
	assert.NotEqual(t, ObjectName("image", ".png", now), ObjectName("image", ".png", now))
}

func TestLocalStore_SaveAndDelete(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	store, err := NewLocalStore(dir)
	require.NoError(t, err)

	ref, err := store.Save(context.Background(), ports.Image{
		Field:       "image",
		Extension:   ".jpg",
		ContentType: "image/jpeg",
		Body:        strings.NewReader("jpeg-bytes"),
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "uploads/image-"), ref)
	assert.True(t, strings.HasSuffix(ref, ".jpg"), ref)

	data, err := os.ReadFile(filepath.Join(dir, filepath.Base(ref)))
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))

	require.NoError(t, store.Delete(context.Background(), ref))
	_, err = os.Stat(filepath.Join(dir, filepath.Base(ref)))
	assert.True(t, os.IsNotExist(err))

	// Deleting twice is not an error.
	assert.NoError(t, store.Delete(context.Background(), ref))
}

func TestLocalStore_DeleteStaysInsideDir(t *testing.T) {
	root := t.TempDir()
	outside := filepath.Join(root, "keep.txt")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0o644))

	store, err := NewLocalStore(filepath.Join(root, "uploads"))
	require.NoError(t, err)

	for _, ref := range []string{"uploads/../keep.txt", "keep.txt", "https://cdn.example.com/keep.txt", ""} {
		assert.NoError(t, store.Delete(context.Background(), ref), ref)
	}
	_, err = os.Stat(outside)
	assert.NoError(t, err, "file outside the upload dir must survive")
}

func TestLocalStore_SaveCancelled(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = store.Save(ctx, ports.Image{Extension: ".png", Body: strings.NewReader("x")})
	assert.ErrorIs(t, err, context.Canceled)
}
