package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalUploaderWritesAndReturnsServingPath(t *testing.T) {
	dir := t.TempDir()
	u := NewLocalUploader(dir)

	url, err := u.UploadImage(context.Background(), "evidence.jpg", []byte("fake-jpeg-bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/"))
	assert.True(t, strings.HasSuffix(url, ".jpg"))

	rel := strings.TrimPrefix(url, "/uploads/")
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
	require.NoError(t, err)
	assert.Equal(t, []byte("fake-jpeg-bytes"), data)
}

func TestLocalUploaderDistinctNamesForSameFilename(t *testing.T) {
	u := NewLocalUploader(t.TempDir())

	a, err := u.UploadImage(context.Background(), "photo.png", []byte("a"))
	require.NoError(t, err)
	b, err := u.UploadImage(context.Background(), "photo.png", []byte("b"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasSuffix(a, ".png"))
}

func TestObjectNameDefaultsExtension(t *testing.T) {
	now := time.Date(2026, 2, 14, 10, 0, 0, 0, time.UTC)
	name := objectName("no-extension", now)
	assert.True(t, strings.HasPrefix(name, "2026/02/14/"))
	assert.True(t, strings.HasSuffix(name, ".jpg"))
}

func TestContentTypeFor(t *testing.T) {
	assert.Equal(t, "image/png", contentTypeFor("a.PNG"))
	assert.Equal(t, "image/webp", contentTypeFor("b.webp"))
	assert.Equal(t, "image/jpeg", contentTypeFor("c.jpeg"))
	assert.Equal(t, "image/jpeg", contentTypeFor("noext"))
}
