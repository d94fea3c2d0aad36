package media

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// smallGIF is a valid 2x1 GIF
var smallGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x02, 0x00,
	0x01, 0x00, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00,
	0xFF, 0xFF, 0xFF, 0x21, 0xF9, 0x04, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x2C, 0x00, 0x00, 0x00, 0x00,
	0x02, 0x00, 0x01, 0x00, 0x00, 0x02, 0x02, 0x0C,
	0x0A, 0x00, 0x3B,
}

func TestSave_GIF(t *testing.T) {
	root := t.TempDir()
	store := NewStore(root)

	stored, err := store.Save(context.Background(), "small.gif", bytes.NewReader(smallGIF))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stored, "posts/"))
	assert.True(t, strings.HasSuffix(stored, ".gif"))

	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(stored)))
	require.NoError(t, err)
	assert.Equal(t, smallGIF, data)

	thumbFile, err := os.Open(filepath.Join(root, filepath.FromSlash(ThumbnailPath(stored))))
	require.NoError(t, err)
	defer func() { _ = thumbFile.Close() }()
	cfg, format, err := image.DecodeConfig(thumbFile)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, ThumbnailWidth, cfg.Width)
	assert.Equal(t, ThumbnailHeight, cfg.Height)
}

func TestSave_ExtensionFromContent(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	store := NewStore(t.TempDir())
	stored, err := store.Save(context.Background(), "photo.gif", &buf)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(stored, ".png"))
}

func TestSave_RejectsNonImage(t *testing.T) {
	store := NewStore(t.TempDir())

	_, err := store.Save(context.Background(), "notes.txt", strings.NewReader("just text"))
	assert.ErrorIs(t, err, ErrInvalidImage)
	assert.True(t, IsInvalidUpload(err))

	_, err = store.Save(context.Background(), "empty.gif", bytes.NewReader(nil))
	assert.ErrorIs(t, err, ErrInvalidImage)
}

func TestSave_TooLarge(t *testing.T) {
	store := NewStore(t.TempDir())
	store.maxBytes = 10

	_, err := store.Save(context.Background(), "small.gif", bytes.NewReader(smallGIF))
	assert.ErrorIs(t, err, ErrImageTooLarge)
}

func TestRemove(t *testing.T) {
	root := t.TempDir()
	store := NewStore(root)
	ctx := context.Background()

	stored, err := store.Save(ctx, "small.gif", bytes.NewReader(smallGIF))
	require.NoError(t, err)

	require.NoError(t, store.Remove(ctx, stored))
	_, err = os.Stat(filepath.Join(root, filepath.FromSlash(stored)))
	assert.True(t, os.IsNotExist(err))

	// Removing twice is fine
	assert.NoError(t, store.Remove(ctx, stored))
	assert.NoError(t, store.Remove(ctx, ""))
	assert.Error(t, store.Remove(ctx, "../secret"))
}

func TestFileServer(t *testing.T) {
	store := NewStore(t.TempDir())
	stored, err := store.Save(context.Background(), "small.gif", bytes.NewReader(smallGIF))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/"+stored, nil)
	w := httptest.NewRecorder()
	store.FileServer().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, smallGIF, w.Body.Bytes())
}

func TestThumbnailPath(t *testing.T) {
	assert.Equal(t, "posts/thumbs/abc.jpg", ThumbnailPath("posts/abc.gif"))
	assert.Equal(t, "posts/thumbs/abc.jpg", ThumbnailPath("posts/abc.jpg"))
}
