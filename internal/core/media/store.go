// Package media stores uploaded post images on local disk.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// DefaultMaxUploadBytes is the upload limit used by NewStore
const DefaultMaxUploadBytes = 5 << 20

const (
	imagesDir = "posts"
	thumbsDir = "posts/thumbs"
)

// Store writes images under a root directory and serves them back.
// Stored paths are slash-separated and relative to the root, e.g. "posts/<uuid>.gif".
type Store struct {
	root     string
	maxBytes int64
}

// NewStore creates a store rooted at dir
func NewStore(dir string) *Store {
	return &Store{root: dir, maxBytes: DefaultMaxUploadBytes}
}

// MaxUploadBytes is the largest upload Save accepts
func (s *Store) MaxUploadBytes() int64 {
	return s.maxBytes
}

// Save validates the upload, writes it with a fresh name and renders its thumbnail.
// The original filename is only used for logging; the extension comes from the decoded format.
func (s *Store) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return "", fmt.Errorf("%w: limit is %d bytes", ErrImageTooLarge, s.maxBytes)
	}

	img, ext, err := decodeImage(data)
	if err != nil {
		slog.Debug("rejected image upload", "filename", filename, "error", err)
		return "", err
	}

	thumb, err := thumbnail(img)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	stored := path.Join(imagesDir, id+ext)

	if err := s.write(stored, data); err != nil {
		return "", err
	}
	if err := s.write(ThumbnailPath(stored), thumb); err != nil {
		s.removeQuietly(stored)
		return "", err
	}

	slog.Info("stored post image", "path", stored, "filename", filename, "bytes", len(data))
	return stored, nil
}

// Remove deletes an image and its thumbnail. Missing files are not an error.
func (s *Store) Remove(ctx context.Context, stored string) error {
	if stored == "" {
		return nil
	}
	if !isStoredPath(stored) {
		return fmt.Errorf("refusing to remove %q outside the media root", stored)
	}

	for _, p := range []string{stored, ThumbnailPath(stored)} {
		if err := os.Remove(s.abs(p)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove %s: %w", p, err)
		}
	}
	return nil
}

// FileServer serves stored files; mount it with the /media/ prefix stripped
func (s *Store) FileServer() http.Handler {
	return http.FileServer(http.Dir(s.root))
}

// ThumbnailPath returns where the thumbnail for a stored image lives
func ThumbnailPath(stored string) string {
	base := path.Base(stored)
	return path.Join(thumbsDir, strings.TrimSuffix(base, path.Ext(base))+".jpg")
}

func (s *Store) write(stored string, data []byte) error {
	full := s.abs(stored)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("failed to create media directory: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", stored, err)
	}
	return nil
}

func (s *Store) removeQuietly(stored string) {
	if err := os.Remove(s.abs(stored)); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to clean up image", "path", stored, "error", err)
	}
}

func (s *Store) abs(stored string) string {
	return filepath.Join(s.root, filepath.FromSlash(stored))
}

func isStoredPath(p string) bool {
	clean := path.Clean(p)
	return clean == p && strings.HasPrefix(clean, imagesDir+"/") && !strings.Contains(clean, "..")
}
