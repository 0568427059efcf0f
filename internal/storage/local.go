package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalStorage writes photo files under a directory on the local disk and
// serves them from a public URL prefix.
type LocalStorage struct {
	dir        string
	publicPath string
}

// NewLocalStorage prepares the upload directory, creating it (and the
// thumbnails subdirectory) if needed.
func NewLocalStorage(dir, publicPath string) (*LocalStorage, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("local storage: directory is required")
	}

	if err := os.MkdirAll(filepath.Join(dir, "thumbnails"), 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}

	return &LocalStorage{
		dir:        dir,
		publicPath: strings.TrimSuffix(publicPath, "/"),
	}, nil
}

// Save writes the content to disk and returns its public location.
func (s *LocalStorage) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	key, err := s.cleanKey(name)
	if err != nil {
		return "", err
	}

	target := filepath.Join(s.dir, filepath.FromSlash(key))
	file, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("local storage create %s: %w", key, err)
	}

	if _, err := io.Copy(file, r); err != nil {
		file.Close()
		os.Remove(target)
		return "", fmt.Errorf("local storage write %s: %w", key, err)
	}

	if err := file.Close(); err != nil {
		os.Remove(target)
		return "", fmt.Errorf("local storage close %s: %w", key, err)
	}

	return s.publicPath + "/" + key, nil
}

// Remove deletes the file if it exists.
func (s *LocalStorage) Remove(ctx context.Context, name string) error {
	key, err := s.cleanKey(name)
	if err != nil {
		return err
	}

	if err := os.Remove(filepath.Join(s.dir, filepath.FromSlash(key))); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("local storage remove %s: %w", key, err)
	}
	return nil
}

// cleanKey rejects names that would escape the upload directory.
func (s *LocalStorage) cleanKey(name string) (string, error) {
	key := strings.TrimLeft(name, "/")
	if key == "" {
		return "", fmt.Errorf("local storage: empty key")
	}
	cleaned := path.Clean(key)
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("local storage: invalid key %q", name)
	}
	return cleaned, nil
}

var _ FileStore = (*LocalStorage)(nil)
