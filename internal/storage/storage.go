package storage

import (
	"context"
	"io"
)

// FileStore persists photo files and their thumbnails. Save returns the
// public location for the stored object; Remove is best-effort cleanup and
// treats a missing object as success.
type FileStore interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
	Remove(ctx context.Context, name string) error
}
