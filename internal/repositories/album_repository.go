package repositories

import (
	"context"

	"github.com/familygallery/backend/internal/models"
)

// AlbumRepository defines data access for albums.
type AlbumRepository interface {
	Create(ctx context.Context, album models.Album) error
	FindByID(ctx context.Context, id string) (models.Album, error)
	// ListVisibleTo returns the viewer's own albums plus every shared album
	// of other users, most recently updated first.
	ListVisibleTo(ctx context.Context, viewerID string) ([]models.AlbumSummary, error)
	Update(ctx context.Context, album models.Album) error
	// Delete removes the album; its photos are detached, not deleted.
	Delete(ctx context.Context, id string) error
}
