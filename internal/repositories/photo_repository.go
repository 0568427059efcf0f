package repositories

import (
	"context"

	"github.com/familygallery/backend/internal/models"
)

// PhotoRepository defines data access for photos.
type PhotoRepository interface {
	Create(ctx context.Context, photo models.Photo) error
	FindByID(ctx context.Context, id string) (models.Photo, error)
	List(ctx context.Context) ([]models.Photo, error)
	UpdateDetails(ctx context.Context, id, title, description string) error
	Delete(ctx context.Context, id string) error
}
