package repositories

import (
	"context"

	"github.com/familygallery/backend/internal/models"
)

// CommentRepository defines data access for the comment forest of a photo.
type CommentRepository interface {
	Create(ctx context.Context, comment models.Comment) error
	FindByID(ctx context.Context, id string) (models.Comment, error)
	// ListByPhoto returns flat rows newest-first; tree reconstruction is the
	// consumer's job.
	ListByPhoto(ctx context.Context, photoID string) ([]models.Comment, error)
	// Delete removes the comment and its entire reply subtree.
	Delete(ctx context.Context, id string) error
}
