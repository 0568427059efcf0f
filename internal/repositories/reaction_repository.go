package repositories

import (
	"context"

	"github.com/familygallery/backend/internal/models"
)

// ReactionRepository defines data access for photo reactions. The
// at-most-one-reaction-per-user-per-photo invariant is enforced by the
// storage layer's uniqueness constraint, not by application logic.
type ReactionRepository interface {
	// Set upserts the caller's reaction: an existing (photo, user) row has
	// its type overwritten and timestamp refreshed.
	Set(ctx context.Context, reaction models.Reaction) (models.Reaction, error)
	// Clear removes the caller's reaction if present. Idempotent.
	Clear(ctx context.Context, photoID, userID string) error
	ListByPhoto(ctx context.Context, photoID string) ([]models.Reaction, error)
	CountsByType(ctx context.Context, photoID string) (map[string]int, error)
}
