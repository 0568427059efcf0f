package repositories

import (
	"context"

	"github.com/familygallery/backend/internal/models"
)

// FeedLimit caps each dashboard projection.
const FeedLimit = 6

// FeedRepository exposes the read-only dashboard projections. All three are
// recomputed on every call; read volume is family-scale.
type FeedRepository interface {
	LatestPhotos(ctx context.Context) ([]models.FeedPhoto, error)
	// RecentComments returns at most one comment per photo (the newest),
	// ordered by recency.
	RecentComments(ctx context.Context) ([]models.FeedComment, error)
	RecentReactions(ctx context.Context) ([]models.FeedReaction, error)
}
