package handlers

import (
	"net/http"

	"github.com/familygallery/backend/internal/logging"
	"github.com/familygallery/backend/internal/models"
)

// FeedHandler serves the dashboard projections.
type FeedHandler struct {
	Feed     FeedStore
	Users    UserStore
	Sessions SessionManager
}

// Show handles GET /api/v1/feed requests. The three projections are
// recomputed on every call.
func (h FeedHandler) Show(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if _, ok := requireUser(w, r, h.Sessions, h.Users); !ok {
		return
	}

	photos, err := h.Feed.LatestPhotos(ctx)
	if err != nil {
		logger.Error("load latest photos", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to load feed"})
		return
	}

	comments, err := h.Feed.RecentComments(ctx)
	if err != nil {
		logger.Error("load recent comments", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to load feed"})
		return
	}

	reactions, err := h.Feed.RecentReactions(ctx)
	if err != nil {
		logger.Error("load recent reactions", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to load feed"})
		return
	}

	if photos == nil {
		photos = []models.FeedPhoto{}
	}
	if comments == nil {
		comments = []models.FeedComment{}
	}
	if reactions == nil {
		reactions = []models.FeedReaction{}
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{
		"latestPhotos":    photos,
		"recentComments":  comments,
		"recentReactions": reactions,
	})
}
