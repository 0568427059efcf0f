package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/familygallery/backend/internal/logging"
	"github.com/familygallery/backend/internal/models"
	"github.com/familygallery/backend/internal/repositories"
)

// ReactionHandler implements the photo reaction endpoints. A user holds at
// most one reaction per photo; re-reacting swaps the type.
type ReactionHandler struct {
	Reactions ReactionStore
	Photos    PhotoStore
	Users     UserStore
	Sessions  SessionManager
	NowFunc   func() time.Time
}

// List handles GET /api/v1/reactions?photoId= requests, returning the rows
// plus per-type counts with all five types present.
func (h ReactionHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, ok := requireUser(w, r, h.Sessions, h.Users); !ok {
		return
	}

	photoID := r.URL.Query().Get("photoId")
	if photoID == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "photoId is required"})
		return
	}

	reactions, err := h.Reactions.ListByPhoto(ctx, photoID)
	if err != nil {
		logging.FromContext(ctx).Error("list reactions", "error", err, "photoId", photoID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to list reactions"})
		return
	}

	stored, err := h.Reactions.CountsByType(ctx, photoID)
	if err != nil {
		logging.FromContext(ctx).Error("count reactions", "error", err, "photoId", photoID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to count reactions"})
		return
	}

	counts := make(map[string]int, len(models.ReactionTypes()))
	for _, reactionType := range models.ReactionTypes() {
		counts[reactionType] = stored[reactionType]
	}

	if reactions == nil {
		reactions = []models.Reaction{}
	}
	respondJSON(ctx, w, http.StatusOK, map[string]any{
		"reactions": reactions,
		"counts":    counts,
	})
}

// Set handles POST /api/v1/reactions requests: create or overwrite the
// caller's reaction on a photo.
func (h ReactionHandler) Set(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	user, ok := requireUser(w, r, h.Sessions, h.Users)
	if !ok {
		return
	}

	var req reactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid reaction payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.PhotoID == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "photo_id is required"})
		return
	}
	if !models.ValidReactionType(req.Type) {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid reaction type"})
		return
	}

	if _, err := h.Photos.FindByID(ctx, req.PhotoID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "photo not found"})
			return
		}
		logger.Error("find photo for reaction", "error", err, "photoId", req.PhotoID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to load photo"})
		return
	}

	stored, err := h.Reactions.Set(ctx, models.Reaction{
		ID:        uuid.NewString(),
		PhotoID:   req.PhotoID,
		Type:      req.Type,
		AuthorID:  user.ID,
		Author:    user.Ref(),
		CreatedAt: h.now(),
	})
	if err != nil {
		logger.Error("set reaction", "error", err, "photoId", req.PhotoID, "userId", user.ID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to save reaction"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{"reaction": stored})
}

// Clear handles DELETE /api/v1/reactions?photoId= requests. Idempotent.
func (h ReactionHandler) Clear(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := requireUser(w, r, h.Sessions, h.Users)
	if !ok {
		return
	}

	photoID := r.URL.Query().Get("photoId")
	if photoID == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "photoId is required"})
		return
	}

	if err := h.Reactions.Clear(ctx, photoID, user.ID); err != nil {
		logging.FromContext(ctx).Error("clear reaction", "error", err, "photoId", photoID, "userId", user.ID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to remove reaction"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "reaction removed"})
}

type reactionRequest struct {
	PhotoID string `json:"photo_id"`
	Type    string `json:"type"`
}

func (h ReactionHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
