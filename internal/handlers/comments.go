package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/familygallery/backend/internal/authz"
	"github.com/familygallery/backend/internal/comments"
	"github.com/familygallery/backend/internal/logging"
	"github.com/familygallery/backend/internal/models"
	"github.com/familygallery/backend/internal/repositories"
)

// CommentHandler implements the comment thread endpoints.
type CommentHandler struct {
	Comments CommentStore
	Photos   PhotoStore
	Users    UserStore
	Sessions SessionManager
	NowFunc  func() time.Time
}

// List handles GET /api/v1/comments?photoId= requests, returning the photo's
// comment forest with replies nested under their parents.
func (h CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, ok := requireUser(w, r, h.Sessions, h.Users); !ok {
		return
	}

	photoID := r.URL.Query().Get("photoId")
	if photoID == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "photoId is required"})
		return
	}

	rows, err := h.Comments.ListByPhoto(ctx, photoID)
	if err != nil {
		logging.FromContext(ctx).Error("list comments", "error", err, "photoId", photoID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to list comments"})
		return
	}

	forest := comments.BuildForest(rows)
	if forest == nil {
		forest = []*comments.Node{}
	}
	respondJSON(ctx, w, http.StatusOK, map[string]any{"comments": forest})
}

// Create handles POST /api/v1/comments requests for both root comments and
// replies.
func (h CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	user, ok := requireUser(w, r, h.Sessions, h.Users)
	if !ok {
		return
	}

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid comment payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.Content = strings.TrimSpace(req.Content)
	if req.PhotoID == "" || req.Content == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "photo_id and content are required"})
		return
	}

	if _, err := h.Photos.FindByID(ctx, req.PhotoID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "photo not found"})
			return
		}
		logger.Error("find photo for comment", "error", err, "photoId", req.PhotoID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to load photo"})
		return
	}

	if req.ParentID != nil && *req.ParentID != "" {
		parent, err := h.Comments.FindByID(ctx, *req.ParentID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "parent comment not found"})
				return
			}
			logger.Error("find parent comment", "error", err, "parentId", *req.ParentID)
			respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to load parent comment"})
			return
		}
		if parent.PhotoID != req.PhotoID {
			respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "parent comment belongs to another photo"})
			return
		}
	} else {
		req.ParentID = nil
	}

	now := h.now()
	comment := models.Comment{
		ID:        uuid.NewString(),
		PhotoID:   req.PhotoID,
		Content:   req.Content,
		ParentID:  req.ParentID,
		AuthorID:  user.ID,
		Author:    user.Ref(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.Comments.Create(ctx, comment); err != nil {
		logger.Error("create comment", "error", err, "photoId", req.PhotoID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to create comment"})
		return
	}

	respondJSON(ctx, w, http.StatusCreated, map[string]any{"comment": comment})
}

// Delete handles DELETE /api/v1/comments?commentId= requests. Owner or admin
// only; the whole reply subtree goes with the comment.
func (h CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	user, ok := requireUser(w, r, h.Sessions, h.Users)
	if !ok {
		return
	}

	commentID := r.URL.Query().Get("commentId")
	if commentID == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "commentId is required"})
		return
	}

	comment, err := h.Comments.FindByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "comment not found"})
			return
		}
		logger.Error("find comment", "error", err, "commentId", commentID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to load comment"})
		return
	}

	if err := authz.CanDeleteComment(user, comment); err != nil {
		respondJSON(ctx, w, http.StatusForbidden, map[string]string{"error": "you cannot delete this comment"})
		return
	}

	if err := h.Comments.Delete(ctx, commentID); err != nil {
		logger.Error("delete comment", "error", err, "commentId", commentID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to delete comment"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "comment deleted"})
}

type commentRequest struct {
	PhotoID  string  `json:"photo_id"`
	Content  string  `json:"content"`
	ParentID *string `json:"parent_id"`
}

func (h CommentHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
