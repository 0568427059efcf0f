package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/familygallery/backend/internal/authz"
	"github.com/familygallery/backend/internal/logging"
	"github.com/familygallery/backend/internal/models"
	"github.com/familygallery/backend/internal/repositories"
)

// AlbumHandler implements the album CRUD endpoints. Modification is strictly
// owner-only; admins get no override here.
type AlbumHandler struct {
	Albums   AlbumStore
	Photos   PhotoStore
	Users    UserStore
	Sessions SessionManager
	NowFunc  func() time.Time
}

// List handles GET /api/v1/albums requests: the caller's own albums plus
// shared albums of other users.
func (h AlbumHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := requireUser(w, r, h.Sessions, h.Users)
	if !ok {
		return
	}

	albums, err := h.Albums.ListVisibleTo(ctx, user.ID)
	if err != nil {
		logging.FromContext(ctx).Error("list albums", "error", err, "userId", user.ID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to list albums"})
		return
	}

	if albums == nil {
		albums = []models.AlbumSummary{}
	}
	respondJSON(ctx, w, http.StatusOK, map[string]any{"albums": albums})
}

// Create handles POST /api/v1/albums requests.
func (h AlbumHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	user, ok := requireUser(w, r, h.Sessions, h.Users)
	if !ok {
		return
	}

	var req albumRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid album payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "title is required"})
		return
	}

	now := h.now()
	album := models.Album{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: strings.TrimSpace(req.Description),
		OwnerID:     user.ID,
		IsShared:    req.IsShared,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.Albums.Create(ctx, album); err != nil {
		logger.Error("create album", "error", err, "userId", user.ID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to create album"})
		return
	}

	respondJSON(ctx, w, http.StatusCreated, map[string]any{"album": album})
}

// Update handles PUT /api/v1/albums/{id} requests.
func (h AlbumHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	user, ok := requireUser(w, r, h.Sessions, h.Users)
	if !ok {
		return
	}

	album, ok := h.loadOwnedAlbum(w, r, user)
	if !ok {
		return
	}

	var req albumRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid album payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "title is required"})
		return
	}

	if req.CoverPhotoID != nil && *req.CoverPhotoID != "" {
		if _, err := h.Photos.FindByID(ctx, *req.CoverPhotoID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "cover photo does not exist"})
				return
			}
			logger.Error("verify cover photo", "error", err, "photoId", *req.CoverPhotoID)
			respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to verify cover photo"})
			return
		}
		album.CoverPhotoID = req.CoverPhotoID
	} else {
		album.CoverPhotoID = nil
	}

	album.Title = req.Title
	album.Description = strings.TrimSpace(req.Description)
	album.IsShared = req.IsShared

	if err := h.Albums.Update(ctx, album); err != nil {
		logger.Error("update album", "error", err, "albumId", album.ID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to update album"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{"album": album})
}

// Delete handles DELETE /api/v1/albums/{id} requests. Photos in the album
// are detached, not deleted.
func (h AlbumHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := requireUser(w, r, h.Sessions, h.Users)
	if !ok {
		return
	}

	album, ok := h.loadOwnedAlbum(w, r, user)
	if !ok {
		return
	}

	if err := h.Albums.Delete(ctx, album.ID); err != nil {
		logging.FromContext(ctx).Error("delete album", "error", err, "albumId", album.ID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to delete album"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "album deleted"})
}

// loadOwnedAlbum fetches the album in the path and enforces the strict-owner
// rule, writing the error response itself on failure.
func (h AlbumHandler) loadOwnedAlbum(w http.ResponseWriter, r *http.Request, user models.User) (models.Album, bool) {
	ctx := r.Context()

	id := r.PathValue("id")
	if id == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "album id is required"})
		return models.Album{}, false
	}

	album, err := h.Albums.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "album not found"})
			return models.Album{}, false
		}
		logging.FromContext(ctx).Error("find album", "error", err, "albumId", id)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to load album"})
		return models.Album{}, false
	}

	if err := authz.CanModifyAlbum(user, album); err != nil {
		respondJSON(ctx, w, http.StatusForbidden, map[string]string{"error": "only the album owner can modify it"})
		return models.Album{}, false
	}

	return album, true
}

type albumRequest struct {
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	IsShared     bool    `json:"is_shared"`
	CoverPhotoID *string `json:"cover_photo_id"`
}

func (h AlbumHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
