package handlers

import (
	"bytes"
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

// maxUploadBytes caps the multipart form memory for photo uploads.
const maxUploadBytes = 32 << 20

// PhotoHandler implements the gallery, upload and photo administration
// endpoints.
type PhotoHandler struct {
	Photos    PhotoStore
	Albums    AlbumStore
	Users     UserStore
	Sessions  SessionManager
	Files     FileStore
	Processor ImageProcessor
	NowFunc   func() time.Time
}

// List handles GET /api/v1/photos requests: the whole gallery newest-first.
func (h PhotoHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, ok := requireUser(w, r, h.Sessions, h.Users); !ok {
		return
	}

	photos, err := h.Photos.List(ctx)
	if err != nil {
		logging.FromContext(ctx).Error("list photos", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to list photos"})
		return
	}

	if photos == nil {
		photos = []models.Photo{}
	}
	respondJSON(ctx, w, http.StatusOK, map[string]any{"photos": photos})
}

// Uploaders handles GET /api/v1/photos/uploaders requests: the distinct
// users that have uploaded at least one photo, for the gallery filter.
func (h PhotoHandler) Uploaders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, ok := requireUser(w, r, h.Sessions, h.Users); !ok {
		return
	}

	uploaders, err := h.Users.ListUploaders(ctx)
	if err != nil {
		logging.FromContext(ctx).Error("list uploaders", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to list uploaders"})
		return
	}

	if uploaders == nil {
		uploaders = []models.UserRef{}
	}
	respondJSON(ctx, w, http.StatusOK, map[string]any{"uploaders": uploaders})
}

// Upload handles POST /api/v1/upload multipart requests: decode, recompress,
// store the web image plus thumbnail, then persist the metadata row.
func (h PhotoHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	user, ok := requireUser(w, r, h.Sessions, h.Users)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		logger.Warn("invalid multipart form", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid upload form"})
		return
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "photo file is required"})
		return
	}
	defer file.Close()

	if !strings.HasPrefix(header.Header.Get("Content-Type"), "image/") {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "only image uploads are accepted"})
		return
	}

	category := r.FormValue("category")
	if category == "" {
		category = models.CategoryQuotidien
	}
	if !models.ValidCategory(category) {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid category"})
		return
	}

	var albumID *string
	if value := r.FormValue("album_id"); value != "" {
		album, err := h.Albums.FindByID(ctx, value)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "album does not exist"})
				return
			}
			logger.Error("find album for upload", "error", err, "albumId", value)
			respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to verify album"})
			return
		}
		if !authz.AlbumVisibleTo(user, album) {
			respondJSON(ctx, w, http.StatusForbidden, map[string]string{"error": "album is not accessible"})
			return
		}
		albumID = &album.ID
	}

	var takenAt *time.Time
	if value := r.FormValue("taken_at"); value != "" {
		parsed, err := time.Parse(time.RFC3339, value)
		if err != nil {
			respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "taken_at must be RFC 3339"})
			return
		}
		utc := parsed.UTC()
		takenAt = &utc
	}

	result, err := h.Processor.Process(file)
	if err != nil {
		logger.Warn("process upload", "error", err, "filename", header.Filename)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "unable to process image"})
		return
	}

	filename := uuid.NewString() + ".jpg"
	path, err := h.Files.Save(ctx, filename, bytes.NewReader(result.Image))
	if err != nil {
		logger.Error("store photo file", "error", err, "filename", filename)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to store photo"})
		return
	}

	thumbnailPath, err := h.Files.Save(ctx, "thumbnails/thumb_"+filename, bytes.NewReader(result.Thumbnail))
	if err != nil {
		logger.Error("store thumbnail file", "error", err, "filename", filename)
		if removeErr := h.Files.Remove(ctx, filename); removeErr != nil {
			logger.Warn("cleanup photo file after failed thumbnail", "error", removeErr, "filename", filename)
		}
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to store thumbnail"})
		return
	}

	photo := models.Photo{
		ID:               uuid.NewString(),
		Filename:         filename,
		OriginalFilename: header.Filename,
		Path:             path,
		ThumbnailPath:    thumbnailPath,
		Title:            strings.TrimSpace(r.FormValue("title")),
		Description:      strings.TrimSpace(r.FormValue("description")),
		Category:         category,
		Location:         strings.TrimSpace(r.FormValue("location")),
		TakenAt:          takenAt,
		Width:            result.Width,
		Height:           result.Height,
		Size:             int64(len(result.Image)),
		MimeType:         "image/jpeg",
		AlbumID:          albumID,
		UploadedBy:       user.ID,
		Author:           user.Ref(),
		CreatedAt:        h.now(),
	}

	if err := h.Photos.Create(ctx, photo); err != nil {
		logger.Error("create photo row", "error", err, "photoId", photo.ID)
		for _, name := range []string{filename, "thumbnails/thumb_" + filename} {
			if removeErr := h.Files.Remove(ctx, name); removeErr != nil {
				logger.Warn("cleanup file after failed insert", "error", removeErr, "filename", name)
			}
		}
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to save photo"})
		return
	}

	respondJSON(ctx, w, http.StatusCreated, map[string]any{"photo": photo})
}

// Update handles PUT /api/v1/photos/{id} requests. Admin only.
func (h PhotoHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	user, ok := requireUser(w, r, h.Sessions, h.Users)
	if !ok {
		return
	}

	if err := authz.CanEditPhoto(user); err != nil {
		respondJSON(ctx, w, http.StatusForbidden, map[string]string{"error": "only administrators can edit photos"})
		return
	}

	id := r.PathValue("id")
	photo, err := h.Photos.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "photo not found"})
			return
		}
		logger.Error("find photo", "error", err, "photoId", id)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to load photo"})
		return
	}

	var req photoUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid photo payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	photo.Title = strings.TrimSpace(req.Title)
	photo.Description = strings.TrimSpace(req.Description)

	if err := h.Photos.UpdateDetails(ctx, photo.ID, photo.Title, photo.Description); err != nil {
		logger.Error("update photo", "error", err, "photoId", photo.ID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to update photo"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{"photo": photo})
}

// Delete handles DELETE /api/v1/photos/{id} requests. Admin only. File
// removal is fallible and non-fatal: failures are logged and the database
// row is removed regardless.
func (h PhotoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	user, ok := requireUser(w, r, h.Sessions, h.Users)
	if !ok {
		return
	}

	if err := authz.CanDeletePhoto(user); err != nil {
		respondJSON(ctx, w, http.StatusForbidden, map[string]string{"error": "only administrators can delete photos"})
		return
	}

	id := r.PathValue("id")
	photo, err := h.Photos.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "photo not found"})
			return
		}
		logger.Error("find photo", "error", err, "photoId", id)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to load photo"})
		return
	}

	for _, name := range []string{photo.Filename, "thumbnails/thumb_" + photo.Filename} {
		if err := h.Files.Remove(ctx, name); err != nil {
			logger.Warn("remove photo file", "error", err, "filename", name, "photoId", photo.ID)
		}
	}

	if err := h.Photos.Delete(ctx, photo.ID); err != nil {
		logger.Error("delete photo row", "error", err, "photoId", photo.ID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to delete photo"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "photo deleted"})
}

type photoUpdateRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (h PhotoHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
