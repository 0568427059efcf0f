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

// placeholderEmailDomain is used for accounts provisioned by an admin; the
// real address arrives when the user completes their first login.
const placeholderEmailDomain = "temp.familygallery.local"

// AdminHandler implements the user administration endpoints.
type AdminHandler struct {
	Users    UserStore
	Sessions SessionManager
	NowFunc  func() time.Time
}

// Overview handles GET /api/v1/admin requests: site totals plus every
// account with its contribution counts.
func (h AdminHandler) Overview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if _, ok := h.requireAdmin(w, r); !ok {
		return
	}

	stats, err := h.Users.Stats(ctx)
	if err != nil {
		logger.Error("load site stats", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to load statistics"})
		return
	}

	users, err := h.Users.ListWithCounts(ctx)
	if err != nil {
		logger.Error("list users with counts", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to list users"})
		return
	}

	if users == nil {
		users = []models.UserWithCounts{}
	}
	respondJSON(ctx, w, http.StatusOK, map[string]any{
		"stats": stats,
		"users": users,
	})
}

// CreateUser handles POST /api/v1/admin requests: provision an account with
// no password and a placeholder email. The user completes it on first login.
func (h AdminHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if _, ok := h.requireAdmin(w, r); !ok {
		return
	}

	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid create-user payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.Username = strings.TrimSpace(strings.ToLower(req.Username))
	if req.Username == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "username is required"})
		return
	}

	user := models.User{
		ID:           uuid.NewString(),
		Username:     req.Username,
		Email:        req.Username + "@" + placeholderEmailDomain,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		IsAdmin:      req.IsAdmin,
		IsFirstLogin: true,
		CreatedAt:    h.now(),
	}

	if err := h.Users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			logger.Warn("create-user conflict", "username", req.Username)
			respondJSON(ctx, w, http.StatusConflict, map[string]string{"error": "username is already taken"})
			return
		}
		logger.Error("create user", "error", err, "username", req.Username)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to create user"})
		return
	}

	respondJSON(ctx, w, http.StatusCreated, map[string]any{"user": user})
}

// SetAdminFlag handles PUT /api/v1/admin requests: grant or revoke the admin
// flag. An admin cannot change their own flag.
func (h AdminHandler) SetAdminFlag(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	caller, ok := h.requireAdmin(w, r)
	if !ok {
		return
	}

	var req setAdminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid set-admin payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.UserID == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "userId is required"})
		return
	}

	if err := authz.CanChangeAdminFlag(caller, req.UserID); err != nil {
		if errors.Is(err, authz.ErrSelfAction) {
			respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "Cannot change your own admin status"})
			return
		}
		respondJSON(ctx, w, http.StatusForbidden, map[string]string{"error": "administrator access required"})
		return
	}

	if err := h.Users.SetAdmin(ctx, req.UserID, req.IsAdmin); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "user not found"})
			return
		}
		logger.Error("set admin flag", "error", err, "targetId", req.UserID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to update user"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "user updated"})
}

// DeleteUser handles DELETE /api/v1/admin?userId=&confirm= requests.
// Deletion requires the literal confirmation phrase and never applies to the
// caller's own account.
func (h AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	caller, ok := h.requireAdmin(w, r)
	if !ok {
		return
	}

	userID := r.URL.Query().Get("userId")
	if userID == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "userId is required"})
		return
	}

	if err := authz.CanDeleteUser(caller, userID); err != nil {
		if errors.Is(err, authz.ErrSelfAction) {
			respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "Cannot delete your own account"})
			return
		}
		respondJSON(ctx, w, http.StatusForbidden, map[string]string{"error": "administrator access required"})
		return
	}

	if r.URL.Query().Get("confirm") != authz.DeleteUserConfirmation {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "deletion requires confirmation"})
		return
	}

	if err := h.Users.Delete(ctx, userID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "user not found"})
			return
		}
		logger.Error("delete user", "error", err, "targetId", userID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to delete user"})
		return
	}

	logger.Info("user deleted", "targetId", userID, "adminId", caller.ID)
	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "user deleted"})
}

// requireAdmin authenticates the caller and enforces the admin flag, writing
// the error response itself on failure.
func (h AdminHandler) requireAdmin(w http.ResponseWriter, r *http.Request) (models.User, bool) {
	ctx := r.Context()

	user, ok := requireUser(w, r, h.Sessions, h.Users)
	if !ok {
		return models.User{}, false
	}

	if err := authz.CanManageUsers(user); err != nil {
		respondJSON(ctx, w, http.StatusForbidden, map[string]string{"error": "administrator access required"})
		return models.User{}, false
	}

	return user, true
}

type createUserRequest struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	IsAdmin   bool   `json:"is_admin"`
}

type setAdminRequest struct {
	UserID  string `json:"userId"`
	IsAdmin bool   `json:"isAdmin"`
}

func (h AdminHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
