package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/familygallery/backend/internal/auth"
	"github.com/familygallery/backend/internal/logging"
	"github.com/familygallery/backend/internal/repositories"
)

// AuthHandler implements login, logout and the first-login provisioning flow.
type AuthHandler struct {
	Users        UserStore
	Sessions     SessionManager
	LoginLimiter RateLimiter
	NowFunc      func() time.Time
}

// Login handles POST /api/v1/auth/login requests. The login field matches
// either username or email. Accounts still in their first-login state have no
// usable password and are always rejected.
func (h AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if !allowRequest(h.LoginLimiter, r, "login") {
		logger.Warn("login rate limited", "ip", clientIP(r))
		respondJSON(ctx, w, http.StatusTooManyRequests, map[string]string{"error": "too many login attempts"})
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid login payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	// Usernames and emails are stored lowercased, so the identifier is
	// matched case-insensitively.
	req.Username = strings.ToLower(strings.TrimSpace(req.Username))
	if req.Username == "" || req.Password == "" {
		logger.Warn("login missing credentials", "username", req.Username)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "username and password are required"})
		return
	}

	user, err := h.Users.FindByLogin(ctx, req.Username)
	if err != nil {
		logger.Warn("login user lookup failed", "username", req.Username, "error", err)
		respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		return
	}

	if user.IsFirstLogin || user.PasswordHash == "" {
		logger.Warn("login attempt on unprovisioned account", "userId", user.ID)
		respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		logger.Warn("login password mismatch", "userId", user.ID)
		respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		return
	}

	session, err := h.Sessions.Create(ctx, user.ID)
	if err != nil {
		logger.Error("failed to create session", "error", err, "userId", user.ID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to create session"})
		return
	}

	if err := h.Users.TouchLastLogin(ctx, user.ID); err != nil {
		logger.Warn("failed to record last login", "error", err, "userId", user.ID)
	}

	setSessionCookie(w, session, h.now())
	respondJSON(ctx, w, http.StatusOK, map[string]any{"user": user})
}

// Logout handles POST /api/v1/auth/logout requests. Idempotent: logging out
// without a session still clears the cookie and succeeds.
func (h AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		h.Sessions.Delete(ctx, cookie.Value)
	}

	clearSessionCookie(w)
	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "logged out"})
}

// Session handles GET /api/v1/auth/session requests. An invalid or expired
// cookie yields a null user and clears the cookie rather than an error.
func (h AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		respondJSON(ctx, w, http.StatusOK, map[string]any{"user": nil})
		return
	}

	session, err := h.Sessions.Resolve(ctx, cookie.Value)
	if err != nil {
		if errors.Is(err, auth.ErrSessionNotFound) {
			clearSessionCookie(w)
			respondJSON(ctx, w, http.StatusOK, map[string]any{"user": nil})
			return
		}
		logger.Error("resolve session", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to verify session"})
		return
	}

	user, err := h.Users.FindByID(ctx, session.UserID)
	if err != nil {
		clearSessionCookie(w)
		respondJSON(ctx, w, http.StatusOK, map[string]any{"user": nil})
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{
		"user":       user,
		"expires_at": session.ExpiresAt,
	})
}

// SetPassword handles POST /api/v1/auth/set-password requests: the one-time
// transition from a provisioned account to a usable one.
func (h AuthHandler) SetPassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if !allowRequest(h.LoginLimiter, r, "set-password") {
		logger.Warn("set-password rate limited", "ip", clientIP(r))
		respondJSON(ctx, w, http.StatusTooManyRequests, map[string]string{"error": "too many attempts"})
		return
	}

	var req setPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid set-password payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.Username = strings.ToLower(strings.TrimSpace(req.Username))
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Username == "" || req.Email == "" || req.Password == "" {
		logger.Warn("set-password missing fields", "username", req.Username)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "username, email and password are required"})
		return
	}

	if _, err := mail.ParseAddress(req.Email); err != nil {
		logger.Warn("set-password invalid email", "email", req.Email, "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid email address"})
		return
	}

	if len(req.Password) < 8 {
		logger.Warn("set-password password too short", "username", req.Username)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "password must be at least 8 characters"})
		return
	}

	user, err := h.Users.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			logger.Warn("set-password unknown username", "username", req.Username)
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "user not found"})
			return
		}
		logger.Error("set-password user lookup failed", "error", err, "username", req.Username)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to look up account"})
		return
	}

	taken, err := h.Users.EmailTakenByOther(ctx, req.Email, user.ID)
	if err != nil {
		logger.Error("set-password email check failed", "error", err, "email", req.Email)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to verify email"})
		return
	}
	if taken {
		logger.Warn("set-password email taken", "email", req.Email)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "email is already in use"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("set-password failed to hash password", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to secure password"})
		return
	}

	if err := h.Users.SetPassword(ctx, user.ID, req.Email, string(hashed)); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			logger.Warn("set-password email conflict", "email", req.Email)
			respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "email is already in use"})
			return
		}
		logger.Error("set-password update failed", "error", err, "userId", user.ID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to set password"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "password set"})
}

// CheckFirstLogin handles GET /api/v1/auth/check-first-login?email= requests,
// the provisioning probe used by the login screen.
func (h AuthHandler) CheckFirstLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	email := strings.TrimSpace(strings.ToLower(r.URL.Query().Get("email")))
	if email == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "email is required"})
		return
	}

	user, err := h.Users.FindByLogin(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "user not found"})
			return
		}
		logging.FromContext(ctx).Error("check-first-login lookup failed", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to look up account"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{"isFirstLogin": user.IsFirstLogin})
}

// Roster handles GET /api/v1/auth/users requests: the unauthenticated minimal
// user list shown on the login screen. Admin accounts are excluded.
func (h AuthHandler) Roster(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	users, err := h.Users.ListRoster(ctx)
	if err != nil {
		logging.FromContext(ctx).Error("list roster", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to list users"})
		return
	}

	roster := make([]rosterEntry, 0, len(users))
	for _, user := range users {
		roster = append(roster, rosterEntry{
			Username:     user.Username,
			FirstName:    user.FirstName,
			LastName:     user.LastName,
			AvatarURL:    user.AvatarURL,
			IsFirstLogin: user.IsFirstLogin,
		})
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{"users": roster})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type setPasswordRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type rosterEntry struct {
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	AvatarURL    string `json:"avatar_url"`
	IsFirstLogin bool   `json:"is_first_login"`
}

func (h AuthHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
