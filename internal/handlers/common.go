package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/familygallery/backend/internal/auth"
	"github.com/familygallery/backend/internal/logging"
	"github.com/familygallery/backend/internal/models"
)

const sessionCookieName = "session"

// errUnauthenticated is returned by authenticate when no valid session
// accompanies the request.
var errUnauthenticated = errors.New("not authenticated")

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.FromContext(ctx).Error("encode response body", "status", status, "error", err)
		return
	}

	logger := logging.FromContext(ctx)
	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("request failed", "status", status, "response", payload)
	case status >= http.StatusBadRequest:
		logger.Warn("request returned client error", "status", status, "response", payload)
	}
}

func setSessionCookie(w http.ResponseWriter, session auth.Session, now time.Time) {
	maxAge := int(session.ExpiresAt.Sub(now).Seconds())
	if maxAge < 0 {
		maxAge = 0
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    session.Token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// authenticate resolves the session cookie to a full user record. It returns
// errUnauthenticated for absent, unknown and expired sessions alike.
func authenticate(ctx context.Context, r *http.Request, sessions SessionManager, users UserStore) (models.User, error) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return models.User{}, errUnauthenticated
	}

	session, err := sessions.Resolve(ctx, cookie.Value)
	if err != nil {
		if errors.Is(err, auth.ErrSessionNotFound) {
			return models.User{}, errUnauthenticated
		}
		return models.User{}, err
	}

	user, err := users.FindByID(ctx, session.UserID)
	if err != nil {
		return models.User{}, errUnauthenticated
	}

	return user, nil
}

// requireUser authenticates the request, writing the 401 (or 500) response
// itself when authentication fails.
func requireUser(w http.ResponseWriter, r *http.Request, sessions SessionManager, users UserStore) (models.User, bool) {
	ctx := r.Context()

	user, err := authenticate(ctx, r, sessions, users)
	if err != nil {
		if errors.Is(err, errUnauthenticated) {
			respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
		} else {
			logging.FromContext(ctx).Error("resolve session", "error", err)
			respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to verify session"})
		}
		return models.User{}, false
	}

	return user, true
}
