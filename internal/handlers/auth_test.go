package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/familygallery/backend/internal/models"
)

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return string(hashed)
}

func sessionCookieFrom(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == sessionCookieName {
			return cookie
		}
	}
	return nil
}

func TestAuthHandlerFirstLoginFlow(t *testing.T) {
	store := newInMemoryUserStore()
	manager, _ := newTestSession("ignored")
	handler := AuthHandler{Users: store, Sessions: manager}

	store.users["bob-id"] = models.User{
		ID:           "bob-id",
		Username:     "bob",
		Email:        "bob@temp.familygallery.local",
		IsFirstLogin: true,
	}

	login := func(username, password string) *httptest.ResponseRecorder {
		body, _ := json.Marshal(loginRequest{Username: username, Password: password})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
		rec := httptest.NewRecorder()
		handler.Login(rec, req)
		return rec
	}

	if rec := login("bob", "anything"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unprovisioned account, got %d", rec.Code)
	}

	body, _ := json.Marshal(setPasswordRequest{Username: "bob", Email: "bob@x.com", Password: "longpass1"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/set-password", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.SetPassword(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected set-password to succeed, got %d: %s", rec.Code, rec.Body.String())
	}

	stored, err := store.FindByID(context.Background(), "bob-id")
	if err != nil {
		t.Fatalf("find bob: %v", err)
	}
	if stored.IsFirstLogin {
		t.Fatal("expected first-login flag cleared")
	}
	if stored.Email != "bob@x.com" {
		t.Fatalf("expected email replaced, got %s", stored.Email)
	}
	if bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("longpass1")) != nil {
		t.Fatal("stored password is not a hash of the supplied password")
	}

	rec = login("bob", "longpass1")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected login to succeed after provisioning, got %d", rec.Code)
	}

	cookie := sessionCookieFrom(t, rec)
	if cookie == nil || cookie.Value == "" {
		t.Fatal("expected session cookie on successful login")
	}
	if !cookie.HttpOnly || cookie.SameSite != http.SameSiteLaxMode {
		t.Fatalf("unexpected cookie attributes: %+v", cookie)
	}

	if stored, _ = store.FindByID(context.Background(), "bob-id"); stored.LastLogin == nil {
		t.Fatal("expected last_login recorded")
	}
}

func TestAuthHandlerLoginByEmail(t *testing.T) {
	store := newInMemoryUserStore()
	manager, _ := newTestSession("ignored")
	handler := AuthHandler{Users: store, Sessions: manager}

	store.users["alice-id"] = models.User{
		ID:           "alice-id",
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: hashPassword(t, "password123"),
	}

	body, _ := json.Marshal(loginRequest{Username: "alice@example.com", Password: "password123"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.Login(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected email login to succeed, got %d", rec.Code)
	}
}

func TestAuthHandlerLoginRejectsWrongPassword(t *testing.T) {
	store := newInMemoryUserStore()
	manager, _ := newTestSession("ignored")
	handler := AuthHandler{Users: store, Sessions: manager}

	store.users["alice-id"] = models.User{
		ID:           "alice-id",
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: hashPassword(t, "password123"),
	}

	for _, attempt := range []loginRequest{
		{Username: "alice", Password: "wrong"},
		{Username: "nobody", Password: "password123"},
	} {
		body, _ := json.Marshal(attempt)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
		rec := httptest.NewRecorder()
		handler.Login(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 for %q, got %d", attempt.Username, rec.Code)
		}
		if cookie := sessionCookieFrom(t, rec); cookie != nil {
			t.Fatal("expected no session cookie on failed login")
		}
	}
}

func TestAuthHandlerSetPasswordValidation(t *testing.T) {
	store := newInMemoryUserStore()
	manager, _ := newTestSession("ignored")
	handler := AuthHandler{Users: store, Sessions: manager}

	store.users["bob-id"] = models.User{ID: "bob-id", Username: "bob", Email: "bob@temp.familygallery.local", IsFirstLogin: true}
	store.users["eve-id"] = models.User{ID: "eve-id", Username: "eve", Email: "taken@example.com"}

	cases := []struct {
		name string
		req  setPasswordRequest
		want int
	}{
		{"short password", setPasswordRequest{Username: "bob", Email: "bob@x.com", Password: "short"}, http.StatusBadRequest},
		{"unknown username", setPasswordRequest{Username: "ghost", Email: "ghost@x.com", Password: "longpass1"}, http.StatusNotFound},
		{"taken email", setPasswordRequest{Username: "bob", Email: "taken@example.com", Password: "longpass1"}, http.StatusBadRequest},
		{"missing email", setPasswordRequest{Username: "bob", Password: "longpass1"}, http.StatusBadRequest},
	}

	for _, tc := range cases {
		body, _ := json.Marshal(tc.req)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/set-password", bytes.NewReader(body))
		rec := httptest.NewRecorder()
		handler.SetPassword(rec, req)
		if rec.Code != tc.want {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.want, rec.Code)
		}
	}

	if user, _ := store.FindByID(context.Background(), "bob-id"); !user.IsFirstLogin {
		t.Fatal("failed attempts must not flip the first-login flag")
	}
}

func TestAuthHandlerSessionEndpoint(t *testing.T) {
	store := newInMemoryUserStore()
	store.users["u1"] = models.User{ID: "u1", Username: "alice"}
	manager, session := newTestSession("u1")
	handler := AuthHandler{Users: store, Sessions: manager}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/session", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: session.Token})
	rec := httptest.NewRecorder()
	handler.Session(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		User      *models.User `json:"user"`
		ExpiresAt time.Time    `json:"expires_at"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.User == nil || resp.User.ID != "u1" {
		t.Fatalf("expected user u1, got %+v", resp.User)
	}
	if resp.ExpiresAt.IsZero() {
		t.Fatal("expected session expiry in response")
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/auth/session", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "bogus"})
	rec = httptest.NewRecorder()
	handler.Session(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for unknown token, got %d", rec.Code)
	}
	var nullResp map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&nullResp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if nullResp["user"] != nil {
		t.Fatalf("expected null user, got %v", nullResp["user"])
	}
	cookie := sessionCookieFrom(t, rec)
	if cookie == nil || cookie.MaxAge >= 0 {
		t.Fatal("expected invalid cookie to be cleared")
	}
}

func TestAuthHandlerLogoutIsIdempotent(t *testing.T) {
	store := newInMemoryUserStore()
	store.users["u1"] = models.User{ID: "u1", Username: "alice"}
	manager, session := newTestSession("u1")
	handler := AuthHandler{Users: store, Sessions: manager}

	logout := func(withCookie bool) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
		if withCookie {
			req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: session.Token})
		}
		rec := httptest.NewRecorder()
		handler.Logout(rec, req)
		return rec
	}

	if rec := logout(true); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if _, err := manager.Resolve(context.Background(), session.Token); err == nil {
		t.Fatal("expected session revoked after logout")
	}
	if rec := logout(true); rec.Code != http.StatusOK {
		t.Fatalf("expected repeated logout to succeed, got %d", rec.Code)
	}
	if rec := logout(false); rec.Code != http.StatusOK {
		t.Fatalf("expected logout without cookie to succeed, got %d", rec.Code)
	}
}

func TestAuthHandlerRosterExcludesAdmins(t *testing.T) {
	store := newInMemoryUserStore()
	store.users["a"] = models.User{ID: "a", Username: "admin", IsAdmin: true}
	store.users["b"] = models.User{ID: "b", Username: "bob", FirstName: "Bob", IsFirstLogin: true}
	manager, _ := newTestSession("ignored")
	handler := AuthHandler{Users: store, Sessions: manager}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/users", nil)
	rec := httptest.NewRecorder()
	handler.Roster(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		Users []rosterEntry `json:"users"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Users) != 1 || resp.Users[0].Username != "bob" {
		t.Fatalf("expected only bob in the roster, got %+v", resp.Users)
	}
	if !resp.Users[0].IsFirstLogin {
		t.Fatal("expected first-login flag surfaced to the login screen")
	}
}

type denyAllLimiter struct{}

func (denyAllLimiter) Allow(string) bool { return false }

func TestAuthHandlerLoginRateLimited(t *testing.T) {
	store := newInMemoryUserStore()
	manager, _ := newTestSession("ignored")
	handler := AuthHandler{Users: store, Sessions: manager, LoginLimiter: denyAllLimiter{}}

	body, _ := json.Marshal(loginRequest{Username: "alice", Password: "password123"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.Login(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
}

func TestAuthHandlerSetPasswordRateLimited(t *testing.T) {
	store := newInMemoryUserStore()
	store.users["bob-id"] = models.User{ID: "bob-id", Username: "bob", Email: "bob@temp.familygallery.local", IsFirstLogin: true}
	manager, _ := newTestSession("ignored")
	handler := AuthHandler{Users: store, Sessions: manager, LoginLimiter: denyAllLimiter{}}

	body, _ := json.Marshal(setPasswordRequest{Username: "bob", Email: "bob@x.com", Password: "longpass1"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/set-password", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.SetPassword(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if user, _ := store.FindByID(context.Background(), "bob-id"); !user.IsFirstLogin || user.PasswordHash != "" {
		t.Fatal("throttled attempt must not claim the account")
	}
}

func TestAuthHandlerLoginIdentifierCaseInsensitive(t *testing.T) {
	store := newInMemoryUserStore()
	manager, _ := newTestSession("ignored")
	handler := AuthHandler{Users: store, Sessions: manager}

	store.users["alice-id"] = models.User{
		ID:           "alice-id",
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: hashPassword(t, "password123"),
	}

	for _, identifier := range []string{"Alice", "ALICE@Example.com", "  alice  "} {
		body, _ := json.Marshal(loginRequest{Username: identifier, Password: "password123"})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
		rec := httptest.NewRecorder()
		handler.Login(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected login with %q to succeed, got %d", identifier, rec.Code)
		}
	}
}
