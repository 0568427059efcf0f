package handlers

import (
	"net/http"
	"time"
)

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Users        UserStore
	Sessions     SessionManager
	Albums       AlbumStore
	Photos       PhotoStore
	Comments     CommentStore
	Reactions    ReactionStore
	Feed         FeedStore
	Files        FileStore
	Processor    ImageProcessor
	LoginLimiter RateLimiter
	NowFunc      func() time.Time
}

// RegisterRoutes wires HTTP handlers into the provided ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{}
	auth := AuthHandler{Users: deps.Users, Sessions: deps.Sessions, LoginLimiter: deps.LoginLimiter, NowFunc: deps.NowFunc}
	albums := AlbumHandler{Albums: deps.Albums, Photos: deps.Photos, Users: deps.Users, Sessions: deps.Sessions, NowFunc: deps.NowFunc}
	comments := CommentHandler{Comments: deps.Comments, Photos: deps.Photos, Users: deps.Users, Sessions: deps.Sessions, NowFunc: deps.NowFunc}
	reactions := ReactionHandler{Reactions: deps.Reactions, Photos: deps.Photos, Users: deps.Users, Sessions: deps.Sessions, NowFunc: deps.NowFunc}
	photos := PhotoHandler{Photos: deps.Photos, Albums: deps.Albums, Users: deps.Users, Sessions: deps.Sessions, Files: deps.Files, Processor: deps.Processor, NowFunc: deps.NowFunc}
	admin := AdminHandler{Users: deps.Users, Sessions: deps.Sessions, NowFunc: deps.NowFunc}
	feed := FeedHandler{Feed: deps.Feed, Users: deps.Users, Sessions: deps.Sessions}

	mux.HandleFunc("GET /healthz", health.Handle)

	mux.HandleFunc("POST /api/v1/auth/login", auth.Login)
	mux.HandleFunc("POST /api/v1/auth/logout", auth.Logout)
	mux.HandleFunc("GET /api/v1/auth/session", auth.Session)
	mux.HandleFunc("POST /api/v1/auth/set-password", auth.SetPassword)
	mux.HandleFunc("GET /api/v1/auth/check-first-login", auth.CheckFirstLogin)
	mux.HandleFunc("GET /api/v1/auth/users", auth.Roster)

	mux.HandleFunc("GET /api/v1/albums", albums.List)
	mux.HandleFunc("POST /api/v1/albums", albums.Create)
	mux.HandleFunc("PUT /api/v1/albums/{id}", albums.Update)
	mux.HandleFunc("DELETE /api/v1/albums/{id}", albums.Delete)

	mux.HandleFunc("GET /api/v1/comments", comments.List)
	mux.HandleFunc("POST /api/v1/comments", comments.Create)
	mux.HandleFunc("DELETE /api/v1/comments", comments.Delete)

	mux.HandleFunc("GET /api/v1/reactions", reactions.List)
	mux.HandleFunc("POST /api/v1/reactions", reactions.Set)
	mux.HandleFunc("DELETE /api/v1/reactions", reactions.Clear)

	mux.HandleFunc("GET /api/v1/photos", photos.List)
	mux.HandleFunc("GET /api/v1/photos/uploaders", photos.Uploaders)
	mux.HandleFunc("PUT /api/v1/photos/{id}", photos.Update)
	mux.HandleFunc("DELETE /api/v1/photos/{id}", photos.Delete)
	mux.HandleFunc("POST /api/v1/upload", photos.Upload)

	mux.HandleFunc("GET /api/v1/admin", admin.Overview)
	mux.HandleFunc("POST /api/v1/admin", admin.CreateUser)
	mux.HandleFunc("PUT /api/v1/admin", admin.SetAdminFlag)
	mux.HandleFunc("DELETE /api/v1/admin", admin.DeleteUser)

	mux.HandleFunc("GET /api/v1/feed", feed.Show)
}
