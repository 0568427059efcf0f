package handlers

import (
	"context"
	"io"

	"github.com/familygallery/backend/internal/auth"
	"github.com/familygallery/backend/internal/imaging"
	"github.com/familygallery/backend/internal/models"
)

// UserStore captures the persistence operations required by the HTTP handlers.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	FindByLogin(ctx context.Context, usernameOrEmail string) (models.User, error)
	EmailTakenByOther(ctx context.Context, email, userID string) (bool, error)
	SetPassword(ctx context.Context, userID, email, passwordHash string) error
	TouchLastLogin(ctx context.Context, userID string) error
	SetAdmin(ctx context.Context, userID string, isAdmin bool) error
	Delete(ctx context.Context, userID string) error
	ListRoster(ctx context.Context) ([]models.User, error)
	ListWithCounts(ctx context.Context) ([]models.UserWithCounts, error)
	Stats(ctx context.Context) (models.SiteStats, error)
	ListUploaders(ctx context.Context) ([]models.UserRef, error)
}

// SessionManager issues, resolves and revokes session tokens.
type SessionManager interface {
	Create(ctx context.Context, userID string) (auth.Session, error)
	Resolve(ctx context.Context, token string) (auth.Session, error)
	Delete(ctx context.Context, token string)
}

// AlbumStore captures persistence for album workflows.
type AlbumStore interface {
	Create(ctx context.Context, album models.Album) error
	FindByID(ctx context.Context, id string) (models.Album, error)
	ListVisibleTo(ctx context.Context, viewerID string) ([]models.AlbumSummary, error)
	Update(ctx context.Context, album models.Album) error
	Delete(ctx context.Context, id string) error
}

// PhotoStore captures persistence for photo workflows.
type PhotoStore interface {
	Create(ctx context.Context, photo models.Photo) error
	FindByID(ctx context.Context, id string) (models.Photo, error)
	List(ctx context.Context) ([]models.Photo, error)
	UpdateDetails(ctx context.Context, id, title, description string) error
	Delete(ctx context.Context, id string) error
}

// CommentStore captures persistence for comment threads.
type CommentStore interface {
	Create(ctx context.Context, comment models.Comment) error
	FindByID(ctx context.Context, id string) (models.Comment, error)
	ListByPhoto(ctx context.Context, photoID string) ([]models.Comment, error)
	Delete(ctx context.Context, id string) error
}

// ReactionStore captures persistence for photo reactions.
type ReactionStore interface {
	Set(ctx context.Context, reaction models.Reaction) (models.Reaction, error)
	Clear(ctx context.Context, photoID, userID string) error
	ListByPhoto(ctx context.Context, photoID string) ([]models.Reaction, error)
	CountsByType(ctx context.Context, photoID string) (map[string]int, error)
}

// FeedStore computes the dashboard projections.
type FeedStore interface {
	LatestPhotos(ctx context.Context) ([]models.FeedPhoto, error)
	RecentComments(ctx context.Context) ([]models.FeedComment, error)
	RecentReactions(ctx context.Context) ([]models.FeedReaction, error)
}

// FileStore persists photo files and thumbnails.
type FileStore interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
	Remove(ctx context.Context, name string) error
}

// ImageProcessor produces the web-sized image and thumbnail for an upload.
type ImageProcessor interface {
	Process(r io.Reader) (imaging.Result, error)
}
