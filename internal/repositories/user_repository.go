package repositories

import (
	"context"

	"github.com/familygallery/backend/internal/models"
)

// UserRepository defines the data access contract for user accounts.
type UserRepository interface {
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
