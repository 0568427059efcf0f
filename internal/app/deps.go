package app

import (
	"context"
	"fmt"
	"time"

	"github.com/familygallery/backend/internal/auth"
	"github.com/familygallery/backend/internal/config"
	"github.com/familygallery/backend/internal/db"
	"github.com/familygallery/backend/internal/handlers"
	"github.com/familygallery/backend/internal/imaging"
	"github.com/familygallery/backend/internal/middleware"
	"github.com/familygallery/backend/internal/repositories"
	"github.com/familygallery/backend/internal/storage"
)

// buildDependencies wires together concrete implementations used by the HTTP
// handlers. Photo files land in an S3 bucket when one is configured, on the
// local disk otherwise. The session manager is returned separately so the
// server loop can run the expired-session sweep against it.
func buildDependencies(ctx context.Context, pool db.Pool, cfg config.Config) (handlers.Dependencies, *auth.Manager, error) {
	var files storage.FileStore
	var err error
	if cfg.ObjectStore.Bucket != "" {
		files, err = storage.NewS3Storage(ctx, cfg.ObjectStore)
	} else {
		files, err = storage.NewLocalStorage(cfg.UploadDir, cfg.UploadPublicPath)
	}
	if err != nil {
		return handlers.Dependencies{}, nil, fmt.Errorf("configure file storage: %w", err)
	}

	sessions := auth.NewManager(cfg.SessionTTL, repositories.NewPostgresSessionStore(pool))

	return handlers.Dependencies{
		Users:        repositories.NewPostgresUserRepository(pool),
		Sessions:     sessions,
		Albums:       repositories.NewPostgresAlbumRepository(pool),
		Photos:       repositories.NewPostgresPhotoRepository(pool),
		Comments:     repositories.NewPostgresCommentRepository(pool),
		Reactions:    repositories.NewPostgresReactionRepository(pool),
		Feed:         repositories.NewPostgresFeedRepository(pool),
		Files:        files,
		Processor:    imaging.NewJPEGProcessor(),
		LoginLimiter: middleware.NewIPRateLimiter(cfg.LoginRateLimit, time.Minute, cfg.LoginRateBurst, cfg.LoginRateTTL),
	}, sessions, nil
}
