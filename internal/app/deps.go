package app

import (
	"context"
	"time"

	"github.com/playtube/backend/internal/auth"
	"github.com/playtube/backend/internal/config"
	"github.com/playtube/backend/internal/db"
	"github.com/playtube/backend/internal/handlers"
	"github.com/playtube/backend/internal/middleware"
	"github.com/playtube/backend/internal/repositories"
	"github.com/playtube/backend/internal/storage"
)

// buildDependencies wires together concrete implementations used by the HTTP
// handlers.
func buildDependencies(ctx context.Context, pool db.Pool, cfg config.Config) (handlers.Dependencies, error) {
	media, err := storage.NewS3Storage(ctx, cfg.ObjectStore)
	if err != nil {
		return handlers.Dependencies{}, err
	}

	users := repositories.NewPostgresUserRepository(pool)
	issuer := auth.NewTokenIssuer(cfg.AccessTokenSecret, cfg.RefreshTokenSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	return handlers.Dependencies{
		Users:         users,
		Videos:        repositories.NewPostgresVideoRepository(pool),
		Comments:      repositories.NewPostgresCommentRepository(pool),
		Tweets:        repositories.NewPostgresTweetRepository(pool),
		Likes:         repositories.NewPostgresLikeRepository(pool),
		Subscriptions: repositories.NewPostgresSubscriptionRepository(pool),
		Playlists:     repositories.NewPostgresPlaylistRepository(pool),
		Views:         repositories.NewPostgresViewRepository(pool),
		Sessions:      auth.NewSessions(issuer, users),
		Media:         media,
		AuthLimiter:   middleware.NewIPRateLimiter(cfg.AuthRateLimit, cfg.AuthRateWindow, cfg.AuthRateLimit, 10*time.Minute),
		CORSOrigin:    cfg.CORSOrigin,
	}, nil
}
