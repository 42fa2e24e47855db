package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/playtube/backend/internal/auth"
	"github.com/playtube/backend/internal/config"
	"github.com/playtube/backend/internal/db"
	"github.com/playtube/backend/internal/handlers"
	"github.com/playtube/backend/internal/media"
	"github.com/playtube/backend/internal/middleware"
	"github.com/playtube/backend/internal/repositories"
	"github.com/playtube/backend/internal/storage"
	"github.com/playtube/backend/internal/views"
)

// buildDependencies wires together concrete implementations used by the HTTP
// handlers, plus the background cleaner whose lifecycle the caller owns.
func buildDependencies(ctx context.Context, pool db.Pool, cfg config.Config, logger *slog.Logger) (handlers.Dependencies, *media.Cleaner, error) {
	objectStorage, err := storage.NewS3Storage(ctx, cfg.ObjectStore)
	if err != nil {
		return handlers.Dependencies{}, nil, err
	}

	cleaner := media.NewCleaner(objectStorage, media.CleanerConfig{
		QueueSize: cfg.CleanupQueue,
		Workers:   cfg.CleanupWorkers,
	}, logger)

	sessionStore := repositories.NewPostgresSessionStore(pool)
	tokens := auth.NewTokenManager(cfg.TokenSecret, cfg.AccessTTL, cfg.RefreshTTL, sessionStore)

	videoRepo := repositories.NewPostgresVideoRepository(pool)
	subscriptionRepo := repositories.NewPostgresSubscriptionRepository(pool)

	statsSource := views.NewChannelStatsSource(videoRepo, subscriptionRepo)
	statsCache := views.NewStatsCache(statsSource, cfg.StatsCacheTTL)

	authLimiter := middleware.NewIPRateLimiter(cfg.AuthRateRequests, cfg.AuthRateWindow, cfg.AuthRateRequests, 5*time.Minute)

	return handlers.Dependencies{
		Users:         repositories.NewPostgresUserRepository(pool),
		Sessions:      tokens,
		Videos:        videoRepo,
		Comments:      repositories.NewPostgresCommentRepository(pool),
		Tweets:        repositories.NewPostgresTweetRepository(pool),
		Likes:         repositories.NewPostgresLikeRepository(pool),
		Subscriptions: subscriptionRepo,
		Playlists:     repositories.NewPostgresPlaylistRepository(pool),
		Stats:         statsCache,
		Storage:       objectStorage,
		Cleaner:       cleaner,
		Tokens:        tokens,
		AuthLimiter:   authLimiter,
	}, cleaner, nil
}
