package repositories

import (
	"context"

	"github.com/playtube/backend/internal/models"
)

// TweetRepository defines data access for tweets.
type TweetRepository interface {
	Create(ctx context.Context, tweet models.Tweet) error
	FindByID(ctx context.Context, id string) (models.Tweet, error)
	Update(ctx context.Context, tweet models.Tweet) error
	Delete(ctx context.Context, id string) error
	ListForUser(ctx context.Context, userID, viewerID string) ([]models.TweetView, error)
}
