package repositories

import (
	"context"

	"github.com/playtube/backend/internal/models"
)

// UserRepository defines the data access contract for users.
type UserRepository interface {
	Create(ctx context.Context, user models.User) error
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByLogin(ctx context.Context, usernameOrEmail string) (models.User, error)
	Update(ctx context.Context, user models.User) error
	RecordWatch(ctx context.Context, userID, videoID string) error
	WatchHistory(ctx context.Context, userID string) ([]models.Video, error)
}
