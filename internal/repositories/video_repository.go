package repositories

import (
	"context"

	"github.com/playtube/backend/internal/models"
)

// VideoRepository exposes data access for videos, including the denormalized
// detail projection and the channel dashboard aggregates.
type VideoRepository interface {
	Create(ctx context.Context, video models.Video) error
	FindByID(ctx context.Context, id string) (models.Video, error)
	List(ctx context.Context, filter models.VideoFilter) ([]models.Video, error)
	Update(ctx context.Context, video models.Video) error
	SetPublished(ctx context.Context, id string, published bool) error
	IncrementViews(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	Detail(ctx context.Context, videoID, viewerID string) (models.VideoDetail, error)
	ChannelStats(ctx context.Context, ownerID string) (models.ChannelStats, error)
	ChannelVideos(ctx context.Context, ownerID string) ([]models.ChannelVideo, error)
}
