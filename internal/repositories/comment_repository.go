package repositories

import (
	"context"

	"github.com/playtube/backend/internal/models"
)

// CommentRepository defines data access for video comments.
type CommentRepository interface {
	Create(ctx context.Context, comment models.Comment) error
	FindByID(ctx context.Context, id string) (models.Comment, error)
	Update(ctx context.Context, comment models.Comment) error
	Delete(ctx context.Context, id string) error
	ListForVideo(ctx context.Context, videoID, viewerID string, page, limit int) (models.CommentPage, error)
}
