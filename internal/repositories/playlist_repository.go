package repositories

import (
	"context"

	"github.com/playtube/backend/internal/models"
)

// PlaylistRepository defines data access for playlists and their ordered
// video membership.
type PlaylistRepository interface {
	Create(ctx context.Context, playlist models.Playlist) error
	FindByID(ctx context.Context, id string) (models.Playlist, error)
	Detail(ctx context.Context, id string) (models.PlaylistDetail, error)
	ListForUser(ctx context.Context, ownerID string) ([]models.Playlist, error)
	Update(ctx context.Context, playlist models.Playlist) error
	Delete(ctx context.Context, id string) error
	AddVideo(ctx context.Context, playlistID, videoID string) error
	RemoveVideo(ctx context.Context, playlistID, videoID string) error
}
