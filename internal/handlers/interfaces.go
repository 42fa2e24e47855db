package handlers

import (
	"context"

	"github.com/playtube/backend/internal/models"
)

// UserStore captures the persistence operations required by the auth and
// user handlers.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByLogin(ctx context.Context, usernameOrEmail string) (models.User, error)
	Update(ctx context.Context, user models.User) error
	RecordWatch(ctx context.Context, userID, videoID string) error
	WatchHistory(ctx context.Context, userID string) ([]models.Video, error)
}

// SessionManager issues, refreshes, and revokes authentication tokens.
type SessionManager interface {
	Issue(ctx context.Context, userID string) (models.SessionTokens, error)
	Refresh(ctx context.Context, refreshToken string) (models.SessionTokens, error)
	Revoke(ctx context.Context, refreshToken string)
}

// VideoStore captures persistence for video workflows, including the
// projections served by the detail and dashboard endpoints.
type VideoStore interface {
	Create(ctx context.Context, video models.Video) error
	FindByID(ctx context.Context, id string) (models.Video, error)
	List(ctx context.Context, filter models.VideoFilter) ([]models.Video, error)
	Update(ctx context.Context, video models.Video) error
	SetPublished(ctx context.Context, id string, published bool) error
	IncrementViews(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	Detail(ctx context.Context, videoID, viewerID string) (models.VideoDetail, error)
	ChannelVideos(ctx context.Context, ownerID string) ([]models.ChannelVideo, error)
}

// CommentStore captures persistence for video comments.
type CommentStore interface {
	Create(ctx context.Context, comment models.Comment) error
	FindByID(ctx context.Context, id string) (models.Comment, error)
	Update(ctx context.Context, comment models.Comment) error
	Delete(ctx context.Context, id string) error
	ListForVideo(ctx context.Context, videoID, viewerID string, page, limit int) (models.CommentPage, error)
}

// TweetStore captures persistence for tweets.
type TweetStore interface {
	Create(ctx context.Context, tweet models.Tweet) error
	FindByID(ctx context.Context, id string) (models.Tweet, error)
	Update(ctx context.Context, tweet models.Tweet) error
	Delete(ctx context.Context, id string) error
	ListForUser(ctx context.Context, userID, viewerID string) ([]models.TweetView, error)
}

// LikeStore toggles like state per (actor, target) pair.
type LikeStore interface {
	Toggle(ctx context.Context, target models.LikeTarget, likedByID, likedByUsername string) (bool, error)
}

// SubscriptionStore toggles and projects channel subscriptions.
type SubscriptionStore interface {
	Toggle(ctx context.Context, subscriberID, channelID string) (bool, error)
	Subscribers(ctx context.Context, channelID string) (models.SubscriberList, error)
	Channels(ctx context.Context, subscriberID string) (models.ChannelList, error)
	CountForChannel(ctx context.Context, channelID string) (int64, error)
}

// PlaylistStore captures persistence for playlists and their membership.
type PlaylistStore interface {
	Create(ctx context.Context, playlist models.Playlist) error
	FindByID(ctx context.Context, id string) (models.Playlist, error)
	Detail(ctx context.Context, id string) (models.PlaylistDetail, error)
	ListForUser(ctx context.Context, ownerID string) ([]models.Playlist, error)
	Update(ctx context.Context, playlist models.Playlist) error
	Delete(ctx context.Context, id string) error
	AddVideo(ctx context.Context, playlistID, videoID string) error
	RemoveVideo(ctx context.Context, playlistID, videoID string) error
}

// StatsSource computes channel dashboard aggregates.
type StatsSource interface {
	ChannelStats(ctx context.Context, channelID string) (models.ChannelStats, error)
}

// MediaCleaner schedules background deletion of stored media objects.
type MediaCleaner interface {
	Enqueue(ctx context.Context, keys ...string) error
}
