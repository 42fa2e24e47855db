package models

import "time"

// User represents an account within the PlayTube platform. A user doubles as
// a channel: other users subscribe to it and its videos hang off it.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	AvatarURL string    `json:"avatarUrl"`
	AvatarKey string    `json:"-"`
	CoverURL  string    `json:"coverUrl,omitempty"`
	CoverKey  string    `json:"-"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Video is a published piece of media. The Key fields identify the backing
// objects in external storage so they can be removed when the video goes away.
type Video struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"ownerId"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Duration     float64   `json:"duration"`
	VideoURL     string    `json:"videoUrl"`
	VideoKey     string    `json:"-"`
	ThumbnailURL string    `json:"thumbnailUrl"`
	ThumbnailKey string    `json:"-"`
	Views        int64     `json:"views"`
	Published    bool      `json:"isPublished"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Comment is attached to exactly one video.
type Comment struct {
	ID        string    `json:"id"`
	VideoID   string    `json:"videoId"`
	OwnerID   string    `json:"ownerId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Tweet is a short text post owned by a user.
type Tweet struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// LikeTargetKind names the entity kind a like points at.
type LikeTargetKind string

const (
	LikeTargetVideo   LikeTargetKind = "video"
	LikeTargetComment LikeTargetKind = "comment"
	LikeTargetTweet   LikeTargetKind = "tweet"
)

// LikeTarget identifies the single entity a like references.
type LikeTarget struct {
	Kind LikeTargetKind
	ID   string
}

// Like records that a user liked exactly one of a video, comment, or tweet.
// The username is snapshotted at like time; everything else resolves by id.
type Like struct {
	ID              string     `json:"id"`
	Target          LikeTarget `json:"-"`
	LikedByID       string     `json:"likedById"`
	LikedByUsername string     `json:"likedByUsername"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// Subscription links a subscriber to a channel (both users).
type Subscription struct {
	ID           string    `json:"id"`
	SubscriberID string    `json:"subscriberId"`
	ChannelID    string    `json:"channelId"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Playlist is an owner-curated ordered collection of video references.
type Playlist struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"ownerId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	VideoIDs    []string  `json:"videoIds"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// SessionTokens groups the bearer credentials issued to authenticated users.
type SessionTokens struct {
	AccessToken      string    `json:"accessToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}

// VideoFilter narrows and orders video listings. ViewerID identifies the
// requesting user: unpublished videos are visible only to their owner.
type VideoFilter struct {
	OwnerID  string
	ViewerID string
	Title    string
	SortBy   string
	SortDesc bool
	Page     int
	Limit    int
}
