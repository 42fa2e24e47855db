package models

import "time"

// Read models assembled by the projection queries. None of these are
// persisted; counts and viewer-relative flags are computed per request.

// ChannelSummary is the owner block embedded in a video detail, including
// subscription facts relative to the requesting user.
type ChannelSummary struct {
	ID               string `json:"id"`
	Username         string `json:"username"`
	FullName         string `json:"fullName"`
	AvatarURL        string `json:"avatarUrl"`
	SubscribersCount int64  `json:"subscribersCount"`
	IsSubscribed     bool   `json:"isSubscribed"`
}

// VideoDetail is the denormalized detail page for a single video.
type VideoDetail struct {
	Video
	LikesCount int64          `json:"likesCount"`
	IsLiked    bool           `json:"isLiked"`
	Owner      ChannelSummary `json:"owner"`
}

// UserSummary is the reduced owner shape used inside list projections.
type UserSummary struct {
	Username  string `json:"username"`
	FullName  string `json:"fullName,omitempty"`
	AvatarURL string `json:"avatarUrl"`
}

// CommentView is one annotated row of the comment list projection.
type CommentView struct {
	ID         string      `json:"id"`
	Content    string      `json:"content"`
	CreatedAt  time.Time   `json:"createdAt"`
	LikesCount int64       `json:"likesCount"`
	IsLiked    bool        `json:"isLiked"`
	Owner      UserSummary `json:"owner"`
}

// CommentPage pairs one page of comments with the total match count.
type CommentPage struct {
	Total    int64         `json:"total"`
	Comments []CommentView `json:"comments"`
}

// TweetView is one annotated row of the tweet list projection.
type TweetView struct {
	ID           string      `json:"id"`
	Content      string      `json:"content"`
	CreatedAt    time.Time   `json:"createdAt"`
	LikesCount   int64       `json:"likesCount"`
	IsLiked      bool        `json:"isLiked"`
	OwnerDetails UserSummary `json:"ownerDetails"`
}

// SubscriberList is the channel subscriber facet: flattened summaries plus a
// total that is 0 when nothing matches.
type SubscriberList struct {
	Subscribers []UserSummary `json:"subscribers"`
	Total       int64         `json:"total"`
}

// ChannelList mirrors SubscriberList for the channels a user subscribes to.
type ChannelList struct {
	Channels []UserSummary `json:"channels"`
	Total    int64         `json:"total"`
}

// ChannelStats aggregates over a channel owner's videos.
type ChannelStats struct {
	TotalVideos      int64 `json:"totalVideos"`
	TotalViews       int64 `json:"totalViews"`
	TotalLikes       int64 `json:"totalLikes"`
	TotalSubscribers int64 `json:"totalSubscribers"`
}

// ChannelVideo is a dashboard row: a video plus its like count.
type ChannelVideo struct {
	Video
	LikesCount int64 `json:"likesCount"`
}

// PlaylistDetail resolves a playlist's video references in order.
type PlaylistDetail struct {
	Playlist
	Videos []Video `json:"videos"`
}
