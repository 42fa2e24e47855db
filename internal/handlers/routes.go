package handlers

import (
	"net/http"

	"github.com/playtube/backend/internal/media"
	"github.com/playtube/backend/internal/middleware"
)

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Users         UserStore
	Sessions      SessionManager
	Videos        VideoStore
	Comments      CommentStore
	Tweets        TweetStore
	Likes         LikeStore
	Subscriptions SubscriptionStore
	Playlists     PlaylistStore
	Stats         StatsSource
	Storage       media.ObjectStorage
	Cleaner       MediaCleaner
	Tokens        middleware.TokenVerifier
	AuthLimiter   middleware.RateLimiter
}

// RegisterRoutes wires HTTP handlers into the provided ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{}
	auth := AuthHandler{Users: deps.Users, Sessions: deps.Sessions, Storage: deps.Storage, Cleaner: deps.Cleaner}
	users := UserHandler{Users: deps.Users, Storage: deps.Storage, Cleaner: deps.Cleaner}
	videos := VideoHandler{Videos: deps.Videos, Users: deps.Users, Storage: deps.Storage, Cleaner: deps.Cleaner}
	comments := CommentHandler{Comments: deps.Comments, Videos: deps.Videos}
	tweets := TweetHandler{Tweets: deps.Tweets}
	likes := LikeHandler{Likes: deps.Likes, Videos: deps.Videos, Comments: deps.Comments, Tweets: deps.Tweets}
	subscriptions := SubscriptionHandler{Subscriptions: deps.Subscriptions, Users: deps.Users}
	playlists := PlaylistHandler{Playlists: deps.Playlists, Videos: deps.Videos}
	dashboard := DashboardHandler{StatsSource: deps.Stats, VideoStore: deps.Videos}

	secured := middleware.Authenticate(deps.Tokens, deps.Users)
	throttled := func(next http.HandlerFunc) http.Handler { return next }
	if deps.AuthLimiter != nil {
		limit := middleware.Throttle(deps.AuthLimiter)
		throttled = func(next http.HandlerFunc) http.Handler { return limit(next) }
	}
	protect := func(next http.HandlerFunc) http.Handler { return secured(next) }

	mux.HandleFunc("GET /healthz", health.Handle)

	mux.Handle("POST /api/v1/users/register", throttled(auth.Register))
	mux.Handle("POST /api/v1/users/login", throttled(auth.Login))
	mux.Handle("POST /api/v1/users/refresh-token", throttled(auth.RefreshToken))
	mux.Handle("POST /api/v1/users/logout", protect(auth.Logout))
	mux.Handle("POST /api/v1/users/change-password", protect(auth.ChangePassword))

	mux.Handle("GET /api/v1/users/current-user", protect(users.CurrentUser))
	mux.Handle("PATCH /api/v1/users/update-account", protect(users.UpdateAccount))
	mux.Handle("PATCH /api/v1/users/avatar", protect(users.UpdateAvatar))
	mux.Handle("PATCH /api/v1/users/cover-image", protect(users.UpdateCoverImage))
	mux.Handle("GET /api/v1/users/history", protect(users.WatchHistory))

	mux.Handle("GET /api/v1/videos", protect(videos.List))
	mux.Handle("POST /api/v1/videos", protect(videos.Publish))
	mux.Handle("GET /api/v1/videos/{videoId}", protect(videos.Get))
	mux.Handle("PATCH /api/v1/videos/{videoId}", protect(videos.Update))
	mux.Handle("DELETE /api/v1/videos/{videoId}", protect(videos.Delete))
	mux.Handle("PATCH /api/v1/videos/toggle/publish/{videoId}", protect(videos.TogglePublish))

	mux.Handle("GET /api/v1/comments/{videoId}", protect(comments.List))
	mux.Handle("POST /api/v1/comments/{videoId}", protect(comments.Add))
	mux.Handle("PATCH /api/v1/comments/c/{commentId}", protect(comments.Update))
	mux.Handle("DELETE /api/v1/comments/c/{commentId}", protect(comments.Delete))

	mux.Handle("POST /api/v1/tweets", protect(tweets.Create))
	mux.Handle("GET /api/v1/tweets/user/{userId}", protect(tweets.ListForUser))
	mux.Handle("PATCH /api/v1/tweets/{tweetId}", protect(tweets.Update))
	mux.Handle("DELETE /api/v1/tweets/{tweetId}", protect(tweets.Delete))

	mux.Handle("POST /api/v1/likes/toggle/v/{videoId}", protect(likes.ToggleVideo))
	mux.Handle("POST /api/v1/likes/toggle/c/{commentId}", protect(likes.ToggleComment))
	mux.Handle("POST /api/v1/likes/toggle/t/{tweetId}", protect(likes.ToggleTweet))

	mux.Handle("POST /api/v1/subscriptions/c/{channelId}", protect(subscriptions.Toggle))
	mux.Handle("GET /api/v1/subscriptions/c/{channelId}", protect(subscriptions.Subscribers))
	mux.Handle("GET /api/v1/subscriptions/u/{subscriberId}", protect(subscriptions.Channels))

	mux.Handle("POST /api/v1/playlist", protect(playlists.Create))
	mux.Handle("GET /api/v1/playlist/{playlistId}", protect(playlists.Get))
	mux.Handle("PATCH /api/v1/playlist/{playlistId}", protect(playlists.Update))
	mux.Handle("DELETE /api/v1/playlist/{playlistId}", protect(playlists.Delete))
	mux.Handle("GET /api/v1/playlist/user/{userId}", protect(playlists.ListForUser))
	mux.Handle("PATCH /api/v1/playlist/add/{videoId}/{playlistId}", protect(playlists.AddVideo))
	mux.Handle("PATCH /api/v1/playlist/remove/{videoId}/{playlistId}", protect(playlists.RemoveVideo))

	mux.Handle("GET /api/v1/dashboard/stats", protect(dashboard.Stats))
	mux.Handle("GET /api/v1/dashboard/videos", protect(dashboard.Videos))
}
