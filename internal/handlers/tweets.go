package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/playtube/backend/internal/logging"
	"github.com/playtube/backend/internal/middleware"
	"github.com/playtube/backend/internal/models"
)

// TweetHandler implements the tweet endpoints.
type TweetHandler struct {
	Tweets  TweetStore
	NowFunc func() time.Time
}

// Create handles POST /api/v1/tweets requests.
func (h TweetHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req tweetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid tweet payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		respondError(ctx, w, http.StatusBadRequest, "content is required")
		return
	}

	now := h.now()
	tweet := models.Tweet{
		ID:        uuid.NewString(),
		OwnerID:   user.ID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.Tweets.Create(ctx, tweet); err != nil {
		respondStoreError(ctx, w, err, "user not found")
		return
	}

	respondData(ctx, w, http.StatusCreated, tweet, "tweet created successfully")
}

// ListForUser handles GET /api/v1/tweets/user/{userId} requests. A user with
// no tweets yields a 404, matching the projection contract.
func (h TweetHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	viewer, ok := middleware.CurrentUser(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	tweets, err := h.Tweets.ListForUser(ctx, r.PathValue("userId"), viewer.ID)
	if err != nil {
		respondStoreError(ctx, w, err, "tweets not found")
		return
	}

	if len(tweets) == 0 {
		respondError(ctx, w, http.StatusNotFound, "no tweets found")
		return
	}

	respondData(ctx, w, http.StatusOK, tweets, "tweets fetched successfully")
}

// Update handles PATCH /api/v1/tweets/{tweetId} requests.
func (h TweetHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	tweet, err := h.Tweets.FindByID(ctx, r.PathValue("tweetId"))
	if err != nil {
		respondStoreError(ctx, w, err, "tweet not found")
		return
	}

	if tweet.OwnerID != user.ID {
		respondError(ctx, w, http.StatusForbidden, "you do not own this tweet")
		return
	}

	var req tweetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid tweet payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		respondError(ctx, w, http.StatusBadRequest, "content is required")
		return
	}

	tweet.Content = content
	tweet.UpdatedAt = h.now()

	if err := h.Tweets.Update(ctx, tweet); err != nil {
		respondStoreError(ctx, w, err, "tweet not found")
		return
	}

	respondData(ctx, w, http.StatusOK, tweet, "tweet updated successfully")
}

// Delete handles DELETE /api/v1/tweets/{tweetId} requests.
func (h TweetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	tweet, err := h.Tweets.FindByID(ctx, r.PathValue("tweetId"))
	if err != nil {
		respondStoreError(ctx, w, err, "tweet not found")
		return
	}

	if tweet.OwnerID != user.ID {
		respondError(ctx, w, http.StatusForbidden, "you do not own this tweet")
		return
	}

	if err := h.Tweets.Delete(ctx, tweet.ID); err != nil {
		respondStoreError(ctx, w, err, "tweet not found")
		return
	}

	respondData(ctx, w, http.StatusOK, nil, "tweet deleted successfully")
}

type tweetRequest struct {
	Content string `json:"content"`
}

func (h TweetHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
