package handlers

import (
	"context"
	"net/http"

	"github.com/playtube/backend/internal/middleware"
	"github.com/playtube/backend/internal/models"
)

// LikeHandler implements the like toggle endpoints. A toggle flips the
// (actor, target) like: 201 when the transition created a like, 200 when it
// removed one. The post-transition state is what the store reports, so
// concurrent duplicate toggles still produce a consistent answer.
type LikeHandler struct {
	Likes    LikeStore
	Videos   VideoStore
	Comments CommentStore
	Tweets   TweetStore
}

// ToggleVideo handles POST /api/v1/likes/toggle/v/{videoId} requests.
func (h LikeHandler) ToggleVideo(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, models.LikeTarget{Kind: models.LikeTargetVideo, ID: r.PathValue("videoId")})
}

// ToggleComment handles POST /api/v1/likes/toggle/c/{commentId} requests.
func (h LikeHandler) ToggleComment(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, models.LikeTarget{Kind: models.LikeTargetComment, ID: r.PathValue("commentId")})
}

// ToggleTweet handles POST /api/v1/likes/toggle/t/{tweetId} requests.
func (h LikeHandler) ToggleTweet(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, models.LikeTarget{Kind: models.LikeTargetTweet, ID: r.PathValue("tweetId")})
}

func (h LikeHandler) toggle(w http.ResponseWriter, r *http.Request, target models.LikeTarget) {
	ctx := r.Context()

	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := h.targetExists(ctx, target); err != nil {
		respondStoreError(ctx, w, err, string(target.Kind)+" not found")
		return
	}

	liked, err := h.Likes.Toggle(ctx, target, user.ID, user.Username)
	if err != nil {
		respondStoreError(ctx, w, err, string(target.Kind)+" not found")
		return
	}

	status := http.StatusOK
	message := "like removed"
	if liked {
		status = http.StatusCreated
		message = "like added"
	}

	respondData(ctx, w, status, toggleLikeResponse{IsLiked: liked}, message)
}

func (h LikeHandler) targetExists(ctx context.Context, target models.LikeTarget) error {
	switch target.Kind {
	case models.LikeTargetVideo:
		_, err := h.Videos.FindByID(ctx, target.ID)
		return err
	case models.LikeTargetComment:
		_, err := h.Comments.FindByID(ctx, target.ID)
		return err
	default:
		_, err := h.Tweets.FindByID(ctx, target.ID)
		return err
	}
}

type toggleLikeResponse struct {
	IsLiked bool `json:"isLiked"`
}
