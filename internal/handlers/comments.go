package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/playtube/backend/internal/logging"
	"github.com/playtube/backend/internal/middleware"
	"github.com/playtube/backend/internal/models"
	"github.com/playtube/backend/internal/repositories"
)

// CommentHandler implements the comment endpoints for a video.
type CommentHandler struct {
	Comments CommentStore
	Videos   VideoStore
	NowFunc  func() time.Time
}

// List handles GET /api/v1/comments/{videoId} requests. Pages are newest
// first; an empty page is a 404, matching the projection contract.
func (h CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	viewer, ok := middleware.CurrentUser(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	videoID := r.PathValue("videoId")

	page := queryInt(r.URL.Query().Get("page"), 1)
	limit := queryInt(r.URL.Query().Get("limit"), 10)
	if page < 1 || limit < 1 {
		respondError(ctx, w, http.StatusBadRequest, "page and limit must be positive")
		return
	}

	if _, err := h.Videos.FindByID(ctx, videoID); err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}

	comments, err := h.Comments.ListForVideo(ctx, videoID, viewer.ID, page, limit)
	if err != nil {
		respondStoreError(ctx, w, err, "comments not found")
		return
	}

	if len(comments.Comments) == 0 {
		respondError(ctx, w, http.StatusNotFound, "no comments found")
		return
	}

	respondData(ctx, w, http.StatusOK, comments, "comments fetched successfully")
}

// Add handles POST /api/v1/comments/{videoId} requests.
func (h CommentHandler) Add(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	videoID := r.PathValue("videoId")

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid comment payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		respondError(ctx, w, http.StatusBadRequest, "content is required")
		return
	}

	if _, err := h.Videos.FindByID(ctx, videoID); err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}

	now := h.now()
	comment := models.Comment{
		ID:        uuid.NewString(),
		VideoID:   videoID,
		OwnerID:   user.ID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.Comments.Create(ctx, comment); err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}

	respondData(ctx, w, http.StatusCreated, comment, "comment added successfully")
}

// Update handles PATCH /api/v1/comments/c/{commentId} requests.
func (h CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	comment, err := h.Comments.FindByID(ctx, r.PathValue("commentId"))
	if err != nil {
		respondStoreError(ctx, w, err, "comment not found")
		return
	}

	if comment.OwnerID != user.ID {
		respondError(ctx, w, http.StatusForbidden, "you do not own this comment")
		return
	}

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid comment payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		respondError(ctx, w, http.StatusBadRequest, "content is required")
		return
	}

	comment.Content = content
	comment.UpdatedAt = h.now()

	if err := h.Comments.Update(ctx, comment); err != nil {
		respondStoreError(ctx, w, err, "comment not found")
		return
	}

	respondData(ctx, w, http.StatusOK, comment, "comment updated successfully")
}

// Delete handles DELETE /api/v1/comments/c/{commentId} requests. Both the
// comment's author and the owner of the video it sits under may delete it.
func (h CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	comment, err := h.Comments.FindByID(ctx, r.PathValue("commentId"))
	if err != nil {
		respondStoreError(ctx, w, err, "comment not found")
		return
	}

	if comment.OwnerID != user.ID {
		video, err := h.Videos.FindByID(ctx, comment.VideoID)
		if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			respondStoreError(ctx, w, err, "video not found")
			return
		}
		if err != nil || video.OwnerID != user.ID {
			respondError(ctx, w, http.StatusForbidden, "you cannot delete this comment")
			return
		}
	}

	if err := h.Comments.Delete(ctx, comment.ID); err != nil {
		respondStoreError(ctx, w, err, "comment not found")
		return
	}

	respondData(ctx, w, http.StatusOK, nil, "comment deleted successfully")
}

type commentRequest struct {
	Content string `json:"content"`
}

func (h CommentHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
