package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/playtube/backend/internal/logging"
	"github.com/playtube/backend/internal/media"
	"github.com/playtube/backend/internal/middleware"
	"github.com/playtube/backend/internal/models"
	"github.com/playtube/backend/internal/repositories"
)

// VideoHandler implements video listing, publishing, and lifecycle endpoints.
type VideoHandler struct {
	Videos  VideoStore
	Users   UserStore
	Storage media.ObjectStorage
	Cleaner MediaCleaner
	NowFunc func() time.Time
}

// List handles GET /api/v1/videos requests.
func (h VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	viewer, ok := middleware.CurrentUser(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	query := r.URL.Query()
	filter := models.VideoFilter{
		OwnerID:  strings.TrimSpace(query.Get("userId")),
		ViewerID: viewer.ID,
		Title:    strings.TrimSpace(query.Get("query")),
		SortBy:   strings.TrimSpace(query.Get("sortBy")),
		SortDesc: strings.EqualFold(query.Get("sortType"), "desc"),
		Page:     queryInt(query.Get("page"), 1),
		Limit:    queryInt(query.Get("limit"), 10),
	}

	if filter.Page < 1 || filter.Limit < 1 {
		respondError(ctx, w, http.StatusBadRequest, "page and limit must be positive")
		return
	}

	videos, err := h.Videos.List(ctx, filter)
	if err != nil {
		respondStoreError(ctx, w, err, "videos not found")
		return
	}

	respondData(ctx, w, http.StatusOK, videos, "videos fetched successfully")
}

// Publish handles POST /api/v1/videos requests: a multipart upload carrying
// the video file, its thumbnail, and the descriptive fields. Both objects are
// pushed to storage before the row is written; if that write fails the
// objects are queued for deletion so storage does not accumulate orphans.
func (h VideoHandler) Publish(w http.ResponseWriter, r *http.Request) {
	ctx, span := logging.StartSpan(r.Context(), "video.publish")
	defer span.End()
	logger := logging.FromContext(ctx)

	owner, ok := middleware.CurrentUser(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		logger.Warn("invalid publish payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "multipart form data is required")
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	description := strings.TrimSpace(r.FormValue("description"))
	if title == "" {
		respondError(ctx, w, http.StatusBadRequest, "title is required")
		return
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(r.FormValue("duration")), 64)
	if err != nil || duration < 0 {
		duration = 0
	}

	videoID := uuid.NewString()

	videoObj, err := h.storeFormFile(r, "videoFile", fmt.Sprintf("videos/%s", videoID))
	if err != nil {
		logger.Warn("publish video upload failed", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "video file is required")
		return
	}

	thumbObj, err := h.storeFormFile(r, "thumbnail", fmt.Sprintf("thumbnails/%s", videoID))
	if err != nil {
		h.enqueueCleanup(ctx, videoObj.Key)
		logger.Warn("publish thumbnail upload failed", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "thumbnail is required")
		return
	}

	now := h.now()
	video := models.Video{
		ID:           videoID,
		OwnerID:      owner.ID,
		Title:        title,
		Description:  description,
		Duration:     duration,
		VideoURL:     videoObj.URL,
		VideoKey:     videoObj.Key,
		ThumbnailURL: thumbObj.URL,
		ThumbnailKey: thumbObj.Key,
		Published:    true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.Videos.Create(ctx, video); err != nil {
		h.enqueueCleanup(ctx, videoObj.Key, thumbObj.Key)
		logger.Error("publish failed to create video", "error", err, "videoId", videoID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to publish video")
		return
	}

	respondData(ctx, w, http.StatusCreated, video, "video published successfully")
}

// Get handles GET /api/v1/videos/{videoId} requests. A successful fetch
// counts as a view and lands in the viewer's watch history.
func (h VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	viewer, ok := middleware.CurrentUser(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	videoID := r.PathValue("videoId")

	if err := h.Videos.IncrementViews(ctx, videoID); err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}

	detail, err := h.Videos.Detail(ctx, videoID, viewer.ID)
	if err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}

	if err := h.Users.RecordWatch(ctx, viewer.ID, videoID); err != nil {
		logger.Error("record watch history", "error", err, "videoId", videoID, "userId", viewer.ID)
	}

	respondData(ctx, w, http.StatusOK, detail, "video fetched successfully")
}

// Update handles PATCH /api/v1/videos/{videoId} requests. Title and
// description come from multipart fields; a replacement thumbnail is
// optional and retires the previous object.
func (h VideoHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	owner, ok := middleware.CurrentUser(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	video, ok := h.ownedVideo(ctx, w, r.PathValue("videoId"), owner.ID)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		logger.Warn("invalid update payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "multipart form data is required")
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	description := strings.TrimSpace(r.FormValue("description"))

	oldThumbKey := ""
	if file, header, err := r.FormFile("thumbnail"); err == nil {
		stored, storeErr := media.Store(ctx, h.Storage, fmt.Sprintf("thumbnails/%s", video.ID), sanitizeFilename(header), file)
		file.Close()
		if storeErr != nil {
			logger.Error("thumbnail upload failed", "error", storeErr, "videoId", video.ID)
			respondError(ctx, w, http.StatusInternalServerError, "failed to store thumbnail")
			return
		}
		oldThumbKey = video.ThumbnailKey
		video.ThumbnailURL = stored.URL
		video.ThumbnailKey = stored.Key
	} else if title == "" && description == "" {
		respondError(ctx, w, http.StatusBadRequest, "title, description, or thumbnail is required")
		return
	}

	if title != "" {
		video.Title = title
	}
	if description != "" {
		video.Description = description
	}
	video.UpdatedAt = h.now()

	if err := h.Videos.Update(ctx, video); err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}

	h.enqueueCleanup(ctx, oldThumbKey)
	respondData(ctx, w, http.StatusOK, video, "video updated successfully")
}

// Delete handles DELETE /api/v1/videos/{videoId} requests. The row cascade
// runs first; the media objects are deleted asynchronously afterwards.
func (h VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, span := logging.StartSpan(r.Context(), "video.delete")
	defer span.End()

	owner, ok := middleware.CurrentUser(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	video, ok := h.ownedVideo(ctx, w, r.PathValue("videoId"), owner.ID)
	if !ok {
		return
	}

	if err := h.Videos.Delete(ctx, video.ID); err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}

	h.enqueueCleanup(ctx, video.VideoKey, video.ThumbnailKey)
	respondData(ctx, w, http.StatusOK, nil, "video deleted successfully")
}

// TogglePublish handles PATCH /api/v1/videos/toggle/publish/{videoId} requests.
func (h VideoHandler) TogglePublish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	owner, ok := middleware.CurrentUser(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	video, ok := h.ownedVideo(ctx, w, r.PathValue("videoId"), owner.ID)
	if !ok {
		return
	}

	if err := h.Videos.SetPublished(ctx, video.ID, !video.Published); err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}

	video.Published = !video.Published
	respondData(ctx, w, http.StatusOK, video, "publish status toggled")
}

// ownedVideo loads the video and enforces ownership, writing the error
// response itself when either check fails.
func (h VideoHandler) ownedVideo(ctx context.Context, w http.ResponseWriter, videoID, ownerID string) (models.Video, bool) {
	video, err := h.Videos.FindByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "video not found")
		} else {
			respondStoreError(ctx, w, err, "video not found")
		}
		return models.Video{}, false
	}

	if video.OwnerID != ownerID {
		respondError(ctx, w, http.StatusForbidden, "you do not own this video")
		return models.Video{}, false
	}

	return video, true
}

func (h VideoHandler) storeFormFile(r *http.Request, field, keyPrefix string) (media.StoredObject, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return media.StoredObject{}, err
	}
	defer file.Close()

	return media.Store(r.Context(), h.Storage, keyPrefix, sanitizeFilename(header), file)
}

func (h VideoHandler) enqueueCleanup(ctx context.Context, keys ...string) {
	if h.Cleaner == nil {
		return
	}
	if err := h.Cleaner.Enqueue(ctx, keys...); err != nil {
		logging.FromContext(ctx).Error("enqueue media cleanup", "error", err, "keys", keys)
	}
}

func queryInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func (h VideoHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
