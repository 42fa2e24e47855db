package handlers

import (
	"context"
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

// PlaylistHandler implements playlist CRUD and membership endpoints.
type PlaylistHandler struct {
	Playlists PlaylistStore
	Videos    VideoStore
	NowFunc   func() time.Time
}

// Create handles POST /api/v1/playlist requests.
func (h PlaylistHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req playlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid playlist payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		respondError(ctx, w, http.StatusBadRequest, "name is required")
		return
	}

	now := h.now()
	playlist := models.Playlist{
		ID:          uuid.NewString(),
		OwnerID:     user.ID,
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		VideoIDs:    []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.Playlists.Create(ctx, playlist); err != nil {
		respondStoreError(ctx, w, err, "user not found")
		return
	}

	respondData(ctx, w, http.StatusCreated, playlist, "playlist created successfully")
}

// Get handles GET /api/v1/playlist/{playlistId} requests, resolving the
// member videos in playlist order.
func (h PlaylistHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, ok := middleware.CurrentUser(ctx); !ok {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	detail, err := h.Playlists.Detail(ctx, r.PathValue("playlistId"))
	if err != nil {
		respondStoreError(ctx, w, err, "playlist not found")
		return
	}

	respondData(ctx, w, http.StatusOK, detail, "playlist fetched successfully")
}

// ListForUser handles GET /api/v1/playlist/user/{userId} requests.
func (h PlaylistHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, ok := middleware.CurrentUser(ctx); !ok {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	playlists, err := h.Playlists.ListForUser(ctx, r.PathValue("userId"))
	if err != nil {
		respondStoreError(ctx, w, err, "user not found")
		return
	}

	respondData(ctx, w, http.StatusOK, playlists, "playlists fetched successfully")
}

// Update handles PATCH /api/v1/playlist/{playlistId} requests.
func (h PlaylistHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	playlist, ok := h.ownedPlaylist(ctx, w, r.PathValue("playlistId"), user.ID)
	if !ok {
		return
	}

	var req playlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid playlist payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	name := strings.TrimSpace(req.Name)
	description := strings.TrimSpace(req.Description)
	if name == "" && description == "" {
		respondError(ctx, w, http.StatusBadRequest, "name or description is required")
		return
	}

	if name != "" {
		playlist.Name = name
	}
	if description != "" {
		playlist.Description = description
	}
	playlist.UpdatedAt = h.now()

	if err := h.Playlists.Update(ctx, playlist); err != nil {
		respondStoreError(ctx, w, err, "playlist not found")
		return
	}

	respondData(ctx, w, http.StatusOK, playlist, "playlist updated successfully")
}

// Delete handles DELETE /api/v1/playlist/{playlistId} requests.
func (h PlaylistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	playlist, ok := h.ownedPlaylist(ctx, w, r.PathValue("playlistId"), user.ID)
	if !ok {
		return
	}

	if err := h.Playlists.Delete(ctx, playlist.ID); err != nil {
		respondStoreError(ctx, w, err, "playlist not found")
		return
	}

	respondData(ctx, w, http.StatusOK, nil, "playlist deleted successfully")
}

// AddVideo handles PATCH /api/v1/playlist/add/{videoId}/{playlistId}
// requests. Adding a video that is already a member is a 400.
func (h PlaylistHandler) AddVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	playlist, ok := h.ownedPlaylist(ctx, w, r.PathValue("playlistId"), user.ID)
	if !ok {
		return
	}

	videoID := r.PathValue("videoId")
	if _, err := h.Videos.FindByID(ctx, videoID); err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}

	if err := h.Playlists.AddVideo(ctx, playlist.ID, videoID); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			respondError(ctx, w, http.StatusBadRequest, "video already in playlist")
			return
		}
		respondStoreError(ctx, w, err, "playlist not found")
		return
	}

	respondData(ctx, w, http.StatusOK, nil, "video added to playlist")
}

// RemoveVideo handles PATCH /api/v1/playlist/remove/{videoId}/{playlistId}
// requests.
func (h PlaylistHandler) RemoveVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	playlist, ok := h.ownedPlaylist(ctx, w, r.PathValue("playlistId"), user.ID)
	if !ok {
		return
	}

	videoID := r.PathValue("videoId")
	if _, err := h.Videos.FindByID(ctx, videoID); err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}

	if err := h.Playlists.RemoveVideo(ctx, playlist.ID, videoID); err != nil {
		respondStoreError(ctx, w, err, "video not in playlist")
		return
	}

	respondData(ctx, w, http.StatusOK, nil, "video removed from playlist")
}

func (h PlaylistHandler) ownedPlaylist(ctx context.Context, w http.ResponseWriter, playlistID, ownerID string) (models.Playlist, bool) {
	playlist, err := h.Playlists.FindByID(ctx, playlistID)
	if err != nil {
		respondStoreError(ctx, w, err, "playlist not found")
		return models.Playlist{}, false
	}

	if playlist.OwnerID != ownerID {
		respondError(ctx, w, http.StatusForbidden, "you do not own this playlist")
		return models.Playlist{}, false
	}

	return playlist, true
}

type playlistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h PlaylistHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
