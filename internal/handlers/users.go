package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/playtube/backend/internal/logging"
	"github.com/playtube/backend/internal/media"
	"github.com/playtube/backend/internal/middleware"
	"github.com/playtube/backend/internal/repositories"
)

// UserHandler implements account maintenance and watch history endpoints.
type UserHandler struct {
	Users   UserStore
	Storage media.ObjectStorage
	Cleaner MediaCleaner
	NowFunc func() time.Time
}

// CurrentUser handles GET /api/v1/users/current-user requests.
func (h UserHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	respondData(ctx, w, http.StatusOK, user, "current user fetched")
}

// UpdateAccount handles PATCH /api/v1/users/update-account requests. Only
// the full name and email are mutable here.
func (h UserHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req updateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid update account payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	fullName := strings.TrimSpace(req.FullName)
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if fullName == "" && email == "" {
		respondError(ctx, w, http.StatusBadRequest, "fullName or email is required")
		return
	}

	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			respondError(ctx, w, http.StatusBadRequest, "invalid email address")
			return
		}
		user.Email = email
	}
	if fullName != "" {
		user.FullName = fullName
	}
	user.UpdatedAt = h.now()

	if err := h.Users.Update(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			respondError(ctx, w, http.StatusConflict, "email already in use")
			return
		}
		respondStoreError(ctx, w, err, "user not found")
		return
	}

	respondData(ctx, w, http.StatusOK, user, "account updated successfully")
}

// UpdateAvatar handles PATCH /api/v1/users/avatar requests.
func (h UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "avatar")
}

// UpdateCoverImage handles PATCH /api/v1/users/cover-image requests.
func (h UserHandler) UpdateCoverImage(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "coverImage")
}

func (h UserHandler) updateImage(w http.ResponseWriter, r *http.Request, field string) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		logger.Warn("invalid image payload", "field", field, "error", err)
		respondError(ctx, w, http.StatusBadRequest, "multipart form data is required")
		return
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		respondError(ctx, w, http.StatusBadRequest, fmt.Sprintf("%s file is required", field))
		return
	}
	defer file.Close()

	prefix := fmt.Sprintf("avatars/%s", user.ID)
	if field == "coverImage" {
		prefix = fmt.Sprintf("covers/%s", user.ID)
	}

	stored, err := media.Store(ctx, h.Storage, prefix, sanitizeFilename(header), file)
	if err != nil {
		logger.Error("image upload failed", "field", field, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to store image")
		return
	}

	oldKey := user.AvatarKey
	if field == "coverImage" {
		oldKey = user.CoverKey
		user.CoverURL = stored.URL
		user.CoverKey = stored.Key
	} else {
		user.AvatarURL = stored.URL
		user.AvatarKey = stored.Key
	}
	user.UpdatedAt = h.now()

	if err := h.Users.Update(ctx, user); err != nil {
		h.enqueueCleanup(ctx, stored.Key)
		respondStoreError(ctx, w, err, "user not found")
		return
	}

	h.enqueueCleanup(ctx, oldKey)
	respondData(ctx, w, http.StatusOK, user, fmt.Sprintf("%s updated successfully", field))
}

// WatchHistory handles GET /api/v1/users/history requests.
func (h UserHandler) WatchHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	videos, err := h.Users.WatchHistory(ctx, user.ID)
	if err != nil {
		respondStoreError(ctx, w, err, "user not found")
		return
	}

	respondData(ctx, w, http.StatusOK, videos, "watch history fetched")
}

func (h UserHandler) enqueueCleanup(ctx context.Context, keys ...string) {
	if h.Cleaner == nil {
		return
	}
	if err := h.Cleaner.Enqueue(ctx, keys...); err != nil {
		logging.FromContext(ctx).Error("enqueue media cleanup", "error", err, "keys", keys)
	}
}

type updateAccountRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

func (h UserHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
