package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/playtube/backend/internal/auth"
	"github.com/playtube/backend/internal/logging"
	"github.com/playtube/backend/internal/media"
	"github.com/playtube/backend/internal/middleware"
	"github.com/playtube/backend/internal/models"
	"github.com/playtube/backend/internal/repositories"
)

// RefreshTokenCookie names the cookie carrying the opaque refresh token.
const RefreshTokenCookie = "refreshToken"

const maxUploadMemory = 32 << 20

// AuthHandler implements registration, login, and session lifecycle endpoints.
type AuthHandler struct {
	Users    UserStore
	Sessions SessionManager
	Storage  media.ObjectStorage
	Cleaner  MediaCleaner
	NowFunc  func() time.Time
}

// Register handles POST /api/v1/users/register requests. The payload is
// multipart: profile fields plus a required avatar image and an optional
// cover image.
func (h AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		logger.Warn("invalid register payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "multipart form data is required")
		return
	}

	username := strings.TrimSpace(strings.ToLower(r.FormValue("username")))
	email := strings.TrimSpace(strings.ToLower(r.FormValue("email")))
	fullName := strings.TrimSpace(r.FormValue("fullName"))
	password := r.FormValue("password")

	if username == "" || email == "" || fullName == "" || password == "" {
		logger.Warn("register missing fields", "username", username, "email", email)
		respondError(ctx, w, http.StatusBadRequest, "username, email, fullName and password are required")
		return
	}

	if _, err := mail.ParseAddress(email); err != nil {
		logger.Warn("register invalid email", "email", email, "error", err)
		respondError(ctx, w, http.StatusBadRequest, "invalid email address")
		return
	}

	if len(password) < 8 {
		logger.Warn("register password too short", "username", username)
		respondError(ctx, w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	for _, login := range []string{username, email} {
		if _, err := h.Users.FindByLogin(ctx, login); err == nil {
			logger.Warn("register existing account", "login", login)
			respondError(ctx, w, http.StatusConflict, "user with this username or email already exists")
			return
		} else if !errors.Is(err, repositories.ErrNotFound) {
			logger.Error("register user lookup failed", "error", err, "login", login)
			respondError(ctx, w, http.StatusInternalServerError, "unable to verify existing accounts")
			return
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("register failed to hash password", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to secure password")
		return
	}

	userID := uuid.NewString()

	avatar, err := h.storeFormFile(r, "avatar", fmt.Sprintf("avatars/%s", userID))
	if err != nil {
		logger.Warn("register avatar upload failed", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "avatar image is required")
		return
	}

	cover, coverErr := h.storeFormFile(r, "coverImage", fmt.Sprintf("covers/%s", userID))
	if coverErr != nil && !errors.Is(coverErr, http.ErrMissingFile) {
		h.enqueueCleanup(ctx, avatar.Key)
		logger.Warn("register cover upload failed", "error", coverErr)
		respondError(ctx, w, http.StatusBadRequest, "cover image could not be stored")
		return
	}

	now := h.now()
	user := models.User{
		ID:        userID,
		Username:  username,
		Email:     email,
		FullName:  fullName,
		AvatarURL: avatar.URL,
		AvatarKey: avatar.Key,
		CoverURL:  cover.URL,
		CoverKey:  cover.Key,
		Password:  string(hashed),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.Users.Create(ctx, user); err != nil {
		h.enqueueCleanup(ctx, avatar.Key, cover.Key)
		if errors.Is(err, repositories.ErrConflict) {
			logger.Warn("register conflict", "username", username)
			respondError(ctx, w, http.StatusConflict, "user with this username or email already exists")
			return
		}
		logger.Error("register failed to create user", "error", err, "username", username)
		respondError(ctx, w, http.StatusInternalServerError, "failed to create account")
		return
	}

	respondData(ctx, w, http.StatusCreated, user, "user registered successfully")
}

// Login handles POST /api/v1/users/login requests. Credentials may name the
// account by username or email.
func (h AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid login payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	login := strings.TrimSpace(strings.ToLower(req.Username))
	if login == "" {
		login = strings.TrimSpace(strings.ToLower(req.Email))
	}
	if login == "" || req.Password == "" {
		logger.Warn("login missing credentials")
		respondError(ctx, w, http.StatusBadRequest, "username or email and password are required")
		return
	}

	user, err := h.Users.FindByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			logger.Warn("login unknown user", "login", login)
			respondError(ctx, w, http.StatusNotFound, "user does not exist")
			return
		}
		logger.Error("login user lookup failed", "error", err, "login", login)
		respondError(ctx, w, http.StatusInternalServerError, "internal server error")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		logger.Warn("login password mismatch", "userId", user.ID)
		respondError(ctx, w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	tokens, err := h.Sessions.Issue(ctx, user.ID)
	if err != nil {
		logger.Error("failed to issue session", "error", err, "userId", user.ID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to create session")
		return
	}

	setAuthCookies(w, tokens)
	respondData(ctx, w, http.StatusOK, loginResponse{User: user, Tokens: tokens}, "logged in successfully")
}

// Logout handles POST /api/v1/users/logout requests for authenticated users.
func (h AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if cookie, err := r.Cookie(RefreshTokenCookie); err == nil && cookie.Value != "" {
		h.Sessions.Revoke(ctx, cookie.Value)
	}

	clearAuthCookies(w)
	respondData(ctx, w, http.StatusOK, nil, "logged out successfully")
}

// RefreshToken handles POST /api/v1/users/refresh-token requests, rotating
// the refresh token and reissuing both cookies.
func (h AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	refreshToken := ""
	if cookie, err := r.Cookie(RefreshTokenCookie); err == nil {
		refreshToken = cookie.Value
	}
	if refreshToken == "" {
		var req refreshRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			refreshToken = strings.TrimSpace(req.RefreshToken)
		}
	}
	if refreshToken == "" {
		logger.Warn("missing refresh token")
		respondError(ctx, w, http.StatusUnauthorized, "refresh token is required")
		return
	}

	tokens, err := h.Sessions.Refresh(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrSessionNotFound) || errors.Is(err, auth.ErrRefreshTokenExpired) {
			logger.Warn("refresh token rejected", "error", err)
			respondError(ctx, w, http.StatusUnauthorized, "invalid refresh token")
			return
		}
		logger.Error("refresh failed", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "unable to refresh session")
		return
	}

	setAuthCookies(w, tokens)
	respondData(ctx, w, http.StatusOK, tokens, "access token refreshed")
}

// ChangePassword handles POST /api/v1/users/change-password requests for
// authenticated users.
func (h AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid change password payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.OldPassword == "" || req.NewPassword == "" {
		respondError(ctx, w, http.StatusBadRequest, "old and new passwords are required")
		return
	}
	if len(req.NewPassword) < 8 {
		respondError(ctx, w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.OldPassword)); err != nil {
		logger.Warn("change password old password mismatch", "userId", user.ID)
		respondError(ctx, w, http.StatusUnauthorized, "invalid old password")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("change password failed to hash", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to secure password")
		return
	}

	user.Password = string(hashed)
	user.UpdatedAt = h.now()
	if err := h.Users.Update(ctx, user); err != nil {
		respondStoreError(ctx, w, err, "user not found")
		return
	}

	respondData(ctx, w, http.StatusOK, nil, "password changed successfully")
}

func (h AuthHandler) storeFormFile(r *http.Request, field, keyPrefix string) (media.StoredObject, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return media.StoredObject{}, err
	}
	defer file.Close()

	return media.Store(r.Context(), h.Storage, keyPrefix, sanitizeFilename(header), file)
}

func (h AuthHandler) enqueueCleanup(ctx context.Context, keys ...string) {
	if h.Cleaner == nil {
		return
	}
	if err := h.Cleaner.Enqueue(ctx, keys...); err != nil {
		logging.FromContext(ctx).Error("enqueue media cleanup", "error", err, "keys", keys)
	}
}

func sanitizeFilename(header *multipart.FileHeader) string {
	name := strings.TrimSpace(header.Filename)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	if name == "" {
		name = uuid.NewString()
	}
	return name
}

func setAuthCookies(w http.ResponseWriter, tokens models.SessionTokens) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    tokens.AccessToken,
		Path:     "/",
		Expires:  tokens.AccessExpiresAt,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshTokenCookie,
		Value:    tokens.RefreshToken,
		Path:     "/",
		Expires:  tokens.RefreshExpiresAt,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearAuthCookies(w http.ResponseWriter) {
	for _, name := range []string{middleware.AccessTokenCookie, RefreshTokenCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   true,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	User   models.User          `json:"user"`
	Tokens models.SessionTokens `json:"tokens"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

func (h AuthHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
