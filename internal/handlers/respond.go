package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/playtube/backend/internal/logging"
	"github.com/playtube/backend/internal/repositories"
)

// envelope is the uniform response body. Success responses carry data, error
// responses carry an errors list.
type envelope struct {
	StatusCode int      `json:"statusCode"`
	Data       any      `json:"data,omitempty"`
	Message    string   `json:"message"`
	Success    bool     `json:"success"`
	Errors     []string `json:"errors,omitempty"`
}

func respondData(ctx context.Context, w http.ResponseWriter, status int, data any, message string) {
	writeEnvelope(ctx, w, envelope{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    true,
	})
}

func respondError(ctx context.Context, w http.ResponseWriter, status int, message string) {
	writeEnvelope(ctx, w, envelope{
		StatusCode: status,
		Message:    message,
		Success:    false,
		Errors:     []string{},
	})
}

// respondStoreError maps repository sentinels onto HTTP statuses. The
// original error kind survives to the response: not-found stays 404 and
// conflicts stay 409 no matter how deep the call that produced them.
func respondStoreError(ctx context.Context, w http.ResponseWriter, err error, notFoundMessage string) {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		respondError(ctx, w, http.StatusNotFound, notFoundMessage)
	case errors.Is(err, repositories.ErrConflict):
		respondError(ctx, w, http.StatusConflict, "resource already exists")
	default:
		logging.FromContext(ctx).Error("store operation failed", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "internal server error")
	}
}

func writeEnvelope(ctx context.Context, w http.ResponseWriter, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(body.StatusCode)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.FromContext(ctx).Error("encode response body", "status", body.StatusCode, "error", err)
		return
	}

	logger := logging.FromContext(ctx)
	switch {
	case body.StatusCode >= http.StatusInternalServerError:
		logger.Error("request failed", "status", body.StatusCode, "message", body.Message)
	case body.StatusCode >= http.StatusBadRequest:
		logger.Warn("request returned client error", "status", body.StatusCode, "message", body.Message)
	}
}
