package handlers

import (
	"net/http"

	"github.com/playtube/backend/internal/middleware"
)

// DashboardHandler serves the authenticated user's channel dashboard.
type DashboardHandler struct {
	StatsSource StatsSource
	VideoStore  VideoStore
}

// Stats handles GET /api/v1/dashboard/stats requests. The figures come
// through a short-TTL cache; slightly stale numbers are acceptable here.
func (h DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	stats, err := h.StatsSource.ChannelStats(ctx, user.ID)
	if err != nil {
		respondStoreError(ctx, w, err, "channel not found")
		return
	}

	respondData(ctx, w, http.StatusOK, stats, "channel stats fetched successfully")
}

// Videos handles GET /api/v1/dashboard/videos requests: every video the
// channel owns, published or not, with per-video like counts.
func (h DashboardHandler) Videos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	videos, err := h.VideoStore.ChannelVideos(ctx, user.ID)
	if err != nil {
		respondStoreError(ctx, w, err, "channel not found")
		return
	}

	respondData(ctx, w, http.StatusOK, videos, "channel videos fetched successfully")
}
