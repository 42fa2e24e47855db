package handlers

import (
	"net/http"

	"github.com/playtube/backend/internal/middleware"
)

// SubscriptionHandler implements subscription toggling and both subscription
// projections.
type SubscriptionHandler struct {
	Subscriptions SubscriptionStore
	Users         UserStore
}

// Toggle handles POST /api/v1/subscriptions/c/{channelId} requests.
func (h SubscriptionHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	channelID := r.PathValue("channelId")
	if _, err := h.Users.FindByID(ctx, channelID); err != nil {
		respondStoreError(ctx, w, err, "channel not found")
		return
	}

	subscribed, err := h.Subscriptions.Toggle(ctx, user.ID, channelID)
	if err != nil {
		respondStoreError(ctx, w, err, "channel not found")
		return
	}

	message := "unsubscribed"
	if subscribed {
		message = "subscribed"
	}

	respondData(ctx, w, http.StatusOK, toggleSubscriptionResponse{Subscribed: subscribed}, message)
}

// Subscribers handles GET /api/v1/subscriptions/c/{channelId} requests:
// who subscribes to this channel. Zero subscribers is a valid answer.
func (h SubscriptionHandler) Subscribers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, ok := middleware.CurrentUser(ctx); !ok {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	channelID := r.PathValue("channelId")
	if _, err := h.Users.FindByID(ctx, channelID); err != nil {
		respondStoreError(ctx, w, err, "channel not found")
		return
	}

	subscribers, err := h.Subscriptions.Subscribers(ctx, channelID)
	if err != nil {
		respondStoreError(ctx, w, err, "channel not found")
		return
	}

	respondData(ctx, w, http.StatusOK, subscribers, "subscribers fetched successfully")
}

// Channels handles GET /api/v1/subscriptions/u/{subscriberId} requests:
// which channels this user subscribes to.
func (h SubscriptionHandler) Channels(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, ok := middleware.CurrentUser(ctx); !ok {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	subscriberID := r.PathValue("subscriberId")
	if _, err := h.Users.FindByID(ctx, subscriberID); err != nil {
		respondStoreError(ctx, w, err, "user not found")
		return
	}

	channels, err := h.Subscriptions.Channels(ctx, subscriberID)
	if err != nil {
		respondStoreError(ctx, w, err, "user not found")
		return
	}

	respondData(ctx, w, http.StatusOK, channels, "subscribed channels fetched successfully")
}

type toggleSubscriptionResponse struct {
	Subscribed bool `json:"subscribed"`
}
