package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/playtube/backend/internal/middleware"
)

// SubscriptionHandler implements channel subscription endpoints.
type SubscriptionHandler struct {
	Subscriptions SubscriptionStore
	Users         UserStore
	Views         ViewStore
}

// Toggle handles POST /api/v1/subscription/c/{channelId}. Subscribing to
// your own channel is rejected.
func (h SubscriptionHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	channelID := chi.URLParam(r, "channelId")
	actorID := middleware.ActorFromContext(ctx)

	if channelID == actorID {
		respondJSON(ctx, w, http.StatusBadRequest, nil, "cannot subscribe to your own channel")
		return
	}

	if _, err := h.Users.FindByID(ctx, channelID); err != nil {
		respondError(ctx, w, err, "failed to load channel")
		return
	}

	subscribed, err := h.Subscriptions.Toggle(ctx, actorID, channelID)
	if err != nil {
		respondError(ctx, w, err, "failed to toggle subscription")
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]bool{"subscribed": subscribed}, "subscription toggled")
}

// ListSubscribers handles GET /api/v1/subscription/c/{channelId}.
func (h SubscriptionHandler) ListSubscribers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	channelID := chi.URLParam(r, "channelId")

	if _, err := h.Users.FindByID(ctx, channelID); err != nil {
		respondError(ctx, w, err, "failed to load channel")
		return
	}

	subscribers, err := h.Views.ListChannelSubscribers(ctx, channelID)
	if err != nil {
		respondError(ctx, w, err, "failed to list subscribers")
		return
	}

	respondJSON(ctx, w, http.StatusOK, subscribers, "subscribers")
}

// ListSubscribed handles GET /api/v1/subscription/u/{subscriberId}.
func (h SubscriptionHandler) ListSubscribed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subscriberID := chi.URLParam(r, "subscriberId")

	if _, err := h.Users.FindByID(ctx, subscriberID); err != nil {
		respondError(ctx, w, err, "failed to load user")
		return
	}

	channels, err := h.Views.ListSubscribedChannels(ctx, subscriberID)
	if err != nil {
		respondError(ctx, w, err, "failed to list subscribed channels")
		return
	}

	respondJSON(ctx, w, http.StatusOK, channels, "subscribed channels")
}
