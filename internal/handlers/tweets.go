package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/playtube/backend/internal/middleware"
	"github.com/playtube/backend/internal/models"
	"github.com/playtube/backend/internal/ownership"
)

// TweetHandler implements tweet endpoints.
type TweetHandler struct {
	Tweets  TweetStore
	Users   UserStore
	Views   ViewStore
	NowFunc func() time.Time
}

type tweetRequest struct {
	Content string `json:"content"`
}

// tweetResponse is the write-path projection of a tweet, cased like the read
// views.
type tweetResponse struct {
	ID        string    `json:"id"`
	Owner     string    `json:"owner"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func presentTweet(t models.Tweet) tweetResponse {
	return tweetResponse{
		ID:        t.ID,
		Owner:     t.Owner,
		Content:   t.Content,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

// Create handles POST /api/v1/tweet.
func (h TweetHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID := middleware.ActorFromContext(ctx)

	var req tweetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, nil, "invalid request body")
		return
	}

	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		respondJSON(ctx, w, http.StatusBadRequest, nil, "content is required")
		return
	}

	now := h.now()
	tweet := models.Tweet{
		ID:        uuid.NewString(),
		Owner:     actorID,
		Content:   req.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.Tweets.Create(ctx, tweet); err != nil {
		respondError(ctx, w, err, "failed to create tweet")
		return
	}

	respondJSON(ctx, w, http.StatusCreated, presentTweet(tweet), "tweet created")
}

// ListForUser handles GET /api/v1/tweet/user/{userId}.
func (h TweetHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "userId")

	if _, err := h.Users.FindByID(ctx, userID); err != nil {
		respondError(ctx, w, err, "failed to load user")
		return
	}

	tweets, err := h.Views.ListUserTweets(ctx, middleware.ActorFromContext(ctx), userID)
	if err != nil {
		respondError(ctx, w, err, "failed to list tweets")
		return
	}

	respondJSON(ctx, w, http.StatusOK, tweets, "tweets")
}

// Update handles PATCH /api/v1/tweet/{tweetId}.
func (h TweetHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tweetID := chi.URLParam(r, "tweetId")

	tweet, err := h.Tweets.FindByID(ctx, tweetID)
	if err != nil {
		respondError(ctx, w, err, "failed to load tweet")
		return
	}

	if err := ownership.Authorize(tweet, middleware.ActorFromContext(ctx)); err != nil {
		respondError(ctx, w, err, "forbidden")
		return
	}

	var req tweetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, nil, "invalid request body")
		return
	}

	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		respondJSON(ctx, w, http.StatusBadRequest, nil, "content is required")
		return
	}

	updated, err := h.Tweets.UpdateContent(ctx, tweetID, req.Content)
	if err != nil {
		respondError(ctx, w, err, "failed to update tweet")
		return
	}

	respondJSON(ctx, w, http.StatusOK, presentTweet(updated), "tweet updated")
}

// Delete handles DELETE /api/v1/tweet/{tweetId}.
func (h TweetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tweetID := chi.URLParam(r, "tweetId")

	tweet, err := h.Tweets.FindByID(ctx, tweetID)
	if err != nil {
		respondError(ctx, w, err, "failed to load tweet")
		return
	}

	if err := ownership.Authorize(tweet, middleware.ActorFromContext(ctx)); err != nil {
		respondError(ctx, w, err, "forbidden")
		return
	}

	if err := h.Tweets.Delete(ctx, tweetID); err != nil {
		respondError(ctx, w, err, "failed to delete tweet")
		return
	}

	respondJSON(ctx, w, http.StatusOK, nil, "tweet deleted")
}

func (h TweetHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
