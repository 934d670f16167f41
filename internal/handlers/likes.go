package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/playtube/backend/internal/middleware"
	"github.com/playtube/backend/internal/models"
)

// LikeHandler implements like toggles and the liked-videos view. The target
// must exist when the toggle runs; a vanished target reads as not found.
type LikeHandler struct {
	Likes    LikeStore
	Videos   VideoStore
	Comments CommentStore
	Tweets   TweetStore
	Views    ViewStore
}

// ToggleVideo handles POST /api/v1/like/toggle/v/{videoId}.
func (h LikeHandler) ToggleVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	videoID := chi.URLParam(r, "videoId")

	if _, err := h.Videos.FindByID(ctx, videoID); err != nil {
		respondError(ctx, w, err, "failed to load video")
		return
	}

	h.toggle(w, r, models.VideoTarget(videoID))
}

// ToggleComment handles POST /api/v1/like/toggle/c/{commentId}.
func (h LikeHandler) ToggleComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	commentID := chi.URLParam(r, "commentId")

	if _, err := h.Comments.FindByID(ctx, commentID); err != nil {
		respondError(ctx, w, err, "failed to load comment")
		return
	}

	h.toggle(w, r, models.CommentTarget(commentID))
}

// ToggleTweet handles POST /api/v1/like/toggle/t/{tweetId}.
func (h LikeHandler) ToggleTweet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tweetID := chi.URLParam(r, "tweetId")

	if _, err := h.Tweets.FindByID(ctx, tweetID); err != nil {
		respondError(ctx, w, err, "failed to load tweet")
		return
	}

	h.toggle(w, r, models.TweetTarget(tweetID))
}

func (h LikeHandler) toggle(w http.ResponseWriter, r *http.Request, target models.LikeTarget) {
	ctx := r.Context()

	liked, err := h.Likes.Toggle(ctx, middleware.ActorFromContext(ctx), target)
	if err != nil {
		respondError(ctx, w, err, "failed to toggle like")
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]bool{"isLiked": liked}, "like toggled")
}

// ListLikedVideos handles GET /api/v1/like/videos.
func (h LikeHandler) ListLikedVideos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	videos, err := h.Views.ListLikedVideos(ctx, middleware.ActorFromContext(ctx))
	if err != nil {
		respondError(ctx, w, err, "failed to list liked videos")
		return
	}

	respondJSON(ctx, w, http.StatusOK, videos, "liked videos")
}
