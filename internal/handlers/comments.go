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

// CommentHandler implements comment endpoints.
type CommentHandler struct {
	Comments CommentStore
	Videos   VideoStore
	Views    ViewStore
	NowFunc  func() time.Time
}

// List handles GET /api/v1/comment/{videoId}.
func (h CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	videoID := chi.URLParam(r, "videoId")

	if _, err := h.Videos.FindByID(ctx, videoID); err != nil {
		respondError(ctx, w, err, "failed to load video")
		return
	}

	page, err := pageRequest(r)
	if err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, nil, "invalid pagination parameters")
		return
	}

	comments, err := h.Views.ListVideoComments(ctx, middleware.ActorFromContext(ctx), videoID, page)
	if err != nil {
		respondError(ctx, w, err, "failed to list comments")
		return
	}

	respondJSON(ctx, w, http.StatusOK, comments, "comments")
}

type commentRequest struct {
	Content string `json:"content"`
}

// commentResponse is the write-path projection of a comment. Field casing
// matches the read views so the entity round-trips with one shape.
type commentResponse struct {
	ID        string    `json:"id"`
	Video     string    `json:"video"`
	Owner     string    `json:"owner"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func presentComment(c models.Comment) commentResponse {
	return commentResponse{
		ID:        c.ID,
		Video:     c.Video,
		Owner:     c.Owner,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// Add handles POST /api/v1/comment/{videoId}.
func (h CommentHandler) Add(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	videoID := chi.URLParam(r, "videoId")
	actorID := middleware.ActorFromContext(ctx)

	if _, err := h.Videos.FindByID(ctx, videoID); err != nil {
		respondError(ctx, w, err, "failed to load video")
		return
	}

	var req commentRequest
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
	comment := models.Comment{
		ID:        uuid.NewString(),
		Video:     videoID,
		Owner:     actorID,
		Content:   req.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.Comments.Create(ctx, comment); err != nil {
		respondError(ctx, w, err, "failed to add comment")
		return
	}

	respondJSON(ctx, w, http.StatusCreated, presentComment(comment), "comment added")
}

// Update handles PATCH /api/v1/comment/c/{commentId}.
func (h CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	commentID := chi.URLParam(r, "commentId")

	comment, err := h.Comments.FindByID(ctx, commentID)
	if err != nil {
		respondError(ctx, w, err, "failed to load comment")
		return
	}

	if err := ownership.Authorize(comment, middleware.ActorFromContext(ctx)); err != nil {
		respondError(ctx, w, err, "forbidden")
		return
	}

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, nil, "invalid request body")
		return
	}

	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		respondJSON(ctx, w, http.StatusBadRequest, nil, "content is required")
		return
	}

	updated, err := h.Comments.UpdateContent(ctx, commentID, req.Content)
	if err != nil {
		respondError(ctx, w, err, "failed to update comment")
		return
	}

	respondJSON(ctx, w, http.StatusOK, presentComment(updated), "comment updated")
}

// Delete handles DELETE /api/v1/comment/c/{commentId}.
func (h CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	commentID := chi.URLParam(r, "commentId")

	comment, err := h.Comments.FindByID(ctx, commentID)
	if err != nil {
		respondError(ctx, w, err, "failed to load comment")
		return
	}

	if err := ownership.Authorize(comment, middleware.ActorFromContext(ctx)); err != nil {
		respondError(ctx, w, err, "forbidden")
		return
	}

	if err := h.Comments.Delete(ctx, commentID); err != nil {
		respondError(ctx, w, err, "failed to delete comment")
		return
	}

	respondJSON(ctx, w, http.StatusOK, nil, "comment deleted")
}

func (h CommentHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
