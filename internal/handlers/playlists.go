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
	"github.com/playtube/backend/internal/repositories"
)

// PlaylistHandler implements playlist endpoints.
type PlaylistHandler struct {
	Playlists PlaylistStore
	Videos    VideoStore
	Users     UserStore
	Views     ViewStore
	NowFunc   func() time.Time
}

type playlistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// playlistResponse is the write-path projection of a playlist, cased like the
// read views.
type playlistResponse struct {
	ID          string    `json:"id"`
	Owner       string    `json:"owner"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func presentPlaylist(p models.Playlist) playlistResponse {
	return playlistResponse{
		ID:          p.ID,
		Owner:       p.Owner,
		Name:        p.Name,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// Create handles POST /api/v1/playlist.
func (h PlaylistHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID := middleware.ActorFromContext(ctx)

	var req playlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, nil, "invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)
	if req.Name == "" || req.Description == "" {
		respondJSON(ctx, w, http.StatusBadRequest, nil, "name and description are required")
		return
	}

	now := h.now()
	playlist := models.Playlist{
		ID:          uuid.NewString(),
		Owner:       actorID,
		Name:        req.Name,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.Playlists.Create(ctx, playlist); err != nil {
		respondError(ctx, w, err, "failed to create playlist")
		return
	}

	respondJSON(ctx, w, http.StatusCreated, presentPlaylist(playlist), "playlist created")
}

// ListForUser handles GET /api/v1/playlist/user/{userId}.
func (h PlaylistHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "userId")

	if _, err := h.Users.FindByID(ctx, userID); err != nil {
		respondError(ctx, w, err, "failed to load user")
		return
	}

	playlists, err := h.Views.ListUserPlaylists(ctx, userID)
	if err != nil {
		respondError(ctx, w, err, "failed to list playlists")
		return
	}

	respondJSON(ctx, w, http.StatusOK, playlists, "playlists")
}

// Get handles GET /api/v1/playlist/{playlistId}. Only published videos are
// included in the detail view.
func (h PlaylistHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	playlistID := chi.URLParam(r, "playlistId")

	detail, err := h.Views.GetPlaylistByID(ctx, playlistID)
	if err != nil {
		respondError(ctx, w, err, "failed to load playlist")
		return
	}

	respondJSON(ctx, w, http.StatusOK, detail, "playlist")
}

type updatePlaylistRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// Update handles PATCH /api/v1/playlist/{playlistId}.
func (h PlaylistHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	playlistID := chi.URLParam(r, "playlistId")

	playlist, err := h.Playlists.FindByID(ctx, playlistID)
	if err != nil {
		respondError(ctx, w, err, "failed to load playlist")
		return
	}

	if err := ownership.Authorize(playlist, middleware.ActorFromContext(ctx)); err != nil {
		respondError(ctx, w, err, "forbidden")
		return
	}

	var req updatePlaylistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, nil, "invalid request body")
		return
	}

	if req.Name == nil && req.Description == nil {
		respondJSON(ctx, w, http.StatusBadRequest, nil, "nothing to update")
		return
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		respondJSON(ctx, w, http.StatusBadRequest, nil, "name must not be blank")
		return
	}
	if req.Description != nil && strings.TrimSpace(*req.Description) == "" {
		respondJSON(ctx, w, http.StatusBadRequest, nil, "description must not be blank")
		return
	}

	updated, err := h.Playlists.Update(ctx, playlistID, repositories.PlaylistUpdate{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondError(ctx, w, err, "failed to update playlist")
		return
	}

	respondJSON(ctx, w, http.StatusOK, presentPlaylist(updated), "playlist updated")
}

// Delete handles DELETE /api/v1/playlist/{playlistId}.
func (h PlaylistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	playlistID := chi.URLParam(r, "playlistId")

	playlist, err := h.Playlists.FindByID(ctx, playlistID)
	if err != nil {
		respondError(ctx, w, err, "failed to load playlist")
		return
	}

	if err := ownership.Authorize(playlist, middleware.ActorFromContext(ctx)); err != nil {
		respondError(ctx, w, err, "forbidden")
		return
	}

	if err := h.Playlists.Delete(ctx, playlistID); err != nil {
		respondError(ctx, w, err, "failed to delete playlist")
		return
	}

	respondJSON(ctx, w, http.StatusOK, nil, "playlist deleted")
}

// AddVideo handles PATCH /api/v1/playlist/add/{videoId}/{playlistId}.
// Membership is set semantics: re-adding is a no-op success.
func (h PlaylistHandler) AddVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	playlistID := chi.URLParam(r, "playlistId")
	videoID := chi.URLParam(r, "videoId")

	playlist, err := h.Playlists.FindByID(ctx, playlistID)
	if err != nil {
		respondError(ctx, w, err, "failed to load playlist")
		return
	}

	if err := ownership.Authorize(playlist, middleware.ActorFromContext(ctx)); err != nil {
		respondError(ctx, w, err, "forbidden")
		return
	}

	if _, err := h.Videos.FindByID(ctx, videoID); err != nil {
		respondError(ctx, w, err, "failed to load video")
		return
	}

	if err := h.Playlists.AddVideo(ctx, playlistID, videoID); err != nil {
		respondError(ctx, w, err, "failed to add video to playlist")
		return
	}

	respondJSON(ctx, w, http.StatusOK, nil, "video added to playlist")
}

// RemoveVideo handles PATCH /api/v1/playlist/remove/{videoId}/{playlistId}.
func (h PlaylistHandler) RemoveVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	playlistID := chi.URLParam(r, "playlistId")
	videoID := chi.URLParam(r, "videoId")

	playlist, err := h.Playlists.FindByID(ctx, playlistID)
	if err != nil {
		respondError(ctx, w, err, "failed to load playlist")
		return
	}

	if err := ownership.Authorize(playlist, middleware.ActorFromContext(ctx)); err != nil {
		respondError(ctx, w, err, "forbidden")
		return
	}

	if err := h.Playlists.RemoveVideo(ctx, playlistID, videoID); err != nil {
		respondError(ctx, w, err, "failed to remove video from playlist")
		return
	}

	respondJSON(ctx, w, http.StatusOK, nil, "video removed from playlist")
}

func (h PlaylistHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
