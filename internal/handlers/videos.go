package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/playtube/backend/internal/logging"
	"github.com/playtube/backend/internal/middleware"
	"github.com/playtube/backend/internal/models"
	"github.com/playtube/backend/internal/ownership"
	"github.com/playtube/backend/internal/readmodel"
	"github.com/playtube/backend/internal/repositories"
)

// VideoHandler implements video upload, retrieval and lifecycle endpoints.
type VideoHandler struct {
	Videos  VideoStore
	Users   UserStore
	Views   ViewStore
	Media   MediaStorage
	NowFunc func() time.Time
}

// List handles GET /api/v1/video. Results are published videos only,
// optionally filtered to one owner via ?userId=.
func (h VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	page, err := pageRequest(r)
	if err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, nil, "invalid pagination parameters")
		return
	}

	videos, err := h.Views.ListVideos(ctx, middleware.ActorFromContext(ctx), r.URL.Query().Get("userId"), page)
	if err != nil {
		respondError(ctx, w, err, "failed to list videos")
		return
	}

	respondJSON(ctx, w, http.StatusOK, videos, "videos")
}

// Publish handles POST /api/v1/video. Upload is multipart: videoFile and
// thumbnail are required, duration comes from the client form.
func (h VideoHandler) Publish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID := middleware.ActorFromContext(ctx)

	if err := r.ParseMultipartForm(videoUploadLimit); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, nil, "invalid multipart payload")
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	description := strings.TrimSpace(r.FormValue("description"))
	if title == "" || description == "" {
		respondJSON(ctx, w, http.StatusBadRequest, nil, "title and description are required")
		return
	}

	duration, err := strconv.ParseFloat(r.FormValue("duration"), 64)
	if err != nil || duration < 0 {
		respondJSON(ctx, w, http.StatusBadRequest, nil, "duration must be a non-negative number of seconds")
		return
	}

	videoFile, err := saveUpload(ctx, h.Media, r, "videoFile", "videos")
	if err != nil {
		if errors.Is(err, errMissingFile) {
			respondJSON(ctx, w, http.StatusBadRequest, nil, "video file is required")
			return
		}
		respondError(ctx, w, err, "failed to store video file")
		return
	}

	thumbnail, err := saveUpload(ctx, h.Media, r, "thumbnail", "thumbnails")
	if err != nil {
		if errors.Is(err, errMissingFile) {
			respondJSON(ctx, w, http.StatusBadRequest, nil, "thumbnail is required")
			return
		}
		respondError(ctx, w, err, "failed to store thumbnail")
		return
	}

	now := h.now()
	video := models.Video{
		ID:          uuid.NewString(),
		Owner:       actorID,
		Title:       title,
		Description: description,
		VideoFile:   videoFile,
		Thumbnail:   thumbnail,
		Duration:    duration,
		IsPublished: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.Videos.Create(ctx, video); err != nil {
		respondError(ctx, w, err, "failed to publish video")
		return
	}

	view, err := h.Views.GetVideoByID(ctx, actorID, video.ID)
	if err != nil {
		respondError(ctx, w, err, "failed to load published video")
		return
	}

	logging.FromContext(ctx).Info("video published", "videoId", video.ID, "userId", actorID)
	respondJSON(ctx, w, http.StatusCreated, view, "video published")
}

// Get handles GET /api/v1/video/{videoId}. A successful fetch counts as a
// view and, for authenticated actors, lands in watch history.
func (h VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)
	videoID := chi.URLParam(r, "videoId")
	actorID := middleware.ActorFromContext(ctx)

	if _, err := h.Videos.FindByID(ctx, videoID); err != nil {
		respondError(ctx, w, err, "failed to load video")
		return
	}

	if err := h.Videos.IncrementViews(ctx, videoID); err != nil {
		logger.Warn("failed to increment views", "videoId", videoID, "error", err)
	}

	if actorID != "" {
		if err := h.Users.AddWatchHistory(ctx, actorID, videoID); err != nil {
			logger.Warn("failed to record watch history", "videoId", videoID, "userId", actorID, "error", err)
		}
	}

	view, err := h.Views.GetVideoByID(ctx, actorID, videoID)
	if err != nil {
		respondError(ctx, w, err, "failed to load video")
		return
	}

	respondJSON(ctx, w, http.StatusOK, view, "video")
}

type updateVideoRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// Update handles PATCH /api/v1/video/{videoId}. Metadata arrives as multipart
// form fields so a replacement thumbnail can ride along.
func (h VideoHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	videoID := chi.URLParam(r, "videoId")
	actorID := middleware.ActorFromContext(ctx)

	video, err := h.Videos.FindByID(ctx, videoID)
	if err != nil {
		respondError(ctx, w, err, "failed to load video")
		return
	}

	if err := ownership.Authorize(video, actorID); err != nil {
		respondError(ctx, w, err, "forbidden")
		return
	}

	if err := r.ParseMultipartForm(imageUploadLimit); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, nil, "invalid multipart payload")
		return
	}

	update := repositories.VideoUpdate{}
	if title := strings.TrimSpace(r.FormValue("title")); title != "" {
		update.Title = &title
	}
	if description := strings.TrimSpace(r.FormValue("description")); description != "" {
		update.Description = &description
	}

	thumbnail, err := saveUpload(ctx, h.Media, r, "thumbnail", "thumbnails")
	if err == nil {
		update.Thumbnail = &thumbnail
	} else if !errors.Is(err, errMissingFile) {
		respondError(ctx, w, err, "failed to store thumbnail")
		return
	}

	if update.Title == nil && update.Description == nil && update.Thumbnail == nil {
		respondJSON(ctx, w, http.StatusBadRequest, nil, "nothing to update")
		return
	}

	if _, err := h.Videos.Update(ctx, videoID, update); err != nil {
		respondError(ctx, w, err, "failed to update video")
		return
	}

	view, err := h.Views.GetVideoByID(ctx, actorID, videoID)
	if err != nil {
		respondError(ctx, w, err, "failed to load video")
		return
	}

	respondJSON(ctx, w, http.StatusOK, view, "video updated")
}

// Delete handles DELETE /api/v1/video/{videoId}.
func (h VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	videoID := chi.URLParam(r, "videoId")

	video, err := h.Videos.FindByID(ctx, videoID)
	if err != nil {
		respondError(ctx, w, err, "failed to load video")
		return
	}

	if err := ownership.Authorize(video, middleware.ActorFromContext(ctx)); err != nil {
		respondError(ctx, w, err, "forbidden")
		return
	}

	if err := h.Videos.Delete(ctx, videoID); err != nil {
		respondError(ctx, w, err, "failed to delete video")
		return
	}

	respondJSON(ctx, w, http.StatusOK, nil, "video deleted")
}

// TogglePublish handles PATCH /api/v1/video/toggle/publish/{videoId}.
func (h VideoHandler) TogglePublish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	videoID := chi.URLParam(r, "videoId")

	video, err := h.Videos.FindByID(ctx, videoID)
	if err != nil {
		respondError(ctx, w, err, "failed to load video")
		return
	}

	if err := ownership.Authorize(video, middleware.ActorFromContext(ctx)); err != nil {
		respondError(ctx, w, err, "forbidden")
		return
	}

	published, err := h.Videos.TogglePublish(ctx, videoID)
	if err != nil {
		respondError(ctx, w, err, "failed to toggle publish state")
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]bool{"isPublished": published}, "publish state toggled")
}

func (h VideoHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}

// pageRequest parses ?page= and ?limit= query parameters. Absent parameters
// fall back to the view layer's defaults; malformed ones are an error.
func pageRequest(r *http.Request) (readmodel.PageRequest, error) {
	req := readmodel.PageRequest{}

	if raw := r.URL.Query().Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return readmodel.PageRequest{}, errors.New("invalid page")
		}
		req.Page = page
	}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return readmodel.PageRequest{}, errors.New("invalid limit")
		}
		req.Limit = limit
	}

	return req, nil
}
