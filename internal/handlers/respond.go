package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/playtube/backend/internal/auth"
	"github.com/playtube/backend/internal/logging"
	"github.com/playtube/backend/internal/ownership"
	"github.com/playtube/backend/internal/repositories"
)

// apiResponse is the envelope wrapping every JSON response body. Error
// responses additionally carry the failure messages as an errors list.
type apiResponse struct {
	StatusCode int      `json:"statusCode"`
	Data       any      `json:"data"`
	Message    string   `json:"message"`
	Success    bool     `json:"success"`
	Errors     []string `json:"errors,omitempty"`
}

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, data any, message string) {
	payload := apiResponse{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    status < http.StatusBadRequest,
	}
	if !payload.Success {
		payload.Errors = []string{message}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.FromContext(ctx).Error("encode response body", "status", status, "error", err)
		return
	}

	logger := logging.FromContext(ctx)
	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("request failed", "status", status, "message", message)
	case status >= http.StatusBadRequest:
		logger.Warn("request returned client error", "status", status, "message", message)
	}
}

// respondError maps service errors onto HTTP statuses. Unrecognized errors
// surface as 500 with the provided fallback message so internals never leak.
func respondError(ctx context.Context, w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ownership.ErrForbidden):
		respondJSON(ctx, w, http.StatusForbidden, nil, "you do not own this resource")
	case errors.Is(err, repositories.ErrNotFound):
		respondJSON(ctx, w, http.StatusNotFound, nil, "resource not found")
	case errors.Is(err, repositories.ErrConflict):
		respondJSON(ctx, w, http.StatusConflict, nil, "resource already exists")
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenExpired),
		errors.Is(err, auth.ErrRefreshMismatch):
		respondJSON(ctx, w, http.StatusUnauthorized, nil, "unauthorized")
	default:
		logging.FromContext(ctx).Error(fallback, "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, nil, fallback)
	}
}
