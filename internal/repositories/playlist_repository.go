package repositories

import (
	"context"

	"github.com/playtube/backend/internal/models"
)

// PlaylistUpdate carries a partial playlist update. Nil fields are left
// unchanged.
type PlaylistUpdate struct {
	Name        *string
	Description *string
}

// PlaylistRepository defines data access for playlists and their membership.
type PlaylistRepository interface {
	Create(ctx context.Context, playlist models.Playlist) error
	FindByID(ctx context.Context, id string) (models.Playlist, error)
	Update(ctx context.Context, id string, update PlaylistUpdate) (models.Playlist, error)
	Delete(ctx context.Context, id string) error
	AddVideo(ctx context.Context, playlistID, videoID string) error
	RemoveVideo(ctx context.Context, playlistID, videoID string) error
}
