package repositories

import (
	"context"

	"github.com/playtube/backend/internal/models"
)

// VideoUpdate carries a partial video update. Nil fields are left unchanged.
type VideoUpdate struct {
	Title       *string
	Description *string
	Thumbnail   *string
}

// VideoRepository exposes data access for uploaded videos.
type VideoRepository interface {
	Create(ctx context.Context, video models.Video) error
	FindByID(ctx context.Context, id string) (models.Video, error)
	Update(ctx context.Context, id string, update VideoUpdate) (models.Video, error)
	TogglePublish(ctx context.Context, id string) (bool, error)
	IncrementViews(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}
