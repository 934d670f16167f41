package repositories

import (
	"context"

	"github.com/playtube/backend/internal/models"
)

// LikeRepository defines data access for likes across all target kinds.
// Toggle reports the resulting state: true when a like now exists.
type LikeRepository interface {
	Toggle(ctx context.Context, actorID string, target models.LikeTarget) (bool, error)
}
