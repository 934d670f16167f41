package repositories

import (
	"context"

	"github.com/playtube/backend/internal/models"
)

// UserUpdate carries a partial account update. Nil fields are left unchanged.
type UserUpdate struct {
	FullName   *string
	Email      *string
	Avatar     *string
	CoverImage *string
	Password   *string
}

// UserRepository defines the data access contract for user accounts.
type UserRepository interface {
	Create(ctx context.Context, user models.User) error
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByLogin(ctx context.Context, login string) (models.User, error)
	Update(ctx context.Context, id string, update UserUpdate) (models.User, error)
	SetRefreshToken(ctx context.Context, userID, token string) error
	AddWatchHistory(ctx context.Context, userID, videoID string) error
	Delete(ctx context.Context, userID string) error
}
