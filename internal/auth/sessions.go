package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/playtube/backend/internal/models"
)

// ErrRefreshMismatch indicates a structurally valid refresh token that does
// not match the credential currently stored for the user. The old token was
// invalidated by a later rotation or a logout; the caller must log in again.
var ErrRefreshMismatch = errors.New("refresh token does not match stored credential")

// RefreshTokenStore persists the currently valid refresh token on the user
// record so rotation and logout survive process restarts.
type RefreshTokenStore interface {
	FindByID(ctx context.Context, id string) (models.User, error)
	SetRefreshToken(ctx context.Context, userID, token string) error
}

// Sessions manages the lifecycle of issued credentials. Exactly one refresh
// token is valid per user at any time: the one stored on the user row.
type Sessions struct {
	issuer *TokenIssuer
	users  RefreshTokenStore
}

// NewSessions constructs a session service over the provided issuer and store.
func NewSessions(issuer *TokenIssuer, users RefreshTokenStore) *Sessions {
	if issuer == nil || users == nil {
		panic("auth: sessions require an issuer and a user store")
	}
	return &Sessions{issuer: issuer, users: users}
}

// Issue creates a token pair for the user and persists the refresh token,
// invalidating any previously issued refresh token by overwrite.
func (s *Sessions) Issue(ctx context.Context, userID string) (models.TokenPair, error) {
	pair, err := s.issuer.Issue(userID)
	if err != nil {
		return models.TokenPair{}, err
	}

	if err := s.users.SetRefreshToken(ctx, userID, pair.RefreshToken); err != nil {
		return models.TokenPair{}, fmt.Errorf("persist refresh token: %w", err)
	}

	return pair, nil
}

// Refresh exchanges a refresh token for a new pair. The presented token must
// verify, be unexpired, and equal the token currently stored on the user.
func (s *Sessions) Refresh(ctx context.Context, refreshToken string) (models.TokenPair, error) {
	if refreshToken == "" {
		return models.TokenPair{}, ErrInvalidToken
	}

	userID, err := s.issuer.ParseRefresh(refreshToken)
	if err != nil {
		return models.TokenPair{}, err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return models.TokenPair{}, ErrRefreshMismatch
	}

	if user.RefreshToken == "" || user.RefreshToken != refreshToken {
		return models.TokenPair{}, ErrRefreshMismatch
	}

	return s.Issue(ctx, userID)
}

// Revoke unsets the stored refresh token, ending the user's session.
func (s *Sessions) Revoke(ctx context.Context, userID string) error {
	if userID == "" {
		return nil
	}
	return s.users.SetRefreshToken(ctx, userID, "")
}

// ParseAccess verifies an access token and returns the actor it identifies.
func (s *Sessions) ParseAccess(token string) (string, error) {
	return s.issuer.ParseAccess(token)
}
