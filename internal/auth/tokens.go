package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/playtube/backend/internal/models"
)

var (
	// ErrInvalidToken indicates a credential that fails signature or shape checks.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired indicates a credential past its expiry.
	ErrTokenExpired = errors.New("token expired")
)

// TokenIssuer signs and verifies the access/refresh credential pair. Access
// and refresh tokens use distinct secrets so one cannot stand in for the other.
type TokenIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration

	// NowFunc overrides the time source in tests.
	NowFunc func() time.Time
}

// NewTokenIssuer constructs an issuer with the provided secrets and TTLs.
func NewTokenIssuer(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// Issue creates a fresh access/refresh pair for the provided user identifier.
func (i *TokenIssuer) Issue(userID string) (models.TokenPair, error) {
	if userID == "" {
		return models.TokenPair{}, errors.New("user id must be provided")
	}

	now := i.now()
	accessExpiry := now.Add(i.accessTTL)
	refreshExpiry := now.Add(i.refreshTTL)

	access, err := signToken(userID, i.accessSecret, now, accessExpiry)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}

	refresh, err := signToken(userID, i.refreshSecret, now, refreshExpiry)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("sign refresh token: %w", err)
	}

	return models.TokenPair{
		AccessToken:      access,
		AccessExpiresAt:  accessExpiry,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExpiry,
	}, nil
}

// ParseAccess verifies an access token and returns the embedded user id.
func (i *TokenIssuer) ParseAccess(token string) (string, error) {
	return parseToken(token, i.accessSecret, i.now)
}

// ParseRefresh verifies a refresh token and returns the embedded user id.
func (i *TokenIssuer) ParseRefresh(token string) (string, error) {
	return parseToken(token, i.refreshSecret, i.now)
}

func (i *TokenIssuer) now() time.Time {
	if i.NowFunc != nil {
		return i.NowFunc()
	}
	return time.Now().UTC()
}

func signToken(userID string, secret []byte, issuedAt, expiresAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"iat":     issuedAt.Unix(),
		"exp":     expiresAt.Unix(),
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func parseToken(tokenString string, secret []byte, now func() time.Time) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	}, jwt.WithTimeFunc(now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", ErrInvalidToken
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", ErrInvalidToken
	}

	return userID, nil
}
