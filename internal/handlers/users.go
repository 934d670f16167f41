package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/playtube/backend/internal/logging"
	"github.com/playtube/backend/internal/middleware"
	"github.com/playtube/backend/internal/models"
	"github.com/playtube/backend/internal/repositories"
)

// UserHandler implements account, session and channel endpoints.
type UserHandler struct {
	Users    UserStore
	Views    ViewStore
	Sessions SessionManager
	Media    MediaStorage
	NowFunc  func() time.Time
}

// userResponse is the sanitized account projection. Password hashes and
// refresh tokens never leave the service.
type userResponse struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	FullName   string    `json:"fullName"`
	Avatar     string    `json:"avatar"`
	CoverImage string    `json:"coverImage"`
	CreatedAt  time.Time `json:"createdAt"`
}

func sanitizeUser(user models.User) userResponse {
	return userResponse{
		ID:         user.ID,
		Username:   user.Username,
		Email:      user.Email,
		FullName:   user.FullName,
		Avatar:     user.Avatar,
		CoverImage: user.CoverImage,
		CreatedAt:  user.CreatedAt,
	}
}

type sessionResponse struct {
	User         userResponse `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

// Register handles POST /api/v1/user/register. Registration is multipart: an
// avatar image is required, a cover image is optional.
func (h UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if err := r.ParseMultipartForm(imageUploadLimit); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, nil, "invalid multipart payload")
		return
	}

	fullName := strings.TrimSpace(r.FormValue("fullName"))
	email := strings.TrimSpace(strings.ToLower(r.FormValue("email")))
	username := strings.TrimSpace(strings.ToLower(r.FormValue("username")))
	password := r.FormValue("password")

	if fullName == "" || email == "" || username == "" || password == "" {
		respondJSON(ctx, w, http.StatusBadRequest, nil, "fullName, email, username and password are required")
		return
	}

	if _, err := mail.ParseAddress(email); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, nil, "invalid email address")
		return
	}

	if len(password) < 8 {
		respondJSON(ctx, w, http.StatusBadRequest, nil, "password must be at least 8 characters")
		return
	}

	avatar, err := saveUpload(ctx, h.Media, r, "avatar", "avatars")
	if err != nil {
		if errors.Is(err, errMissingFile) {
			respondJSON(ctx, w, http.StatusBadRequest, nil, "avatar image is required")
			return
		}
		respondError(ctx, w, err, "failed to store avatar")
		return
	}

	coverImage, err := saveUpload(ctx, h.Media, r, "coverImage", "covers")
	if err != nil && !errors.Is(err, errMissingFile) {
		respondError(ctx, w, err, "failed to store cover image")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		respondError(ctx, w, err, "failed to secure password")
		return
	}

	now := h.now()
	user := models.User{
		ID:         uuid.NewString(),
		Username:   username,
		Email:      email,
		FullName:   fullName,
		Password:   string(hashed),
		Avatar:     avatar,
		CoverImage: coverImage,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := h.Users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			respondJSON(ctx, w, http.StatusConflict, nil, "username or email already in use")
			return
		}
		respondError(ctx, w, err, "failed to create account")
		return
	}

	logger.Info("user registered", "userId", user.ID)
	respondJSON(ctx, w, http.StatusCreated, sanitizeUser(user), "account created")
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/v1/user/login. Either username or email identifies
// the account.
func (h UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, nil, "invalid request body")
		return
	}

	login := strings.TrimSpace(strings.ToLower(req.Username))
	if login == "" {
		login = strings.TrimSpace(strings.ToLower(req.Email))
	}
	if login == "" || req.Password == "" {
		respondJSON(ctx, w, http.StatusBadRequest, nil, "username or email and password are required")
		return
	}

	user, err := h.Users.FindByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			logger.Warn("login for unknown account", "login", login)
			respondJSON(ctx, w, http.StatusUnauthorized, nil, "invalid credentials")
			return
		}
		respondError(ctx, w, err, "failed to load account")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		logger.Warn("login password mismatch", "userId", user.ID)
		respondJSON(ctx, w, http.StatusUnauthorized, nil, "invalid credentials")
		return
	}

	tokens, err := h.Sessions.Issue(ctx, user.ID)
	if err != nil {
		respondError(ctx, w, err, "failed to create session")
		return
	}

	setAuthCookies(w, tokens)
	respondJSON(ctx, w, http.StatusOK, sessionResponse{
		User:         sanitizeUser(user),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, "logged in")
}

// Logout handles POST /api/v1/user/logout.
func (h UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID := middleware.ActorFromContext(ctx)

	if err := h.Sessions.Revoke(ctx, actorID); err != nil {
		respondError(ctx, w, err, "failed to end session")
		return
	}

	clearAuthCookies(w)
	respondJSON(ctx, w, http.StatusOK, nil, "logged out")
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// RefreshToken handles POST /api/v1/user/refresh-token. The token comes from
// the refresh cookie or, failing that, the request body.
func (h UserHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token := ""
	if c, err := r.Cookie(refreshCookie); err == nil {
		token = c.Value
	}
	if token == "" {
		var req refreshRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			token = strings.TrimSpace(req.RefreshToken)
		}
	}
	if token == "" {
		respondJSON(ctx, w, http.StatusBadRequest, nil, "refresh token is required")
		return
	}

	tokens, err := h.Sessions.Refresh(ctx, token)
	if err != nil {
		respondError(ctx, w, err, "unable to refresh session")
		return
	}

	setAuthCookies(w, tokens)
	respondJSON(ctx, w, http.StatusOK, map[string]string{
		"accessToken":  tokens.AccessToken,
		"refreshToken": tokens.RefreshToken,
	}, "session refreshed")
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// ChangePassword handles PATCH /api/v1/user/password.
func (h UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID := middleware.ActorFromContext(ctx)

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, nil, "invalid request body")
		return
	}

	if req.OldPassword == "" || req.NewPassword == "" {
		respondJSON(ctx, w, http.StatusBadRequest, nil, "old and new passwords are required")
		return
	}

	if len(req.NewPassword) < 8 {
		respondJSON(ctx, w, http.StatusBadRequest, nil, "password must be at least 8 characters")
		return
	}

	user, err := h.Users.FindByID(ctx, actorID)
	if err != nil {
		respondError(ctx, w, err, "failed to load account")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.OldPassword)); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, nil, "old password is incorrect")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		respondError(ctx, w, err, "failed to secure password")
		return
	}

	password := string(hashed)
	if _, err := h.Users.Update(ctx, actorID, repositories.UserUpdate{Password: &password}); err != nil {
		respondError(ctx, w, err, "failed to update password")
		return
	}

	respondJSON(ctx, w, http.StatusOK, nil, "password changed")
}

// Current handles GET /api/v1/user/current.
func (h UserHandler) Current(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := h.Users.FindByID(ctx, middleware.ActorFromContext(ctx))
	if err != nil {
		respondError(ctx, w, err, "failed to load account")
		return
	}

	respondJSON(ctx, w, http.StatusOK, sanitizeUser(user), "current user")
}

type updateAccountRequest struct {
	FullName *string `json:"fullName"`
	Email    *string `json:"email"`
}

// UpdateAccount handles PATCH /api/v1/user/update-account.
func (h UserHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID := middleware.ActorFromContext(ctx)

	var req updateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, nil, "invalid request body")
		return
	}

	if req.FullName == nil && req.Email == nil {
		respondJSON(ctx, w, http.StatusBadRequest, nil, "nothing to update")
		return
	}
	if req.FullName != nil && strings.TrimSpace(*req.FullName) == "" {
		respondJSON(ctx, w, http.StatusBadRequest, nil, "fullName must not be blank")
		return
	}
	if req.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*req.Email))
		if _, err := mail.ParseAddress(email); err != nil {
			respondJSON(ctx, w, http.StatusBadRequest, nil, "invalid email address")
			return
		}
		req.Email = &email
	}

	user, err := h.Users.Update(ctx, actorID, repositories.UserUpdate{
		FullName: req.FullName,
		Email:    req.Email,
	})
	if err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			respondJSON(ctx, w, http.StatusConflict, nil, "email already in use")
			return
		}
		respondError(ctx, w, err, "failed to update account")
		return
	}

	respondJSON(ctx, w, http.StatusOK, sanitizeUser(user), "account updated")
}

// UpdateAvatar handles PATCH /api/v1/user/avatar.
func (h UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "avatar", "avatars")
}

// UpdateCoverImage handles PATCH /api/v1/user/cover-image.
func (h UserHandler) UpdateCoverImage(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "coverImage", "covers")
}

func (h UserHandler) updateImage(w http.ResponseWriter, r *http.Request, field, prefix string) {
	ctx := r.Context()
	actorID := middleware.ActorFromContext(ctx)

	if err := r.ParseMultipartForm(imageUploadLimit); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, nil, "invalid multipart payload")
		return
	}

	location, err := saveUpload(ctx, h.Media, r, field, prefix)
	if err != nil {
		if errors.Is(err, errMissingFile) {
			respondJSON(ctx, w, http.StatusBadRequest, nil, field+" image is required")
			return
		}
		respondError(ctx, w, err, "failed to store image")
		return
	}

	update := repositories.UserUpdate{}
	if field == "avatar" {
		update.Avatar = &location
	} else {
		update.CoverImage = &location
	}

	user, err := h.Users.Update(ctx, actorID, update)
	if err != nil {
		respondError(ctx, w, err, "failed to update account")
		return
	}

	respondJSON(ctx, w, http.StatusOK, sanitizeUser(user), field+" updated")
}

// ChannelProfile handles GET /api/v1/user/c/{username}.
func (h UserHandler) ChannelProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	username := strings.TrimSpace(strings.ToLower(chi.URLParam(r, "username")))
	if username == "" {
		respondJSON(ctx, w, http.StatusBadRequest, nil, "username is required")
		return
	}

	profile, err := h.Views.GetChannelProfile(ctx, middleware.ActorFromContext(ctx), username)
	if err != nil {
		respondError(ctx, w, err, "failed to load channel profile")
		return
	}

	respondJSON(ctx, w, http.StatusOK, profile, "channel profile")
}

// WatchHistory handles GET /api/v1/user/history.
func (h UserHandler) WatchHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	history, err := h.Views.WatchHistory(ctx, middleware.ActorFromContext(ctx))
	if err != nil {
		respondError(ctx, w, err, "failed to load watch history")
		return
	}

	respondJSON(ctx, w, http.StatusOK, history, "watch history")
}

type deleteAccountRequest struct {
	Password string `json:"password"`
}

// Delete handles DELETE /api/v1/user/delete. The caller re-authenticates
// with their password; then the account and everything it owns are removed.
func (h UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID := middleware.ActorFromContext(ctx)

	var req deleteAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Password == "" {
		respondJSON(ctx, w, http.StatusBadRequest, nil, "password is required")
		return
	}

	user, err := h.Users.FindByID(ctx, actorID)
	if err != nil {
		respondError(ctx, w, err, "failed to load account")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		logging.FromContext(ctx).Warn("account delete password mismatch", "userId", actorID)
		respondJSON(ctx, w, http.StatusUnauthorized, nil, "password is incorrect")
		return
	}

	if err := h.Sessions.Revoke(ctx, actorID); err != nil {
		logging.FromContext(ctx).Warn("failed to revoke session before delete", "userId", actorID, "error", err)
	}

	if err := h.Users.Delete(ctx, actorID); err != nil {
		respondError(ctx, w, err, "failed to delete account")
		return
	}

	clearAuthCookies(w)
	respondJSON(ctx, w, http.StatusOK, nil, "account deleted")
}

func (h UserHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}

const refreshCookie = "refreshToken"

func setAuthCookies(w http.ResponseWriter, tokens models.TokenPair) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessCookie,
		Value:    tokens.AccessToken,
		Path:     "/",
		Expires:  tokens.AccessExpiresAt,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookie,
		Value:    tokens.RefreshToken,
		Path:     "/",
		Expires:  tokens.RefreshExpiresAt,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearAuthCookies(w http.ResponseWriter) {
	for _, name := range []string{middleware.AccessCookie, refreshCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   true,
			SameSite: http.SameSiteLaxMode,
		})
	}
}
