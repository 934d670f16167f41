package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/playtube/backend/internal/db"
	"github.com/playtube/backend/internal/logging"
	"github.com/playtube/backend/internal/models"
)

const userColumns = "id, username, email, full_name, password_hash, avatar, cover_image, refresh_token, created_at, updated_at"

// PostgresUserRepository provides PostgreSQL-backed persistence for users.
type PostgresUserRepository struct {
	pool db.Pool
}

// NewPostgresUserRepository constructs a user repository backed by PostgreSQL.
func NewPostgresUserRepository(pool db.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// Create persists a new user record.
func (r *PostgresUserRepository) Create(ctx context.Context, user models.User) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO users (id, username, email, full_name, password_hash, avatar, cover_image, refresh_token, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
    `, user.ID, user.Username, user.Email, user.FullName, user.Password, user.Avatar, user.CoverImage, user.RefreshToken, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// FindByID fetches a user by primary key.
func (r *PostgresUserRepository) FindByID(ctx context.Context, id string) (models.User, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT `+userColumns+`
        FROM users
        WHERE id = $1
    `, id)

	return scanUser(row)
}

// FindByLogin fetches a user by username or email. Login forms accept either.
func (r *PostgresUserRepository) FindByLogin(ctx context.Context, login string) (models.User, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT `+userColumns+`
        FROM users
        WHERE username = $1 OR email = $1
    `, login)

	return scanUser(row)
}

// Update applies a partial account update and returns the resulting record.
func (r *PostgresUserRepository) Update(ctx context.Context, id string, update UserUpdate) (models.User, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        UPDATE users
        SET full_name = COALESCE($2, full_name),
            email = COALESCE($3, email),
            avatar = COALESCE($4, avatar),
            cover_image = COALESCE($5, cover_image),
            password_hash = COALESCE($6, password_hash),
            updated_at = NOW()
        WHERE id = $1
        RETURNING `+userColumns+`
	`, id, update.FullName, update.Email, update.Avatar, update.CoverImage, update.Password)

	user, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return models.User{}, ErrConflict
		}
		return models.User{}, err
	}

	return user, nil
}

// SetRefreshToken overwrites the persisted refresh token for a user. An empty
// token revokes the session.
func (r *PostgresUserRepository) SetRefreshToken(ctx context.Context, userID, token string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE users
        SET refresh_token = $2, updated_at = NOW()
        WHERE id = $1
    `, userID, token)
	if err != nil {
		return fmt.Errorf("update refresh token: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// AddWatchHistory records that the user watched a video. Re-watching bumps
// the watched_at timestamp instead of duplicating the entry.
func (r *PostgresUserRepository) AddWatchHistory(ctx context.Context, userID, videoID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO watch_history (user_id, video_id, watched_at)
        VALUES ($1, $2, NOW())
        ON CONFLICT (user_id, video_id) DO UPDATE SET watched_at = NOW()
    `, userID, videoID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrNotFound
		}
		return fmt.Errorf("insert watch history: %w", err)
	}

	return nil
}

// Delete removes a user and everything hanging off the account. Dependent
// rows are cleared best effort before the user row itself: a failed step is
// logged and skipped so one orphaned like cannot keep the account alive.
func (r *PostgresUserRepository) Delete(ctx context.Context, userID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	cascade(ctx, conn, userID,
		`DELETE FROM likes WHERE liked_by = $1`,
		`DELETE FROM likes WHERE target_kind = 'comment' AND target_id IN (SELECT id FROM comments WHERE owner_id = $1 OR video_id IN (SELECT id FROM videos WHERE owner_id = $1))`,
		`DELETE FROM likes WHERE target_kind = 'tweet' AND target_id IN (SELECT id FROM tweets WHERE owner_id = $1)`,
		`DELETE FROM likes WHERE target_kind = 'video' AND target_id IN (SELECT id FROM videos WHERE owner_id = $1)`,
		`DELETE FROM comments WHERE owner_id = $1 OR video_id IN (SELECT id FROM videos WHERE owner_id = $1)`,
		`DELETE FROM playlist_videos WHERE video_id IN (SELECT id FROM videos WHERE owner_id = $1)`,
		`DELETE FROM playlists WHERE owner_id = $1`,
		`DELETE FROM watch_history WHERE user_id = $1 OR video_id IN (SELECT id FROM videos WHERE owner_id = $1)`,
		`DELETE FROM subscriptions WHERE subscriber_id = $1 OR channel_id = $1`,
		`DELETE FROM tweets WHERE owner_id = $1`,
		`DELETE FROM videos WHERE owner_id = $1`,
	)

	tag, err := conn.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

const videoColumnList = "id, owner_id, title, description, video_file, thumbnail, duration, views, is_published, created_at, updated_at"

// PostgresVideoRepository provides PostgreSQL-backed persistence for videos.
type PostgresVideoRepository struct {
	pool db.Pool
}

// NewPostgresVideoRepository constructs a video repository backed by PostgreSQL.
func NewPostgresVideoRepository(pool db.Pool) *PostgresVideoRepository {
	return &PostgresVideoRepository{pool: pool}
}

// Create stores a new video record.
func (r *PostgresVideoRepository) Create(ctx context.Context, video models.Video) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO videos (id, owner_id, title, description, video_file, thumbnail, duration, views, is_published, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
    `, video.ID, video.Owner, video.Title, video.Description, video.VideoFile, video.Thumbnail, video.Duration, video.Views, video.IsPublished, video.CreatedAt, video.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return ErrConflict
			case "23503":
				return ErrNotFound
			}
		}
		return fmt.Errorf("insert video: %w", err)
	}

	return nil
}

// FindByID fetches a video by primary key.
func (r *PostgresVideoRepository) FindByID(ctx context.Context, id string) (models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Video{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT `+videoColumnList+`
        FROM videos
        WHERE id = $1
    `, id)

	return scanVideo(row)
}

// Update applies a partial metadata update and returns the resulting record.
func (r *PostgresVideoRepository) Update(ctx context.Context, id string, update VideoUpdate) (models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Video{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        UPDATE videos
        SET title = COALESCE($2, title),
            description = COALESCE($3, description),
            thumbnail = COALESCE($4, thumbnail),
            updated_at = NOW()
        WHERE id = $1
        RETURNING `+videoColumnList+`
	`, id, update.Title, update.Description, update.Thumbnail)

	return scanVideo(row)
}

// TogglePublish flips the publish flag and reports the resulting state.
func (r *PostgresVideoRepository) TogglePublish(ctx context.Context, id string) (bool, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var published bool
	err = conn.QueryRow(ctx, `
        UPDATE videos
        SET is_published = NOT is_published, updated_at = NOW()
        WHERE id = $1
        RETURNING is_published
    `, id).Scan(&published)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, ErrNotFound
		}
		return false, fmt.Errorf("toggle publish: %w", err)
	}

	return published, nil
}

// IncrementViews bumps the view counter by one.
func (r *PostgresVideoRepository) IncrementViews(ctx context.Context, id string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE videos
        SET views = views + 1
        WHERE id = $1
    `, id)
	if err != nil {
		return fmt.Errorf("increment views: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes a video together with its likes, comments and the likes on
// those comments. Dependent rows are cleared best effort before the video row.
func (r *PostgresVideoRepository) Delete(ctx context.Context, id string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	cascade(ctx, conn, id,
		`DELETE FROM likes WHERE target_kind = 'comment' AND target_id IN (SELECT id FROM comments WHERE video_id = $1)`,
		`DELETE FROM likes WHERE target_kind = 'video' AND target_id = $1`,
		`DELETE FROM comments WHERE video_id = $1`,
		`DELETE FROM playlist_videos WHERE video_id = $1`,
		`DELETE FROM watch_history WHERE video_id = $1`,
	)

	tag, err := conn.Exec(ctx, `DELETE FROM videos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete video: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// cascade runs dependent-row deletes ahead of a primary delete. Failures are
// logged and skipped: the primary delete still decides the operation's
// outcome.
func cascade(ctx context.Context, conn *pgxpool.Conn, id string, statements ...string) {
	ctx, span := logging.StartSpan(ctx, "cascade_delete")
	defer span.End()

	logger := logging.FromContext(ctx)
	for _, stmt := range statements {
		if _, err := conn.Exec(ctx, stmt, id); err != nil {
			logger.Warn("cascade delete step failed", "error", err)
		}
	}
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.FullName, &user.Password,
		&user.Avatar, &user.CoverImage, &user.RefreshToken, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("scan user: %w", err)
	}
	return user, nil
}

func scanVideo(row pgx.Row) (models.Video, error) {
	var video models.Video
	err := row.Scan(
		&video.ID, &video.Owner, &video.Title, &video.Description, &video.VideoFile,
		&video.Thumbnail, &video.Duration, &video.Views, &video.IsPublished,
		&video.CreatedAt, &video.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Video{}, ErrNotFound
		}
		return models.Video{}, fmt.Errorf("scan video: %w", err)
	}
	return video, nil
}

var _ UserRepository = (*PostgresUserRepository)(nil)
var _ VideoRepository = (*PostgresVideoRepository)(nil)
