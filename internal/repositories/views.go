package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/playtube/backend/internal/db"
	"github.com/playtube/backend/internal/readmodel"
)

// Shared projection fragments. Owner joins never expose password or
// credential columns.
var (
	ownerColumns = []string{"username", "full_name", "avatar"}
	videoColumns = []string{"id", "title", "description", "video_file", "thumbnail", "duration", "views", "is_published", "created_at"}
)

// PostgresViewRepository executes read-model pipelines against PostgreSQL.
// Every actor-relative method takes the actor as an explicit parameter; an
// empty actor degrades isLiked/isSubscribed to false rather than failing.
type PostgresViewRepository struct {
	pool db.Pool
}

// NewPostgresViewRepository constructs a view repository backed by PostgreSQL.
func NewPostgresViewRepository(pool db.Pool) *PostgresViewRepository {
	return &PostgresViewRepository{pool: pool}
}

func likeExtra(kind string) []readmodel.Match {
	return []readmodel.Match{{Column: "target_kind", Value: kind}}
}

func owner(username, fullName, avatar *string) *OwnerSummary {
	if username == nil {
		return nil
	}
	o := OwnerSummary{Username: *username}
	if fullName != nil {
		o.FullName = *fullName
	}
	if avatar != nil {
		o.Avatar = *avatar
	}
	return &o
}

// ListVideos returns published videos, optionally restricted to one owner,
// newest first, with like data relative to the actor.
func (r *PostgresViewRepository) ListVideos(ctx context.Context, actorID, ownerID string, req readmodel.PageRequest) (Page[VideoView], error) {
	p := readmodel.From("videos", "v").Append(
		readmodel.Match{Column: "is_published", Value: true},
	)
	if ownerID != "" {
		p.Append(readmodel.Match{Column: "owner_id", Value: ownerID})
	}
	p.Append(
		readmodel.Project{Columns: videoColumns},
		readmodel.LookupOne{Table: "users", Alias: "o", LocalColumn: "owner_id", ForeignColumn: "id", Columns: ownerColumns},
		readmodel.DeriveCount{As: "likes_count", Table: "likes", ForeignColumn: "target_id", Extra: likeExtra("video")},
		readmodel.DeriveMembership{As: "is_liked", Table: "likes", ForeignColumn: "target_id", MemberColumn: "liked_by", Actor: actorID, Extra: likeExtra("video")},
		readmodel.Paginate{Page: req.Page, Limit: req.Limit},
	)

	q, err := readmodel.Compile(p)
	if err != nil {
		return Page[VideoView]{}, err
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return Page[VideoView]{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var total int64
	if err := conn.QueryRow(ctx, q.CountSQL, q.CountArgs...).Scan(&total); err != nil {
		return Page[VideoView]{}, fmt.Errorf("count videos: %w", err)
	}

	rows, err := conn.Query(ctx, q.SQL, q.Args...)
	if err != nil {
		return Page[VideoView]{}, fmt.Errorf("query videos: %w", err)
	}
	defer rows.Close()

	items, err := scanVideoViews(rows)
	if err != nil {
		return Page[VideoView]{}, err
	}

	return Page[VideoView]{Items: items, Meta: readmodel.NewPageMeta(q.Page, total)}, nil
}

// GetVideoByID returns one video with owner and like data relative to the
// actor. Unpublished videos are visible here; publish gating is list-only.
func (r *PostgresViewRepository) GetVideoByID(ctx context.Context, actorID, videoID string) (VideoView, error) {
	p := readmodel.From("videos", "v").Append(
		readmodel.Match{Column: "id", Value: videoID},
		readmodel.Project{Columns: videoColumns},
		readmodel.LookupOne{Table: "users", Alias: "o", LocalColumn: "owner_id", ForeignColumn: "id", Columns: ownerColumns},
		readmodel.DeriveCount{As: "likes_count", Table: "likes", ForeignColumn: "target_id", Extra: likeExtra("video")},
		readmodel.DeriveMembership{As: "is_liked", Table: "likes", ForeignColumn: "target_id", MemberColumn: "liked_by", Actor: actorID, Extra: likeExtra("video")},
	)

	q, err := readmodel.Compile(p)
	if err != nil {
		return VideoView{}, err
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return VideoView{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, q.SQL, q.Args...)

	view, err := scanVideoView(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return VideoView{}, ErrNotFound
		}
		return VideoView{}, fmt.Errorf("select video view: %w", err)
	}

	return view, nil
}

// ListVideoComments returns a page of comments on a video, newest first.
func (r *PostgresViewRepository) ListVideoComments(ctx context.Context, actorID, videoID string, req readmodel.PageRequest) (Page[CommentView], error) {
	p := readmodel.From("comments", "c").Append(
		readmodel.Match{Column: "video_id", Value: videoID},
		readmodel.Project{Columns: []string{"id", "content", "created_at"}},
		readmodel.LookupOne{Table: "users", Alias: "o", LocalColumn: "owner_id", ForeignColumn: "id", Columns: ownerColumns},
		readmodel.DeriveCount{As: "likes_count", Table: "likes", ForeignColumn: "target_id", Extra: likeExtra("comment")},
		readmodel.DeriveMembership{As: "is_liked", Table: "likes", ForeignColumn: "target_id", MemberColumn: "liked_by", Actor: actorID, Extra: likeExtra("comment")},
		readmodel.Paginate{Page: req.Page, Limit: req.Limit},
	)

	q, err := readmodel.Compile(p)
	if err != nil {
		return Page[CommentView]{}, err
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return Page[CommentView]{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var total int64
	if err := conn.QueryRow(ctx, q.CountSQL, q.CountArgs...).Scan(&total); err != nil {
		return Page[CommentView]{}, fmt.Errorf("count comments: %w", err)
	}

	rows, err := conn.Query(ctx, q.SQL, q.Args...)
	if err != nil {
		return Page[CommentView]{}, fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()

	var items []CommentView
	for rows.Next() {
		var (
			v                         CommentView
			username, fullName, avatar *string
		)
		if err := rows.Scan(&v.ID, &v.Content, &v.CreatedAt, &username, &fullName, &avatar, &v.LikesCount, &v.IsLiked); err != nil {
			return Page[CommentView]{}, fmt.Errorf("scan comment view: %w", err)
		}
		v.Owner = owner(username, fullName, avatar)
		items = append(items, v)
	}
	if err := rows.Err(); err != nil {
		return Page[CommentView]{}, fmt.Errorf("iterate comment views: %w", err)
	}

	return Page[CommentView]{Items: items, Meta: readmodel.NewPageMeta(q.Page, total)}, nil
}

// ListLikedVideos returns the videos the actor has liked, newest like first.
// Likes whose video has since been deleted are excluded.
func (r *PostgresViewRepository) ListLikedVideos(ctx context.Context, actorID string) ([]VideoView, error) {
	p := readmodel.From("likes", "l").Append(
		readmodel.Match{Column: "liked_by", Value: actorID},
		readmodel.Match{Column: "target_kind", Value: "video"},
		readmodel.LookupOne{Table: "videos", Alias: "v", LocalColumn: "target_id", ForeignColumn: "id", Columns: videoColumns},
		readmodel.MatchExpr{Expr: "v.id IS NOT NULL"},
		readmodel.LookupOne{Table: "users", Alias: "o", LocalColumn: "v.owner_id", ForeignColumn: "id", Columns: ownerColumns},
		readmodel.DeriveCount{As: "likes_count", Table: "likes", ForeignColumn: "target_id", LocalColumn: "v.id", Extra: likeExtra("video")},
		readmodel.DeriveMembership{As: "is_liked", Table: "likes", ForeignColumn: "target_id", LocalColumn: "v.id", MemberColumn: "liked_by", Actor: actorID, Extra: likeExtra("video")},
	)

	q, err := readmodel.Compile(p)
	if err != nil {
		return nil, err
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, q.SQL, q.Args...)
	if err != nil {
		return nil, fmt.Errorf("query liked videos: %w", err)
	}
	defer rows.Close()

	return scanVideoViews(rows)
}

// GetChannelProfile returns a user's public channel profile relative to the
// actor.
func (r *PostgresViewRepository) GetChannelProfile(ctx context.Context, actorID, username string) (ChannelProfileView, error) {
	p := readmodel.From("users", "u").Append(
		readmodel.Match{Column: "username", Value: username},
		readmodel.Project{Columns: []string{"id", "username", "full_name", "avatar", "cover_image", "created_at"}},
		readmodel.DeriveCount{As: "subscriber_count", Table: "subscriptions", ForeignColumn: "channel_id"},
		readmodel.DeriveCount{As: "subscribed_to", Table: "subscriptions", ForeignColumn: "subscriber_id"},
		readmodel.DeriveMembership{As: "is_subscribed", Table: "subscriptions", ForeignColumn: "channel_id", MemberColumn: "subscriber_id", Actor: actorID},
	)

	q, err := readmodel.Compile(p)
	if err != nil {
		return ChannelProfileView{}, err
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return ChannelProfileView{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var v ChannelProfileView
	err = conn.QueryRow(ctx, q.SQL, q.Args...).Scan(
		&v.ID, &v.Username, &v.FullName, &v.Avatar, &v.CoverImage, &v.CreatedAt,
		&v.SubscriberCount, &v.SubscribedTo, &v.IsSubscribed,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ChannelProfileView{}, ErrNotFound
		}
		return ChannelProfileView{}, fmt.Errorf("select channel profile: %w", err)
	}

	return v, nil
}

// ListChannelSubscribers returns the subscribers of a channel, including
// whether the channel subscribes back to each of them.
func (r *PostgresViewRepository) ListChannelSubscribers(ctx context.Context, channelID string) ([]SubscriberView, error) {
	p := readmodel.From("subscriptions", "s").Append(
		readmodel.Match{Column: "channel_id", Value: channelID},
		readmodel.LookupOne{Table: "users", Alias: "u", LocalColumn: "subscriber_id", ForeignColumn: "id", Columns: []string{"id", "username", "full_name", "avatar"}},
		readmodel.DeriveCount{As: "subscriber_count", Table: "subscriptions", ForeignColumn: "channel_id", LocalColumn: "u.id"},
		readmodel.DeriveMembership{As: "subscribed_to_subscriber", Table: "subscriptions", ForeignColumn: "channel_id", LocalColumn: "u.id", MemberColumn: "subscriber_id", Actor: channelID},
	)

	q, err := readmodel.Compile(p)
	if err != nil {
		return nil, err
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, q.SQL, q.Args...)
	if err != nil {
		return nil, fmt.Errorf("query channel subscribers: %w", err)
	}
	defer rows.Close()

	var out []SubscriberView
	for rows.Next() {
		var v SubscriberView
		if err := rows.Scan(&v.ID, &v.Username, &v.FullName, &v.Avatar, &v.SubscriberCount, &v.SubscribedToSubscriber); err != nil {
			return nil, fmt.Errorf("scan subscriber view: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subscriber views: %w", err)
	}

	return out, nil
}

// ListSubscribedChannels returns the channels a user follows, each with the
// channel's most recent upload when one exists.
func (r *PostgresViewRepository) ListSubscribedChannels(ctx context.Context, subscriberID string) ([]SubscribedChannelView, error) {
	p := readmodel.From("subscriptions", "s").Append(
		readmodel.Match{Column: "subscriber_id", Value: subscriberID},
		readmodel.LookupOne{Table: "users", Alias: "u", LocalColumn: "channel_id", ForeignColumn: "id", Columns: []string{"id", "username", "full_name", "avatar"}},
		readmodel.LookupLatest{Table: "videos", Alias: "lv", LocalColumn: "u.id", ForeignColumn: "owner_id", Columns: []string{"id", "title", "thumbnail", "duration", "views", "created_at"}},
	)

	q, err := readmodel.Compile(p)
	if err != nil {
		return nil, err
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, q.SQL, q.Args...)
	if err != nil {
		return nil, fmt.Errorf("query subscribed channels: %w", err)
	}
	defer rows.Close()

	var out []SubscribedChannelView
	for rows.Next() {
		var (
			v      SubscribedChannelView
			latest LatestVideoSummary
			lvID   *string
		)
		if err := rows.Scan(
			&v.ID, &v.Username, &v.FullName, &v.Avatar,
			&lvID, &latest.Title, &latest.Thumbnail, &latest.Duration, &latest.Views, &latest.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan subscribed channel view: %w", err)
		}
		if lvID != nil {
			latest.ID = *lvID
			v.LatestVideo = &latest
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subscribed channel views: %w", err)
	}

	return out, nil
}

// ListUserPlaylists returns a user's playlists with aggregate counters.
func (r *PostgresViewRepository) ListUserPlaylists(ctx context.Context, userID string) ([]PlaylistSummaryView, error) {
	p := readmodel.From("playlists", "p").Append(
		readmodel.Match{Column: "owner_id", Value: userID},
		readmodel.Project{Columns: []string{"id", "name", "description", "updated_at"}},
		readmodel.DeriveCount{As: "total_videos", Table: "playlist_videos", ForeignColumn: "playlist_id"},
		readmodel.DeriveSum{
			As:            "total_views",
			Table:         "(SELECT pv.playlist_id, v.views FROM playlist_videos pv JOIN videos v ON v.id = pv.video_id)",
			ForeignColumn: "playlist_id",
			SumColumn:     "views",
		},
	)

	q, err := readmodel.Compile(p)
	if err != nil {
		return nil, err
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, q.SQL, q.Args...)
	if err != nil {
		return nil, fmt.Errorf("query user playlists: %w", err)
	}
	defer rows.Close()

	var out []PlaylistSummaryView
	for rows.Next() {
		var v PlaylistSummaryView
		if err := rows.Scan(&v.ID, &v.Name, &v.Description, &v.UpdatedAt, &v.TotalVideos, &v.TotalViews); err != nil {
			return nil, fmt.Errorf("scan playlist summary: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate playlist summaries: %w", err)
	}

	return out, nil
}

// GetPlaylistByID returns a playlist with owner data and its published videos.
func (r *PostgresViewRepository) GetPlaylistByID(ctx context.Context, playlistID string) (PlaylistDetailView, error) {
	head := readmodel.From("playlists", "p").Append(
		readmodel.Match{Column: "id", Value: playlistID},
		readmodel.Project{Columns: []string{"id", "name", "description", "created_at", "updated_at"}},
		readmodel.LookupOne{Table: "users", Alias: "o", LocalColumn: "owner_id", ForeignColumn: "id", Columns: ownerColumns},
		readmodel.DeriveCount{As: "total_videos", Table: "playlist_videos", ForeignColumn: "playlist_id"},
		readmodel.DeriveSum{
			As:            "total_views",
			Table:         "(SELECT pv.playlist_id, v.views FROM playlist_videos pv JOIN videos v ON v.id = pv.video_id)",
			ForeignColumn: "playlist_id",
			SumColumn:     "views",
		},
	)

	hq, err := readmodel.Compile(head)
	if err != nil {
		return PlaylistDetailView{}, err
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return PlaylistDetailView{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var (
		v                          PlaylistDetailView
		username, fullName, avatar *string
	)
	err = conn.QueryRow(ctx, hq.SQL, hq.Args...).Scan(
		&v.ID, &v.Name, &v.Description, &v.CreatedAt, &v.UpdatedAt,
		&username, &fullName, &avatar, &v.TotalVideos, &v.TotalViews,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PlaylistDetailView{}, ErrNotFound
		}
		return PlaylistDetailView{}, fmt.Errorf("select playlist: %w", err)
	}
	v.Owner = owner(username, fullName, avatar)

	tail := readmodel.From("playlist_videos", "pv").Append(
		readmodel.Match{Column: "playlist_id", Value: playlistID},
		readmodel.LookupOne{Table: "videos", Alias: "v", LocalColumn: "video_id", ForeignColumn: "id", Columns: []string{"id", "title", "description", "video_file", "thumbnail", "duration", "views", "created_at"}},
		readmodel.MatchExpr{Expr: "v.is_published = TRUE"},
		readmodel.Sort{Column: "added_at"},
	)

	tq, err := readmodel.Compile(tail)
	if err != nil {
		return PlaylistDetailView{}, err
	}

	rows, err := conn.Query(ctx, tq.SQL, tq.Args...)
	if err != nil {
		return PlaylistDetailView{}, fmt.Errorf("query playlist videos: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var pv PlaylistVideoView
		if err := rows.Scan(&pv.ID, &pv.Title, &pv.Description, &pv.VideoFile, &pv.Thumbnail, &pv.Duration, &pv.Views, &pv.CreatedAt); err != nil {
			return PlaylistDetailView{}, fmt.Errorf("scan playlist video: %w", err)
		}
		v.Videos = append(v.Videos, pv)
	}
	if err := rows.Err(); err != nil {
		return PlaylistDetailView{}, fmt.Errorf("iterate playlist videos: %w", err)
	}

	return v, nil
}

// ListUserTweets returns a user's tweets, newest first, with like data
// relative to the actor.
func (r *PostgresViewRepository) ListUserTweets(ctx context.Context, actorID, userID string) ([]TweetView, error) {
	p := readmodel.From("tweets", "t").Append(
		readmodel.Match{Column: "owner_id", Value: userID},
		readmodel.Project{Columns: []string{"id", "content", "created_at"}},
		readmodel.LookupOne{Table: "users", Alias: "o", LocalColumn: "owner_id", ForeignColumn: "id", Columns: ownerColumns},
		readmodel.DeriveCount{As: "likes_count", Table: "likes", ForeignColumn: "target_id", Extra: likeExtra("tweet")},
		readmodel.DeriveMembership{As: "is_liked", Table: "likes", ForeignColumn: "target_id", MemberColumn: "liked_by", Actor: actorID, Extra: likeExtra("tweet")},
	)

	q, err := readmodel.Compile(p)
	if err != nil {
		return nil, err
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, q.SQL, q.Args...)
	if err != nil {
		return nil, fmt.Errorf("query user tweets: %w", err)
	}
	defer rows.Close()

	var out []TweetView
	for rows.Next() {
		var (
			v                          TweetView
			username, fullName, avatar *string
		)
		if err := rows.Scan(&v.ID, &v.Content, &v.CreatedAt, &username, &fullName, &avatar, &v.LikesCount, &v.IsLiked); err != nil {
			return nil, fmt.Errorf("scan tweet view: %w", err)
		}
		v.Owner = owner(username, fullName, avatar)
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tweet views: %w", err)
	}

	return out, nil
}

// WatchHistory returns the user's watch history, most recently watched
// first. History entries whose video has been deleted are excluded.
func (r *PostgresViewRepository) WatchHistory(ctx context.Context, userID string) ([]WatchHistoryEntry, error) {
	p := readmodel.From("watch_history", "wh").Append(
		readmodel.Match{Column: "user_id", Value: userID},
		readmodel.Project{Columns: []string{"video_id", "watched_at"}},
		readmodel.LookupOne{Table: "videos", Alias: "v", LocalColumn: "video_id", ForeignColumn: "id", Columns: []string{"title", "thumbnail", "duration", "views"}},
		readmodel.MatchExpr{Expr: "v.id IS NOT NULL"},
		readmodel.LookupOne{Table: "users", Alias: "o", LocalColumn: "v.owner_id", ForeignColumn: "id", Columns: ownerColumns},
		readmodel.Sort{Column: "watched_at", Descending: true},
	)

	q, err := readmodel.Compile(p)
	if err != nil {
		return nil, err
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, q.SQL, q.Args...)
	if err != nil {
		return nil, fmt.Errorf("query watch history: %w", err)
	}
	defer rows.Close()

	var out []WatchHistoryEntry
	for rows.Next() {
		var (
			v                          WatchHistoryEntry
			username, fullName, avatar *string
		)
		if err := rows.Scan(&v.VideoID, &v.WatchedAt, &v.Title, &v.Thumbnail, &v.Duration, &v.Views, &username, &fullName, &avatar); err != nil {
			return nil, fmt.Errorf("scan watch history entry: %w", err)
		}
		v.Owner = owner(username, fullName, avatar)
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate watch history: %w", err)
	}

	return out, nil
}

func scanVideoView(row pgx.Row) (VideoView, error) {
	var (
		v                          VideoView
		username, fullName, avatar *string
	)
	err := row.Scan(
		&v.ID, &v.Title, &v.Description, &v.VideoFile, &v.Thumbnail,
		&v.Duration, &v.Views, &v.IsPublished, &v.CreatedAt,
		&username, &fullName, &avatar,
		&v.LikesCount, &v.IsLiked,
	)
	if err != nil {
		return VideoView{}, err
	}
	v.Owner = owner(username, fullName, avatar)
	return v, nil
}

func scanVideoViews(rows pgx.Rows) ([]VideoView, error) {
	var out []VideoView
	for rows.Next() {
		v, err := scanVideoView(rows)
		if err != nil {
			return nil, fmt.Errorf("scan video view: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate video views: %w", err)
	}
	return out, nil
}
