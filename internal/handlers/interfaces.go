package handlers

import (
	"context"
	"io"

	"github.com/playtube/backend/internal/models"
	"github.com/playtube/backend/internal/readmodel"
	"github.com/playtube/backend/internal/repositories"
)

// UserStore captures the persistence operations required by the user handlers.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByLogin(ctx context.Context, login string) (models.User, error)
	Update(ctx context.Context, id string, update repositories.UserUpdate) (models.User, error)
	AddWatchHistory(ctx context.Context, userID, videoID string) error
	Delete(ctx context.Context, userID string) error
}

// SessionManager issues, refreshes and revokes authentication tokens.
type SessionManager interface {
	Issue(ctx context.Context, userID string) (models.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (models.TokenPair, error)
	Revoke(ctx context.Context, userID string) error
	ParseAccess(token string) (string, error)
}

// VideoStore captures persistence for video records.
type VideoStore interface {
	Create(ctx context.Context, video models.Video) error
	FindByID(ctx context.Context, id string) (models.Video, error)
	Update(ctx context.Context, id string, update repositories.VideoUpdate) (models.Video, error)
	TogglePublish(ctx context.Context, id string) (bool, error)
	IncrementViews(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// CommentStore captures persistence for comments.
type CommentStore interface {
	Create(ctx context.Context, comment models.Comment) error
	FindByID(ctx context.Context, id string) (models.Comment, error)
	UpdateContent(ctx context.Context, id, content string) (models.Comment, error)
	Delete(ctx context.Context, id string) error
}

// TweetStore captures persistence for tweets.
type TweetStore interface {
	Create(ctx context.Context, tweet models.Tweet) error
	FindByID(ctx context.Context, id string) (models.Tweet, error)
	UpdateContent(ctx context.Context, id, content string) (models.Tweet, error)
	Delete(ctx context.Context, id string) error
}

// LikeStore toggles likes across all target kinds.
type LikeStore interface {
	Toggle(ctx context.Context, actorID string, target models.LikeTarget) (bool, error)
}

// SubscriptionStore toggles channel subscriptions.
type SubscriptionStore interface {
	Toggle(ctx context.Context, subscriberID, channelID string) (bool, error)
}

// PlaylistStore captures persistence for playlists and their membership.
type PlaylistStore interface {
	Create(ctx context.Context, playlist models.Playlist) error
	FindByID(ctx context.Context, id string) (models.Playlist, error)
	Update(ctx context.Context, id string, update repositories.PlaylistUpdate) (models.Playlist, error)
	Delete(ctx context.Context, id string) error
	AddVideo(ctx context.Context, playlistID, videoID string) error
	RemoveVideo(ctx context.Context, playlistID, videoID string) error
}

// ViewStore serves the denormalized, actor-relative read models.
type ViewStore interface {
	ListVideos(ctx context.Context, actorID, ownerID string, req readmodel.PageRequest) (repositories.Page[repositories.VideoView], error)
	GetVideoByID(ctx context.Context, actorID, videoID string) (repositories.VideoView, error)
	ListVideoComments(ctx context.Context, actorID, videoID string, req readmodel.PageRequest) (repositories.Page[repositories.CommentView], error)
	ListLikedVideos(ctx context.Context, actorID string) ([]repositories.VideoView, error)
	GetChannelProfile(ctx context.Context, actorID, username string) (repositories.ChannelProfileView, error)
	ListChannelSubscribers(ctx context.Context, channelID string) ([]repositories.SubscriberView, error)
	ListSubscribedChannels(ctx context.Context, subscriberID string) ([]repositories.SubscribedChannelView, error)
	ListUserPlaylists(ctx context.Context, userID string) ([]repositories.PlaylistSummaryView, error)
	GetPlaylistByID(ctx context.Context, playlistID string) (repositories.PlaylistDetailView, error)
	ListUserTweets(ctx context.Context, actorID, userID string) ([]repositories.TweetView, error)
	WatchHistory(ctx context.Context, userID string) ([]repositories.WatchHistoryEntry, error)
}

// MediaStorage persists uploaded files and returns their public location.
type MediaStorage interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
}
