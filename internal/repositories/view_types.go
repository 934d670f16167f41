package repositories

import (
	"time"

	"github.com/playtube/backend/internal/readmodel"
)

// OwnerSummary is the reduced owner projection attached to denormalized
// views. Password and credential fields never reach this layer's output.
type OwnerSummary struct {
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Avatar   string `json:"avatar"`
}

// Page couples one window of results with its total-count metadata.
type Page[T any] struct {
	Items []T                `json:"items"`
	Meta  readmodel.PageMeta `json:"meta"`
}

// VideoView is the actor-relative video projection.
type VideoView struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	VideoFile   string        `json:"videoFile"`
	Thumbnail   string        `json:"thumbnail"`
	Duration    float64       `json:"duration"`
	Views       int64         `json:"views"`
	IsPublished bool          `json:"isPublished"`
	CreatedAt   time.Time     `json:"createdAt"`
	Owner       *OwnerSummary `json:"owner"`
	LikesCount  int64         `json:"likesCount"`
	IsLiked     bool          `json:"isLiked"`
}

// CommentView is the actor-relative comment projection.
type CommentView struct {
	ID         string        `json:"id"`
	Content    string        `json:"content"`
	CreatedAt  time.Time     `json:"createdAt"`
	Owner      *OwnerSummary `json:"owner"`
	LikesCount int64         `json:"likesCount"`
	IsLiked    bool          `json:"isLiked"`
}

// TweetView is the actor-relative tweet projection.
type TweetView struct {
	ID         string        `json:"id"`
	Content    string        `json:"content"`
	CreatedAt  time.Time     `json:"createdAt"`
	Owner      *OwnerSummary `json:"owner"`
	LikesCount int64         `json:"likesCount"`
	IsLiked    bool          `json:"isLiked"`
}

// ChannelProfileView is a user seen as a channel, relative to the actor.
type ChannelProfileView struct {
	ID              string    `json:"id"`
	Username        string    `json:"username"`
	FullName        string    `json:"fullName"`
	Avatar          string    `json:"avatar"`
	CoverImage      string    `json:"coverImage"`
	CreatedAt       time.Time `json:"createdAt"`
	SubscriberCount int64     `json:"subscriberCount"`
	SubscribedTo    int64     `json:"channelsSubscribedToCount"`
	IsSubscribed    bool      `json:"isSubscribed"`
}

// SubscriberView is one subscriber of a channel, including whether the
// channel subscribes back.
type SubscriberView struct {
	ID                     string `json:"id"`
	Username               string `json:"username"`
	FullName               string `json:"fullName"`
	Avatar                 string `json:"avatar"`
	SubscriberCount        int64  `json:"subscriberCount"`
	SubscribedToSubscriber bool   `json:"subscribedToSubscriber"`
}

// LatestVideoSummary is the newest upload attached to a subscribed channel.
type LatestVideoSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Thumbnail string    `json:"thumbnail"`
	Duration  float64   `json:"duration"`
	Views     int64     `json:"views"`
	CreatedAt time.Time `json:"createdAt"`
}

// SubscribedChannelView is one channel a user follows.
type SubscribedChannelView struct {
	ID          string              `json:"id"`
	Username    string              `json:"username"`
	FullName    string              `json:"fullName"`
	Avatar      string              `json:"avatar"`
	LatestVideo *LatestVideoSummary `json:"latestVideo"`
}

// PlaylistSummaryView lists a playlist with aggregate counters.
type PlaylistSummaryView struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	TotalVideos int64     `json:"totalVideos"`
	TotalViews  int64     `json:"totalViews"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// PlaylistVideoView is one published video inside a playlist detail view.
type PlaylistVideoView struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	VideoFile   string    `json:"videoFile"`
	Thumbnail   string    `json:"thumbnail"`
	Duration    float64   `json:"duration"`
	Views       int64     `json:"views"`
	CreatedAt   time.Time `json:"createdAt"`
}

// PlaylistDetailView is a playlist with owner data and its published videos.
type PlaylistDetailView struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
	Owner       *OwnerSummary       `json:"owner"`
	TotalVideos int64               `json:"totalVideos"`
	TotalViews  int64               `json:"totalViews"`
	Videos      []PlaylistVideoView `json:"videos"`
}

// WatchHistoryEntry is one video in a user's watch history, most recent first.
type WatchHistoryEntry struct {
	VideoID   string        `json:"videoId"`
	Title     string        `json:"title"`
	Thumbnail string        `json:"thumbnail"`
	Duration  float64       `json:"duration"`
	Views     int64         `json:"views"`
	Owner     *OwnerSummary `json:"owner"`
	WatchedAt time.Time     `json:"watchedAt"`
}
