package models

import "time"

// User represents an account within the PlayTube platform. A user doubles as
// a channel that other users can subscribe to.
type User struct {
	ID           string
	Username     string
	Email        string
	FullName     string
	Password     string
	Avatar       string
	CoverImage   string
	RefreshToken string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// OwnerID satisfies the ownership check for self-service account mutations.
func (u User) OwnerID() string { return u.ID }

// Video is an owned media record backed by uploaded assets.
type Video struct {
	ID          string
	Owner       string
	Title       string
	Description string
	VideoFile   string
	Thumbnail   string
	Duration    float64
	Views       int64
	IsPublished bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (v Video) OwnerID() string { return v.Owner }

// Comment is text attached to a video.
type Comment struct {
	ID        string
	Video     string
	Owner     string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c Comment) OwnerID() string { return c.Owner }

// Tweet is an owned short text post.
type Tweet struct {
	ID        string
	Owner     string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (t Tweet) OwnerID() string { return t.Owner }

// Playlist is an owned named collection of videos.
type Playlist struct {
	ID          string
	Owner       string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (p Playlist) OwnerID() string { return p.Owner }

// LikeTargetKind enumerates the entities a like can attach to.
type LikeTargetKind string

const (
	LikeTargetVideo   LikeTargetKind = "video"
	LikeTargetComment LikeTargetKind = "comment"
	LikeTargetTweet   LikeTargetKind = "tweet"
)

// LikeTarget identifies exactly one likeable entity. Representing the target
// as a tagged pair makes a like with zero or multiple targets
// unrepresentable.
type LikeTarget struct {
	Kind LikeTargetKind
	ID   string
}

// VideoTarget builds a like target for a video.
func VideoTarget(id string) LikeTarget { return LikeTarget{Kind: LikeTargetVideo, ID: id} }

// CommentTarget builds a like target for a comment.
func CommentTarget(id string) LikeTarget { return LikeTarget{Kind: LikeTargetComment, ID: id} }

// TweetTarget builds a like target for a tweet.
func TweetTarget(id string) LikeTarget { return LikeTarget{Kind: LikeTargetTweet, ID: id} }

// Like records that a user liked a target. Existence is the signal; there is
// at most one like per (actor, target) pair.
type Like struct {
	ID        string
	LikedBy   string
	Target    LikeTarget
	CreatedAt time.Time
}

// Subscription records that a subscriber follows a channel. At most one row
// exists per (subscriber, channel) pair.
type Subscription struct {
	ID         string
	Subscriber string
	Channel    string
	CreatedAt  time.Time
}

// TokenPair groups the signed credentials issued to authenticated users.
type TokenPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}
