package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/playtube/backend/internal/models"
	"github.com/playtube/backend/internal/readmodel"
	"github.com/playtube/backend/internal/repositories"
)

type fakeUserStore struct {
	users   map[string]models.User
	history map[string][]string
	deleted []string

	// loginErr, when set, is returned from FindByLogin in place of a lookup.
	loginErr error
}

func newFakeUserStore(users ...models.User) *fakeUserStore {
	s := &fakeUserStore{users: make(map[string]models.User), history: make(map[string][]string)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *fakeUserStore) Create(_ context.Context, user models.User) error {
	for _, existing := range s.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return repositories.ErrConflict
		}
	}
	s.users[user.ID] = user
	return nil
}

func (s *fakeUserStore) FindByID(_ context.Context, id string) (models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	return user, nil
}

func (s *fakeUserStore) FindByLogin(_ context.Context, login string) (models.User, error) {
	if s.loginErr != nil {
		return models.User{}, s.loginErr
	}
	for _, user := range s.users {
		if user.Username == login || user.Email == login {
			return user, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

func (s *fakeUserStore) Update(_ context.Context, id string, update repositories.UserUpdate) (models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	if update.FullName != nil {
		user.FullName = *update.FullName
	}
	if update.Email != nil {
		user.Email = *update.Email
	}
	if update.Avatar != nil {
		user.Avatar = *update.Avatar
	}
	if update.CoverImage != nil {
		user.CoverImage = *update.CoverImage
	}
	if update.Password != nil {
		user.Password = *update.Password
	}
	s.users[id] = user
	return user, nil
}

func (s *fakeUserStore) AddWatchHistory(_ context.Context, userID, videoID string) error {
	s.history[userID] = append(s.history[userID], videoID)
	return nil
}

func (s *fakeUserStore) Delete(_ context.Context, userID string) error {
	if _, ok := s.users[userID]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.users, userID)
	s.deleted = append(s.deleted, userID)
	return nil
}

type fakeVideoStore struct {
	videos map[string]models.Video
	views  map[string]int
}

func newFakeVideoStore(videos ...models.Video) *fakeVideoStore {
	s := &fakeVideoStore{videos: make(map[string]models.Video), views: make(map[string]int)}
	for _, v := range videos {
		s.videos[v.ID] = v
	}
	return s
}

func (s *fakeVideoStore) Create(_ context.Context, video models.Video) error {
	s.videos[video.ID] = video
	return nil
}

func (s *fakeVideoStore) FindByID(_ context.Context, id string) (models.Video, error) {
	video, ok := s.videos[id]
	if !ok {
		return models.Video{}, repositories.ErrNotFound
	}
	return video, nil
}

func (s *fakeVideoStore) Update(_ context.Context, id string, update repositories.VideoUpdate) (models.Video, error) {
	video, ok := s.videos[id]
	if !ok {
		return models.Video{}, repositories.ErrNotFound
	}
	if update.Title != nil {
		video.Title = *update.Title
	}
	if update.Description != nil {
		video.Description = *update.Description
	}
	if update.Thumbnail != nil {
		video.Thumbnail = *update.Thumbnail
	}
	s.videos[id] = video
	return video, nil
}

func (s *fakeVideoStore) TogglePublish(_ context.Context, id string) (bool, error) {
	video, ok := s.videos[id]
	if !ok {
		return false, repositories.ErrNotFound
	}
	video.IsPublished = !video.IsPublished
	s.videos[id] = video
	return video.IsPublished, nil
}

func (s *fakeVideoStore) IncrementViews(_ context.Context, id string) error {
	if _, ok := s.videos[id]; !ok {
		return repositories.ErrNotFound
	}
	s.views[id]++
	return nil
}

func (s *fakeVideoStore) Delete(_ context.Context, id string) error {
	if _, ok := s.videos[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.videos, id)
	return nil
}

type fakeCommentStore struct {
	comments map[string]models.Comment
}

func newFakeCommentStore(comments ...models.Comment) *fakeCommentStore {
	s := &fakeCommentStore{comments: make(map[string]models.Comment)}
	for _, c := range comments {
		s.comments[c.ID] = c
	}
	return s
}

func (s *fakeCommentStore) Create(_ context.Context, comment models.Comment) error {
	s.comments[comment.ID] = comment
	return nil
}

func (s *fakeCommentStore) FindByID(_ context.Context, id string) (models.Comment, error) {
	comment, ok := s.comments[id]
	if !ok {
		return models.Comment{}, repositories.ErrNotFound
	}
	return comment, nil
}

func (s *fakeCommentStore) UpdateContent(_ context.Context, id, content string) (models.Comment, error) {
	comment, ok := s.comments[id]
	if !ok {
		return models.Comment{}, repositories.ErrNotFound
	}
	comment.Content = content
	s.comments[id] = comment
	return comment, nil
}

func (s *fakeCommentStore) Delete(_ context.Context, id string) error {
	if _, ok := s.comments[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.comments, id)
	return nil
}

type fakeTweetStore struct {
	tweets map[string]models.Tweet
}

func newFakeTweetStore(tweets ...models.Tweet) *fakeTweetStore {
	s := &fakeTweetStore{tweets: make(map[string]models.Tweet)}
	for _, tw := range tweets {
		s.tweets[tw.ID] = tw
	}
	return s
}

func (s *fakeTweetStore) Create(_ context.Context, tweet models.Tweet) error {
	s.tweets[tweet.ID] = tweet
	return nil
}

func (s *fakeTweetStore) FindByID(_ context.Context, id string) (models.Tweet, error) {
	tweet, ok := s.tweets[id]
	if !ok {
		return models.Tweet{}, repositories.ErrNotFound
	}
	return tweet, nil
}

func (s *fakeTweetStore) UpdateContent(_ context.Context, id, content string) (models.Tweet, error) {
	tweet, ok := s.tweets[id]
	if !ok {
		return models.Tweet{}, repositories.ErrNotFound
	}
	tweet.Content = content
	s.tweets[id] = tweet
	return tweet, nil
}

func (s *fakeTweetStore) Delete(_ context.Context, id string) error {
	if _, ok := s.tweets[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.tweets, id)
	return nil
}

type likeKey struct {
	actor  string
	kind   models.LikeTargetKind
	target string
}

type fakeLikeStore struct {
	likes map[likeKey]bool
}

func newFakeLikeStore() *fakeLikeStore {
	return &fakeLikeStore{likes: make(map[likeKey]bool)}
}

func (s *fakeLikeStore) Toggle(_ context.Context, actorID string, target models.LikeTarget) (bool, error) {
	key := likeKey{actor: actorID, kind: target.Kind, target: target.ID}
	if s.likes[key] {
		delete(s.likes, key)
		return false, nil
	}
	s.likes[key] = true
	return true, nil
}

type fakeSubscriptionStore struct {
	subs map[string]bool
}

func newFakeSubscriptionStore() *fakeSubscriptionStore {
	return &fakeSubscriptionStore{subs: make(map[string]bool)}
}

func (s *fakeSubscriptionStore) Toggle(_ context.Context, subscriberID, channelID string) (bool, error) {
	key := subscriberID + "->" + channelID
	if s.subs[key] {
		delete(s.subs, key)
		return false, nil
	}
	s.subs[key] = true
	return true, nil
}

type fakePlaylistStore struct {
	playlists map[string]models.Playlist
	members   map[string][]string
}

func newFakePlaylistStore(playlists ...models.Playlist) *fakePlaylistStore {
	s := &fakePlaylistStore{playlists: make(map[string]models.Playlist), members: make(map[string][]string)}
	for _, p := range playlists {
		s.playlists[p.ID] = p
	}
	return s
}

func (s *fakePlaylistStore) Create(_ context.Context, playlist models.Playlist) error {
	s.playlists[playlist.ID] = playlist
	return nil
}

func (s *fakePlaylistStore) FindByID(_ context.Context, id string) (models.Playlist, error) {
	playlist, ok := s.playlists[id]
	if !ok {
		return models.Playlist{}, repositories.ErrNotFound
	}
	return playlist, nil
}

func (s *fakePlaylistStore) Update(_ context.Context, id string, update repositories.PlaylistUpdate) (models.Playlist, error) {
	playlist, ok := s.playlists[id]
	if !ok {
		return models.Playlist{}, repositories.ErrNotFound
	}
	if update.Name != nil {
		playlist.Name = *update.Name
	}
	if update.Description != nil {
		playlist.Description = *update.Description
	}
	s.playlists[id] = playlist
	return playlist, nil
}

func (s *fakePlaylistStore) Delete(_ context.Context, id string) error {
	if _, ok := s.playlists[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.playlists, id)
	return nil
}

func (s *fakePlaylistStore) AddVideo(_ context.Context, playlistID, videoID string) error {
	for _, existing := range s.members[playlistID] {
		if existing == videoID {
			return nil
		}
	}
	s.members[playlistID] = append(s.members[playlistID], videoID)
	return nil
}

func (s *fakePlaylistStore) RemoveVideo(_ context.Context, playlistID, videoID string) error {
	kept := s.members[playlistID][:0]
	for _, existing := range s.members[playlistID] {
		if existing != videoID {
			kept = append(kept, existing)
		}
	}
	s.members[playlistID] = kept
	return nil
}

// fakeSessions implements SessionManager with transparent tokens so tests can
// authenticate without signing real JWTs.
type fakeSessions struct {
	refreshByUser map[string]string
	revoked       []string
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{refreshByUser: make(map[string]string)}
}

func (s *fakeSessions) Issue(_ context.Context, userID string) (models.TokenPair, error) {
	pair := models.TokenPair{
		AccessToken:  "access-" + userID,
		RefreshToken: "refresh-" + userID,
	}
	s.refreshByUser[userID] = pair.RefreshToken
	return pair, nil
}

func (s *fakeSessions) Refresh(ctx context.Context, refreshToken string) (models.TokenPair, error) {
	userID := strings.TrimPrefix(refreshToken, "refresh-")
	if stored, ok := s.refreshByUser[userID]; !ok || stored != refreshToken {
		return models.TokenPair{}, errors.New("unknown refresh token")
	}
	return s.Issue(ctx, userID)
}

func (s *fakeSessions) Revoke(_ context.Context, userID string) error {
	delete(s.refreshByUser, userID)
	s.revoked = append(s.revoked, userID)
	return nil
}

func (s *fakeSessions) ParseAccess(token string) (string, error) {
	if !strings.HasPrefix(token, "access-") {
		return "", errors.New("invalid token")
	}
	return strings.TrimPrefix(token, "access-"), nil
}

type fakeMediaStorage struct {
	saved []string
}

func (s *fakeMediaStorage) Save(_ context.Context, name string, r io.Reader) (string, error) {
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	s.saved = append(s.saved, name)
	return "https://cdn.example.com/" + name, nil
}

// fakeViewStore returns canned views and records the actor each call saw.
type fakeViewStore struct {
	lastActor string

	videoPage   repositories.Page[repositories.VideoView]
	video       repositories.VideoView
	commentPage repositories.Page[repositories.CommentView]
	likedVideos []repositories.VideoView
	profile     repositories.ChannelProfileView
	subscribers []repositories.SubscriberView
	channels    []repositories.SubscribedChannelView
	playlists   []repositories.PlaylistSummaryView
	playlist    repositories.PlaylistDetailView
	tweets      []repositories.TweetView
	history     []repositories.WatchHistoryEntry
}

func (s *fakeViewStore) ListVideos(_ context.Context, actorID, _ string, _ readmodel.PageRequest) (repositories.Page[repositories.VideoView], error) {
	s.lastActor = actorID
	return s.videoPage, nil
}

func (s *fakeViewStore) GetVideoByID(_ context.Context, actorID, _ string) (repositories.VideoView, error) {
	s.lastActor = actorID
	return s.video, nil
}

func (s *fakeViewStore) ListVideoComments(_ context.Context, actorID, _ string, _ readmodel.PageRequest) (repositories.Page[repositories.CommentView], error) {
	s.lastActor = actorID
	return s.commentPage, nil
}

func (s *fakeViewStore) ListLikedVideos(_ context.Context, actorID string) ([]repositories.VideoView, error) {
	s.lastActor = actorID
	return s.likedVideos, nil
}

func (s *fakeViewStore) GetChannelProfile(_ context.Context, actorID, _ string) (repositories.ChannelProfileView, error) {
	s.lastActor = actorID
	return s.profile, nil
}

func (s *fakeViewStore) ListChannelSubscribers(_ context.Context, _ string) ([]repositories.SubscriberView, error) {
	return s.subscribers, nil
}

func (s *fakeViewStore) ListSubscribedChannels(_ context.Context, _ string) ([]repositories.SubscribedChannelView, error) {
	return s.channels, nil
}

func (s *fakeViewStore) ListUserPlaylists(_ context.Context, _ string) ([]repositories.PlaylistSummaryView, error) {
	return s.playlists, nil
}

func (s *fakeViewStore) GetPlaylistByID(_ context.Context, _ string) (repositories.PlaylistDetailView, error) {
	return s.playlist, nil
}

func (s *fakeViewStore) ListUserTweets(_ context.Context, actorID, _ string) ([]repositories.TweetView, error) {
	s.lastActor = actorID
	return s.tweets, nil
}

func (s *fakeViewStore) WatchHistory(_ context.Context, _ string) ([]repositories.WatchHistoryEntry, error) {
	return s.history, nil
}

type envelope struct {
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Success    bool            `json:"success"`
	Errors     []string        `json:"errors"`
}

func decodeEnvelope(t *testing.T, body io.Reader) envelope {
	t.Helper()
	var env envelope
	if err := json.NewDecoder(body).Decode(&env); err != nil {
		t.Fatalf("decode response envelope: %v", err)
	}
	return env
}

func unmarshalData(t *testing.T, env envelope, v any) {
	t.Helper()
	if err := json.Unmarshal(env.Data, v); err != nil {
		t.Fatalf("unmarshal envelope data: %v", err)
	}
}
