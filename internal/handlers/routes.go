package handlers

import (
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/playtube/backend/internal/middleware"
)

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Users         UserStore
	Videos        VideoStore
	Comments      CommentStore
	Tweets        TweetStore
	Likes         LikeStore
	Subscriptions SubscriptionStore
	Playlists     PlaylistStore
	Views         ViewStore
	Sessions      SessionManager
	Media         MediaStorage

	// AuthLimiter throttles credential endpoints per client IP. Nil disables
	// throttling (tests).
	AuthLimiter middleware.RateLimiter
	CORSOrigin  string
}

// NewRouter wires every endpoint under /api/v1. Public views run behind
// Identify so anonymous requests degrade actor-relative fields instead of
// failing; mutations run behind Authenticate.
func NewRouter(deps Dependencies) http.Handler {
	users := UserHandler{Users: deps.Users, Views: deps.Views, Sessions: deps.Sessions, Media: deps.Media}
	videos := VideoHandler{Videos: deps.Videos, Users: deps.Users, Views: deps.Views, Media: deps.Media}
	comments := CommentHandler{Comments: deps.Comments, Videos: deps.Videos, Views: deps.Views}
	tweets := TweetHandler{Tweets: deps.Tweets, Users: deps.Users, Views: deps.Views}
	likes := LikeHandler{Likes: deps.Likes, Videos: deps.Videos, Comments: deps.Comments, Tweets: deps.Tweets, Views: deps.Views}
	subscriptions := SubscriptionHandler{Subscriptions: deps.Subscriptions, Users: deps.Users, Views: deps.Views}
	playlists := PlaylistHandler{Playlists: deps.Playlists, Videos: deps.Videos, Users: deps.Users, Views: deps.Views}
	health := NewHealthHandler()

	secured := middleware.Authenticate(deps.Sessions)
	identified := middleware.Identify(deps.Sessions)
	throttled := rateLimit(deps.AuthLimiter)

	origin := deps.CORSOrigin
	if origin == "" {
		origin = "*"
	}

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{origin},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/healthz", health.Handle)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/user", func(r chi.Router) {
			r.With(throttled).Post("/register", users.Register)
			r.With(throttled).Post("/login", users.Login)
			r.Post("/refresh-token", users.RefreshToken)

			r.With(identified).Get("/c/{username}", users.ChannelProfile)

			r.Group(func(r chi.Router) {
				r.Use(secured)
				r.Post("/logout", users.Logout)
				r.Get("/current", users.Current)
				r.Patch("/update-account", users.UpdateAccount)
				r.Patch("/avatar", users.UpdateAvatar)
				r.Patch("/cover-image", users.UpdateCoverImage)
				r.Patch("/password", users.ChangePassword)
				r.Get("/history", users.WatchHistory)
				r.Delete("/delete", users.Delete)
			})
		})

		r.Route("/video", func(r chi.Router) {
			r.With(identified).Get("/", videos.List)
			r.With(identified).Get("/{videoId}", videos.Get)

			r.Group(func(r chi.Router) {
				r.Use(secured)
				r.Post("/", videos.Publish)
				r.Patch("/{videoId}", videos.Update)
				r.Delete("/{videoId}", videos.Delete)
				r.Patch("/toggle/publish/{videoId}", videos.TogglePublish)
			})
		})

		r.Route("/comment", func(r chi.Router) {
			r.With(identified).Get("/{videoId}", comments.List)

			r.Group(func(r chi.Router) {
				r.Use(secured)
				r.Post("/{videoId}", comments.Add)
				r.Patch("/c/{commentId}", comments.Update)
				r.Delete("/c/{commentId}", comments.Delete)
			})
		})

		r.Route("/like", func(r chi.Router) {
			r.Use(secured)
			r.Post("/toggle/v/{videoId}", likes.ToggleVideo)
			r.Post("/toggle/c/{commentId}", likes.ToggleComment)
			r.Post("/toggle/t/{tweetId}", likes.ToggleTweet)
			r.Get("/videos", likes.ListLikedVideos)
		})

		r.Route("/subscription", func(r chi.Router) {
			r.With(identified).Get("/c/{channelId}", subscriptions.ListSubscribers)
			r.With(identified).Get("/u/{subscriberId}", subscriptions.ListSubscribed)
			r.With(secured).Post("/c/{channelId}", subscriptions.Toggle)
		})

		r.Route("/playlist", func(r chi.Router) {
			r.With(identified).Get("/{playlistId}", playlists.Get)
			r.With(identified).Get("/user/{userId}", playlists.ListForUser)

			r.Group(func(r chi.Router) {
				r.Use(secured)
				r.Post("/", playlists.Create)
				r.Patch("/{playlistId}", playlists.Update)
				r.Delete("/{playlistId}", playlists.Delete)
				r.Patch("/add/{videoId}/{playlistId}", playlists.AddVideo)
				r.Patch("/remove/{videoId}/{playlistId}", playlists.RemoveVideo)
			})
		})

		r.Route("/tweet", func(r chi.Router) {
			r.With(identified).Get("/user/{userId}", tweets.ListForUser)

			r.Group(func(r chi.Router) {
				r.Use(secured)
				r.Post("/", tweets.Create)
				r.Patch("/{tweetId}", tweets.Update)
				r.Delete("/{tweetId}", tweets.Delete)
			})
		})
	})

	return r
}

// rateLimit throttles by client IP. A nil limiter lets everything through.
func rateLimit(limiter middleware.RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter != nil {
				host, _, err := net.SplitHostPort(r.RemoteAddr)
				if err != nil {
					host = r.RemoteAddr
				}
				if !limiter.Allow(host) {
					respondJSON(r.Context(), w, http.StatusTooManyRequests, nil, "too many requests")
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
