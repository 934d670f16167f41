package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/playtube/backend/internal/logging"
)

type actorKey struct{}

// AccessCookie is the cookie carrying the access token. A bearer
// Authorization header is accepted as a fallback for non-browser clients.
const AccessCookie = "accessToken"

// AccessTokenParser verifies an access token and returns the actor it
// identifies.
type AccessTokenParser interface {
	ParseAccess(token string) (string, error)
}

// WithActor stores the authenticated actor's id on the context.
func WithActor(ctx context.Context, actorID string) context.Context {
	if actorID == "" {
		return ctx
	}
	return context.WithValue(ctx, actorKey{}, actorID)
}

// ActorFromContext returns the authenticated actor's id, or "" for anonymous
// requests.
func ActorFromContext(ctx context.Context) string {
	if actorID, ok := ctx.Value(actorKey{}).(string); ok {
		return actorID
	}
	return ""
}

// Authenticate rejects requests that do not carry a valid access token.
func Authenticate(parser AccessTokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actorID, err := resolveActor(parser, r)
			if err != nil || actorID == "" {
				logging.FromContext(r.Context()).Warn("unauthorized request", "path", r.URL.Path, "error", err)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"statusCode":401,"data":null,"message":"unauthorized","success":false,"errors":["unauthorized"]}`))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actorID)))
		})
	}
}

// Identify resolves the actor when a valid access token is present and lets
// the request through anonymously otherwise. Views relativize themselves to
// the actor; without one they degrade rather than fail.
func Identify(parser AccessTokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actorID, err := resolveActor(parser, r)
			if err == nil && actorID != "" {
				r = r.WithContext(WithActor(r.Context(), actorID))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func resolveActor(parser AccessTokenParser, r *http.Request) (string, error) {
	token := ""
	if c, err := r.Cookie(AccessCookie); err == nil {
		token = c.Value
	}
	if token == "" {
		header := r.Header.Get("Authorization")
		if strings.HasPrefix(header, "Bearer ") {
			token = strings.TrimPrefix(header, "Bearer ")
		}
	}
	if token == "" {
		return "", nil
	}
	return parser.ParseAccess(token)
}
