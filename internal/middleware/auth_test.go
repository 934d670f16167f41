package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type stubParser struct{}

func (stubParser) ParseAccess(token string) (string, error) {
	if !strings.HasPrefix(token, "ok-") {
		return "", errors.New("invalid token")
	}
	return strings.TrimPrefix(token, "ok-"), nil
}

func actorEcho() (http.Handler, *string) {
	var seen string
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = ActorFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}), &seen
}

func TestAuthenticate(t *testing.T) {
	t.Run("accepts the access cookie", func(t *testing.T) {
		next, seen := actorEcho()
		handler := Authenticate(stubParser{})(next)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: AccessCookie, Value: "ok-user-1"})
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
		if *seen != "user-1" {
			t.Fatalf("expected actor user-1, got %q", *seen)
		}
	})

	t.Run("accepts a bearer header", func(t *testing.T) {
		next, seen := actorEcho()
		handler := Authenticate(stubParser{})(next)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer ok-user-2")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK || *seen != "user-2" {
			t.Fatalf("expected actor user-2 with 200, got %q with %d", *seen, rr.Code)
		}
	})

	t.Run("the cookie wins over the header", func(t *testing.T) {
		next, seen := actorEcho()
		handler := Authenticate(stubParser{})(next)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: AccessCookie, Value: "ok-cookie-user"})
		req.Header.Set("Authorization", "Bearer ok-header-user")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if *seen != "cookie-user" {
			t.Fatalf("expected cookie actor, got %q", *seen)
		}
	})

	t.Run("rejects missing credentials", func(t *testing.T) {
		next, _ := actorEcho()
		handler := Authenticate(stubParser{})(next)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rr.Code)
		}
		if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
			t.Fatalf("expected JSON error body, got %q", ct)
		}
		if body := rr.Body.String(); !strings.Contains(body, `"errors":["unauthorized"]`) {
			t.Fatalf("expected an errors list in the body, got %s", body)
		}
	})

	t.Run("rejects invalid tokens", func(t *testing.T) {
		next, _ := actorEcho()
		handler := Authenticate(stubParser{})(next)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer bogus")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rr.Code)
		}
	})
}

func TestIdentify(t *testing.T) {
	t.Run("resolves the actor when present", func(t *testing.T) {
		next, seen := actorEcho()
		handler := Identify(stubParser{})(next)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer ok-user-1")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK || *seen != "user-1" {
			t.Fatalf("expected actor user-1 with 200, got %q with %d", *seen, rr.Code)
		}
	})

	t.Run("lets anonymous requests through", func(t *testing.T) {
		next, seen := actorEcho()
		handler := Identify(stubParser{})(next)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
		if *seen != "" {
			t.Fatalf("expected anonymous actor, got %q", *seen)
		}
	})

	t.Run("treats a bad token as anonymous", func(t *testing.T) {
		next, seen := actorEcho()
		handler := Identify(stubParser{})(next)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer bogus")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK || *seen != "" {
			t.Fatalf("expected anonymous pass-through, got %q with %d", *seen, rr.Code)
		}
	})
}

func TestActorContextRoundTrip(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := WithActor(req.Context(), "user-1")
	if got := ActorFromContext(ctx); got != "user-1" {
		t.Fatalf("expected user-1, got %q", got)
	}
	if got := ActorFromContext(req.Context()); got != "" {
		t.Fatalf("expected empty actor on untouched context, got %q", got)
	}
	if WithActor(req.Context(), "") != req.Context() {
		t.Fatal("empty actor must not allocate a new context")
	}
}
