package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/playtube/backend/internal/models"
)

func TestCommentAdd(t *testing.T) {
	setup := func() (*fakeCommentStore, Dependencies) {
		comments := newFakeCommentStore()
		deps := Dependencies{
			Comments: comments,
			Videos:   newFakeVideoStore(models.Video{ID: "v1", Owner: "owner", IsPublished: true}),
			Views:    &fakeViewStore{},
			Sessions: newFakeSessions(),
		}
		return comments, deps
	}

	t.Run("attaches a comment to the video", func(t *testing.T) {
		comments, deps := setup()

		req := authHeader(httptest.NewRequest(http.MethodPost, "/api/v1/comment/v1",
			strings.NewReader(`{"content":"nice one"}`)), "fan")
		rr := serve(deps, req)
		if rr.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
		}

		env := decodeEnvelope(t, rr.Body)
		var created commentResponse
		unmarshalData(t, env, &created)
		if created.Video != "v1" || created.Owner != "fan" || created.Content != "nice one" {
			t.Fatalf("unexpected comment payload: %+v", created)
		}
		if !strings.Contains(string(env.Data), `"createdAt"`) {
			t.Fatalf("comment payload must use camelCase fields: %s", env.Data)
		}

		if len(comments.comments) != 1 {
			t.Fatalf("expected one stored comment, got %d", len(comments.comments))
		}
		for _, c := range comments.comments {
			if c.Video != "v1" || c.Owner != "fan" || c.Content != "nice one" {
				t.Fatalf("unexpected stored comment: %+v", c)
			}
		}
	})

	t.Run("requires content", func(t *testing.T) {
		_, deps := setup()

		req := authHeader(httptest.NewRequest(http.MethodPost, "/api/v1/comment/v1",
			strings.NewReader(`{"content":"   "}`)), "fan")
		if rr := serve(deps, req); rr.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rr.Code)
		}
	})

	t.Run("unknown video is not found", func(t *testing.T) {
		_, deps := setup()

		req := authHeader(httptest.NewRequest(http.MethodPost, "/api/v1/comment/missing",
			strings.NewReader(`{"content":"hello"}`)), "fan")
		if rr := serve(deps, req); rr.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rr.Code)
		}
	})
}

func TestCommentUpdateAndDelete(t *testing.T) {
	setup := func() (*fakeCommentStore, Dependencies) {
		comments := newFakeCommentStore(models.Comment{ID: "c1", Video: "v1", Owner: "author", Content: "first"})
		deps := Dependencies{
			Comments: comments,
			Videos:   newFakeVideoStore(),
			Views:    &fakeViewStore{},
			Sessions: newFakeSessions(),
		}
		return comments, deps
	}

	t.Run("author can edit", func(t *testing.T) {
		comments, deps := setup()

		req := authHeader(httptest.NewRequest(http.MethodPatch, "/api/v1/comment/c/c1",
			strings.NewReader(`{"content":"edited"}`)), "author")
		if rr := serve(deps, req); rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
		}

		stored, _ := comments.FindByID(context.Background(), "c1")
		if stored.Content != "edited" {
			t.Fatalf("expected edited content, got %q", stored.Content)
		}
	})

	t.Run("non-author cannot edit", func(t *testing.T) {
		_, deps := setup()

		req := authHeader(httptest.NewRequest(http.MethodPatch, "/api/v1/comment/c/c1",
			strings.NewReader(`{"content":"hijacked"}`)), "intruder")
		if rr := serve(deps, req); rr.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rr.Code)
		}
	})

	t.Run("author can delete", func(t *testing.T) {
		comments, deps := setup()

		req := authHeader(httptest.NewRequest(http.MethodDelete, "/api/v1/comment/c/c1", nil), "author")
		if rr := serve(deps, req); rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
		if _, err := comments.FindByID(context.Background(), "c1"); err == nil {
			t.Fatal("expected comment to be removed")
		}
	})

	t.Run("non-author cannot delete", func(t *testing.T) {
		_, deps := setup()

		req := authHeader(httptest.NewRequest(http.MethodDelete, "/api/v1/comment/c/c1", nil), "intruder")
		if rr := serve(deps, req); rr.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rr.Code)
		}
	})
}

func TestCommentList(t *testing.T) {
	views := &fakeViewStore{}
	deps := Dependencies{
		Comments: newFakeCommentStore(),
		Videos:   newFakeVideoStore(models.Video{ID: "v1", Owner: "owner", IsPublished: true}),
		Views:    views,
		Sessions: newFakeSessions(),
	}

	t.Run("readable anonymously", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/comment/v1", nil)
		if rr := serve(deps, req); rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
	})

	t.Run("carries the actor when authenticated", func(t *testing.T) {
		req := authHeader(httptest.NewRequest(http.MethodGet, "/api/v1/comment/v1", nil), "fan")
		if rr := serve(deps, req); rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
		if views.lastActor != "fan" {
			t.Fatalf("comment list should carry the actor, got %q", views.lastActor)
		}
	})

	t.Run("unknown video is not found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/comment/missing", nil)
		if rr := serve(deps, req); rr.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rr.Code)
		}
	})
}
