package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/playtube/backend/internal/models"
	"github.com/playtube/backend/internal/repositories"
)

func TestVideoGet(t *testing.T) {
	setup := func() (*fakeVideoStore, *fakeUserStore, *fakeViewStore, Dependencies) {
		videos := newFakeVideoStore(models.Video{ID: "v1", Owner: "owner", Title: "First", IsPublished: true})
		users := newFakeUserStore(models.User{ID: "watcher", Username: "watcher"})
		views := &fakeViewStore{video: repositories.VideoView{ID: "v1", Title: "First"}}
		deps := Dependencies{Videos: videos, Users: users, Views: views, Sessions: newFakeSessions()}
		return videos, users, views, deps
	}

	t.Run("counts the view and records watch history", func(t *testing.T) {
		videos, users, views, deps := setup()

		req := authHeader(httptest.NewRequest(http.MethodGet, "/api/v1/video/v1", nil), "watcher")
		rr := serve(deps, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
		}

		if videos.views["v1"] != 1 {
			t.Fatalf("expected one counted view, got %d", videos.views["v1"])
		}
		if got := users.history["watcher"]; len(got) != 1 || got[0] != "v1" {
			t.Fatalf("expected watch history entry, got %v", got)
		}
		if views.lastActor != "watcher" {
			t.Fatalf("view query should carry the actor, got %q", views.lastActor)
		}
	})

	t.Run("anonymous fetch counts the view but skips history", func(t *testing.T) {
		videos, users, views, deps := setup()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/video/v1", nil)
		rr := serve(deps, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}

		if videos.views["v1"] != 1 {
			t.Fatalf("expected one counted view, got %d", videos.views["v1"])
		}
		if len(users.history) != 0 {
			t.Fatalf("anonymous watch must not touch history, got %v", users.history)
		}
		if views.lastActor != "" {
			t.Fatalf("expected empty actor, got %q", views.lastActor)
		}
	})

	t.Run("unknown video is a 404", func(t *testing.T) {
		_, _, _, deps := setup()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/video/missing", nil)
		if rr := serve(deps, req); rr.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rr.Code)
		}
	})
}

func TestVideoList(t *testing.T) {
	deps := Dependencies{Videos: newFakeVideoStore(), Views: &fakeViewStore{}, Sessions: newFakeSessions()}

	t.Run("accepts pagination parameters", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/video/?page=2&limit=5", nil)
		if rr := serve(deps, req); rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
		}
	})

	t.Run("rejects malformed pagination", func(t *testing.T) {
		for _, query := range []string{"?page=0", "?page=abc", "?limit=-1"} {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/video/"+query, nil)
			if rr := serve(deps, req); rr.Code != http.StatusBadRequest {
				t.Errorf("%s: expected 400, got %d", query, rr.Code)
			}
		}
	})
}

func TestVideoPublish(t *testing.T) {
	videos := newFakeVideoStore()
	media := &fakeMediaStorage{}
	deps := Dependencies{
		Videos:   videos,
		Users:    newFakeUserStore(),
		Views:    &fakeViewStore{video: repositories.VideoView{Title: "Launch"}},
		Media:    media,
		Sessions: newFakeSessions(),
	}

	body, contentType := multipartBody(t,
		map[string]string{"title": "Launch", "description": "First upload", "duration": "12.5"},
		map[string]string{"videoFile": "clip.mp4", "thumbnail": "thumb.png"})
	req := authHeader(httptest.NewRequest(http.MethodPost, "/api/v1/video/", body), "owner")
	req.Header.Set("Content-Type", contentType)

	rr := serve(deps, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}

	if len(videos.videos) != 1 {
		t.Fatalf("expected one stored video, got %d", len(videos.videos))
	}
	for _, v := range videos.videos {
		if v.Owner != "owner" || !v.IsPublished || v.Duration != 12.5 {
			t.Fatalf("unexpected stored video: %+v", v)
		}
	}
	if len(media.saved) != 2 {
		t.Fatalf("expected video and thumbnail uploads, got %v", media.saved)
	}
	for _, name := range media.saved {
		if !strings.HasPrefix(name, "videos/") && !strings.HasPrefix(name, "thumbnails/") {
			t.Fatalf("upload key %q missing media prefix", name)
		}
	}
}

func TestVideoPublishValidation(t *testing.T) {
	deps := Dependencies{
		Videos:   newFakeVideoStore(),
		Users:    newFakeUserStore(),
		Views:    &fakeViewStore{},
		Media:    &fakeMediaStorage{},
		Sessions: newFakeSessions(),
	}

	t.Run("requires the video file", func(t *testing.T) {
		body, contentType := multipartBody(t,
			map[string]string{"title": "Launch", "description": "First upload", "duration": "10"},
			map[string]string{"thumbnail": "thumb.png"})
		req := authHeader(httptest.NewRequest(http.MethodPost, "/api/v1/video/", body), "owner")
		req.Header.Set("Content-Type", contentType)

		if rr := serve(deps, req); rr.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rr.Code)
		}
	})

	t.Run("rejects a negative duration", func(t *testing.T) {
		body, contentType := multipartBody(t,
			map[string]string{"title": "Launch", "description": "First upload", "duration": "-3"},
			map[string]string{"videoFile": "clip.mp4", "thumbnail": "thumb.png"})
		req := authHeader(httptest.NewRequest(http.MethodPost, "/api/v1/video/", body), "owner")
		req.Header.Set("Content-Type", contentType)

		if rr := serve(deps, req); rr.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rr.Code)
		}
	})
}

func TestVideoOwnershipGuards(t *testing.T) {
	setup := func() Dependencies {
		videos := newFakeVideoStore(models.Video{ID: "v1", Owner: "owner", Title: "First", IsPublished: true})
		return Dependencies{
			Videos:   videos,
			Users:    newFakeUserStore(),
			Views:    &fakeViewStore{},
			Media:    &fakeMediaStorage{},
			Sessions: newFakeSessions(),
		}
	}

	t.Run("update by a non-owner is forbidden", func(t *testing.T) {
		deps := setup()

		body, contentType := multipartBody(t, map[string]string{"title": "Hijacked"}, nil)
		req := authHeader(httptest.NewRequest(http.MethodPatch, "/api/v1/video/v1", body), "intruder")
		req.Header.Set("Content-Type", contentType)

		if rr := serve(deps, req); rr.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d: %s", rr.Code, rr.Body.String())
		}
	})

	t.Run("delete by a non-owner is forbidden", func(t *testing.T) {
		deps := setup()

		req := authHeader(httptest.NewRequest(http.MethodDelete, "/api/v1/video/v1", nil), "intruder")
		if rr := serve(deps, req); rr.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rr.Code)
		}
	})

	t.Run("owner can toggle publish state", func(t *testing.T) {
		deps := setup()

		req := authHeader(httptest.NewRequest(http.MethodPatch, "/api/v1/video/toggle/publish/v1", nil), "owner")
		rr := serve(deps, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
		}

		var payload map[string]bool
		unmarshalData(t, decodeEnvelope(t, rr.Body), &payload)
		if payload["isPublished"] {
			t.Fatal("toggling a published video should report isPublished=false")
		}
	})
}

func TestVideoDelete(t *testing.T) {
	videos := newFakeVideoStore(models.Video{ID: "v1", Owner: "owner"})
	deps := Dependencies{Videos: videos, Users: newFakeUserStore(), Views: &fakeViewStore{}, Sessions: newFakeSessions()}

	req := authHeader(httptest.NewRequest(http.MethodDelete, "/api/v1/video/v1", nil), "owner")
	if rr := serve(deps, req); rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	if _, err := videos.FindByID(context.Background(), "v1"); err == nil {
		t.Fatal("expected video to be removed")
	}
}
