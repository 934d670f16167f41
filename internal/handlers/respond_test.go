package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRespondJSONErrorsList(t *testing.T) {
	rec := httptest.NewRecorder()
	respondJSON(context.Background(), rec, http.StatusBadRequest, nil, "bad input")

	env := decodeEnvelope(t, rec.Body)
	if env.Success {
		t.Fatal("client errors must not be marked successful")
	}
	if len(env.Errors) != 1 || env.Errors[0] != "bad input" {
		t.Fatalf("expected the message mirrored into the errors list, got %v", env.Errors)
	}

	rec = httptest.NewRecorder()
	respondJSON(context.Background(), rec, http.StatusOK, "payload", "ok")

	env = decodeEnvelope(t, rec.Body)
	if !env.Success || len(env.Errors) != 0 {
		t.Fatalf("success responses must not carry errors, got %+v", env)
	}
}
