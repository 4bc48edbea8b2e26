package describe_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hhyags/lytte-songs-2/internal/infra/describe"
)

func TestGenerateReturnsCandidateText(t *testing.T) {
	var gotPath string
	var gotBody map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Neon haze over a sleeping city."}]}}]}`))
	}))
	defer srv.Close()

	c := describe.NewClient("test-key", describe.WithBaseURL(srv.URL))
	got := c.Generate(context.Background(), "Electronic Dreams", "Various Artists")

	if got != "Neon haze over a sleeping city." {
		t.Errorf("expected candidate text, got %q", got)
	}
	if !strings.Contains(gotPath, "generateContent") {
		t.Errorf("unexpected request path %q", gotPath)
	}
	if gotBody["contents"] == nil {
		t.Error("expected contents in request body")
	}
}

func TestGenerateFallbackOnHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := describe.NewClient("test-key", describe.WithBaseURL(srv.URL))
	if got := c.Generate(context.Background(), "T", "A"); got != describe.Fallback {
		t.Errorf("expected fallback, got %q", got)
	}
}

func TestGenerateFallbackOnMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	c := describe.NewClient("test-key", describe.WithBaseURL(srv.URL))
	if got := c.Generate(context.Background(), "T", "A"); got != describe.Fallback {
		t.Errorf("expected fallback, got %q", got)
	}
}

func TestGenerateFallbackWithoutAPIKey(t *testing.T) {
	c := describe.NewClient("")
	if got := c.Generate(context.Background(), "T", "A"); got != describe.Fallback {
		t.Errorf("expected fallback, got %q", got)
	}
}

func TestGenerateFallbackOnUnreachableServer(t *testing.T) {
	c := describe.NewClient("test-key", describe.WithBaseURL("http://127.0.0.1:1"))
	if got := c.Generate(context.Background(), "T", "A"); got != describe.Fallback {
		t.Errorf("expected fallback, got %q", got)
	}
}
