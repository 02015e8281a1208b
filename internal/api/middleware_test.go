package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tanmayb/cinerender/internal/models"
)

func protectedHandler(t *testing.T) http.Handler {
	t.Helper()
	return APIKeyAuth("secret-key")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
}

func TestAPIKeyAuthMissingKey(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/v1/renders/abc", nil)
	protectedHandler(t).ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestAPIKeyAuthWrongKey(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/v1/renders/abc", nil)
	req.Header.Set("X-API-Key", "wrong")
	protectedHandler(t).ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestAPIKeyAuthHeaderForms(t *testing.T) {
	for _, set := range []func(*http.Request){
		func(r *http.Request) { r.Header.Set("X-API-Key", "secret-key") },
		func(r *http.Request) { r.Header.Set("Authorization", "Bearer secret-key") },
	} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/v1/renders/abc", nil)
		set(req)
		protectedHandler(t).ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("status = %d, want 204", rec.Code)
		}
	}
}

func TestOutputPathFromResponse(t *testing.T) {
	cases := []struct {
		name     string
		response models.JSONB
		want     string
	}{
		{"nil response", nil, ""},
		{"missing key", models.JSONB{"status": "completed"}, ""},
		{"wrong type", models.JSONB{"output_video_path": 42}, ""},
		{"present", models.JSONB{"output_video_path": " /out/a.avi "}, "/out/a.avi"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := outputPathFromResponse(c.response); got != c.want {
				t.Fatalf("got %q, want %q", got, c.want)
			}
		})
	}
}
