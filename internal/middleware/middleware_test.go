package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/parkpulse/nps-backend/internal/middleware"
)

// call wraps a simple 200-OK inner handler in the CORS middleware, optionally
// setting an Origin header, and returns the recorded response.
func call(t *testing.T, method, origin string) *httptest.ResponseRecorder {
	t.Helper()

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	handler := middleware.CORSMiddleware(inner)
	req := httptest.NewRequest(method, "/test", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestCORSMiddleware_DefaultAllowsAnyOrigin(t *testing.T) {
	rec := call(t, http.MethodGet, "https://dashboard.example.com")

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("expected wildcard origin by default, got %q", got)
	}
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	rec := call(t, http.MethodOptions, "https://dashboard.example.com")

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204 for preflight, got %d", rec.Code)
	}
}

func TestCORSMiddleware_AllowList(t *testing.T) {
	t.Setenv("CORS_ORIGINS", "https://dash.parkpulse.dev, https://parkpulse.dev")

	rec := call(t, http.MethodGet, "https://dash.parkpulse.dev")
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://dash.parkpulse.dev" {
		t.Errorf("expected origin echoed back, got %q", got)
	}
	if rec.Header().Get("Vary") != "Origin" {
		t.Error("expected Vary: Origin on allow-listed responses")
	}

	rec = call(t, http.MethodGet, "https://evil.example.com")
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("expected no CORS grant for an unlisted origin, got %q", got)
	}
}
