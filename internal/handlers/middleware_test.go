package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pagecheck/pagecheck/internal/config"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
	})
}

func TestAuthMiddleware(t *testing.T) {
	cfg := &config.RuntimeConfig{Token: "sekret"}
	h := AuthMiddleware(cfg, okHandler())

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"no header", "", 401},
		{"wrong token", "Bearer nope", 401},
		{"right token", "Bearer sekret", 200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/tabs", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("got %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestAuthMiddlewareNoToken(t *testing.T) {
	cfg := &config.RuntimeConfig{}
	h := AuthMiddleware(cfg, okHandler())

	req := httptest.NewRequest("GET", "/tabs", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != 200 {
		t.Errorf("open server should not require auth, got %d", w.Code)
	}
}

func TestCorsMiddleware(t *testing.T) {
	h := CorsMiddleware(okHandler())

	req := httptest.NewRequest("OPTIONS", "/run", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != 204 {
		t.Errorf("preflight: got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS origin header")
	}

	req = httptest.NewRequest("GET", "/health", nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != 200 {
		t.Errorf("normal request: got %d", w.Code)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	h := RequestIDMiddleware(okHandler())

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Header().Get("X-Request-Id") == "" {
		t.Error("request ID should be generated")
	}

	req = httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("X-Request-Id", "given-id")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if got := w.Header().Get("X-Request-Id"); got != "given-id" {
		t.Errorf("incoming request ID should pass through, got %q", got)
	}
}

func TestRateLimitMiddlewareHealthExempt(t *testing.T) {
	h := RateLimitMiddleware(okHandler())

	for i := 0; i < 200; i++ {
		req := httptest.NewRequest("GET", "/health", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		if w.Code != 200 {
			t.Fatalf("health request %d limited: %d", i, w.Code)
		}
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	h := RateLimitMiddleware(okHandler())

	var limited bool
	for i := 0; i < 150; i++ {
		req := httptest.NewRequest("GET", "/tabs", nil)
		req.RemoteAddr = "10.9.9.9:1234"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		if w.Code == 429 {
			limited = true
			break
		}
	}
	if !limited {
		t.Error("expected 429 after exceeding the window")
	}
}

func TestRecordRunMetrics(t *testing.T) {
	before := snapshotMetrics()
	recordRun(true)
	recordRun(false)
	after := snapshotMetrics()

	if after["runsTotal"].(uint64)-before["runsTotal"].(uint64) != 2 {
		t.Errorf("runsTotal: before %v, after %v", before, after)
	}
	if after["runsFailed"].(uint64)-before["runsFailed"].(uint64) != 1 {
		t.Errorf("runsFailed: before %v, after %v", before, after)
	}
}
