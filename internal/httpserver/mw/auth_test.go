package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tabvault/tabvault/internal/logger"
)

var testLog = logger.New("error", false)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuth(t *testing.T) {
	tests := []struct {
		name   string
		token  string
		header string
		want   int
	}{
		{"valid token", "secret", "Bearer secret", http.StatusOK},
		{"wrong token", "secret", "Bearer nope", http.StatusUnauthorized},
		{"missing header", "secret", "", http.StatusUnauthorized},
		{"not bearer", "secret", "Basic secret", http.StatusUnauthorized},
		{"server without token", "", "Bearer anything", http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := Auth(tt.token, testLog)(okHandler())
			req := httptest.NewRequest(http.MethodGet, "/api/bookmarks", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	h := CORS()(okHandler())
	req := httptest.NewRequest(http.MethodOptions, "/api/bookmarks", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing Access-Control-Allow-Origin header")
	}
}

func TestEnforceHost(t *testing.T) {
	h := EnforceHost([]string{"api.example.com", "*.tabvault.dev"}, testLog)(okHandler())

	tests := []struct {
		host string
		want int
	}{
		{"api.example.com", http.StatusOK},
		{"sub.tabvault.dev", http.StatusOK},
		{"evil.com", http.StatusForbidden},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Host = tt.host
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != tt.want {
			t.Errorf("host %s: status = %d, want %d", tt.host, rec.Code, tt.want)
		}
	}
}
