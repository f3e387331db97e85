package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCORS(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	wrapped := CORS(DefaultCORSConfig([]string{"chrome-extension://abcdef", "moz-extension:"}))(handler)

	t.Run("adds CORS headers for allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Origin", "chrome-extension://abcdef")
		w := httptest.NewRecorder()

		wrapped.ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "chrome-extension://abcdef" {
			t.Errorf("Access-Control-Allow-Origin = %q", got)
		}
	})

	t.Run("allows scheme wildcard", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Origin", "moz-extension://1234-5678")
		w := httptest.NewRecorder()

		wrapped.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Status code = %v, want %v", w.Code, http.StatusOK)
		}
	})

	t.Run("rejects other origins", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/test", nil)
		req.Header.Set("Origin", "https://evil.example")
		w := httptest.NewRecorder()

		wrapped.ServeHTTP(w, req)

		if w.Code != http.StatusForbidden {
			t.Errorf("Status code = %v, want %v", w.Code, http.StatusForbidden)
		}
	})

	t.Run("handles preflight OPTIONS request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/test", nil)
		req.Header.Set("Origin", "chrome-extension://abcdef")
		w := httptest.NewRecorder()

		wrapped.ServeHTTP(w, req)

		if w.Code != http.StatusNoContent {
			t.Errorf("Status code = %v, want %v", w.Code, http.StatusNoContent)
		}
		if w.Header().Get("Access-Control-Allow-Methods") == "" {
			t.Error("Access-Control-Allow-Methods not set")
		}
	})

	t.Run("passes requests without origin", func(t *testing.T) {
		w := httptest.NewRecorder()
		wrapped.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

		if w.Code != http.StatusOK {
			t.Errorf("Status code = %v, want %v", w.Code, http.StatusOK)
		}
	})
}

func TestOriginAllowed(t *testing.T) {
	tests := []struct {
		name    string
		origin  string
		allowed []string
		want    bool
	}{
		{"exact", "https://ui.local", []string{"https://ui.local"}, true},
		{"case insensitive", "HTTPS://UI.local", []string{"https://ui.local"}, true},
		{"wildcard", "https://anything", []string{"*"}, true},
		{"scheme", "chrome-extension://id", []string{"chrome-extension:"}, true},
		{"not listed", "https://other", []string{"https://ui.local"}, false},
		{"empty list loopback", "http://localhost:3000", nil, true},
		{"empty list remote", "https://example.com", nil, false},
		{"garbage", "::not a url", []string{"*"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OriginAllowed(tt.origin, tt.allowed); got != tt.want {
				t.Errorf("OriginAllowed(%q) = %v, want %v", tt.origin, got, tt.want)
			}
		})
	}
}
