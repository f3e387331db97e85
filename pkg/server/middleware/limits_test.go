package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestBodyLimit(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	wrapped := BodyLimit(16)(handler)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"under limit", "small", http.StatusOK},
		{"at limit", strings.Repeat("a", 16), http.StatusOK},
		{"over limit", strings.Repeat("a", 17), http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			wrapped.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body)))
			if w.Code != tt.want {
				t.Errorf("Status code = %v, want %v", w.Code, tt.want)
			}
		})
	}
}
