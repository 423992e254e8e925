package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCORS(t *testing.T) {
	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name        string
		allowed     []string
		method      string
		origin      string
		preflight   bool
		wantStatus  int
		wantAllowed string
	}{
		{"allowed origin", []string{"https://app.example.com/"}, http.MethodGet, "https://app.example.com", false, http.StatusOK, "https://app.example.com"},
		{"unknown origin", []string{"https://app.example.com"}, http.MethodGet, "https://evil.example.com", false, http.StatusOK, ""},
		{"wildcard", []string{"*"}, http.MethodPost, "https://any.example.com", false, http.StatusOK, "https://any.example.com"},
		{"preflight allowed", []string{"https://app.example.com"}, http.MethodOptions, "https://app.example.com", true, http.StatusNoContent, "https://app.example.com"},
		{"preflight denied", []string{"https://app.example.com"}, http.MethodOptions, "https://evil.example.com", true, http.StatusNoContent, ""},
		{"no origin header", []string{"*"}, http.MethodGet, "", false, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := CORS(tt.allowed, okHandler)
			req := httptest.NewRequest(tt.method, "/events", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if tt.preflight {
				req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
			}
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantAllowed, rr.Header().Get("Access-Control-Allow-Origin"))
			if tt.preflight && tt.wantAllowed != "" {
				assert.Contains(t, rr.Header().Get("Access-Control-Allow-Methods"), "PATCH")
			}
		})
	}
}
