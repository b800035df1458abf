package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCORSMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	do := func(origin string, req *http.Request) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		CORSMiddleware(origin)(next).ServeHTTP(w, req)
		return w
	}

	t.Run("any origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://bank.example")

		w := do("*", req)

		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("other origin not allowed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://evil.example")

		w := do("https://bank.example", req)

		require.Equal(t, http.StatusOK, w.Code, "request still served, browser blocks it")
		require.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/transactions", nil)
		req.Header.Set("Origin", "https://bank.example")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)

		w := do("https://bank.example", req)

		require.Equal(t, http.StatusNoContent, w.Code)
		require.Equal(t, "https://bank.example", w.Header().Get("Access-Control-Allow-Origin"))
		require.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PATCH")
	})

	t.Run("disabled", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://bank.example")

		w := do("", req)

		require.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}
