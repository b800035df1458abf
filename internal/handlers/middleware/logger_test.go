package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

type logCall struct {
	level string
	msg   string
	args  []any
}

type recordLogger struct {
	calls []logCall
}

func (l *recordLogger) Info(msg string, v ...any)  { l.calls = append(l.calls, logCall{"info", msg, v}) }
func (l *recordLogger) Warn(msg string, v ...any)  { l.calls = append(l.calls, logCall{"warn", msg, v}) }
func (l *recordLogger) Error(msg string, v ...any) { l.calls = append(l.calls, logCall{"error", msg, v}) }

func TestLoggerMiddleware(t *testing.T) {
	l := &recordLogger{}

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, err := w.Write([]byte("hi"))
		require.NoError(t, err, "should write response")
	})

	middleware := LoggerMiddleware(l)
	srv := httptest.NewServer(middleware(h))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/test", nil)
	require.NoError(t, err)
	req.Header.Set(RequestIDHeader, "req-1")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err, "should make request to test server")
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "should read response body")
	defer resp.Body.Close() // nolint:errcheck

	require.Equalf(t, http.StatusTeapot, resp.StatusCode, "should return status Teapot. Resp: %s", string(body))
	require.Equal(t, "hi", string(body), "should return 'hi' in response")
	require.Equal(t, "req-1", resp.Header.Get(RequestIDHeader), "request id should be echoed")

	require.Len(t, l.calls, 1, "logger should be called once")
	call := l.calls[0]
	require.Equal(t, "warn", call.level, "client errors logged with warn level")
	require.Equal(t, "got HTTP request", call.msg, "logger should log 'got HTTP request'")
	require.Len(t, call.args, 12, "logger should log 12 fields")
	require.Equal(t, "method", call.args[0])
	require.Equal(t, "GET", call.args[1])
	require.Equal(t, "uri", call.args[2])
	require.Equal(t, "/test", call.args[3])
	require.Equal(t, "duration", call.args[4])
	require.NotEmpty(t, call.args[5], "duration should not be empty")
	require.Equal(t, "status", call.args[6])
	require.Equal(t, http.StatusTeapot, call.args[7])
	require.Equal(t, "size", call.args[8])
	require.Equal(t, 2, call.args[9], "size should be 2 (length of 'hi')")
	require.Equal(t, "request_id", call.args[10])
	require.Equal(t, "req-1", call.args[11])
}

func TestLoggerMiddleware_Levels(t *testing.T) {
	tests := []struct {
		name   string
		status int
		level  string
	}{
		{"ok is info", http.StatusOK, "info"},
		{"created is info", http.StatusCreated, "info"},
		{"not found is warn", http.StatusNotFound, "warn"},
		{"server error is error", http.StatusInternalServerError, "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := &recordLogger{}
			h := LoggerMiddleware(l)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}))

			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

			require.Len(t, l.calls, 1)
			require.Equal(t, tt.level, l.calls[0].level)
			require.NotEmpty(t, w.Header().Get(RequestIDHeader), "request id should be generated")
		})
	}
}
