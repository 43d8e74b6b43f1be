package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/angelmondragon/rocketshoes-cart/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferedLogger(buf *bytes.Buffer) *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: "debug", Output: buf})
}

func logLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		out = append(out, entry)
	}
	return out
}

func TestRequestIDGeneratesAndEchoes(t *testing.T) {
	var buf bytes.Buffer
	logg := newBufferedLogger(&buf)

	h := RequestID(logg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logg.Info(r.Context(), "inside")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))
	generated := rec.Header().Get(requestIDHeader)
	require.NotEmpty(t, generated)

	lines := logLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, generated, lines[0]["request_id"])

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set(requestIDHeader, "req-123")
	h.ServeHTTP(rec, req)
	assert.Equal(t, "req-123", rec.Header().Get(requestIDHeader))
}

func TestLoggingRecordsStatus(t *testing.T) {
	var buf bytes.Buffer
	h := Logging(newBufferedLogger(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/api/v1/cart/items/3", nil))

	lines := logLines(t, &buf)
	require.Len(t, lines, 2)
	last := lines[1]
	assert.Equal(t, "request.complete", last["message"])
	assert.Equal(t, float64(http.StatusTeapot), last["status"])
	assert.Equal(t, "DELETE", last["method"])
	assert.Equal(t, "/api/v1/cart/items/3", last["path"])
}

func TestRecovererWritesInternalError(t *testing.T) {
	var buf bytes.Buffer
	h := Recoverer(newBufferedLogger(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("nil catalog")
	}))

	rec := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "INTERNAL_ERROR")
	assert.Contains(t, buf.String(), "panic.recovered")
}

func TestSanitizeRequestID(t *testing.T) {
	assert.Equal(t, "abc-123", sanitizeRequestID("  abc-123 "))
	assert.Empty(t, sanitizeRequestID("has space"))
	assert.Empty(t, sanitizeRequestID(strings.Repeat("x", maxRequestIDLength+1)))

	h := RequestID(nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "bad\nid")
	h.ServeHTTP(rec, req)
	assert.NotEqual(t, "bad\nid", rec.Header().Get(requestIDHeader))
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	h := CORS([]string{"http://localhost:3000"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/cart/items", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
