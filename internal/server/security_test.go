package server

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestAuthMiddleware(t *testing.T) {
	const apiKey = "secret-key"
	handler := AuthMiddleware(apiKey, nil, NewSuspiciousActivityDetector())(okHandler)

	tests := []struct {
		name       string
		path       string
		headers    map[string]string
		wantStatus int
	}{
		{"api key header", "/api/v1/catalog", map[string]string{HeaderAPIKey: apiKey}, http.StatusOK},
		{"bearer token", "/api/v1/catalog", map[string]string{HeaderAuthorization: "Bearer " + apiKey}, http.StatusOK},
		{"bearer lowercase scheme", "/api/v1/catalog", map[string]string{HeaderAuthorization: "bearer " + apiKey}, http.StatusOK},
		{"wrong key", "/api/v1/catalog", map[string]string{HeaderAPIKey: "wrong-key"}, http.StatusUnauthorized},
		{"basic auth is not accepted", "/api/v1/catalog", map[string]string{HeaderAuthorization: "Basic " + apiKey}, http.StatusUnauthorized},
		{"missing key", "/api/v1/progression/u1", nil, http.StatusUnauthorized},
		{"healthz is public", "/healthz", nil, http.StatusOK},
		{"readyz is public", "/readyz", nil, http.StatusOK},
		{"version is public", "/version", nil, http.StatusOK},
		{"metrics is public", "/metrics", nil, http.StatusOK},
		{"lookalike path is protected", "/versionx", nil, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestAuthMiddleware_RecordsFailures(t *testing.T) {
	detector := NewSuspiciousActivityDetector()
	handler := AuthMiddleware("secret-key", nil, detector)(okHandler)

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog", nil)
		req.RemoteAddr = "10.1.1.1:5555"
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	_, failed := detector.Counts("10.1.1.1")
	assert.Equal(t, 3, failed)
}

func TestAuthMiddleware_NilDetector(t *testing.T) {
	handler := AuthMiddleware("secret-key", nil, nil)(okHandler)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/catalog", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSecurityLoggingMiddleware_BlocksAfterBudget(t *testing.T) {
	detector := NewSuspiciousActivityDetector()
	handler := SecurityLoggingMiddleware(nil, detector)(okHandler)

	const ip = "192.168.1.100"
	send := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog", nil)
		req.RemoteAddr = addr + ":1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 0; i < DetectorMaxRequests; i++ {
		require.Equal(t, http.StatusOK, send(ip), "request %d", i)
	}
	assert.Equal(t, http.StatusTooManyRequests, send(ip))

	requests, _ := detector.Counts(ip)
	assert.Equal(t, DetectorMaxRequests+1, requests)

	// Other clients keep their own budget
	assert.Equal(t, http.StatusOK, send("192.168.1.101"))
}

func TestSecurityHeadersMiddleware(t *testing.T) {
	rec := httptest.NewRecorder()
	SecurityHeadersMiddleware()(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, HeaderValueNoSniff, rec.Header().Get(HeaderContentType))
	assert.Equal(t, HeaderValueDeny, rec.Header().Get(HeaderFrameOptions))
	assert.Equal(t, HeaderValueNoReferrer, rec.Header().Get(HeaderReferrerPolicy))
	assert.Equal(t, HeaderValueNoStore, rec.Header().Get(HeaderCacheControl))
}

func TestRequestSizeLimitMiddleware(t *testing.T) {
	var readErr error
	handler := RequestSizeLimitMiddleware(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, readErr = io.ReadAll(r.Body)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/progression/u1/updates", strings.NewReader(`{"experience":100}`))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var maxErr *http.MaxBytesError
	assert.ErrorAs(t, readErr, &maxErr)
}

func TestLoggingMiddleware_RedactsSecrets(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	defer slog.SetDefault(prev)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog", nil)
	req.Header.Set(HeaderAPIKey, "secret-key-123")
	req.Header.Set(HeaderAuthorization, "Bearer mytoken")
	req.Header.Set("User-Agent", "CritiQuestApp/2.1")

	loggingMiddleware(okHandler).ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	require.Contains(t, out, LogMsgRequestHeaders)
	assert.NotContains(t, out, "secret-key-123")
	assert.NotContains(t, out, "mytoken")
	assert.Contains(t, out, "CritiQuestApp/2.1")
}

func TestLoggingMiddleware_RequestID(t *testing.T) {
	t.Run("honors upstream id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog", nil)
		req.Header.Set(HeaderRequestID, "req-abc")
		rec := httptest.NewRecorder()
		loggingMiddleware(okHandler).ServeHTTP(rec, req)
		assert.Equal(t, "req-abc", rec.Header().Get(HeaderRequestID))
	})

	t.Run("generates when missing or oversized", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog", nil)
		req.Header.Set(HeaderRequestID, strings.Repeat("x", 200))
		rec := httptest.NewRecorder()
		loggingMiddleware(okHandler).ServeHTTP(rec, req)

		id := rec.Header().Get(HeaderRequestID)
		assert.NotEmpty(t, id)
		assert.Less(t, len(id), 200)
	})
}

func TestExtractIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		forwarded  string
		trusted    []string
		expected   string
	}{
		{"direct connection", "203.0.113.7:4000", "", nil, "203.0.113.7"},
		{"untrusted proxy ignored", "203.0.113.7:4000", "198.51.100.1", nil, "203.0.113.7"},
		{"trusted proxy rightmost hop", "10.0.0.1:4000", "198.51.100.1, 198.51.100.2", []string{"10.0.0.1"}, "198.51.100.2"},
		{"trusted proxy blank hop", "10.0.0.1:4000", "198.51.100.1, ", []string{"10.0.0.1"}, "10.0.0.1"},
		{"unparseable remote addr", "garbage", "", nil, "garbage"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				req.Header.Set(HeaderForwardedFor, tt.forwarded)
			}
			assert.Equal(t, tt.expected, extractIP(req, tt.trusted))
		})
	}
}
