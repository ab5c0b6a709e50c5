package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/link-catalog-backend/internal/auth"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func newTestRouter(t *testing.T, db Pinger) (*gin.Engine, *auth.JWTManager) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	jwtManager := auth.NewJWTManager("router-secret", time.Hour)
	r := NewRouter(Config{
		JWTManager: jwtManager,
		DB:         db,
		Logger:     slog.New(slog.NewJSONHandler(io.Discard, nil)),
	})
	return r, jwtManager
}

func get(r http.Handler, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	w := get(r, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestReadyz(t *testing.T) {
	r, _ := newTestRouter(t, stubPinger{})
	assert.Equal(t, http.StatusOK, get(r, "/readyz", nil).Code)

	r, _ = newTestRouter(t, stubPinger{err: errors.New("connection refused")})
	w := get(r, "/readyz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"unavailable"}`, w.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	r, _ := newTestRouter(t, nil)
	get(r, "/healthz", nil)

	w := get(r, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}

func TestCorrelationID(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	w := get(r, "/healthz", nil)
	assert.NotEmpty(t, w.Header().Get(CorrelationIDHeader))

	w = get(r, "/healthz", http.Header{CorrelationIDHeader: {"abc-123"}})
	assert.Equal(t, "abc-123", w.Header().Get(CorrelationIDHeader))
}

func TestTokenInfo(t *testing.T) {
	r, jwtManager := newTestRouter(t, nil)

	assert.Equal(t, http.StatusUnauthorized, get(r, "/v1/auth/token", nil).Code)

	token, err := jwtManager.GenerateAccessToken("admin-ui", "ops@example.com")
	require.NoError(t, err)

	w := get(r, "/v1/auth/token", http.Header{"Authorization": {"Bearer " + token}})
	require.Equal(t, http.StatusOK, w.Code)

	var body TokenInfoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "admin-ui", body.Subject)
	assert.Equal(t, "ops@example.com", body.Email)
	require.NotNil(t, body.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(time.Hour), *body.ExpiresAt, time.Minute)
}

func TestAllowedOrigins(t *testing.T) {
	assert.Contains(t, allowedOrigins(false, ""), "http://localhost:3000")
	assert.Equal(t, []string{"https://a.example", "https://b.example"},
		allowedOrigins(true, " https://a.example, ,https://b.example"))
	assert.Equal(t, []string{"https://localhost"}, allowedOrigins(true, ""))
}

func TestUnknownRouteIsLabelledUnmatched(t *testing.T) {
	r, _ := newTestRouter(t, nil)
	get(r, "/nope", nil)

	w := get(r, "/metrics", nil)
	assert.True(t, strings.Contains(w.Body.String(), `route="unmatched"`))
}
