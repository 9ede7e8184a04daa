package router

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-settings-admin/internal/auth"
	"github.com/ovaphlow/pitchfork/service-settings-admin/internal/metrics"
	"github.com/ovaphlow/pitchfork/service-settings-admin/internal/usersettings"
	"github.com/ovaphlow/pitchfork/service-settings-admin/internal/usersettings/entity"
	"github.com/ovaphlow/pitchfork/service-settings-admin/internal/view"
	"github.com/ovaphlow/pitchfork/service-settings-admin/pkg/utilities"
)

type stubStore struct{ row entity.UserSettings }

func (s stubStore) GetByID(_ context.Context, id int64) (*entity.UserSettings, error) {
	if id != s.row.UserID {
		return nil, sql.ErrNoRows
	}
	r := s.row
	return &r, nil
}

func (s stubStore) List(_ context.Context, _ *int64, _ int) ([]*entity.UserSettings, error) {
	r := s.row
	return []*entity.UserSettings{&r}, nil
}

func (s stubStore) Update(_ context.Context, _ int64, _ entity.Changes) (int64, error) {
	return 1, nil
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func newTestRouter(t *testing.T, authCfg auth.Config, ping pingerFunc) (http.Handler, *metrics.Metrics) {
	t.Helper()
	logger := zap.NewNop().Sugar()
	renderer, err := view.NewRenderer()
	require.NoError(t, err)
	m := metrics.New()
	svc := usersettings.NewService(stubStore{row: entity.UserSettings{UserID: 5}})
	h := usersettings.NewHandler(svc, renderer, view.NewFlasher("k"), logger, m)
	if ping == nil {
		ping = func(context.Context) error { return nil }
	}
	return RegisterRoutes(Deps{
		Logger:   logger,
		Settings: h,
		Health:   ping,
		Auth:     authCfg,
		Metrics:  m,
		IDs:      utilities.NewIDGeneratorWithNode(1),
	}), m
}

func serve(h http.Handler, method, target string, setup func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if setup != nil {
		setup(req)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRoutes(t *testing.T) {
	h, m := newTestRouter(t, auth.Config{}, nil)

	tests := []struct {
		method, target string
		want           int
	}{
		{http.MethodGet, "/", http.StatusOK},
		{http.MethodGet, "/edit/5", http.StatusOK},
		{http.MethodGet, "/edit/6", http.StatusNotFound},
		{http.MethodGet, "/edit/five", http.StatusNotFound},
		{http.MethodGet, "/nope", http.StatusNotFound},
		{http.MethodDelete, "/edit/5", http.StatusMethodNotAllowed},
		{http.MethodGet, "/health", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			w := serve(h, tt.method, tt.target, nil)
			assert.Equal(t, tt.want, w.Code)
			assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
			assert.NotEmpty(t, w.Header().Get(requestIDHeader))
		})
	}

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("GET", "GET /edit/{user_id}", "200")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Requests.WithLabelValues("GET", "GET /edit/{user_id}", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("GET", "unmatched", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("DELETE", "unmatched", "405")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("GET", "GET /health", "200")))
}

func TestRequestIDPassthrough(t *testing.T) {
	h, _ := newTestRouter(t, auth.Config{}, nil)
	w := serve(h, http.MethodGet, "/health", func(r *http.Request) {
		r.Header.Set(requestIDHeader, "abc-123")
	})
	assert.Equal(t, "abc-123", w.Header().Get(requestIDHeader))
}

func TestHealth(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		h, _ := newTestRouter(t, auth.Config{}, nil)
		w := serve(h, http.MethodGet, "/health", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	})

	t.Run("store down", func(t *testing.T) {
		h, _ := newTestRouter(t, auth.Config{}, func(context.Context) error {
			return errors.New("connection refused")
		})
		w := serve(h, http.MethodGet, "/health", nil)
		require.Equal(t, http.StatusInternalServerError, w.Code)
		var body map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "error", body["status"])
		assert.Equal(t, "connection refused", body["detail"])
	})
}

func TestAuthGate(t *testing.T) {
	h, _ := newTestRouter(t, auth.Config{User: "admin", Pass: "pw"}, nil)

	w := serve(h, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, `Basic realm="Admin"`, w.Header().Get("WWW-Authenticate"))

	w = serve(h, http.MethodGet, "/edit/5", func(r *http.Request) { r.SetBasicAuth("admin", "bad") })
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(h, http.MethodGet, "/edit/5", func(r *http.Request) { r.SetBasicAuth("admin", "pw") })
	assert.Equal(t, http.StatusOK, w.Code)

	// only health bypasses the gate
	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/health", nil).Code)

	w = serve(h, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NotContains(t, w.Body.String(), "admin_http_requests_total")

	w = serve(h, http.MethodGet, "/metrics", func(r *http.Request) { r.SetBasicAuth("admin", "pw") })
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "admin_http_requests_total")
}
