package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveUpdate(t *testing.T) {
	m := New()
	m.ObserveUpdate(OutcomeUpdated)
	m.ObserveUpdate(OutcomeUpdated)
	m.ObserveUpdate(OutcomeInvalid)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Updates.WithLabelValues(OutcomeUpdated)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Updates.WithLabelValues(OutcomeInvalid)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Updates.WithLabelValues(OutcomeError)))

	var nilMetrics *Metrics
	assert.NotPanics(t, func() { nilMetrics.ObserveUpdate(OutcomeError) })
}

func TestHandler(t *testing.T) {
	m := New()
	m.Requests.WithLabelValues("GET", "GET /{$}", "200").Inc()

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `admin_http_requests_total{method="GET",route="GET /{$}",status="200"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestSeparateRegistries(t *testing.T) {
	// two instances must not collide on registration
	a, b := New(), New()
	a.ObserveUpdate(OutcomeUpdated)
	assert.Equal(t, 1.0, testutil.ToFloat64(a.Updates.WithLabelValues(OutcomeUpdated)))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.Updates.WithLabelValues(OutcomeUpdated)))
}
