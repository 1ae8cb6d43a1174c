package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveRequest(t *testing.T) {
	m := New()
	m.ObserveRequest("GET /api/view", http.MethodGet, 200, 20*time.Millisecond)
	m.ObserveRequest("GET /api/view", http.MethodGet, 200, 30*time.Millisecond)
	m.ObserveRequest("", http.MethodGet, 404, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Requests.WithLabelValues("GET /api/view", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("unmatched", "GET", "404")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.RequestDuration))
}

func TestObserveEventAndGauges(t *testing.T) {
	m := New()
	m.ObserveEvent("dashboard.selection.changed", nil)
	m.ObserveEvent("dashboard.selection.changed", errors.New("breaker open"))
	m.DatasetRows.Set(16)
	m.Sessions.Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Events.WithLabelValues("dashboard.selection.changed", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Events.WithLabelValues("dashboard.selection.changed", "error")))
	assert.Equal(t, 16.0, testutil.ToFloat64(m.DatasetRows))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Sessions))
}

func TestObserveCompute(t *testing.T) {
	m := New()
	m.ObserveCompute("http", time.Now())
	m.ObserveCompute("nats", time.Now())
	assert.Equal(t, 2, testutil.CollectAndCount(m.ComputeDuration))
}

func TestHandler(t *testing.T) {
	m := New()
	m.DatasetRows.Set(3)
	m.RateLimited.Inc()

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "dashboard_dataset_rows 3")
	assert.Contains(t, string(body), "dashboard_http_rate_limited_total 1")
	assert.Contains(t, string(body), "go_goroutines")
}

func TestNewIsolatedRegistries(t *testing.T) {
	a, b := New(), New()
	a.DatasetRows.Set(1)
	assert.Equal(t, 0.0, testutil.ToFloat64(b.DatasetRows))
	assert.NotSame(t, a.Registry(), b.Registry())
}
