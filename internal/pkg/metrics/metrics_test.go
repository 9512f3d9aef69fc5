package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveRequest(t *testing.T) {
	m := New()
	m.ObserveRequest(http.MethodGet, "/api/v1/admin/students", 200, 15*time.Millisecond)
	m.ObserveRequest(http.MethodGet, "/api/v1/admin/students", 200, 5*time.Millisecond)
	m.ObserveRequest(http.MethodGet, "", 404, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/api/v1/admin/students", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "unmatched", "404")))
}

func TestObserveExport(t *testing.T) {
	m := New()
	m.ObserveExport(nil, 12)
	m.ObserveExport(errors.New("disk full"), 0)
	m.ObserveExport(errors.New("disk full"), 0)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.exports.WithLabelValues(ExportSuccess)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.exports.WithLabelValues(ExportFailure)))
}

func TestHandlerServesRegistry(t *testing.T) {
	m := New()
	m.ObserveEvent("team", "updated")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `projecthub_events_published_total{entity="team",type="updated"} 1`))
	assert.Contains(t, body, "go_goroutines")
}
