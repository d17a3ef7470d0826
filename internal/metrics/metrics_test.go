package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveFetch(t *testing.T) {
	m := New("")
	m.ObserveFetch("ok", 120*time.Millisecond)
	m.ObserveFetch("ok", 80*time.Millisecond)
	m.ObserveFetch("status", time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.SheetFetches.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SheetFetches.WithLabelValues("status")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.SheetFetchDuration))
}

func TestObserveCacheHit(t *testing.T) {
	m := New("test")
	m.ObserveCacheHit()
	m.ObserveCacheHit()
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SheetCacheHits))
}

func TestRecordHTTPRequest(t *testing.T) {
	m := New("")
	m.RecordHTTPRequest(http.MethodGet, "/api/v1/snapshot", 200, 5*time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/snapshot", "200")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New("")
	m.ObserveFetch("transport", time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, _ := io.ReadAll(rec.Body)
	assert.True(t, strings.Contains(string(body), `resellerdash_sheet_fetches_total{outcome="transport"} 1`))
}
