package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/resellerdash/internal/config"
	"github.com/seenimoa/resellerdash/internal/metrics"
	"github.com/seenimoa/resellerdash/pkg/models"
)

// ════════════════════════════════════════════════════════════════════
// Helpers
// ════════════════════════════════════════════════════════════════════

type fakeDashboard struct {
	sections *models.Sections
	calls    int
}

func (f *fakeDashboard) FetchAllSections(ctx context.Context) *models.Sections {
	f.calls++
	return f.sections
}

func (f *fakeDashboard) CacheFresh() bool { return f.calls > 0 }

var fetchedAt = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func sampleSections() *models.Sections {
	s := models.EmptySections(fetchedAt)
	s.Snapshots = []models.MetricsSnapshot{
		{Period: "Last 7 Days", Revenue: decimal.NewFromInt(1000), OrderCount: 10},
		{Period: "Last 30 Days", Revenue: decimal.NewFromInt(5000), OrderCount: 50},
	}
	s.Snapshot = s.Snapshots[0]
	s.Series = []models.PeriodSeriesPoint{{Label: "January", Revenue: decimal.NewFromInt(700), OrderCount: 7}}
	s.DeliveryByCourier = []models.DeliveryPerformanceEntry{
		{Name: "Delhivery", TotalOrders: 100, DeliveredOrders: 90, SuccessRate: 90},
		{Name: "Ecom", TotalOrders: 50, DeliveredOrders: 40, SuccessRate: 80},
	}
	s.DeliveryByCity = []models.DeliveryPerformanceEntry{
		{Name: "Pune", TotalOrders: 10, DeliveredOrders: 7, SuccessRate: 70},
	}
	s.TopProducts = []models.TopProduct{
		{Period: "30_DAYS", ProductName: "Saree", DeliveryPercentage: 70},
		{Period: "7_DAYS", ProductName: "Kurta", DeliveryPercentage: 80},
		{Period: "30_DAYS", ProductName: "Dupatta", DeliveryPercentage: 95},
		{Period: "30_DAYS", ProductName: "Bangles", DeliveryPercentage: 60},
	}
	s.ProfitBands = []models.ProfitBand{{
		Band: "40-80%",
		Windows: map[models.WindowKey]models.ProfitWindow{
			models.Window7D:  {MoneyEarned: decimal.NewFromInt(300), Delivered: 3},
			models.Window30D: {MoneyEarned: decimal.NewFromInt(1200), Delivered: 12},
		},
	}}
	return s
}

func testServer(t *testing.T, sections *models.Sections) (*Server, *fakeDashboard) {
	t.Helper()
	dash := &fakeDashboard{sections: sections}
	srv := NewServer(config.Default(), dash, Options{
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Version: "test",
	})
	return srv, dash
}

func get(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

// decodeData decodes the envelope and re-decodes its data into out.
func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) APIResponse {
	t.Helper()
	var raw struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   string          `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&raw))
	if out != nil && len(raw.Data) > 0 {
		require.NoError(t, json.Unmarshal(raw.Data, out))
	}
	return APIResponse{Success: raw.Success, Error: raw.Error}
}

// ════════════════════════════════════════════════════════════════════
// Tests
// ════════════════════════════════════════════════════════════════════

func TestAPIResponseJSON(t *testing.T) {
	data, err := json.Marshal(APIResponse{Success: false, Error: "boom"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"error":"boom"}`, string(data))
}

func TestHandleHealth(t *testing.T) {
	srv, _ := testServer(t, sampleSections())
	for _, path := range []string{"/health", "/api/v1/health"} {
		rec := get(t, srv, path)
		require.Equal(t, http.StatusOK, rec.Code, path)

		var data map[string]interface{}
		resp := decodeData(t, rec, &data)
		assert.True(t, resp.Success)
		assert.Equal(t, "ok", data["status"])
		assert.Equal(t, "test", data["version"])
		assert.Contains(t, data, "cache_fresh")
		assert.Contains(t, data, "time")
	}
}

func TestHandleSnapshot(t *testing.T) {
	srv, _ := testServer(t, sampleSections())

	rec := get(t, srv, "/api/v1/snapshot?period=30days")
	require.Equal(t, http.StatusOK, rec.Code)
	var got SnapshotResponse
	decodeData(t, rec, &got)
	assert.True(t, got.PeriodMatched)
	assert.Equal(t, "Last 30 Days", got.Snapshot.Period)
	assert.Equal(t, 50, got.Snapshot.OrderCount)
	assert.True(t, decimal.NewFromInt(5000).Equal(got.Snapshot.Revenue))
	assert.Equal(t, fetchedAt, got.FetchedAt)
}

func TestHandleSnapshotDefaultsTo30Days(t *testing.T) {
	srv, _ := testServer(t, sampleSections())
	var got SnapshotResponse
	decodeData(t, get(t, srv, "/api/v1/snapshot"), &got)
	assert.Equal(t, models.Period30Days, got.RequestedPeriod)
	assert.Equal(t, "Last 30 Days", got.Snapshot.Period)
}

func TestHandleSnapshotFallsBackToFirst(t *testing.T) {
	srv, _ := testServer(t, sampleSections())
	var got SnapshotResponse
	decodeData(t, get(t, srv, "/api/v1/snapshot?period=1year"), &got)
	assert.False(t, got.PeriodMatched)
	assert.Equal(t, "Last 7 Days", got.Snapshot.Period)
}

func TestHandleSnapshotUpstreamDown(t *testing.T) {
	srv, _ := testServer(t, models.EmptySections(fetchedAt))
	rec := get(t, srv, "/api/v1/snapshot?period=6months")
	require.Equal(t, http.StatusOK, rec.Code)

	var got SnapshotResponse
	resp := decodeData(t, rec, &got)
	assert.True(t, resp.Success)
	assert.False(t, got.PeriodMatched)
	assert.Equal(t, "Last 6 Months", got.Snapshot.Period)
	assert.True(t, got.Snapshot.IsZero())
}

func TestHandleSections(t *testing.T) {
	srv, dash := testServer(t, sampleSections())
	rec := get(t, srv, "/api/v1/sections")
	require.Equal(t, http.StatusOK, rec.Code)

	var got models.Sections
	decodeData(t, rec, &got)
	assert.Len(t, got.Snapshots, 2)
	assert.Len(t, got.TopProducts, 4)
	assert.Equal(t, 1, dash.calls)
}

func TestHandleSeries(t *testing.T) {
	srv, _ := testServer(t, sampleSections())
	var got []models.PeriodSeriesPoint
	decodeData(t, get(t, srv, "/api/v1/series"), &got)
	require.Len(t, got, 1)
	assert.Equal(t, "January", got[0].Label)
}

func TestHandleDelivery(t *testing.T) {
	srv, _ := testServer(t, sampleSections())

	var partners DeliveryResponse
	decodeData(t, get(t, srv, "/api/v1/delivery"), &partners)
	assert.Equal(t, "partners", partners.View)
	assert.Len(t, partners.Entries, 2)
	assert.Equal(t, 85.0, partners.AverageSuccessRate)

	var cities DeliveryResponse
	decodeData(t, get(t, srv, "/api/v1/delivery?view=cities"), &cities)
	assert.Equal(t, "cities", cities.View)
	require.Len(t, cities.Entries, 1)
	assert.Equal(t, "Pune", cities.Entries[0].Name)
}

func TestHandleDeliveryUnknownView(t *testing.T) {
	srv, _ := testServer(t, sampleSections())
	rec := get(t, srv, "/api/v1/delivery?view=states")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeData(t, rec, nil)
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Error)
}

func TestHandleProducts(t *testing.T) {
	srv, _ := testServer(t, sampleSections())

	var got ProductsResponse
	decodeData(t, get(t, srv, "/api/v1/products"), &got)
	assert.Equal(t, models.ProductPeriod30Days, got.Period)
	assert.Equal(t, DefaultProductLimit, got.Limit)
	names := []string{}
	for _, p := range got.Products {
		names = append(names, p.ProductName)
	}
	assert.Equal(t, []string{"Dupatta", "Saree", "Bangles"}, names)

	decodeData(t, get(t, srv, "/api/v1/products?period=7days&limit=1"), &got)
	assert.Equal(t, models.ProductPeriod7Days, got.Period)
	require.Len(t, got.Products, 1)
	assert.Equal(t, "Kurta", got.Products[0].ProductName)

	decodeData(t, get(t, srv, "/api/v1/products?period=30_DAYS&limit=2"), &got)
	assert.Len(t, got.Products, 2)
}

func TestHandleProductsBadLimit(t *testing.T) {
	srv, _ := testServer(t, sampleSections())
	for _, q := range []string{"limit=abc", "limit=-1"} {
		rec := get(t, srv, "/api/v1/products?"+q)
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}

func TestHandleProductPeriods(t *testing.T) {
	srv, _ := testServer(t, sampleSections())
	var got []string
	decodeData(t, get(t, srv, "/api/v1/products/periods"), &got)
	assert.Equal(t, []string{"30_DAYS", "7_DAYS"}, got)
}

func TestHandleProfitBands(t *testing.T) {
	srv, _ := testServer(t, sampleSections())

	var got ProfitBandsResponse
	decodeData(t, get(t, srv, "/api/v1/profit-bands?period=7days"), &got)
	assert.Equal(t, models.Window7D, got.Window)
	require.Len(t, got.Bands, 1)
	assert.Equal(t, "40-80%", got.Bands[0].Band)
	assert.Equal(t, 3, got.Bands[0].Delivered)

	decodeData(t, get(t, srv, "/api/v1/profit-bands"), &got)
	assert.Equal(t, models.Window30D, got.Window)
	assert.True(t, decimal.NewFromInt(1200).Equal(got.Bands[0].MoneyEarned))
}

func TestHandleGetConfigMasksURL(t *testing.T) {
	srv, _ := testServer(t, sampleSections())
	srv.cfg.Sheet.URL = "https://script.google.com/macros/s/secret-id/exec"

	rec := get(t, srv, "/api/v1/config")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.NotContains(t, body, "secret-id")
	assert.Contains(t, body, "htt...xec")

	var status config.SecretStatus
	decodeData(t, get(t, srv, "/api/v1/config/endpoint"), &status)
	assert.True(t, status.IsSet)
	assert.Equal(t, "htt...xec", status.Masked)
}

func TestMetricsEndpointAndInstrumentation(t *testing.T) {
	m := metrics.New("")
	dash := &fakeDashboard{sections: sampleSections()}
	srv := NewServer(config.Default(), dash, Options{
		Metrics: m,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	get(t, srv, "/api/v1/series")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/series", "200")))

	rec := get(t, srv, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "resellerdash_http_requests_total"))
}

func TestMetricsRouteDisabledWithoutCollector(t *testing.T) {
	srv, _ := testServer(t, sampleSections())
	rec := get(t, srv, "/metrics")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := testServer(t, sampleSections())
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/sections", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "GET")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}
