package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/seenimoa/resellerdash/internal/sheet"
	"github.com/seenimoa/resellerdash/pkg/models"
)

// DefaultProductLimit is how many products the top-products table shows.
const DefaultProductLimit = 10

// SnapshotResponse is returned by GET /api/v1/snapshot.
type SnapshotResponse struct {
	RequestedPeriod string                 `json:"requested_period"`
	PeriodMatched   bool                   `json:"period_matched"`
	Snapshot        models.MetricsSnapshot `json:"snapshot"`
	FetchedAt       time.Time              `json:"fetched_at"`
}

// DeliveryResponse is returned by GET /api/v1/delivery.
type DeliveryResponse struct {
	View               string                            `json:"view"` // "partners" or "cities"
	Entries            []models.DeliveryPerformanceEntry `json:"entries"`
	AverageSuccessRate float64                           `json:"average_success_rate"`
}

// ProductsResponse is returned by GET /api/v1/products.
type ProductsResponse struct {
	Period   string              `json:"period"` // product key, e.g. "30_DAYS"
	Limit    int                 `json:"limit"`
	Products []models.TopProduct `json:"products"`
}

// ProfitBandRow is one band's metrics for the selected window.
type ProfitBandRow struct {
	Band string `json:"band"`
	models.ProfitWindow
}

// ProfitBandsResponse is returned by GET /api/v1/profit-bands.
type ProfitBandsResponse struct {
	Window models.WindowKey `json:"window"`
	Bands  []ProfitBandRow  `json:"bands"`
}

// ============================================================
// Handlers
// ============================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeData(w, map[string]interface{}{
		"status":      "ok",
		"version":     s.version,
		"cache_fresh": s.dash.CacheFresh(),
		"time":        time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("period")
	if key == "" {
		key = models.Period30Days
	}

	sections := s.dash.FetchAllSections(r.Context())
	snap, matched := sheet.LookupPeriod(sections.Snapshots, key)
	writeData(w, SnapshotResponse{
		RequestedPeriod: key,
		PeriodMatched:   matched,
		Snapshot:        snap,
		FetchedAt:       sections.FetchedAt,
	})
}

func (s *Server) handleSections(w http.ResponseWriter, r *http.Request) {
	writeData(w, s.dash.FetchAllSections(r.Context()))
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	writeData(w, s.dash.FetchAllSections(r.Context()).Series)
}

func (s *Server) handleDelivery(w http.ResponseWriter, r *http.Request) {
	view := r.URL.Query().Get("view")
	if view == "" {
		view = "partners"
	}

	sections := s.dash.FetchAllSections(r.Context())
	var entries []models.DeliveryPerformanceEntry
	switch view {
	case "partners":
		entries = sections.DeliveryByCourier
	case "cities":
		entries = sections.DeliveryByCity
	default:
		writeError(w, http.StatusBadRequest, "view must be 'partners' or 'cities'")
		return
	}

	writeData(w, DeliveryResponse{
		View:               view,
		Entries:            entries,
		AverageSuccessRate: sheet.AverageSuccessRate(entries),
	})
}

func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := DefaultProductLimit
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	key := productKey(q.Get("period"))
	products := sheet.RankTopProducts(s.dash.FetchAllSections(r.Context()).TopProducts, key, limit)
	writeData(w, ProductsResponse{
		Period:   key,
		Limit:    limit,
		Products: products,
	})
}

// productKey accepts either a caller key ("7days") or a product key
// ("7_DAYS"). Empty selects the 30-day product period.
func productKey(period string) string {
	switch {
	case period == "":
		return models.ProductPeriod30Days
	case models.ValidPeriodKey(period):
		return models.ProductPeriodKey(period)
	default:
		return period
	}
}

func (s *Server) handleProductPeriods(w http.ResponseWriter, r *http.Request) {
	writeData(w, sheet.ListDistinctPeriods(s.dash.FetchAllSections(r.Context()).TopProducts))
}

func (s *Server) handleProfitBands(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("period")
	window := models.WindowFor(key)

	bands := s.dash.FetchAllSections(r.Context()).ProfitBands
	rows := make([]ProfitBandRow, 0, len(bands))
	for _, b := range bands {
		rows = append(rows, ProfitBandRow{Band: b.Band, ProfitWindow: b.Windows[window]})
	}
	writeData(w, ProfitBandsResponse{Window: window, Bands: rows})
}
