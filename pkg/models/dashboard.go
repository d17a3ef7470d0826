// Package models defines the typed records the reseller dashboard renders.
// Every record here is built fresh from a single upstream fetch and never
// persisted; numeric fields are always populated (zero when the source
// omitted them).
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MetricsSnapshot holds aggregate business metrics for one reporting period.
type MetricsSnapshot struct {
	Period            string          `json:"period"` // e.g., "Last 30 Days"
	Revenue           decimal.Decimal `json:"revenue"`
	Profit            decimal.Decimal `json:"profit"`
	OrderCount        int             `json:"order_count"`
	PendingOrderCount int             `json:"pending_order_count"`
	CustomerCount     int             `json:"customer_count"`
}

// ZeroSnapshot returns an all-zero snapshot stamped with the given label.
func ZeroSnapshot(period string) MetricsSnapshot {
	return MetricsSnapshot{
		Period:  period,
		Revenue: decimal.Zero,
		Profit:  decimal.Zero,
	}
}

// IsZero reports whether every numeric field is zero.
func (s MetricsSnapshot) IsZero() bool {
	return s.Revenue.IsZero() && s.Profit.IsZero() &&
		s.OrderCount == 0 && s.PendingOrderCount == 0 && s.CustomerCount == 0
}

// PeriodSeriesPoint is one time bucket of the order-vs-revenue trend chart.
type PeriodSeriesPoint struct {
	Label      string          `json:"label"` // e.g., "January"
	Revenue    decimal.Decimal `json:"revenue"`
	OrderCount int             `json:"order_count"`
}

// DeliveryPerformanceEntry is a delivery success record for a courier
// partner or a destination city.
type DeliveryPerformanceEntry struct {
	Name            string  `json:"name"`
	TotalOrders     int     `json:"total_orders"`
	DeliveredOrders int     `json:"delivered_orders"`
	SuccessRate     float64 `json:"success_rate"` // 0-100
}

// FailedOrders returns the orders that were not delivered. Upstream does not
// guarantee delivered <= total, so the result is floored at zero.
func (e DeliveryPerformanceEntry) FailedOrders() int {
	if e.DeliveredOrders >= e.TotalOrders {
		return 0
	}
	return e.TotalOrders - e.DeliveredOrders
}

// TopProduct is one row of the top-products ranking.
type TopProduct struct {
	Period             string  `json:"period"` // product key space, e.g. "7_DAYS"
	Category           string  `json:"category"`
	Subcategory        string  `json:"subcategory"`
	Supplier           string  `json:"supplier,omitempty"`
	ProductCode        string  `json:"product_code"`
	ProductName        string  `json:"product_name"`
	ProductStatus      string  `json:"product_status,omitempty"`
	TotalOrders        int     `json:"total_orders"`
	DeliveredOrders    int     `json:"delivered_orders"`
	DeliveryPercentage float64 `json:"delivery_percentage"` // 0-100
}

// ProfitWindow carries the profit-band metrics for one duration window.
type ProfitWindow struct {
	ResellerPay       decimal.Decimal `json:"reseller_pay"`
	MoneyEarned       decimal.Decimal `json:"money_earned"`
	PotentialEarnings decimal.Decimal `json:"potential_earnings"`
	Delivered         int             `json:"delivered"`
	ReturnedLost      int             `json:"returned_lost"`
}

// ProfitBand is a profit-margin bucket with metrics per duration window.
type ProfitBand struct {
	Band    string                     `json:"band"` // e.g., "40-80%"
	Windows map[WindowKey]ProfitWindow `json:"windows"`
}

// Window returns the metrics for the window matching a caller-facing period
// key. Unknown keys select the 30-day window.
func (b ProfitBand) Window(periodKey string) ProfitWindow {
	return b.Windows[WindowFor(periodKey)]
}

// Sections is the normalized result of one combined upstream fetch.
type Sections struct {
	Snapshot          MetricsSnapshot            `json:"snapshot"`
	Snapshots         []MetricsSnapshot          `json:"snapshots"`
	Series            []PeriodSeriesPoint        `json:"series"`
	DeliveryByCourier []DeliveryPerformanceEntry `json:"delivery_by_courier"`
	DeliveryByCity    []DeliveryPerformanceEntry `json:"delivery_by_city"`
	ProfitBands       []ProfitBand               `json:"profit_bands"`
	TopProducts       []TopProduct               `json:"top_products"`
	FetchedAt         time.Time                  `json:"fetched_at"`
}

// EmptySections returns the full-default result: a zeroed snapshot and an
// empty (non-nil) list for every section.
func EmptySections(fetchedAt time.Time) *Sections {
	return &Sections{
		Snapshot:          ZeroSnapshot(""),
		Snapshots:         []MetricsSnapshot{},
		Series:            []PeriodSeriesPoint{},
		DeliveryByCourier: []DeliveryPerformanceEntry{},
		DeliveryByCity:    []DeliveryPerformanceEntry{},
		ProfitBands:       []ProfitBand{},
		TopProducts:       []TopProduct{},
		FetchedAt:         fetchedAt,
	}
}
