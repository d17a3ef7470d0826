package sheet

import (
	"strings"

	"github.com/seenimoa/resellerdash/pkg/models"
)

// record is one decoded JSON object from the upstream payload.
type record = map[string]any

// Aliases is an ordered list of candidate keys for one logical field.
type Aliases []string

// Lookup returns the value under the first candidate key that is present and
// non-null.
func (a Aliases) Lookup(r record) (any, bool) {
	for _, k := range a {
		if v, ok := r[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// Get is Lookup without the presence flag.
func (a Aliases) Get(r record) any {
	v, _ := a.Lookup(r)
	return v
}

// --- Section containers ---

var (
	metricsContainer  = Aliases{"basics", "data", "metrics"}
	seriesContainer   = Aliases{"orderVsRevenueChart", "ordervsrevenuechart", "ordervsrevenueChart", "orderRevenueChart"}
	courierContainer  = Aliases{"deliveryPerformanceCourier", "deliveryperformancecourier", "courierPerformance", "deliveryPerformance"}
	cityContainer     = Aliases{"deliveryPerformanceCity", "deliveryperformancecity", "cityPerformance"}
	bandContainer     = Aliases{"profitband", "profitBand"}
	productsContainer = Aliases{"topProducts", "topproducts"}
)

// --- Per-entity field tables ---

var snapshotFields = struct {
	Period, Revenue, Profit, Orders, Pending, Customers Aliases
}{
	Period:    Aliases{"time_period", "period", "Period"},
	Revenue:   Aliases{"total_revenue", "avg_revenue"},
	Profit:    Aliases{"total_profit", "avg_profit"},
	Orders:    Aliases{"total_orders", "avg_orders"},
	Pending:   Aliases{"pending_orders", "pending_inprogress_orders"},
	Customers: Aliases{"customers", "avg_customers"},
}

var seriesFields = struct {
	Label, Revenue, Orders Aliases
}{
	Label:   Aliases{"month_name", "month", "label", "period"},
	Revenue: Aliases{"total_revenue", "revenue", "avg_revenue"},
	Orders:  Aliases{"total_orders", "orders", "avg_orders"},
}

var deliveryFields = struct {
	Courier, City, Delivered, Total, Rate Aliases
}{
	Courier:   Aliases{"partner", "partner_name", "Partner", "name"},
	City:      Aliases{"city", "city_name", "City", "name"},
	Delivered: Aliases{"successful_deliveries", "delivered_orders", "delivered", "Delivered"},
	Total:     Aliases{"total_orders", "total", "Total"},
	Rate:      Aliases{"success_rate", "percentage", "avg_success", "Percentage"},
}

var productFields = struct {
	Period, Category, Subcategory, Code, Name, Supplier, Status, Total, Delivered, Percentage Aliases
}{
	Period:      Aliases{"Period", "period", "time_period"},
	Category:    Aliases{"Category", "category"},
	Subcategory: Aliases{"Subcategory", "subcategory", "sub_category"},
	Code:        Aliases{"ProductCode", "product_code", "productCode"},
	Name:        Aliases{"Product", "product", "product_name", "ProductName"},
	Supplier:    Aliases{"Supplier", "supplier"},
	Status:      Aliases{"ProductStatus", "product_status"},
	Total:       Aliases{"TotalOrders", "total_orders"},
	Delivered:   Aliases{"DeliveredOrders", "delivered_orders"},
	Percentage:  Aliases{"DeliveryPercentile", "delivery_percentile", "delivery_percentage", "DeliveryPercentage"},
}

var bandLabel = Aliases{"profit_band", "Profit Band", "ProfitBand", "band"}

// windowFields holds the candidate keys for one profit-band window. The sheet
// uses human column headers like "Money Earned (7D)"; some exports flatten
// them to snake case like money_earned_7d.
type windowFields struct {
	ResellerPay, MoneyEarned, PotentialEarnings, Delivered, ReturnedLost Aliases
}

var bandWindows = buildBandWindows()

func buildBandWindows() map[models.WindowKey]windowFields {
	out := make(map[models.WindowKey]windowFields, len(models.WindowKeys))
	for _, w := range models.WindowKeys {
		col := " (" + string(w) + ")"
		snake := "_" + strings.ToLower(string(w))
		out[w] = windowFields{
			ResellerPay:       Aliases{"What Resellers Pay" + col, "reseller_pay" + snake},
			MoneyEarned:       Aliases{"Money Earned" + col, "money_earned" + snake},
			PotentialEarnings: Aliases{"Potential Earnings" + col, "potential_earnings" + snake},
			Delivered:         Aliases{"Delivered" + col, "delivered" + snake},
			ReturnedLost:      Aliases{"Returned & Lost" + col, "returned_lost" + snake},
		}
	}
	return out
}
