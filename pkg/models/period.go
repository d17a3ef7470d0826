package models

// Caller-facing period keys, as used by the dashboard date-range picker.
const (
	Period7Days    = "7days"
	Period30Days   = "30days"
	Period3Months  = "3months"
	Period6Months  = "6months"
	Period1Year    = "1year"
	PeriodLifetime = "lifetime"
)

// PeriodKeys lists the caller-facing keys in picker order.
var PeriodKeys = []string{
	Period7Days, Period30Days, Period3Months, Period6Months, Period1Year, PeriodLifetime,
}

// periodLabels maps a caller key to the upstream snapshot label.
var periodLabels = map[string]string{
	Period7Days:    "Last 7 Days",
	Period30Days:   "Last 30 Days",
	Period3Months:  "Last 3 Months",
	Period6Months:  "Last 6 Months",
	Period1Year:    "Last 1 Year",
	PeriodLifetime: "All Time",
}

// Product period keys. These are matched verbatim against TopProduct.Period.
const (
	ProductPeriod7Days   = "7_DAYS"
	ProductPeriod30Days  = "30_DAYS"
	ProductPeriod3Months = "3_MONTHS"
	ProductPeriod6Months = "6_MONTHS"
	ProductPeriod1Year   = "1_YEAR"
	ProductPeriodAllTime = "ALL_TIME"
)

var productPeriods = map[string]string{
	Period7Days:    ProductPeriod7Days,
	Period30Days:   ProductPeriod30Days,
	Period3Months:  ProductPeriod3Months,
	Period6Months:  ProductPeriod6Months,
	Period1Year:    ProductPeriod1Year,
	PeriodLifetime: ProductPeriodAllTime,
}

// WindowKey identifies a profit-band duration window.
type WindowKey string

const (
	Window7D  WindowKey = "7D"
	Window30D WindowKey = "30D"
	Window3M  WindowKey = "3M"
	Window6M  WindowKey = "6M"
	Window1Y  WindowKey = "1Y"
	WindowAll WindowKey = "All"
)

// WindowKeys lists every profit-band window, shortest first.
var WindowKeys = []WindowKey{Window7D, Window30D, Window3M, Window6M, Window1Y, WindowAll}

var periodWindows = map[string]WindowKey{
	Period7Days:    Window7D,
	Period30Days:   Window30D,
	Period3Months:  Window3M,
	Period6Months:  Window6M,
	Period1Year:    Window1Y,
	PeriodLifetime: WindowAll,
}

// PeriodLabel translates a caller key to its upstream label.
func PeriodLabel(key string) (string, bool) {
	label, ok := periodLabels[key]
	return label, ok
}

// ProductPeriodKey translates a caller key into the product key space.
// Unknown keys fall back to the 30-day product period.
func ProductPeriodKey(key string) string {
	if p, ok := productPeriods[key]; ok {
		return p
	}
	return ProductPeriod30Days
}

// WindowFor translates a caller key to a profit-band window.
// Unknown keys fall back to the 30-day window.
func WindowFor(key string) WindowKey {
	if w, ok := periodWindows[key]; ok {
		return w
	}
	return Window30D
}

// ValidPeriodKey reports whether key is one of the caller-facing keys.
func ValidPeriodKey(key string) bool {
	_, ok := periodLabels[key]
	return ok
}
