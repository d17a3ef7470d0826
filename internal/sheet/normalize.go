package sheet

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/seenimoa/resellerdash/pkg/models"
)

// decodeRecord parses the response body. The top level must be an object.
func decodeRecord(body []byte) (record, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var rec record
	if err := dec.Decode(&rec); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformed, describeBody(body))
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: top-level value is null", ErrMalformed)
	}
	return rec, nil
}

// checkSuccess rejects payloads whose success flag is absent or falsy.
func checkSuccess(rec record) error {
	if truthy(rec["success"]) {
		return nil
	}
	if msg := Text(Aliases{"error", "message"}.Get(rec)); msg != "" {
		return fmt.Errorf("%w: %s", ErrRejected, msg)
	}
	return ErrRejected
}

// normalizeSections turns an accepted payload into typed sections. Each
// section is located independently; a missing or misshapen section is empty.
func normalizeSections(rec record, fetchedAt time.Time) *models.Sections {
	s := models.EmptySections(fetchedAt)

	s.Snapshots = normalizeSnapshots(metricsContainer.Get(rec))
	if len(s.Snapshots) > 0 {
		s.Snapshot = s.Snapshots[0]
	}
	s.Series = normalizeSeries(seriesContainer.Get(rec))
	s.DeliveryByCourier = normalizeDelivery(courierContainer.Get(rec), deliveryFields.Courier)
	s.DeliveryByCity = normalizeDelivery(cityContainer.Get(rec), deliveryFields.City)
	s.ProfitBands = normalizeProfitBands(bandContainer.Get(rec))
	s.TopProducts = normalizeProducts(productsContainer.Get(rec))
	return s
}

// rows returns the object elements of a JSON array. Non-object elements are
// skipped; anything that is not an array yields nothing.
func rows(v any) []record {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]record, 0, len(arr))
	for _, el := range arr {
		if r, ok := el.(record); ok {
			out = append(out, r)
		}
	}
	return out
}

// normalizeSnapshots accepts the metrics container as a single object or as
// an array with one row per period.
func normalizeSnapshots(v any) []models.MetricsSnapshot {
	if r, ok := v.(record); ok {
		return []models.MetricsSnapshot{normalizeSnapshot(r)}
	}
	rs := rows(v)
	out := make([]models.MetricsSnapshot, 0, len(rs))
	for _, r := range rs {
		out = append(out, normalizeSnapshot(r))
	}
	return out
}

func normalizeSnapshot(r record) models.MetricsSnapshot {
	f := snapshotFields
	return models.MetricsSnapshot{
		Period:            Text(f.Period.Get(r)),
		Revenue:           Money(f.Revenue.Get(r)),
		Profit:            Money(f.Profit.Get(r)),
		OrderCount:        Count(f.Orders.Get(r)),
		PendingOrderCount: Count(f.Pending.Get(r)),
		CustomerCount:     Count(f.Customers.Get(r)),
	}
}

func normalizeSeries(v any) []models.PeriodSeriesPoint {
	rs := rows(v)
	out := make([]models.PeriodSeriesPoint, 0, len(rs))
	for _, r := range rs {
		out = append(out, models.PeriodSeriesPoint{
			Label:      Text(seriesFields.Label.Get(r)),
			Revenue:    Money(seriesFields.Revenue.Get(r)),
			OrderCount: Count(seriesFields.Orders.Get(r)),
		})
	}
	return out
}

func normalizeDelivery(v any, name Aliases) []models.DeliveryPerformanceEntry {
	rs := rows(v)
	out := make([]models.DeliveryPerformanceEntry, 0, len(rs))
	for _, r := range rs {
		out = append(out, models.DeliveryPerformanceEntry{
			Name:            Text(name.Get(r)),
			TotalOrders:     Count(deliveryFields.Total.Get(r)),
			DeliveredOrders: Count(deliveryFields.Delivered.Get(r)),
			SuccessRate:     Percent(deliveryFields.Rate.Get(r)),
		})
	}
	return out
}

func normalizeProducts(v any) []models.TopProduct {
	f := productFields
	rs := rows(v)
	out := make([]models.TopProduct, 0, len(rs))
	for _, r := range rs {
		out = append(out, models.TopProduct{
			Period:             Text(f.Period.Get(r)),
			Category:           Text(f.Category.Get(r)),
			Subcategory:        Text(f.Subcategory.Get(r)),
			Supplier:           Text(f.Supplier.Get(r)),
			ProductCode:        Text(f.Code.Get(r)),
			ProductName:        Text(f.Name.Get(r)),
			ProductStatus:      Text(f.Status.Get(r)),
			TotalOrders:        Count(f.Total.Get(r)),
			DeliveredOrders:    Count(f.Delivered.Get(r)),
			DeliveryPercentage: Percent(f.Percentage.Get(r)),
		})
	}
	return out
}

func normalizeProfitBands(v any) []models.ProfitBand {
	rs := rows(v)
	out := make([]models.ProfitBand, 0, len(rs))
	for _, r := range rs {
		band := models.ProfitBand{
			Band:    Text(bandLabel.Get(r)),
			Windows: make(map[models.WindowKey]models.ProfitWindow, len(models.WindowKeys)),
		}
		for _, w := range models.WindowKeys {
			f := bandWindows[w]
			band.Windows[w] = models.ProfitWindow{
				ResellerPay:       Money(f.ResellerPay.Get(r)),
				MoneyEarned:       Money(f.MoneyEarned.Get(r)),
				PotentialEarnings: Money(f.PotentialEarnings.Get(r)),
				Delivered:         Count(f.Delivered.Get(r)),
				ReturnedLost:      Count(f.ReturnedLost.Get(r)),
			}
		}
		out = append(out, band)
	}
	return out
}
