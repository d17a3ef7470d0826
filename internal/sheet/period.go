package sheet

import (
	"sort"

	"github.com/seenimoa/resellerdash/pkg/models"
)

// ResolvePeriod picks the snapshot for a caller-facing period key such as
// "30days". When no snapshot carries the mapped label the first snapshot is
// returned instead; an empty list yields a zeroed snapshot stamped with the
// mapped label, or with the raw key when it has no mapping.
func ResolvePeriod(list []models.MetricsSnapshot, key string) models.MetricsSnapshot {
	s, _ := LookupPeriod(list, key)
	return s
}

// LookupPeriod is ResolvePeriod that also reports whether the returned
// snapshot is an exact match for the requested period.
func LookupPeriod(list []models.MetricsSnapshot, key string) (models.MetricsSnapshot, bool) {
	label, ok := models.PeriodLabel(key)
	if !ok {
		label = key
	}
	for _, s := range list {
		if s.Period == label {
			return s, true
		}
	}
	if len(list) == 0 {
		return models.ZeroSnapshot(label), false
	}
	return list[0], false
}

// FilterTopProductsByPeriod returns the products whose Period equals key
// exactly. Matching is case-sensitive and keys are not translated.
func FilterTopProductsByPeriod(products []models.TopProduct, key string) []models.TopProduct {
	out := make([]models.TopProduct, 0, len(products))
	for _, p := range products {
		if p.Period == key {
			out = append(out, p)
		}
	}
	return out
}

// ListDistinctPeriods returns each product period once, in first-seen order.
func ListDistinctPeriods(products []models.TopProduct) []string {
	seen := make(map[string]struct{}, len(products))
	out := make([]string, 0)
	for _, p := range products {
		if _, dup := seen[p.Period]; dup {
			continue
		}
		seen[p.Period] = struct{}{}
		out = append(out, p.Period)
	}
	return out
}

// RankTopProducts filters products to one product period and orders them by
// delivery percentage, highest first. Ties keep upstream order. A limit of
// zero or less returns every match.
func RankTopProducts(products []models.TopProduct, productKey string, limit int) []models.TopProduct {
	ranked := FilterTopProductsByPeriod(products, productKey)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].DeliveryPercentage > ranked[j].DeliveryPercentage
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// AverageSuccessRate is the mean success rate across entries, 0 when empty.
func AverageSuccessRate(entries []models.DeliveryPerformanceEntry) float64 {
	if len(entries) == 0 {
		return 0
	}
	var sum float64
	for _, e := range entries {
		sum += e.SuccessRate
	}
	return sum / float64(len(entries))
}
