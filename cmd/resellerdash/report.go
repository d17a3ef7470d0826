package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/seenimoa/resellerdash/internal/sheet"
	"github.com/seenimoa/resellerdash/pkg/models"
	"github.com/seenimoa/resellerdash/pkg/utils"
)

func secondsDuration(sec int) time.Duration {
	return time.Duration(sec) * time.Second
}

func wantJSON(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func fetchSections(cmd *cobra.Command) *models.Sections {
	return newGateway(nil).FetchAllSections(cmd.Context())
}

// --- Snapshot Command ---

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Show headline metrics for a period",
	RunE: func(cmd *cobra.Command, args []string) error {
		period, _ := cmd.Flags().GetString("period")
		sections := fetchSections(cmd)
		snap, matched := sheet.LookupPeriod(sections.Snapshots, period)

		if wantJSON(cmd) {
			return printJSON(os.Stdout, snap)
		}
		printSnapshot(os.Stdout, snap, matched, sections.FetchedAt)
		return nil
	},
}

func init() {
	snapshotCmd.Flags().String("period", models.Period30Days, "period key: "+strings.Join(models.PeriodKeys, ", "))
}

func printSnapshot(w io.Writer, s models.MetricsSnapshot, matched bool, fetchedAt time.Time) {
	label := s.Period
	if label == "" {
		label = "(unlabelled)"
	}
	if !matched {
		label += "  [requested period not found]"
	}
	fmt.Fprintf(w, "📊 %s\n", label)
	fmt.Fprintf(w, "   Revenue:    %s\n", utils.FormatRs(s.Revenue))
	fmt.Fprintf(w, "   Profit:     %s\n", utils.FormatRs(s.Profit))
	fmt.Fprintf(w, "   Orders:     %s\n", utils.FormatCount(s.OrderCount))
	fmt.Fprintf(w, "   Pending:    %s\n", utils.FormatCount(s.PendingOrderCount))
	fmt.Fprintf(w, "   Customers:  %s\n", utils.FormatCount(s.CustomerCount))
	fmt.Fprintf(w, "   Fetched:    %s\n", utils.FormatAge(fetchedAt, time.Now()))
}

// --- Sections Command ---

var sectionsCmd = &cobra.Command{
	Use:   "sections",
	Short: "Dump every normalized section as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printJSON(os.Stdout, fetchSections(cmd))
	},
}

// --- Products Command ---

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "Rank top products by delivery percentage",
	RunE: func(cmd *cobra.Command, args []string) error {
		period, _ := cmd.Flags().GetString("period")
		limit, _ := cmd.Flags().GetInt("limit")

		key := period
		if models.ValidPeriodKey(period) {
			key = models.ProductPeriodKey(period)
		}
		ranked := sheet.RankTopProducts(fetchSections(cmd).TopProducts, key, limit)

		if wantJSON(cmd) {
			return printJSON(os.Stdout, ranked)
		}
		printProducts(os.Stdout, key, ranked)
		return nil
	},
}

func init() {
	productsCmd.Flags().String("period", models.Period30Days, "period key (e.g. 7days) or product period (e.g. 7_DAYS)")
	productsCmd.Flags().Int("limit", 10, "maximum rows (0 = all)")
}

func printProducts(w io.Writer, key string, products []models.TopProduct) {
	fmt.Fprintf(w, "🏆 Top products — %s\n", key)
	if len(products) == 0 {
		fmt.Fprintln(w, "   no products for this period")
		return
	}
	for i, p := range products {
		fmt.Fprintf(w, "   %2d. %-30s %-12s %6s  (%d/%d delivered)\n",
			i+1, truncate(p.ProductName, 30), p.ProductCode,
			utils.FormatPct(p.DeliveryPercentage), p.DeliveredOrders, p.TotalOrders)
	}
}

// --- Periods Command ---

var periodsCmd = &cobra.Command{
	Use:   "periods",
	Short: "List the product periods present upstream",
	RunE: func(cmd *cobra.Command, args []string) error {
		periods := sheet.ListDistinctPeriods(fetchSections(cmd).TopProducts)
		if wantJSON(cmd) {
			return printJSON(os.Stdout, periods)
		}
		for _, p := range periods {
			fmt.Println(p)
		}
		return nil
	},
}

// --- Delivery Command ---

var deliveryCmd = &cobra.Command{
	Use:   "delivery",
	Short: "Show delivery performance by courier partner or city",
	RunE: func(cmd *cobra.Command, args []string) error {
		view, _ := cmd.Flags().GetString("view")
		sections := fetchSections(cmd)

		var entries []models.DeliveryPerformanceEntry
		switch view {
		case "partners":
			entries = sections.DeliveryByCourier
		case "cities":
			entries = sections.DeliveryByCity
		default:
			return fmt.Errorf("--view must be 'partners' or 'cities', got %q", view)
		}

		if wantJSON(cmd) {
			return printJSON(os.Stdout, entries)
		}
		printDelivery(os.Stdout, view, entries)
		return nil
	},
}

func init() {
	deliveryCmd.Flags().String("view", "partners", "partners or cities")
}

func printDelivery(w io.Writer, view string, entries []models.DeliveryPerformanceEntry) {
	fmt.Fprintf(w, "🚚 Delivery performance — %s (avg %s)\n", view, utils.FormatPct(sheet.AverageSuccessRate(entries)))
	for _, e := range entries {
		fmt.Fprintf(w, "   %-25s %6s  %s/%s delivered, %s failed\n",
			truncate(e.Name, 25), utils.FormatPct(e.SuccessRate),
			utils.FormatCount(e.DeliveredOrders), utils.FormatCount(e.TotalOrders),
			utils.FormatCount(e.FailedOrders()))
	}
}

// --- Bands Command ---

var bandsCmd = &cobra.Command{
	Use:   "bands",
	Short: "Show profit bands for a duration window",
	RunE: func(cmd *cobra.Command, args []string) error {
		period, _ := cmd.Flags().GetString("period")
		bands := fetchSections(cmd).ProfitBands
		if wantJSON(cmd) {
			return printJSON(os.Stdout, bands)
		}
		printBands(os.Stdout, period, bands)
		return nil
	},
}

func init() {
	bandsCmd.Flags().String("period", models.Period30Days, "period key: "+strings.Join(models.PeriodKeys, ", "))
}

func printBands(w io.Writer, period string, bands []models.ProfitBand) {
	fmt.Fprintf(w, "💰 Profit bands — %s window\n", models.WindowFor(period))
	for _, b := range bands {
		win := b.Window(period)
		fmt.Fprintf(w, "   %-10s paid %s, earned %s, potential %s, %d delivered, %d returned/lost\n",
			b.Band, utils.FormatRsCompact(win.ResellerPay), utils.FormatRsCompact(win.MoneyEarned),
			utils.FormatRsCompact(win.PotentialEarnings), win.Delivered, win.ReturnedLost)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
