// resellerdash: reseller analytics gateway.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/seenimoa/resellerdash/api"
	"github.com/seenimoa/resellerdash/internal/config"
	"github.com/seenimoa/resellerdash/internal/infra"
	"github.com/seenimoa/resellerdash/internal/logging"
	"github.com/seenimoa/resellerdash/internal/metrics"
	"github.com/seenimoa/resellerdash/internal/sheet"
	"github.com/seenimoa/resellerdash/pkg/utils"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config and logger
var (
	cfg    *config.Config
	logger *slog.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "resellerdash",
	Short: "resellerdash — reseller sales, profit and delivery analytics",
	Long: `resellerdash reads reseller analytics from a spreadsheet-backed API,
normalizes them into typed records and serves them to the dashboard.
Upstream failures never surface as errors: every view falls back to zeros.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		level := cfg.Logging.Level
		if override, _ := cmd.Flags().GetString("log-level"); override != "" {
			level = override
		}
		logger = logging.New(logging.Config{
			Level:   level,
			Format:  cfg.Logging.Format,
			Service: "resellerdash",
			Version: version,
		})
		slog.SetDefault(logger)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("json", false, "print results as JSON")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(sectionsCmd)
	rootCmd.AddCommand(productsCmd)
	rootCmd.AddCommand(periodsCmd)
	rootCmd.AddCommand(deliveryCmd)
	rootCmd.AddCommand(bandsCmd)
}

// newGateway wires the sheet gateway from config. m may be nil.
func newGateway(m *metrics.Metrics) *sheet.Gateway {
	opts := sheet.Options{
		URL:          cfg.Sheet.URL,
		Timeout:      cfg.Sheet.Timeout(),
		CacheEnabled: cfg.Sheet.CacheEnabled,
		CacheTTL:     cfg.Sheet.CacheDuration(),
		Logger:       logger,
	}
	if m != nil {
		opts.Observer = m
	}
	if cfg.Sheet.Breaker.Enabled {
		opts.Breaker = infra.NewBreaker(infra.BreakerConfig{
			Name:             "sheet",
			FailureThreshold: uint32(cfg.Sheet.Breaker.FailureThreshold),
			OpenTimeout:      secondsDuration(cfg.Sheet.Breaker.OpenTimeoutSec),
		}, logging.Component(logger, "breaker"))
	}
	return sheet.New(opts)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("resellerdash %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if port, _ := cmd.Flags().GetInt("port"); port > 0 {
			cfg.API.Port = port
		}

		var m *metrics.Metrics
		if cfg.Metrics.Enabled {
			m = metrics.New("resellerdash")
		}
		gw := newGateway(m)
		if gw.Endpoint() == "" {
			logger.Warn("sheet.url is not set; every endpoint will serve zeroed defaults")
		}

		srv := api.NewServer(cfg, gw, api.Options{
			Metrics: m,
			Logger:  logger,
			Version: version,
		})
		fmt.Printf("Starting resellerdash API server on %s\n", cfg.API.Addr())
		return srv.ListenAndServe(cfg.API.Addr())
	},
}

func init() {
	serveCmd.Flags().Int("port", 0, "listen port (overrides api.port)")
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and endpoint status",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  resellerdash — Status")
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  Version:       %s (%s)\n", version, commit)
		fmt.Printf("  Time (PKT):    %s\n", utils.FormatDateTimePKT(utils.NowPKT()))
		fmt.Println()

		// Config summary
		fmt.Println("  Configuration:")
		fmt.Printf("    Timeout:       %s\n", cfg.Sheet.Timeout())
		if cfg.Sheet.CacheEnabled {
			fmt.Printf("    Cache:         on (%s)\n", cfg.Sheet.CacheDuration())
		} else {
			fmt.Println("    Cache:         off")
		}
		if cfg.Sheet.Breaker.Enabled {
			fmt.Printf("    Breaker:       on (%d failures, %ds open)\n",
				cfg.Sheet.Breaker.FailureThreshold, cfg.Sheet.Breaker.OpenTimeoutSec)
		} else {
			fmt.Println("    Breaker:       off")
		}
		fmt.Printf("    API Server:    %s\n", cfg.API.Addr())
		if cfg.Metrics.Enabled {
			fmt.Printf("    Metrics:       %s\n", cfg.Metrics.Path)
		}
		fmt.Printf("    Logging:       %s (%s)\n", cfg.Logging.Level, cfg.Logging.Format)
		fmt.Println()

		// Endpoint status
		fmt.Println("  Endpoint:")
		ep := config.CheckEndpoint(cfg)
		status := "❌ not set"
		if ep.IsSet {
			status = fmt.Sprintf("✅ set (%s: %s)", ep.Source, ep.Masked)
		}
		fmt.Printf("    %-25s %s\n", ep.Name+":", status)

		fmt.Println("═══════════════════════════════════════")
		return nil
	},
}
