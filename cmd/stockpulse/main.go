// stockpulse: stock portfolio dashboard with live quotes, news sentiment
// and price alerts.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/seenimoa/stockpulse/api"
	"github.com/seenimoa/stockpulse/internal/config"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var cfg *config.Config

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "stockpulse",
	Short: "stockpulse: portfolio dashboard with quotes, news sentiment and alerts",
	Long: `stockpulse tracks a stock portfolio against live quotes from Alpha Vantage
and Finnhub, scores company and competitor news for sentiment and impact,
and raises price and news alerts. Use it from the terminal or run the
HTTP API with "stockpulse serve".`,
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
		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			cfg.Logging.Level = lvl
		}
		api.Version = version
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringP("format", "f", "text", "output format: text, json or yaml")
	rootCmd.PersistentFlags().Bool("pretty", false, "render text output as styled markdown")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(quoteCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(newsCmd)
	rootCmd.AddCommand(marketNewsCmd)
	rootCmd.AddCommand(portfolioCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(serveCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("stockpulse %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Status Command ---

type statusReport struct {
	Version string             `json:"version" yaml:"version"`
	Config  *config.Config     `json:"config"  yaml:"config"`
	Keys    []config.KeyStatus `json:"keys"    yaml:"keys"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and API key status",
	RunE: func(cmd *cobra.Command, args []string) error {
		keys := config.CheckAPIKeys(cfg)
		if f := outputFormat(cmd); f != formatText {
			// Keys stay out of structured output.
			redacted := *cfg
			redacted.Providers.AlphaVantageKey = ""
			redacted.Providers.FinnhubKey = ""
			return writeStructured(cmd.OutOrStdout(), f, statusReport{Version: version, Config: &redacted, Keys: keys})
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "═══════════════════════════════════════")
		fmt.Fprintln(out, "  stockpulse - System Status")
		fmt.Fprintln(out, "═══════════════════════════════════════")
		fmt.Fprintf(out, "  Version:       %s (%s)\n", version, commit)
		configFile := cfg.File
		if configFile == "" {
			configFile = "(defaults)"
		}
		fmt.Fprintf(out, "  Config file:   %s\n", configFile)
		fmt.Fprintln(out)

		fmt.Fprintln(out, "  Configuration:")
		fmt.Fprintf(out, "    Storage:       %s (%s)\n", cfg.Storage.Driver, cfg.Storage.Path)
		fmt.Fprintf(out, "    Refresh:       %s\n", cfg.Refresh.Schedule)
		fmt.Fprintf(out, "    News cache:    %s (delay %s)\n", cfg.News.CacheTTL, cfg.News.RequestDelay)
		fmt.Fprintf(out, "    Price alerts:  drop >= %.2f%%\n", cfg.Alerts.PriceDropPct)
		fmt.Fprintf(out, "    API Server:    %s:%d\n", cfg.API.Host, cfg.API.Port)
		fmt.Fprintln(out)

		fmt.Fprintln(out, "  API Keys:")
		for _, k := range keys {
			status := "not set"
			if k.IsSet {
				status = fmt.Sprintf("set (%s: %s)", k.Source, k.Masked)
			}
			fmt.Fprintf(out, "    %-25s %s\n", k.Name+":", status)
		}
		if !config.HasAnyProviderKey(cfg) {
			fmt.Fprintln(out)
			fmt.Fprintf(out, "  No provider key set; quotes will show as unavailable.\n")
			fmt.Fprintf(out, "  Export %s_PROVIDERS_FINNHUB_KEY or %s_PROVIDERS_ALPHAVANTAGE_KEY.\n", config.EnvPrefix, config.EnvPrefix)
		}
		fmt.Fprintln(out, "═══════════════════════════════════════")
		return nil
	},
}
