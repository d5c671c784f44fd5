package commands

import (
	"fmt"
	"strings"

	"equity-dashboard/config"
	"equity-dashboard/observability"

	"github.com/spf13/cobra"
)

var (
	envFile  string
	logLevel string
	provider string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Equity indicator dashboard",
	Long: `Fetches historical daily prices for listed companies, computes moving
averages, Bollinger bands, volatility and RSI, and serves the results as
chart data and CSV.

Examples:
  dashboard serve
  dashboard export "TATA CONSULTANCY SERVICES LTD." --start 2024-01-01
  dashboard companies infosys`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "", "log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVarP(&provider, "provider", "p", "", "price provider override (yahoo, alpaca)")
}

// loadConfig reads .env and the environment, applies flag overrides and
// initializes logging
func loadConfig() (*config.Config, error) {
	config.LoadDotEnv(envFile)

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if provider != "" {
		cfg.Provider.Name = strings.ToLower(provider)
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	observability.InitLoggerWithLevel(cfg.IsProduction(), observability.ParseLevel(cfg.LogLevel))
	observability.InitMetrics()
	return cfg, nil
}
