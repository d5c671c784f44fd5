package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"equity-dashboard/models"

	"github.com/joho/godotenv"
)

// Price providers
const (
	ProviderYahoo  = "yahoo"
	ProviderAlpaca = "alpaca"
)

// Config holds all application configuration
type Config struct {
	// Environment
	Env      string
	LogLevel string

	Database  DatabaseConfig
	Provider  ProviderConfig
	Alpaca    AlpacaConfig
	Listing   ListingConfig
	Dashboard DashboardConfig
	Cache     CacheConfig
	HTTP      HTTPConfig

	// Defaults applied to dashboard requests that omit a field
	Defaults models.DashboardOptions
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL string
}

// ProviderConfig selects the single historical price source
type ProviderConfig struct {
	Name           string
	YahooBaseURL   string
	TimeoutSeconds int
}

// AlpacaConfig holds Alpaca market data configuration
type AlpacaConfig struct {
	APIKey    string
	APISecret string
	DataURL   string
}

// ListingConfig locates the company listing used by the symbol resolver
type ListingConfig struct {
	URL    string
	Suffix string
}

// DashboardConfig bounds per-request work
type DashboardConfig struct {
	ConcurrencyLimit      int
	MaxInFlight           int
	RequestTimeoutSeconds int
	MaxCompanies          int
	PresetFile            string
}

// CacheConfig controls the series cache
type CacheConfig struct {
	TTLMinutes  int
	JanitorCron string
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	Addr               string
	CORSAllowedOrigins string
}

// LoadDotEnv loads a .env file into the environment if one exists.
// Variables already set take precedence.
func LoadDotEnv(files ...string) bool {
	return godotenv.Load(files...) == nil
}

// Load loads configuration from environment variables and the optional
// dashboard preset file
func Load() (*Config, error) {
	cfg := &Config{
		Env:      getEnvString("APP_ENV", "development"),
		LogLevel: getEnvString("LOG_LEVEL", "info"),
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Provider: ProviderConfig{
			Name:           strings.ToLower(getEnvString("PRICE_PROVIDER", ProviderYahoo)),
			YahooBaseURL:   getEnvString("YAHOO_BASE_URL", "https://query1.finance.yahoo.com"),
			TimeoutSeconds: getEnvInt("PROVIDER_TIMEOUT_SECONDS", 30),
		},
		Alpaca: AlpacaConfig{
			APIKey:    os.Getenv("ALPACA_API_KEY"),
			APISecret: os.Getenv("ALPACA_API_SECRET"),
			DataURL:   os.Getenv("ALPACA_DATA_URL"),
		},
		Listing: ListingConfig{
			URL:    getEnvString("LISTING_URL", "https://raw.githubusercontent.com/datasets/nse-stocks/master/data/nse-listed.csv"),
			Suffix: getEnvStringAllowEmpty("LISTING_SUFFIX", ".NS"),
		},
		Dashboard: DashboardConfig{
			ConcurrencyLimit:      getEnvInt("DASHBOARD_CONCURRENCY_LIMIT", 4),
			MaxInFlight:           getEnvInt("DASHBOARD_MAX_IN_FLIGHT", 8),
			RequestTimeoutSeconds: getEnvInt("DASHBOARD_REQUEST_TIMEOUT_SECONDS", 60),
			MaxCompanies:          getEnvInt("DASHBOARD_MAX_COMPANIES", 10),
			PresetFile:            os.Getenv("DASHBOARD_PRESET_FILE"),
		},
		Cache: CacheConfig{
			TTLMinutes:  getEnvInt("CACHE_TTL_MINUTES", 360),
			JanitorCron: getEnvString("CACHE_JANITOR_CRON", "@hourly"),
		},
		HTTP: HTTPConfig{
			Addr:               getEnvString("HTTP_ADDR", ":8080"),
			CORSAllowedOrigins: getEnvString("CORS_ALLOWED_ORIGINS", "*"),
		},
		Defaults: DefaultDashboardOptions(),
	}

	if cfg.Dashboard.PresetFile != "" {
		preset, err := LoadPreset(cfg.Dashboard.PresetFile)
		if err != nil {
			return nil, err
		}
		if cfg.Defaults, err = preset.Apply(cfg.Defaults); err != nil {
			return nil, fmt.Errorf("preset %s: %w", cfg.Dashboard.PresetFile, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Provider.Name {
	case ProviderYahoo:
	case ProviderAlpaca:
		if !c.HasAlpaca() {
			return fmt.Errorf("PRICE_PROVIDER=alpaca requires ALPACA_API_KEY and ALPACA_API_SECRET")
		}
	default:
		return fmt.Errorf("PRICE_PROVIDER must be %q or %q, got %q", ProviderYahoo, ProviderAlpaca, c.Provider.Name)
	}

	if c.Provider.TimeoutSeconds <= 0 {
		return fmt.Errorf("PROVIDER_TIMEOUT_SECONDS must be positive, got %d", c.Provider.TimeoutSeconds)
	}
	if c.Dashboard.ConcurrencyLimit <= 0 {
		return fmt.Errorf("DASHBOARD_CONCURRENCY_LIMIT must be positive, got %d", c.Dashboard.ConcurrencyLimit)
	}
	if c.Dashboard.MaxInFlight <= 0 {
		return fmt.Errorf("DASHBOARD_MAX_IN_FLIGHT must be positive, got %d", c.Dashboard.MaxInFlight)
	}
	if c.Dashboard.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("DASHBOARD_REQUEST_TIMEOUT_SECONDS must be positive, got %d", c.Dashboard.RequestTimeoutSeconds)
	}
	if c.Dashboard.MaxCompanies <= 0 {
		return fmt.Errorf("DASHBOARD_MAX_COMPANIES must be positive, got %d", c.Dashboard.MaxCompanies)
	}
	if c.Cache.TTLMinutes <= 0 {
		return fmt.Errorf("CACHE_TTL_MINUTES must be positive, got %d", c.Cache.TTLMinutes)
	}
	if c.Listing.URL == "" {
		return fmt.Errorf("LISTING_URL must not be empty")
	}
	if !c.Defaults.End.After(c.Defaults.Start) {
		return fmt.Errorf("default end date %s must be after start date %s",
			c.Defaults.End.Format(models.DateLayout), c.Defaults.Start.Format(models.DateLayout))
	}
	return nil
}

// IsProduction reports whether logs should be emitted as JSON
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// HasDatabase returns true if database configuration is available
func (c *Config) HasDatabase() bool {
	return c.Database.URL != ""
}

// HasAlpaca returns true if Alpaca configuration is available
func (c *Config) HasAlpaca() bool {
	return c.Alpaca.APIKey != "" && c.Alpaca.APISecret != ""
}

// ProviderTimeout is the HTTP timeout for a single upstream request
func (c *Config) ProviderTimeout() time.Duration {
	return time.Duration(c.Provider.TimeoutSeconds) * time.Second
}

// RequestTimeout bounds a whole dashboard request
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Dashboard.RequestTimeoutSeconds) * time.Second
}

// CacheTTL is how long a fetched series stays cached
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLMinutes) * time.Minute
}

func getEnvString(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultValue
}

// getEnvStringAllowEmpty distinguishes an unset variable from one set to ""
func getEnvStringAllowEmpty(key, defaultValue string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

// NewTestConfig creates a Config with default values for testing
func NewTestConfig() *Config {
	return &Config{
		Env:      "test",
		LogLevel: "info",
		Provider: ProviderConfig{
			Name:           ProviderYahoo,
			YahooBaseURL:   "https://query1.finance.yahoo.com",
			TimeoutSeconds: 30,
		},
		Listing: ListingConfig{
			URL:    "https://raw.githubusercontent.com/datasets/nse-stocks/master/data/nse-listed.csv",
			Suffix: ".NS",
		},
		Dashboard: DashboardConfig{
			ConcurrencyLimit:      4,
			MaxInFlight:           8,
			RequestTimeoutSeconds: 60,
			MaxCompanies:          10,
		},
		Cache: CacheConfig{
			TTLMinutes:  360,
			JanitorCron: "@hourly",
		},
		HTTP: HTTPConfig{
			Addr:               ":8080",
			CORSAllowedOrigins: "*",
		},
		Defaults: DefaultDashboardOptions(),
	}
}
