// Package config handles configuration loading for stockpulse.
// It supports YAML config files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "STOCKPULSE"

// Config represents the complete application configuration.
type Config struct {
	Providers ProvidersConfig `mapstructure:"providers" json:"providers" yaml:"providers"`
	News      NewsConfig      `mapstructure:"news" json:"news" yaml:"news"`
	Analysis  AnalysisConfig  `mapstructure:"analysis" json:"analysis" yaml:"analysis"`
	Storage   StorageConfig   `mapstructure:"storage" json:"storage" yaml:"storage"`
	Refresh   RefreshConfig   `mapstructure:"refresh" json:"refresh" yaml:"refresh"`
	Alerts    AlertsConfig    `mapstructure:"alerts" json:"alerts" yaml:"alerts"`
	API       APIConfig       `mapstructure:"api" json:"api" yaml:"api"`
	Logging   LoggingConfig   `mapstructure:"logging" json:"logging" yaml:"logging"`

	// File is the config file that was read, empty when running on defaults.
	File string `mapstructure:"-" json:"file,omitempty" yaml:"-"`
}

// ProvidersConfig holds market data provider credentials and endpoints.
type ProvidersConfig struct {
	AlphaVantageKey string        `mapstructure:"alphavantage_key" json:"-" yaml:"alphavantage_key"`
	AlphaVantageURL string        `mapstructure:"alphavantage_url" json:"alphavantage_url" yaml:"alphavantage_url"`
	FinnhubKey      string        `mapstructure:"finnhub_key" json:"-" yaml:"finnhub_key"`
	FinnhubURL      string        `mapstructure:"finnhub_url" json:"finnhub_url" yaml:"finnhub_url"`
	Timeout         time.Duration `mapstructure:"timeout" json:"timeout" yaml:"timeout"`
}

// NewsConfig holds news fetching settings.
type NewsConfig struct {
	RequestDelay time.Duration `mapstructure:"request_delay" json:"request_delay" yaml:"request_delay"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl" json:"cache_ttl" yaml:"cache_ttl"`
	LookbackDays int           `mapstructure:"lookback_days" json:"lookback_days" yaml:"lookback_days"`
	RSSURL       string        `mapstructure:"rss_url" json:"rss_url" yaml:"rss_url"` // fmt pattern, %s = symbol
}

// AnalysisConfig holds analysis engine settings.
type AnalysisConfig struct {
	ConcurrentFetches int `mapstructure:"concurrent_fetches" json:"concurrent_fetches" yaml:"concurrent_fetches"`
}

// StorageConfig selects where holdings are persisted.
type StorageConfig struct {
	Driver string `mapstructure:"driver" json:"driver" yaml:"driver"` // "json" or "badger"
	Path   string `mapstructure:"path" json:"path" yaml:"path"`
}

// RefreshConfig holds the auto-refresh schedule.
type RefreshConfig struct {
	Schedule string `mapstructure:"schedule" json:"schedule" yaml:"schedule"` // cron expression, e.g. "@every 5m"
}

// AlertsConfig holds alert thresholds.
type AlertsConfig struct {
	PriceDropPct float64 `mapstructure:"price_drop_pct" json:"price_drop_pct" yaml:"price_drop_pct"`
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host" json:"host" yaml:"host"`
	Port        int      `mapstructure:"port" json:"port" yaml:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" json:"cors_origins" yaml:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level" json:"level" yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" json:"format" yaml:"format"` // "text" or "json"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.stockpulse/config.yaml (home directory)
//  3. /etc/stockpulse/config.yaml (system)
//
// Environment variables override config file values.
// Format: STOCKPULSE_<SECTION>_<KEY>, e.g., STOCKPULSE_API_PORT
func Load() (*Config, error) {
	v := newViper()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".stockpulse"))
	v.AddConfigPath("/etc/stockpulse")

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return decode(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	cfg.File = v.ConfigFileUsed()
	overrideFromEnv(&cfg)
	cfg.Storage.Path = expandHome(cfg.Storage.Path)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would make the application misbehave.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "json", "badger":
	default:
		return fmt.Errorf("config: unknown storage driver %q (want json or badger)", c.Storage.Driver)
	}
	if c.Analysis.ConcurrentFetches < 1 {
		return fmt.Errorf("config: analysis.concurrent_fetches must be >= 1, got %d", c.Analysis.ConcurrentFetches)
	}
	if c.News.CacheTTL <= 0 {
		return fmt.Errorf("config: news.cache_ttl must be positive")
	}
	if c.API.Port <= 0 || c.API.Port > 65535 {
		return fmt.Errorf("config: api.port out of range: %d", c.API.Port)
	}
	return nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Provider defaults
	v.SetDefault("providers.alphavantage_url", "https://www.alphavantage.co")
	v.SetDefault("providers.finnhub_url", "https://finnhub.io/api/v1")
	v.SetDefault("providers.timeout", 10*time.Second)

	// News defaults
	v.SetDefault("news.request_delay", 800*time.Millisecond)
	v.SetDefault("news.cache_ttl", 6*time.Hour)
	v.SetDefault("news.lookback_days", 7)
	v.SetDefault("news.rss_url", "https://feeds.finance.yahoo.com/rss/2.0/headline?s=%s&region=US&lang=en-US")

	v.SetDefault("analysis.concurrent_fetches", 5)

	v.SetDefault("storage.driver", "json")
	v.SetDefault("storage.path", "~/.stockpulse/holdings.json")

	v.SetDefault("refresh.schedule", "@every 5m")

	v.SetDefault("alerts.price_drop_pct", 0.0)

	// API defaults
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"http://localhost:3000"})

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// overrideFromEnv explicitly reads sensitive keys from environment variables.
func overrideFromEnv(cfg *Config) {
	if key := os.Getenv(EnvPrefix + "_PROVIDERS_ALPHAVANTAGE_KEY"); key != "" {
		cfg.Providers.AlphaVantageKey = key
	}
	if key := os.Getenv(EnvPrefix + "_PROVIDERS_FINNHUB_KEY"); key != "" {
		cfg.Providers.FinnhubKey = key
	}
}

func expandHome(p string) string {
	if p == "~" {
		return homeDir()
	}
	if strings.HasPrefix(p, "~/") {
		return filepath.Join(homeDir(), p[2:])
	}
	return p
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
