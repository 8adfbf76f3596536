// Package config provides centralized configuration management.
//
// Configuration can be loaded from:
//  1. YAML file (config.yaml)
//  2. Environment variables (fallback)
//
// Example usage:
//
//	cfg := config.LoadOrEnv()
//	dbPath := cfg.Storage.DatabasePath
//	token := cfg.Firefly.Token
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the entire application configuration.
type Config struct {
	Allegro       AllegroConfig       `yaml:"allegro"`
	Firefly       FireflyConfig       `yaml:"firefly"`
	Reconcile     ReconcileConfig     `yaml:"reconcile"`
	Storage       StorageConfig       `yaml:"storage"`
	API           APIConfig           `yaml:"api"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// AllegroConfig holds the marketplace session settings.
type AllegroConfig struct {
	BaseURL       string `yaml:"base_url"`
	SessionCookie string `yaml:"session_cookie"` // QXLSESSID value
	OrderLimit    int    `yaml:"order_limit"`
}

// FireflyConfig holds the Firefly III connection settings.
type FireflyConfig struct {
	BaseURL string `yaml:"base_url"`
	Token   string `yaml:"token"`
}

// ReconcileConfig holds the matching and tagging policy knobs. The
// amount tolerance is the single epsilon used for both balance checks
// and match checks.
type ReconcileConfig struct {
	Tag                  string  `yaml:"tag"`
	DescriptionFilter    string  `yaml:"description_filter"`
	ExactMatch           bool    `yaml:"exact_match"`
	AmountTolerance      float64 `yaml:"amount_tolerance"`
	SettlementWindowDays int     `yaml:"settlement_window_days"`
}

// StorageConfig holds the audit database configuration.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// APIConfig holds dashboard backend settings.
type APIConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// ObservabilityConfig holds observability settings.
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads and parses the config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables (e.g., ${FIREFLY_TOKEN})
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// LoadFromEnv loads configuration from environment variables only.
func LoadFromEnv() *Config {
	cfg := &Config{
		Allegro: AllegroConfig{
			BaseURL:       getEnv("ALLEGRO_BASE_URL", "https://allegro.pl"),
			SessionCookie: os.Getenv("ALLEGRO_SESSION"),
			OrderLimit:    getEnvInt("ALLEGRO_ORDER_LIMIT", 25),
		},
		Firefly: FireflyConfig{
			BaseURL: os.Getenv("FIREFLY_URL"),
			Token:   os.Getenv("FIREFLY_TOKEN"),
		},
		Reconcile: ReconcileConfig{
			Tag:               getEnv("RECONCILE_TAG", "allegro_done"),
			DescriptionFilter: getEnv("RECONCILE_FILTER", "allegro"),
		},
		Storage: StorageConfig{
			DatabasePath: getEnv("ALLEGRO_SYNC_DB_PATH", "allegro_sync.db"),
		},
		API: APIConfig{
			Port: getEnvInt("API_PORT", 8080),
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "text"),
			},
		},
	}
	cfg.applyDefaults()
	return cfg
}

// LoadOrEnv tries to load from config.yaml, falls back to environment
// variables.
func LoadOrEnv() *Config {
	return LoadOrEnvWithPath("config.yaml")
}

// LoadOrEnvWithPath tries to load from the specified path, falls back to
// environment variables.
func LoadOrEnvWithPath(path string) *Config {
	if cfg, err := Load(path); err == nil {
		return cfg
	}
	return LoadFromEnv()
}

// applyDefaults fills in the policy defaults left unset by the source.
func (c *Config) applyDefaults() {
	if c.Reconcile.Tag == "" {
		c.Reconcile.Tag = "allegro_done"
	}
	if c.Reconcile.DescriptionFilter == "" {
		c.Reconcile.DescriptionFilter = "allegro"
	}
	if c.Reconcile.AmountTolerance <= 0 {
		c.Reconcile.AmountTolerance = 0.01
	}
	if c.Reconcile.SettlementWindowDays <= 0 {
		c.Reconcile.SettlementWindowDays = 6
	}
	if c.Storage.DatabasePath == "" {
		c.Storage.DatabasePath = "allegro_sync.db"
	}
	if c.API.Port == 0 {
		c.API.Port = 8080
	}
	if len(c.API.AllowedOrigins) == 0 {
		c.API.AllowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
}

// getEnv retrieves an environment variable with a fallback default.
func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getEnvInt retrieves an integer environment variable with a fallback
// default.
func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var result int
		if _, err := fmt.Sscanf(val, "%d", &result); err == nil {
			return result
		}
	}
	return fallback
}
