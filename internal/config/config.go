package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	LogLevel      string        `mapstructure:"LOG_LEVEL"`
	HTTPAddr      string        `mapstructure:"HTTP_ADDR"`
	DBURL         string        `mapstructure:"DB_URL"`
	SessionSecret string        `mapstructure:"SESSION_SECRET"`
	GithubAPIURL  string        `mapstructure:"GITHUB_API_URL"`
	CORSOrigins   []string      `mapstructure:"CORS_ORIGINS"`
	SyncInterval  time.Duration `mapstructure:"SYNC_INTERVAL"`
	SyncLookback  time.Duration `mapstructure:"SYNC_LOOKBACK"`
	CacheTTL      time.Duration `mapstructure:"CACHE_TTL"`
}

// LoadConfig reads configuration from file and/or environment variables.
func LoadConfig() (*Config, error) {
	// Set default values
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("HTTP_ADDR", ":8080")
	viper.SetDefault("SYNC_INTERVAL", "1h")
	viper.SetDefault("SYNC_LOOKBACK", "720h") // 30-day commit window
	viper.SetDefault("CACHE_TTL", "5m")

	// Load from .env file if it exists
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	_ = viper.ReadInConfig() // Ignore error if file not found

	// Bind environment variables
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Validate required fields
	if cfg.DBURL == "" {
		return nil, errors.New("DB_URL is a required configuration field")
	}
	if cfg.SessionSecret == "" {
		return nil, errors.New("SESSION_SECRET is a required configuration field")
	}
	if cfg.SyncLookback <= 0 {
		return nil, errors.New("SYNC_LOOKBACK must be a positive duration")
	}
	if cfg.CacheTTL <= 0 {
		return nil, errors.New("CACHE_TTL must be a positive duration")
	}

	return &cfg, nil
}
