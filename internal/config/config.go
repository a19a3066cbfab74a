package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"local"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	DBMinConns  int32  `envconfig:"CM_DB_MIN_CONNS" default:"1"`
	DBMaxConns  int32  `envconfig:"CM_DB_MAX_CONNS" default:"8"`

	ScoreThreshold float64 `envconfig:"CM_SCORE_THRESHOLD" default:"0.6"`
	DedupThreshold float64 `envconfig:"CM_DEDUP_THRESHOLD" default:"0.85"`
	SignatureSize  int     `envconfig:"CM_SIGNATURE_SIZE" default:"128"`

	DefaultLanguage string `envconfig:"CM_DEFAULT_LANGUAGE" default:"en"`

	FetchTimeout    time.Duration `envconfig:"CM_FETCH_TIMEOUT" default:"20s"`
	UserAgent       string        `envconfig:"CM_USER_AGENT" default:"Mozilla/5.0 MLNews/2025"`
	GeocodeEndpoint string        `envconfig:"CM_GEOCODE_ENDPOINT" default:"https://nominatim.openstreetmap.org/search"`
	GeocodeRPS      float64       `envconfig:"CM_GEOCODE_RPS" default:"1"`
	GeocodeTimeout  time.Duration `envconfig:"CM_GEOCODE_TIMEOUT" default:"10s"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.DBMinConns < 0 {
		return fmt.Errorf("CM_DB_MIN_CONNS must be >= 0")
	}
	if c.DBMaxConns < 1 {
		return fmt.Errorf("CM_DB_MAX_CONNS must be >= 1")
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("CM_DB_MIN_CONNS (%d) cannot exceed CM_DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	if c.ScoreThreshold < 0 || c.ScoreThreshold > 1 {
		return fmt.Errorf("CM_SCORE_THRESHOLD must be in [0,1]")
	}
	if c.DedupThreshold <= 0 || c.DedupThreshold >= 1 {
		return fmt.Errorf("CM_DEDUP_THRESHOLD must be in (0,1)")
	}
	if c.SignatureSize < 4 {
		return fmt.Errorf("CM_SIGNATURE_SIZE must be >= 4")
	}
	if strings.TrimSpace(c.DefaultLanguage) == "" {
		return fmt.Errorf("CM_DEFAULT_LANGUAGE is required")
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("CM_FETCH_TIMEOUT must be positive")
	}
	if strings.TrimSpace(c.GeocodeEndpoint) == "" {
		return fmt.Errorf("CM_GEOCODE_ENDPOINT is required")
	}
	if c.GeocodeRPS <= 0 {
		return fmt.Errorf("CM_GEOCODE_RPS must be positive")
	}
	if c.GeocodeTimeout <= 0 {
		return fmt.Errorf("CM_GEOCODE_TIMEOUT must be positive")
	}
	return nil
}
