package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		Environment:     "local",
		LogLevel:        "info",
		DatabaseURL:     "postgres://localhost:5432/crimemap",
		DBMinConns:      1,
		DBMaxConns:      8,
		ScoreThreshold:  0.6,
		DedupThreshold:  0.85,
		SignatureSize:   128,
		DefaultLanguage: "en",
		FetchTimeout:    20 * time.Second,
		UserAgent:       "test-agent",
		GeocodeEndpoint: "https://nominatim.openstreetmap.org/search",
		GeocodeRPS:      1,
		GeocodeTimeout:  10 * time.Second,
	}
}

func TestValidate_OK(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidate_Rejections(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		mutate  func(*Config)
		message string
	}{
		{"missing database url", func(c *Config) { c.DatabaseURL = "  " }, "DATABASE_URL"},
		{"min over max conns", func(c *Config) { c.DBMinConns = 9 }, "CM_DB_MIN_CONNS"},
		{"score threshold out of range", func(c *Config) { c.ScoreThreshold = 1.5 }, "CM_SCORE_THRESHOLD"},
		{"dedup threshold at bound", func(c *Config) { c.DedupThreshold = 1 }, "CM_DEDUP_THRESHOLD"},
		{"signature too small", func(c *Config) { c.SignatureSize = 2 }, "CM_SIGNATURE_SIZE"},
		{"blank default language", func(c *Config) { c.DefaultLanguage = "" }, "CM_DEFAULT_LANGUAGE"},
		{"zero geocode rps", func(c *Config) { c.GeocodeRPS = 0 }, "CM_GEOCODE_RPS"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.message) {
				t.Fatalf("expected error mentioning %q, got %v", tc.message, err)
			}
		})
	}
}
