package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/02loveslollipop/solar-potential-dashboard/services/api/loader"
	"github.com/02loveslollipop/solar-potential-dashboard/services/api/solar"
)

// Config holds environment-driven settings for the REST API.
type Config struct {
	Port           int
	BearerToken    string
	DefaultLimit   int
	SourcesFile    string
	Sources        []loader.Source
	RequestTimeout time.Duration
	Preload        bool
	S3             loader.S3Config
}

// Load reads configuration from environment variables (optionally .env).
func Load() (Config, error) {
	_ = godotenv.Load() // ignore missing file

	cfg := Config{
		Port:           8080,
		DefaultLimit:   200,
		RequestTimeout: 60 * time.Second,
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil && port > 0 {
			cfg.Port = port
		} else {
			return cfg, fmt.Errorf("invalid PORT: %s", portStr)
		}
	} else if portStr := os.Getenv("API_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil && port > 0 {
			cfg.Port = port
		} else {
			return cfg, fmt.Errorf("invalid API_PORT: %s", portStr)
		}
	}

	if limitStr := os.Getenv("API_DEFAULT_LIMIT"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
			cfg.DefaultLimit = limit
		} else {
			return cfg, fmt.Errorf("invalid API_DEFAULT_LIMIT: %s", limitStr)
		}
	}

	if timeoutStr := os.Getenv("SOLAR_REQUEST_TIMEOUT"); timeoutStr != "" {
		if d, err := time.ParseDuration(timeoutStr); err == nil && d > 0 {
			cfg.RequestTimeout = d
		} else {
			return cfg, fmt.Errorf("invalid SOLAR_REQUEST_TIMEOUT: %s", timeoutStr)
		}
	}

	if preloadStr := os.Getenv("SOLAR_PRELOAD"); preloadStr != "" {
		if v, err := strconv.ParseBool(preloadStr); err == nil {
			cfg.Preload = v
		} else {
			return cfg, fmt.Errorf("invalid SOLAR_PRELOAD: %s", preloadStr)
		}
	}

	cfg.BearerToken = os.Getenv("API_BEARER_TOKEN")

	cfg.S3 = loader.S3Config{
		Endpoint:        os.Getenv("SOLAR_S3_ENDPOINT"),
		Region:          os.Getenv("SOLAR_S3_REGION"),
		AccessKeyID:     os.Getenv("SOLAR_S3_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("SOLAR_S3_SECRET_ACCESS_KEY"),
	}
	cfg.S3.ApplyDefaults()

	sources, err := loadSources(&cfg)
	if err != nil {
		return cfg, err
	}
	cfg.Sources = sources

	return cfg, nil
}

// loadSources prefers the manifest file; otherwise the built-in remote
// datasets, each overridable by its own variable.
func loadSources(cfg *Config) ([]loader.Source, error) {
	cfg.SourcesFile = os.Getenv("SOLAR_SOURCES_FILE")
	if cfg.SourcesFile != "" {
		sources, err := loader.ReadManifest(cfg.SourcesFile)
		if err != nil {
			return nil, fmt.Errorf("invalid SOLAR_SOURCES_FILE: %w", err)
		}
		return sources, nil
	}

	overrides := map[solar.Country]string{
		solar.Benin:       "SOLAR_BENIN_URL",
		solar.SierraLeone: "SOLAR_SIERRA_LEONE_URL",
		solar.Togo:        "SOLAR_TOGO_URL",
	}
	sources := loader.DefaultSources()
	for i, src := range sources {
		if v := os.Getenv(overrides[src.Country]); v != "" {
			sources[i].Location = v
		}
	}
	return sources, nil
}

// ListenAddr returns the host:port string for the HTTP server.
func (c Config) ListenAddr() string {
	return fmt.Sprintf(":%d", c.Port)
}
