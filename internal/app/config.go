package app

import (
	"errors"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix prefixes every environment variable read into a Config.
const EnvPrefix = "FACTORGRID"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	CatalogPaths []string `envconfig:"CATALOG_PATHS"` // hcl, yaml and json files or directories

	LogFormat       string `envconfig:"LOG_FORMAT" default:"text"`
	LogLevel        string `envconfig:"LOG_LEVEL" default:"info"`
	LogFile         string `envconfig:"LOG_FILE"`
	HealthcheckPort int    `envconfig:"HEALTHCHECK_PORT" default:"0"`
	WorkerCount     int    `envconfig:"WORKERS" default:"4"`
}

// LoadEnvConfig returns a Config populated from defaults and FACTORGRID_*
// environment variables. When envFile is set it is loaded first; variables
// already present in the environment win over the file.
func LoadEnvConfig(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return Config{}, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	}

	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to read environment: %w", err)
	}
	return cfg, nil
}

func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.CatalogPaths) == 0 {
		return nil, errors.New("CatalogPaths is a required configuration field and cannot be empty")
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid log level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel)
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("invalid log format %q: must be 'text' or 'json'", cfg.LogFormat)
	}
	if cfg.WorkerCount < 1 {
		return nil, fmt.Errorf("worker count must be at least 1, got %d", cfg.WorkerCount)
	}
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, fmt.Errorf("healthcheck port %d is out of range", cfg.HealthcheckPort)
	}

	return &cfg, nil
}
