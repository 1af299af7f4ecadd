// Package config loads and validates the data source configuration.
// Sources are merged by priority: environment variables override the
// optional YAML file, which overrides built-in defaults.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	envprovider "github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// envPrefix namespaces the environment overrides. A double underscore
// separates key path segments while a single underscore stays literal,
// so VIREO_DATASOURCE__MAX_CONNS maps to datasource.max_conns.
const envPrefix = "VIREO_"

// DataSource holds everything needed to open a backend connection pool.
type DataSource struct {
	// URL is the connection string; its scheme selects the backend
	// (mysql, postgres, sqlite, oracle).
	URL string `koanf:"url" validate:"required"`

	MaxConns        int           `koanf:"max_conns" validate:"gte=0"`
	MaxIdleConns    int           `koanf:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime" validate:"gte=0"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time" validate:"gte=0"`
}

// Config is the root configuration.
type Config struct {
	DataSource DataSource `koanf:"datasource"`
	Log        Log        `koanf:"log"`
}

// Log configures the structured logger.
type Log struct {
	Level  string `koanf:"level" validate:"required"`
	Pretty bool   `koanf:"pretty"`
}

// Load reads configuration from defaults, the optional YAML file at
// path (skipped when path is empty), and VIREO_-prefixed environment
// variables, then validates the result.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	if err := k.Load(envprovider.Provider(envPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, envPrefix)
		return strings.ReplaceAll(strings.ToLower(s), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func loadDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"datasource.max_conns":          10,
		"datasource.max_idle_conns":     5,
		"datasource.conn_max_lifetime":  "30m",
		"datasource.conn_max_idle_time": "5m",

		"log.level":  "info",
		"log.pretty": false,
	}

	return k.Load(confmap.Provider(defaults, "."), nil)
}

// Validate checks struct-level constraints on an assembled Config.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
