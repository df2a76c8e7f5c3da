// Package config loads ledger settings from a YAML file with environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned when the loaded settings fail validation.
var ErrInvalidConfig = errors.New("invalid config")

// Environment overrides.
const (
	EnvPostgresDSN   = "LEDGER_POSTGRES_DSN"
	EnvClickhouseDSN = "LEDGER_CLICKHOUSE_DSN"
	EnvLogLevel      = "LEDGER_LOG_LEVEL"
	EnvAsOf          = "LEDGER_AS_OF"
)

// Config holds application configuration.
type Config struct {
	Log           Log           `yaml:"log"`
	Normalization Normalization `yaml:"normalization"`
	Validation    Validation    `yaml:"validation"`
	Aggregation   Aggregation   `yaml:"aggregation"`
	Postgres      Postgres      `yaml:"postgres"`
	ClickHouse    ClickHouse    `yaml:"clickhouse"`
	Metrics       Metrics       `yaml:"metrics"`
	Tracing       Tracing       `yaml:"tracing"`
}

// Log configures the zap logger.
type Log struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=json console"`
}

// Normalization holds the multiplier correction tables. Multipliers are
// decimal strings.
type Normalization struct {
	FixedRootMultipliers map[string]string `yaml:"fixed_root_multipliers" validate:"dive,keys,startswith=/,endkeys,numeric"`
	IndexAliases         []string          `yaml:"index_aliases" validate:"dive,required"`
	IndexMultiplier      string            `yaml:"index_multiplier" validate:"numeric"`
	FuturesRoots         []string          `yaml:"futures_roots" validate:"dive,startswith=/"`
	DefaultMultiplier    string            `yaml:"default_multiplier" validate:"numeric"`
}

// Validation holds the audit tolerances.
type Validation struct {
	ValueTolerance string `yaml:"value_tolerance" validate:"numeric"`
	PnLTolerance   string `yaml:"pnl_tolerance" validate:"numeric"`
}

// Aggregation configures the round-trip builder.
type Aggregation struct {
	// Partitions is the number of parallel aggregation workers; 0 or 1 is serial.
	Partitions int `yaml:"partitions" validate:"gte=0,lte=64"`
	// AsOf fixes "now" for synthetic expirations (RFC 3339). Empty means wall clock.
	AsOf string `yaml:"as_of"`
}

// Postgres configures the fill and round-trip store.
type Postgres struct {
	DSN string `yaml:"dsn"`
}

// ClickHouse configures the analytics round-trip store.
type ClickHouse struct {
	DSN string `yaml:"dsn"`
}

// Metrics configures the Prometheus endpoint. Empty Addr disables it.
type Metrics struct {
	Addr string `yaml:"addr" validate:"omitempty,hostname_port"`
}

// Tracing toggles span export.
type Tracing struct {
	Enabled bool `yaml:"enabled"`
}

// Load reads configuration from path, applies environment overrides and
// defaults, then validates. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: parse %s: %v", ErrInvalidConfig, path, err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyEnv() {
	if v, ok := os.LookupEnv(EnvPostgresDSN); ok {
		c.Postgres.DSN = v
	}
	if v, ok := os.LookupEnv(EnvClickhouseDSN); ok {
		c.ClickHouse.DSN = v
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok {
		c.Log.Level = v
	}
	if v, ok := os.LookupEnv(EnvAsOf); ok {
		c.Aggregation.AsOf = v
	}
}

// Validate checks field constraints and the as-of timestamp.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, _, err := c.Aggregation.AsOfTime(); err != nil {
		return fmt.Errorf("%w: aggregation.as_of: %v", ErrInvalidConfig, err)
	}
	return nil
}

// AsOfTime parses AsOf. ok is false when AsOf is empty.
func (a Aggregation) AsOfTime() (t time.Time, ok bool, err error) {
	if a.AsOf == "" {
		return time.Time{}, false, nil
	}
	t, err = time.Parse(time.RFC3339, a.AsOf)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}
