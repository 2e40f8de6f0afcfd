package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix  = "LEADERBOARD_"
	envFileVar = "LEADERBOARD_CONFIG"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if LEADERBOARD_CONFIG is set
//  3. env (prefix LEADERBOARD_)
func Load() (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(envFileVar); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// LEADERBOARD_SQLITE_PATH -> sqlite_path; underscores stay to match the koanf tags.
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}
	// The file path variable is not a config key.
	k.Delete("config")

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first invalid setting, wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
	}

	if c.Addr == "" {
		return invalid("addr must not be empty")
	}
	switch c.Store {
	case StoreMemory:
	case StoreSQLite:
		if c.SQLitePath == "" {
			return invalid("sqlite_path must not be empty when store is sqlite")
		}
	case StorePostgres:
		if c.PostgresDSN == "" {
			return invalid("postgres_dsn must not be empty when store is postgres")
		}
	default:
		return invalid("unknown store %q", c.Store)
	}
	if _, err := c.Location(); err != nil {
		return invalid("timezone %q: %v", c.Timezone, err)
	}
	if c.DefaultPoints <= 0 {
		return invalid("default_points must be positive")
	}
	if c.SyntheticMinEvents < 1 || c.SyntheticMaxEvents < c.SyntheticMinEvents {
		return invalid("synthetic event range %d..%d is invalid", c.SyntheticMinEvents, c.SyntheticMaxEvents)
	}
	if c.SyntheticPoints <= 0 {
		return invalid("synthetic_points must be positive")
	}
	if c.SyntheticSpreadDays < 0 {
		return invalid("synthetic_spread_days must not be negative")
	}
	return nil
}

// Location resolves Timezone. Empty and "Local" both mean the process zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// SyntheticSpread returns SyntheticSpreadDays as a duration.
func (c *Config) SyntheticSpread() time.Duration {
	return time.Duration(c.SyntheticSpreadDays) * 24 * time.Hour
}
