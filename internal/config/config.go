// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Keys are flat snake_case so the same name works in YAML and env.
// - New() returns the defaults; Load layers file and env on top and validates.
package config

// Store backends accepted by the "store" key.
const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// Store selects the event/actor backend: memory, sqlite or postgres.
	Store string `koanf:"store"`

	// SQLitePath is the database file used when Store is sqlite.
	SQLitePath string `koanf:"sqlite_path"`

	// PostgresDSN is the connection string used when Store is postgres.
	PostgresDSN string `koanf:"postgres_dsn"`

	// RedisAddr enables the rank mirror when non-empty.
	RedisAddr string `koanf:"redis_addr"`

	// RedisKeyPrefix namespaces mirror keys.
	RedisKeyPrefix string `koanf:"redis_key_prefix"`

	// Timezone is the IANA location used to resolve day/month/year windows.
	Timezone string `koanf:"timezone"`

	// DefaultPoints applies to recorded activities that omit points.
	DefaultPoints int64 `koanf:"default_points"`

	// SyntheticEvents makes Recalculate append generated events before rebuilding.
	SyntheticEvents bool `koanf:"synthetic_events"`

	// SyntheticMinEvents and SyntheticMaxEvents bound generated events per actor.
	SyntheticMinEvents int `koanf:"synthetic_min_events"`
	SyntheticMaxEvents int `koanf:"synthetic_max_events"`

	// SyntheticPoints is the point value of each generated event.
	SyntheticPoints int64 `koanf:"synthetic_points"`

	// SyntheticCategory labels generated events.
	SyntheticCategory string `koanf:"synthetic_category"`

	// SyntheticSpreadDays spreads generated timestamps over the last N days.
	SyntheticSpreadDays int `koanf:"synthetic_spread_days"`

	// RecalculateCron schedules Recalculate when non-empty, e.g. "@every 1h".
	RecalculateCron string `koanf:"recalculate_cron"`

	// SeedOnStart populates demo actors and activities on boot.
	SeedOnStart bool `koanf:"seed_on_start"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":9080",
		Store:               StoreMemory,
		SQLitePath:          "leaderboard.db",
		RedisKeyPrefix:      "leaderboard:",
		Timezone:            "Local",
		DefaultPoints:       20,
		SyntheticEvents:     true,
		SyntheticMinEvents:  1,
		SyntheticMaxEvents:  5,
		SyntheticPoints:     20,
		SyntheticCategory:   "login",
		SyntheticSpreadDays: 30,
	}
}
