package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// Config keeps runtime settings for the todo backend.
type Config struct {
	Store         string
	DatabaseURL   string
	JWTSecret     string
	AccessTTL     time.Duration
	RedisURL      string
	BcryptCost    int
	LogLevel      string
	LogFormat     string
	SweepInterval time.Duration
	DigestAt      string
}

// fileConfig mirrors Config in a TOML file. Durations are strings like "15m".
type fileConfig struct {
	Store         string `toml:"store"`
	DatabaseURL   string `toml:"database_url"`
	JWTSecret     string `toml:"jwt_secret"`
	AccessTTL     string `toml:"access_ttl"`
	RedisURL      string `toml:"redis_url"`
	BcryptCost    int    `toml:"bcrypt_cost"`
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	SweepInterval string `toml:"sweep_interval"`
	DigestAt      string `toml:"digest_at"`
}

// Default returns the configuration used before any source is applied.
func Default() Config {
	return Config{
		Store:         StoreSQLite,
		DatabaseURL:   "todo.db",
		AccessTTL:     30 * time.Minute,
		LogLevel:      "info",
		LogFormat:     "text",
		SweepInterval: time.Hour,
	}
}

// Load reads configuration from defaults, an optional .env file, an optional
// TOML file named by TODO_CONFIG_FILE and the environment, in that order.
func Load() (Config, error) {
	_ = godotenv.Load() // a missing .env is fine

	cfg := Default()
	if path := strings.TrimSpace(os.Getenv("TODO_CONFIG_FILE")); path != "" {
		if err := LoadFile(&cfg, path); err != nil {
			return cfg, err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// LoadFile overlays the non-empty values of a TOML file onto cfg.
func LoadFile(cfg *Config, path string) error {
	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return fmt.Errorf("config file %s: %w", path, err)
	}

	setString(&cfg.Store, fc.Store)
	setString(&cfg.DatabaseURL, fc.DatabaseURL)
	setString(&cfg.JWTSecret, fc.JWTSecret)
	setString(&cfg.RedisURL, fc.RedisURL)
	setString(&cfg.LogLevel, fc.LogLevel)
	setString(&cfg.LogFormat, fc.LogFormat)
	setString(&cfg.DigestAt, fc.DigestAt)
	if fc.BcryptCost != 0 {
		cfg.BcryptCost = fc.BcryptCost
	}
	if err := setDuration(&cfg.AccessTTL, "access_ttl", fc.AccessTTL); err != nil {
		return err
	}
	return setDuration(&cfg.SweepInterval, "sweep_interval", fc.SweepInterval)
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Store, getenv("TODO_STORE"))
	setString(&cfg.DatabaseURL, getenv("DATABASE_URL"))
	setString(&cfg.JWTSecret, getenv("TODO_JWT_SECRET"))
	setString(&cfg.RedisURL, getenv("REDIS_URL"))
	setString(&cfg.LogLevel, getenv("TODO_LOG_LEVEL"))
	setString(&cfg.LogFormat, getenv("TODO_LOG_FORMAT"))
	setString(&cfg.DigestAt, getenv("TODO_DIGEST_AT"))

	if raw := getenv("TODO_BCRYPT_COST"); raw != "" {
		cost, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("TODO_BCRYPT_COST: %w", err)
		}
		cfg.BcryptCost = cost
	}
	if err := setDuration(&cfg.AccessTTL, "TODO_ACCESS_TTL", getenv("TODO_ACCESS_TTL")); err != nil {
		return err
	}
	return setDuration(&cfg.SweepInterval, "TODO_SWEEP_INTERVAL", getenv("TODO_SWEEP_INTERVAL"))
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch c.Store {
	case StoreMemory, StoreSQLite, StorePostgres:
	default:
		return fmt.Errorf("store %q: expected memory, sqlite or postgres", c.Store)
	}
	if c.Store == StorePostgres && c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required for the postgres store")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("TODO_JWT_SECRET is required")
	}
	if c.AccessTTL <= 0 {
		return fmt.Errorf("access ttl must be positive")
	}
	if c.BcryptCost != 0 && (c.BcryptCost < 4 || c.BcryptCost > 31) {
		return fmt.Errorf("bcrypt cost %d out of range 4..31", c.BcryptCost)
	}
	return nil
}

func getenv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func setString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

func setDuration(dst *time.Duration, name, raw string) error {
	if raw == "" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*dst = d
	return nil
}
