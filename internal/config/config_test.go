package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"TODO_CONFIG_FILE", "TODO_STORE", "DATABASE_URL", "TODO_JWT_SECRET", "TODO_ACCESS_TTL",
	"REDIS_URL", "TODO_BCRYPT_COST", "TODO_LOG_LEVEL", "TODO_LOG_FORMAT",
	"TODO_SWEEP_INTERVAL", "TODO_DIGEST_AT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "todo.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, StoreSQLite, cfg.Store)
	assert.Equal(t, "todo.db", cfg.DatabaseURL)
	assert.Equal(t, 30*time.Minute, cfg.AccessTTL)
	assert.Equal(t, time.Hour, cfg.SweepInterval)
	assert.Empty(t, cfg.DigestAt)
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("TODO_STORE", "memory")
	t.Setenv("TODO_JWT_SECRET", "s3cret")
	t.Setenv("TODO_ACCESS_TTL", "15m")
	t.Setenv("TODO_BCRYPT_COST", "4")
	t.Setenv("TODO_DIGEST_AT", "08:30")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, 15*time.Minute, cfg.AccessTTL)
	assert.Equal(t, 4, cfg.BcryptCost)
	assert.Equal(t, "08:30", cfg.DigestAt)
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, `
store = "postgres"
database_url = "postgres://todo@localhost/todo"
jwt_secret = "from-file"
access_ttl = "45m"
sweep_interval = "10m"
log_format = "json"
`)
	t.Setenv("TODO_CONFIG_FILE", path)
	t.Setenv("TODO_JWT_SECRET", "from-env")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StorePostgres, cfg.Store)
	assert.Equal(t, "postgres://todo@localhost/todo", cfg.DatabaseURL)
	assert.Equal(t, "from-env", cfg.JWTSecret)
	assert.Equal(t, 45*time.Minute, cfg.AccessTTL)
	assert.Equal(t, 10*time.Minute, cfg.SweepInterval)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadFileErrors(t *testing.T) {
	cfg := Default()
	assert.Error(t, LoadFile(&cfg, filepath.Join(t.TempDir(), "missing.toml")))
	assert.Error(t, LoadFile(&cfg, writeFile(t, `access_ttl = "soon"`)))
	assert.Error(t, LoadFile(&cfg, writeFile(t, `store = [`)))
}

func TestLoadRejects(t *testing.T) {
	tests := map[string]map[string]string{
		"missing secret":   {},
		"unknown store":    {"TODO_JWT_SECRET": "x", "TODO_STORE": "mongo"},
		"bad ttl":          {"TODO_JWT_SECRET": "x", "TODO_ACCESS_TTL": "forever"},
		"negative ttl":     {"TODO_JWT_SECRET": "x", "TODO_ACCESS_TTL": "-1m"},
		"bad bcrypt cost":  {"TODO_JWT_SECRET": "x", "TODO_BCRYPT_COST": "40"},
		"non-numeric cost": {"TODO_JWT_SECRET": "x", "TODO_BCRYPT_COST": "high"},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestValidatePostgresNeedsURL(t *testing.T) {
	cfg := Default()
	cfg.Store = StorePostgres
	cfg.DatabaseURL = ""
	cfg.JWTSecret = "x"
	assert.Error(t, cfg.Validate())

	cfg.DatabaseURL = "postgres://todo@localhost/todo"
	assert.NoError(t, cfg.Validate())
}
