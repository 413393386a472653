package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("SERVER_PORT", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "8000", cfg.HTTP.Port)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowOrigins)
	assert.False(t, cfg.CacheEnabled())
	assert.Contains(t, cfg.Database.URL, "postgres://")
	assert.Equal(t, "0.0.0.0:8000", cfg.Address())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "Mongo")
	t.Setenv("REDIS_URL", "redis://cache:6379/0")
	t.Setenv("CACHE_TTL", "30")
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "250ms")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("DB_DEBUG", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverMongo, cfg.Storage.Driver)
	assert.True(t, cfg.CacheEnabled())
	assert.Equal(t, 30*time.Second, cfg.Redis.TTL)
	assert.Equal(t, 250*time.Millisecond, cfg.Context.RequestTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowOrigins)
	assert.True(t, cfg.SQLite.Debug)
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "cassandra")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cassandra")
}
