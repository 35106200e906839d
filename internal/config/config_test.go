package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"HTTP_ADDR", "GRPC_ADDR", "STORAGE_DRIVER", "DATABASE_URL", "MONGO_DATABASE",
	"REDIS_ADDR", "JWT_SECRET", "TOKEN_TTL", "REQUEST_TIMEOUT", "LOCK_TTL",
	"SALE_MAX_ATTEMPTS", "ALLOW_ORIGINS", "LOG_LEVEL", "AUTO_MIGRATE",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, ":50051", cfg.GRPCAddr)
	assert.Equal(t, DriverMySQL, cfg.Storage.Driver)
	assert.Equal(t, defaultDSN[DriverMySQL], cfg.Storage.DSN)
	assert.True(t, cfg.Storage.AutoMigrate)
	assert.Equal(t, DefaultJWTSecret, cfg.JWTSecret)
	assert.Equal(t, 7*24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 5*time.Second, cfg.LockTTL)
	assert.Equal(t, 3, cfg.SaleMaxAttempts)
	assert.Empty(t, cfg.RedisAddr)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORAGE_DRIVER", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/app")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("TOKEN_TTL", "1h")
	t.Setenv("SALE_MAX_ATTEMPTS", "5")
	t.Setenv("AUTO_MIGRATE", "false")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.Storage.Driver)
	assert.Equal(t, "postgres://u:p@db:5432/app", cfg.Storage.DSN)
	assert.Equal(t, "redis:6379", cfg.RedisAddr)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Equal(t, 5, cfg.SaleMaxAttempts)
	assert.False(t, cfg.Storage.AutoMigrate)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_DriverDefaultDSN(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORAGE_DRIVER", "mongo")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, defaultDSN[DriverMongo], cfg.Storage.DSN)
	assert.Equal(t, "stockroom", cfg.Storage.MongoDatabase)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string][2]string{
		"unknown driver":    {"STORAGE_DRIVER", "sqlite"},
		"bad duration":      {"LOCK_TTL", "soon"},
		"negative duration": {"REQUEST_TIMEOUT", "-1s"},
		"bad int":           {"SALE_MAX_ATTEMPTS", "many"},
		"zero attempts":     {"SALE_MAX_ATTEMPTS", "0"},
		"bad bool":          {"AUTO_MIGRATE", "maybe"},
	}

	for name, kv := range tests {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(kv[0], kv[1])

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
