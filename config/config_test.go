package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORAGE", "memory")
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 10*time.Minute, cfg.ProductCacheTTL)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpire)
	assert.True(t, cfg.OrderCompensateStock)
	assert.True(t, cfg.OrderStrictStatus)
	assert.False(t, cfg.EmailEnabled())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORAGE", "memory")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_EXPIRE", "2h")
	t.Setenv("ORDER_COMPENSATE_STOCK", "false")
	t.Setenv("REDIS_DB", "3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 2*time.Hour, cfg.JWTExpire)
	assert.False(t, cfg.OrderCompensateStock)
	assert.Equal(t, 3, cfg.RedisDB)
}

func TestValidate(t *testing.T) {
	cfg := &Config{Storage: StorageMongo, JWTSecret: "s"}
	assert.Error(t, cfg.Validate())

	cfg = &Config{Storage: "sqlite", JWTSecret: "s"}
	assert.Error(t, cfg.Validate())

	cfg = &Config{Storage: StorageMemory}
	assert.Error(t, cfg.Validate())

	cfg = &Config{Storage: StorageMongo, MongoURI: "mongodb://localhost", DBName: "marketly", JWTSecret: "s"}
	assert.NoError(t, cfg.Validate())
}

func TestGetEnv(t *testing.T) {
	t.Setenv("MARKETLY_TEST_KEY", "value")
	assert.Equal(t, "value", GetEnv("MARKETLY_TEST_KEY", "fallback"))
	assert.Equal(t, "fallback", GetEnv("MARKETLY_MISSING_KEY", "fallback"))
}
