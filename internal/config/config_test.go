package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8082", cfg.OrderSvcAddr)
	assert.Equal(t, ":50051", cfg.UserGRPCAddr)
	assert.Equal(t, DriverPostgres, cfg.StoreDriver)
	assert.Equal(t, 10*time.Second, cfg.OrderTimeout)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("STORE_DRIVER", "mongo")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("ORDER_TIMEOUT", "3s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverMongo, cfg.StoreDriver)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 3*time.Second, cfg.OrderTimeout)
}

func TestValidate(t *testing.T) {
	base := Config{StoreDriver: DriverMemory, JWTSecret: "x", OrderTimeout: time.Second}
	require.NoError(t, base.Validate())

	bad := base
	bad.StoreDriver = "sqlite"
	assert.Error(t, bad.Validate())

	bad = base
	bad.JWTSecret = ""
	assert.Error(t, bad.Validate())

	bad = base
	bad.OrderTimeout = 0
	assert.Error(t, bad.Validate())
}
