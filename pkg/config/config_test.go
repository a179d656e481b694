package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("APP_ENV", "test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "stock-control", cfg.App.Name)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	assert.Equal(t, 30*time.Second, cfg.Ledger.LockTTL)
	assert.Equal(t, 5*time.Second, cfg.Ledger.LockWait)
	assert.False(t, cfg.Redis.Enabled())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("STORE_DRIVER", "MEMORY")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("LEDGER_LOCK_TTL_SECONDS", "5")
	t.Setenv("LEDGER_LOCK_WAIT_MS", "250")
	t.Setenv("LEDGER_VALUATION_WORKERS", "abc")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreMemory, cfg.Store.Driver)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, 5*time.Second, cfg.Ledger.LockTTL)
	assert.Equal(t, 250*time.Millisecond, cfg.Ledger.LockWait)
	assert.Equal(t, 8, cfg.Ledger.ValuationWorkers, "valor inválido usa el default")
}

func TestLoad_DriverDesconocido(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("STORE_DRIVER", "mongo")

	_, err := Load()
	assert.Error(t, err)
}

func TestDSN_EscapaPassword(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:w/rd", DBName: "stock", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aw%2Frd@db:5432/stock?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}

func TestLoad_EsperaDeLockNoSuperaTTL(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("LEDGER_LOCK_TTL_SECONDS", "2")
	t.Setenv("LEDGER_LOCK_WAIT_MS", "60000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, cfg.Ledger.LockWait)
}
