package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "megamart-analytics", cfg.App.Name)
	assert.Equal(t, "https://api-megamart.onrender.com", cfg.Upstream.BaseURL)
	assert.Equal(t, 120*time.Second, cfg.Refresh.CustomersInterval)
	assert.Equal(t, 30*time.Second, cfg.Refresh.Interval)
	assert.Equal(t, 5, cfg.Upstream.FailureThreshold)
	assert.Equal(t, int64(32<<20), cfg.Upstream.MaxBodyBytes)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	assert.False(t, cfg.DB.Enabled())
}

func TestLoad_DesdeEntorno(t *testing.T) {
	t.Setenv("APP_ENV", "staging")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("REFRESH_INTERVAL", "45")
	t.Setenv("REFRESH_CUSTOMERS_INTERVAL", "3m")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PASSWORD", "p@ss/word")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, 45*time.Second, cfg.Refresh.Interval)
	assert.Equal(t, 3*time.Minute, cfg.Refresh.CustomersInterval)
	assert.True(t, cfg.DB.Enabled())
	assert.Equal(t, "postgres://postgres:p%40ss%2Fword@db:5432/megamart?sslmode=disable", cfg.DB.ConnectionString())
}

func TestLoad_ProduccionExigeSecreto(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")
	_, err := Load()
	assert.Error(t, err)
}
