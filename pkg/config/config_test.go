package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-api/pkg/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cr3t")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "stock-api", cfg.App.Name)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 60, cfg.JWT.AccessMinutes)
	assert.Equal(t, 1440, cfg.JWT.RefreshMinutes)
	assert.False(t, cfg.Inventory.AllowNegativeStock)
	assert.Equal(t, 3, cfg.Inventory.TxMaxRetries)
	assert.False(t, cfg.Mail.Enabled())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cr3t")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("INVENTORY_ALLOW_NEGATIVE_STOCK", "true")
	t.Setenv("APP_TIMEZONE", "America/Sao_Paulo")
	t.Setenv("SMTP_HOST", "smtp.example.com")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.True(t, cfg.Inventory.AllowNegativeStock)
	assert.True(t, cfg.Mail.Enabled())
	loc, err := cfg.App.Location()
	require.NoError(t, err)
	assert.Equal(t, "America/Sao_Paulo", loc.String())
}

func TestLoad_SinSecret_Error(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoad_ZonaInvalida_Error(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cr3t")
	t.Setenv("APP_TIMEZONE", "Marte/Olympus")
	_, err := config.Load()
	assert.Error(t, err)
}

func TestDBConfig_ConnectionString(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "u", Password: "p@ss:word", DBName: "stock", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p%40ss%3Aword@db:5432/stock?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://x@y/z"
	assert.Equal(t, "postgres://x@y/z", c.ConnectionString())
}
