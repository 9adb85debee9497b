package config

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsYEnv(t *testing.T) {
	t.Setenv("INTERES_TARJETA_PCT", "12.5")
	t.Setenv("CORS_ORIGINS", " https://caja.local , ,https://admin.local")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, 12, cfg.CarritoTTLHours)

	interes, err := cfg.Interes()
	require.NoError(t, err)
	assert.True(t, interes.Equal(decimal.RequireFromString("12.5")))

	mayorista, err := cfg.Mayorista()
	require.NoError(t, err)
	assert.True(t, mayorista.Equal(decimal.NewFromInt(5)))

	assert.Equal(t, []string{"https://caja.local", "https://admin.local"}, cfg.Origenes())
}

func TestInteres_Invalido(t *testing.T) {
	cfg := &Config{InteresTarjetaPct: "diez"}
	_, err := cfg.Interes()
	assert.Error(t, err)
}
