package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestDesde_CostoYGanancia(t *testing.T) {
	c := NewCalculadora(PoliticaPorDefecto())

	p, err := c.Desde(d("100"), d("50"))
	require.NoError(t, err)
	assert.True(t, p.Venta.Equal(d("150")), p.Venta.String())
	assert.True(t, p.Mayorista.Equal(d("145")), p.Mayorista.String())
}

func TestMayorista_GananciaMenorAPuntos(t *testing.T) {
	c := NewCalculadora(PoliticaPorDefecto())

	p, err := c.Desde(d("80"), d("3"))
	require.NoError(t, err)
	assert.True(t, p.Mayorista.Equal(d("80")), "margen mayorista no puede ser negativo")
}

func TestConVenta_DerivaGanancia(t *testing.T) {
	c := NewCalculadora(PoliticaPorDefecto())
	base, _ := c.Desde(d("200"), d("10"))

	p, err := c.ConVenta(base, d("250"))
	require.NoError(t, err)
	assert.True(t, p.Costo.Equal(d("200")), "el costo no se recalcula")
	assert.True(t, p.Ganancia.Equal(d("25")), p.Ganancia.String())
	assert.True(t, p.Mayorista.Equal(d("240")), p.Mayorista.String())
}

func TestConVenta_RedondeaGanancia(t *testing.T) {
	c := NewCalculadora(PoliticaPorDefecto())
	base, _ := c.Desde(d("3"), d("0"))

	p, err := c.ConVenta(base, d("4"))
	require.NoError(t, err)
	assert.True(t, p.Ganancia.Equal(d("33.33")), p.Ganancia.String())
}

func TestConVenta_CostoCero(t *testing.T) {
	c := NewCalculadora(PoliticaPorDefecto())

	_, err := c.ConVenta(Precios{}, d("10"))
	assert.ErrorIs(t, err, ErrCostoCero)
}

func TestConVenta_DebajoDelCosto(t *testing.T) {
	c := NewCalculadora(PoliticaPorDefecto())
	base, _ := c.Desde(d("100"), d("20"))

	_, err := c.ConVenta(base, d("90"))
	assert.ErrorIs(t, err, ErrGananciaNegativa)
}

func TestConCostoYConGanancia(t *testing.T) {
	c := NewCalculadora(PoliticaPorDefecto())
	base, _ := c.Desde(d("100"), d("50"))

	p, err := c.ConCosto(base, d("120"))
	require.NoError(t, err)
	assert.True(t, p.Venta.Equal(d("180")))
	assert.True(t, p.Ganancia.Equal(d("50")))

	p, err = c.ConGanancia(p, d("25"))
	require.NoError(t, err)
	assert.True(t, p.Venta.Equal(d("150")))
	assert.True(t, p.Mayorista.Equal(d("144")))
}

func TestDesde_Negativos(t *testing.T) {
	c := NewCalculadora(PoliticaPorDefecto())

	_, err := c.Desde(d("-1"), d("10"))
	assert.ErrorIs(t, err, ErrCostoNegativo)
	_, err = c.Desde(d("1"), d("-10"))
	assert.ErrorIs(t, err, ErrGananciaNegativa)
}

func TestAjustarCosto(t *testing.T) {
	c := NewCalculadora(PoliticaPorDefecto())
	base, _ := c.Desde(d("100"), d("50"))

	p, err := c.AjustarCosto(base, d("10"))
	require.NoError(t, err)
	assert.True(t, p.Costo.Equal(d("110")))
	assert.True(t, p.Venta.Equal(d("165")))

	_, err = c.AjustarCosto(base, d("-100"))
	assert.ErrorIs(t, err, ErrAumentoInvalido)
}

func TestPoliticaConfigurable(t *testing.T) {
	c := NewCalculadora(Politica{PuntosMayorista: d("10")})

	p, err := c.Desde(d("100"), d("50"))
	require.NoError(t, err)
	assert.True(t, p.Mayorista.Equal(d("140")))
}
