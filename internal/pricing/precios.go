// Package pricing keeps cost, margin, retail and wholesale prices of a
// supplier price record consistent with each other.
package pricing

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrCostoCero        = errors.New("el costo es cero: no se puede derivar la ganancia")
	ErrCostoNegativo    = errors.New("el costo no puede ser negativo")
	ErrGananciaNegativa = errors.New("la ganancia no puede ser negativa")
	ErrVentaNegativa    = errors.New("el precio de venta no puede ser negativo")
	ErrAumentoInvalido  = errors.New("el porcentaje de ajuste debe ser mayor a -100")
)

var cien = decimal.NewFromInt(100)

// Politica holds the configurable part of the price rules.
type Politica struct {
	// PuntosMayorista is subtracted from the retail margin to obtain the
	// wholesale margin.
	PuntosMayorista decimal.Decimal
}

// PoliticaPorDefecto returns the 5-point wholesale rule.
func PoliticaPorDefecto() Politica {
	return Politica{PuntosMayorista: decimal.NewFromInt(5)}
}

// Precios is one consistent set of prices. Build it with Calculadora; the
// zero value has every field at zero and is consistent too.
type Precios struct {
	Costo     decimal.Decimal `json:"costo"`
	Ganancia  decimal.Decimal `json:"ganancia"`
	Venta     decimal.Decimal `json:"venta"`
	Mayorista decimal.Decimal `json:"mayorista"`
}

type Calculadora struct {
	politica Politica
}

func NewCalculadora(p Politica) *Calculadora {
	return &Calculadora{politica: p}
}

// Desde derives retail and wholesale prices from cost and margin.
func (c *Calculadora) Desde(costo, ganancia decimal.Decimal) (Precios, error) {
	if costo.IsNegative() {
		return Precios{}, ErrCostoNegativo
	}
	if ganancia.IsNegative() {
		return Precios{}, ErrGananciaNegativa
	}
	return Precios{
		Costo:     costo,
		Ganancia:  ganancia,
		Venta:     venta(costo, ganancia),
		Mayorista: c.Mayorista(costo, ganancia),
	}, nil
}

// ConCosto replaces the cost and keeps the margin.
func (c *Calculadora) ConCosto(p Precios, costo decimal.Decimal) (Precios, error) {
	return c.Desde(costo, p.Ganancia)
}

// ConGanancia replaces the margin and keeps the cost.
func (c *Calculadora) ConGanancia(p Precios, ganancia decimal.Decimal) (Precios, error) {
	return c.Desde(p.Costo, ganancia)
}

// ConVenta fixes the retail price and back-derives the margin. The cost is
// never touched.
func (c *Calculadora) ConVenta(p Precios, v decimal.Decimal) (Precios, error) {
	if v.IsNegative() {
		return Precios{}, ErrVentaNegativa
	}
	if p.Costo.IsZero() {
		return Precios{}, ErrCostoCero
	}
	ganancia := v.Div(p.Costo).Sub(decimal.NewFromInt(1)).Mul(cien).Round(2)
	if ganancia.IsNegative() {
		return Precios{}, ErrGananciaNegativa
	}
	return Precios{
		Costo:     p.Costo,
		Ganancia:  ganancia,
		Venta:     v,
		Mayorista: c.Mayorista(p.Costo, ganancia),
	}, nil
}

// AjustarCosto applies a percentage change to the cost, e.g. a supplier's
// price list update, keeping the margin.
func (c *Calculadora) AjustarCosto(p Precios, porcentaje decimal.Decimal) (Precios, error) {
	if porcentaje.LessThanOrEqual(cien.Neg()) {
		return Precios{}, ErrAumentoInvalido
	}
	costo := p.Costo.Mul(cien.Add(porcentaje)).Div(cien).Round(2)
	return c.ConCosto(p, costo)
}

// Mayorista is always recomputed from cost, never from the retail price.
func (c *Calculadora) Mayorista(costo, ganancia decimal.Decimal) decimal.Decimal {
	g := decimal.Max(decimal.Zero, ganancia.Sub(c.politica.PuntosMayorista))
	return venta(costo, g)
}

func venta(costo, ganancia decimal.Decimal) decimal.Decimal {
	return costo.Mul(cien.Add(ganancia)).Div(cien).Round(2)
}
