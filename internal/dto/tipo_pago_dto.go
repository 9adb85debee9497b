package dto

import "github.com/shopspring/decimal"

// ── Tipos de pago ─────────────────────────────────────────────────────────────

type TipoPagoRequest struct {
	Codigo string `json:"codigo" validate:"required,min=2,max=30,lowercase"`
	Nombre string `json:"nombre" validate:"required,min=2,max=60"`
	Activo *bool  `json:"activo"`
}

type TipoPagoResponse struct {
	ID     string `json:"id"`
	Codigo string `json:"codigo"`
	Nombre string `json:"nombre"`
	Activo bool   `json:"activo"`
}

// ── Promociones ───────────────────────────────────────────────────────────────

// PromocionRequest must carry exactly one of Porcentaje and Monto.
type PromocionRequest struct {
	Nombre     string           `json:"nombre"     validate:"required,min=2,max=100"`
	Porcentaje *decimal.Decimal `json:"porcentaje"`
	Monto      *decimal.Decimal `json:"monto"`
	Desde      *string          `json:"desde"      validate:"omitempty,datetime=2006-01-02"`
	Hasta      *string          `json:"hasta"      validate:"omitempty,datetime=2006-01-02"`
	Activo     *bool            `json:"activo"`
}

type PromocionResponse struct {
	ID         string           `json:"id"`
	Nombre     string           `json:"nombre"`
	Porcentaje *decimal.Decimal `json:"porcentaje"`
	Monto      *decimal.Decimal `json:"monto"`
	Desde      *string          `json:"desde"`
	Hasta      *string          `json:"hasta"`
	Activo     bool             `json:"activo"`
	Vigente    bool             `json:"vigente"`
}
