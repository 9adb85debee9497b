package dto

import "github.com/shopspring/decimal"

// AjusteStockRequest moves stock by a signed amount (positive = entrada).
type AjusteStockRequest struct {
	Cantidad decimal.Decimal `json:"cantidad" validate:"required"`
	Motivo   string          `json:"motivo"   validate:"required,min=3,max=200"`
}

type MovimientoStockResponse struct {
	ID             string          `json:"id"`
	ProductoID     string          `json:"producto_id"`
	ProductoNombre string          `json:"producto_nombre,omitempty"`
	Tipo           string          `json:"tipo"`
	Cantidad       decimal.Decimal `json:"cantidad"`
	StockAnterior  decimal.Decimal `json:"stock_anterior"`
	StockNuevo     decimal.Decimal `json:"stock_nuevo"`
	Motivo         string          `json:"motivo"`
	ReferenciaID   *string         `json:"referencia_id"`
	CreatedAt      string          `json:"created_at"`
}

type MovimientoStockFilter struct {
	Paginacion
	ProductoID string `form:"producto_id" validate:"omitempty,uuid"`
	Tipo       string `form:"tipo"        validate:"omitempty,oneof=venta ajuste_manual anulacion"`
}
