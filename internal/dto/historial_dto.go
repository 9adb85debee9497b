package dto

import "github.com/shopspring/decimal"

// HistorialPrecioItem is one row in the price-history list.
type HistorialPrecioItem struct {
	ID                 string           `json:"id"`
	ProductoID         string           `json:"producto_id"`
	ProductoNombre     *string          `json:"producto_nombre,omitempty"`
	ProveedorID        *string          `json:"proveedor_id,omitempty"`
	ProveedorNombre    *string          `json:"proveedor_nombre,omitempty"`
	CostoAntes         decimal.Decimal  `json:"costo_antes"`
	CostoDespues       decimal.Decimal  `json:"costo_despues"`
	GananciaAntes      decimal.Decimal  `json:"ganancia_antes"`
	GananciaDespues    decimal.Decimal  `json:"ganancia_despues"`
	VentaAntes         decimal.Decimal  `json:"venta_antes"`
	VentaDespues       decimal.Decimal  `json:"venta_despues"`
	PorcentajeAplicado *decimal.Decimal `json:"porcentaje_aplicado,omitempty"`
	Motivo             string           `json:"motivo"`
	CreatedAt          string           `json:"created_at"`
}

type HistorialFilter struct {
	Paginacion
	ProductoID  string `form:"producto_id"  validate:"omitempty,uuid"`
	ProveedorID string `form:"proveedor_id" validate:"omitempty,uuid"`
	Motivo      string `form:"motivo"       validate:"omitempty,oneof=alta manual actualizacion_masiva importacion"`
	Desde       string `form:"desde"        validate:"omitempty,datetime=2006-01-02"`
	Hasta       string `form:"hasta"        validate:"omitempty,datetime=2006-01-02"`
}
