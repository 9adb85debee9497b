package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// PrecioProveedorRequest creates a supplier price record. When PrecioVenta is
// set the margin is derived from it; otherwise PorcentajeGanancia is used.
type PrecioProveedorRequest struct {
	ProveedorID        *string          `json:"proveedor_id"        validate:"omitempty,uuid"`
	CodigoProveedor    *string          `json:"codigo_proveedor"    validate:"omitempty,max=50"`
	PrecioCosto        decimal.Decimal  `json:"precio_costo"        validate:"min=0"`
	PorcentajeGanancia decimal.Decimal  `json:"porcentaje_ganancia" validate:"min=0"`
	PrecioVenta        *decimal.Decimal `json:"precio_venta"`
	Activar            bool             `json:"activar"`
}

type CrearProductoRequest struct {
	Codigo      string                 `json:"codigo"       validate:"required,min=1,max=50"`
	Nombre      string                 `json:"nombre"       validate:"required,min=2,max=120"`
	Descripcion *string                `json:"descripcion"`
	CategoriaID *string                `json:"categoria_id" validate:"omitempty,uuid"`
	MarcaID     *string                `json:"marca_id"     validate:"omitempty,uuid"`
	Pesable     bool                   `json:"pesable"`
	StockActual decimal.Decimal        `json:"stock_actual" validate:"min=0"`
	StockMinimo decimal.Decimal        `json:"stock_minimo" validate:"min=0"`
	Precio      PrecioProveedorRequest `json:"precio"       validate:"required"`
}

type ActualizarProductoRequest struct {
	Codigo      *string          `json:"codigo"       validate:"omitempty,min=1,max=50"`
	Nombre      *string          `json:"nombre"       validate:"omitempty,min=2,max=120"`
	Descripcion *string          `json:"descripcion"`
	CategoriaID *string          `json:"categoria_id" validate:"omitempty,uuid"`
	MarcaID     *string          `json:"marca_id"     validate:"omitempty,uuid"`
	Pesable     *bool            `json:"pesable"`
	StockMinimo *decimal.Decimal `json:"stock_minimo"`
}

// EditarPrecioRequest edits one side of the cost/margin/sale triangle of a
// price record. Fields are applied in order costo, ganancia, venta.
type EditarPrecioRequest struct {
	ProductoProveedorID string           `json:"producto_proveedor_id" validate:"required,uuid"`
	PrecioCosto         *decimal.Decimal `json:"precio_costo"`
	PorcentajeGanancia  *decimal.Decimal `json:"porcentaje_ganancia"`
	PrecioVenta         *decimal.Decimal `json:"precio_venta"`
}

type ProveedorActivoRequest struct {
	ProductoProveedorID string `json:"producto_proveedor_id" validate:"required,uuid"`
}

// ─── Filter ──────────────────────────────────────────────────────────────────

type ProductoFilter struct {
	Paginacion
	Q           string `form:"q"`
	CategoriaID string `form:"categoria_id" validate:"omitempty,uuid"`
	MarcaID     string `form:"marca_id"     validate:"omitempty,uuid"`
	ProveedorID string `form:"proveedor_id" validate:"omitempty,uuid"`
	Pesable     *bool  `form:"pesable"`
	Inactivos   bool   `form:"inactivos"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductoProveedorResponse struct {
	ID                 string          `json:"id"`
	ProveedorID        *string         `json:"proveedor_id"`
	ProveedorNombre    *string         `json:"proveedor_nombre"`
	CodigoProveedor    *string         `json:"codigo_proveedor"`
	PrecioCosto        decimal.Decimal `json:"precio_costo"`
	PorcentajeGanancia decimal.Decimal `json:"porcentaje_ganancia"`
	PrecioVenta        decimal.Decimal `json:"precio_venta"`
	PrecioMayorista    decimal.Decimal `json:"precio_mayorista"`
	Activo             bool            `json:"activo"`
}

type ProductoResponse struct {
	ID              string                      `json:"id"`
	Codigo          string                      `json:"codigo"`
	Nombre          string                      `json:"nombre"`
	Descripcion     *string                     `json:"descripcion"`
	CategoriaID     *string                     `json:"categoria_id"`
	Categoria       *string                     `json:"categoria"`
	MarcaID         *string                     `json:"marca_id"`
	Marca           *string                     `json:"marca"`
	Pesable         bool                        `json:"pesable"`
	StockActual     decimal.Decimal             `json:"stock_actual"`
	StockMinimo     decimal.Decimal             `json:"stock_minimo"`
	StockBajo       bool                        `json:"stock_bajo"`
	Activo          bool                        `json:"activo"`
	PrecioVenta     *decimal.Decimal            `json:"precio_venta"`
	PrecioMayorista *decimal.Decimal            `json:"precio_mayorista"`
	Proveedores     []ProductoProveedorResponse `json:"proveedores"`
}

// ConsultaPreciosResponse is returned by the public price check endpoint (no auth required).
type ConsultaPreciosResponse struct {
	Codigo          string          `json:"codigo"`
	Nombre          string          `json:"nombre"`
	Marca           *string         `json:"marca"`
	Pesable         bool            `json:"pesable"`
	PrecioVenta     decimal.Decimal `json:"precio_venta"`
	PrecioMayorista decimal.Decimal `json:"precio_mayorista"`
}

type AlertaStockResponse struct {
	ProductoID  string          `json:"producto_id"`
	Codigo      string          `json:"codigo"`
	Nombre      string          `json:"nombre"`
	StockActual decimal.Decimal `json:"stock_actual"`
	StockMinimo decimal.Decimal `json:"stock_minimo"`
}

// ─── Labels ──────────────────────────────────────────────────────────────────

type EtiquetaItem struct {
	ProductoID string `json:"producto_id" validate:"required,uuid"`
	Cantidad   int    `json:"cantidad"    validate:"required,min=1,max=500"`
}

type EtiquetasRequest struct {
	Items []EtiquetaItem `json:"items" validate:"required,min=1,dive"`
}
