package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearProveedorRequest struct {
	RazonSocial   string  `json:"razon_social"   validate:"required,min=2,max=150"`
	CUIT          string  `json:"cuit"           validate:"required,min=11,max=13"`
	Contacto      *string `json:"contacto"`
	Telefono      *string `json:"telefono"`
	Email         *string `json:"email"          validate:"omitempty,email"`
	Direccion     *string `json:"direccion"`
	CondicionPago *string `json:"condicion_pago"`
}

type ActualizarProveedorRequest struct {
	RazonSocial   *string `json:"razon_social"   validate:"omitempty,min=2,max=150"`
	Contacto      *string `json:"contacto"`
	Telefono      *string `json:"telefono"`
	Email         *string `json:"email"          validate:"omitempty,email"`
	Direccion     *string `json:"direccion"`
	CondicionPago *string `json:"condicion_pago"`
	Activo        *bool   `json:"activo"`
}

// ActualizacionMasivaRequest adjusts every cost price of a supplier by a
// percentage (negative for a decrease). Preview computes without saving.
type ActualizacionMasivaRequest struct {
	Porcentaje decimal.Decimal `json:"porcentaje" validate:"required,gt=-100,lte=1000"`
	Preview    bool            `json:"preview"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProveedorResponse struct {
	ID                    string  `json:"id"`
	RazonSocial           string  `json:"razon_social"`
	CUIT                  string  `json:"cuit"`
	Contacto              *string `json:"contacto"`
	Telefono              *string `json:"telefono"`
	Email                 *string `json:"email"`
	Direccion             *string `json:"direccion"`
	CondicionPago         *string `json:"condicion_pago"`
	Activo                bool    `json:"activo"`
	PreciosActualizadosAt *string `json:"precios_actualizados_at"` // RFC3339, null until the first price update
}

type PrecioActualizadoItem struct {
	ProductoID   string          `json:"producto_id"`
	Nombre       string          `json:"nombre"`
	CostoAntes   decimal.Decimal `json:"costo_antes"`
	CostoDespues decimal.Decimal `json:"costo_despues"`
	VentaAntes   decimal.Decimal `json:"venta_antes"`
	VentaDespues decimal.Decimal `json:"venta_despues"`
}

type ActualizacionMasivaResponse struct {
	ProveedorID  string                  `json:"proveedor_id"`
	Porcentaje   decimal.Decimal         `json:"porcentaje"`
	Preview      bool                    `json:"preview"`
	Actualizados int                     `json:"actualizados"`
	Items        []PrecioActualizadoItem `json:"items"`
}

// ImportacionFila reports a spreadsheet row that could not be applied.
type ImportacionFila struct {
	Hoja   string `json:"hoja"`
	Fila   int    `json:"fila"`
	Codigo string `json:"codigo"`
	Motivo string `json:"motivo"`
}

// ImportacionResponse summarises a supplier price list import.
type ImportacionResponse struct {
	ProveedorID  string            `json:"proveedor_id"`
	Procesadas   int               `json:"procesadas"`
	Actualizados int               `json:"actualizados"`
	Rechazadas   []ImportacionFila `json:"rechazadas"`
}
