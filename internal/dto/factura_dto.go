package dto

import "github.com/shopspring/decimal"

type FacturaRenglonResponse struct {
	ProductoID  *string          `json:"producto_id"`
	Codigo      *string          `json:"codigo"`
	Detalle     string           `json:"detalle"`
	Cantidad    *int             `json:"cantidad"`
	Peso        *decimal.Decimal `json:"peso"`
	PrecioVenta decimal.Decimal  `json:"precio_venta"`
	Importe     decimal.Decimal  `json:"importe"`
}

type FacturaPagoResponse struct {
	TipoPagoID     string          `json:"tipo_pago_id"`
	TipoPagoCodigo string          `json:"tipo_pago_codigo"`
	TipoPagoNombre string          `json:"tipo_pago_nombre"`
	Monto          decimal.Decimal `json:"monto"`
}

type FacturaResponse struct {
	ID               string                   `json:"id"`
	TipoComprobante  string                   `json:"tipo_comprobante"`
	PuntoDeVenta     int                      `json:"punto_de_venta"`
	Numero           int64                    `json:"numero"`
	NumeroFormateado string                   `json:"numero_formateado"`
	ClienteID        string                   `json:"cliente_id"`
	ClienteNombre    *string                  `json:"cliente_nombre"`
	TipoDocumento    string                   `json:"tipo_documento"`
	NumeroDocumento  string                   `json:"numero_documento"`
	Subtotal         decimal.Decimal          `json:"subtotal"`
	Descuento        decimal.Decimal          `json:"descuento"`
	Interes          decimal.Decimal          `json:"interes"`
	Total            decimal.Decimal          `json:"total"`
	Estado           string                   `json:"estado"`
	Renglones        []FacturaRenglonResponse `json:"renglones"`
	Pagos            []FacturaPagoResponse    `json:"pagos"`
	CreatedAt        string                   `json:"created_at"`
}

type FacturaFilter struct {
	Paginacion
	ClienteID    string `form:"cliente_id"     validate:"omitempty,uuid"`
	SesionCajaID string `form:"sesion_caja_id" validate:"omitempty,uuid"`
	Estado       string `form:"estado"         validate:"omitempty,oneof=emitida anulada"`
	Desde        string `form:"desde"          validate:"omitempty,datetime=2006-01-02"`
	Hasta        string `form:"hasta"          validate:"omitempty,datetime=2006-01-02"`
}

// AnularFacturaRequest cancels an invoice. The inverse caja entries go to
// SesionCajaID, or to the invoice's own session when omitted; either must
// be open.
type AnularFacturaRequest struct {
	Motivo       string  `json:"motivo"         validate:"required,min=3,max=200"`
	SesionCajaID *string `json:"sesion_caja_id" validate:"omitempty,uuid"`
}
