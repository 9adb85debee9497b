package dto

import (
	"caffito/internal/pos"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type EscanearRequest struct {
	Codigo string `json:"codigo" validate:"required,min=1,max=64"`
}

// AgregarRenglonRequest adds a catalog product (by ProductoID, with Cantidad
// or Peso) or, without ProductoID, a free-text item with Detalle and Precio.
type AgregarRenglonRequest struct {
	ProductoID *string          `json:"producto_id" validate:"omitempty,uuid"`
	Cantidad   int              `json:"cantidad"    validate:"omitempty,min=1"`
	Peso       *decimal.Decimal `json:"peso"`
	Detalle    string           `json:"detalle"     validate:"omitempty,max=120"`
	Precio     *decimal.Decimal `json:"precio"`
}

type CambiarCantidadRequest struct {
	Cantidad int `json:"cantidad" validate:"required,min=1"`
}

type DescuentoRequest struct {
	Monto decimal.Decimal `json:"monto" validate:"min=0"`
}

type PromocionCarritoRequest struct {
	PromocionID string `json:"promocion_id" validate:"required,uuid"`
}

type MetodoPagoRequest struct {
	TipoPagoID string `json:"tipo_pago_id" validate:"required,uuid"`
}

type ClienteCarritoRequest struct {
	ClienteID string `json:"cliente_id" validate:"required,uuid"`
}

type ComprobanteRequest struct {
	Tipo            string `json:"tipo"             validate:"required,oneof=factura_a factura_b factura_c ticket"`
	TipoDocumento   string `json:"tipo_documento"   validate:"required,oneof=consumidor_final dni cuit cuil pasaporte"`
	NumeroDocumento string `json:"numero_documento" validate:"max=20"`
}

type AgregarPagoRequest struct {
	TipoPagoID string          `json:"tipo_pago_id" validate:"required,uuid"`
	Monto      decimal.Decimal `json:"monto"        validate:"required,gt=0"`
}

type FinalizarRequest struct {
	SesionCajaID string `json:"sesion_caja_id" validate:"required,uuid"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type RenglonCarritoResponse struct {
	pos.Renglon
	Indice  int             `json:"indice"`
	Importe decimal.Decimal `json:"importe"`
}

type CarritoResponse struct {
	ID             string                   `json:"id"`
	ClienteID      string                   `json:"cliente_id"`
	Comprobante    pos.Comprobante          `json:"comprobante"`
	Renglones      []RenglonCarritoResponse `json:"renglones"`
	Pagos          []pos.Pago               `json:"pagos"`
	MetodoPago     string                   `json:"metodo_pago"`
	Promocion      *pos.Promocion           `json:"promocion"`
	Subtotal       decimal.Decimal          `json:"subtotal"`
	Descuento      decimal.Decimal          `json:"descuento"`
	Interes        decimal.Decimal          `json:"interes"`
	Total          decimal.Decimal          `json:"total"`
	TotalPagado    decimal.Decimal          `json:"total_pagado"`
	Restante       decimal.Decimal          `json:"restante"`
	PuedeFinalizar bool                     `json:"puede_finalizar"`
}

// Resultados of a scan.
const (
	EscaneoAgregado      = "agregado"
	EscaneoCandidatos    = "candidatos"
	EscaneoSinResultados = "sin_resultados"
)

type EscaneoResponse struct {
	Resultado  string             `json:"resultado"`
	Carrito    CarritoResponse    `json:"carrito"`
	Candidatos []ProductoResponse `json:"candidatos,omitempty"`
}

type FinalizarResponse struct {
	Factura FacturaResponse `json:"factura"`
	Carrito CarritoResponse `json:"carrito"`
}

// NewCarritoResponse maps the in-progress invoice with its derived values.
func NewCarritoResponse(f *pos.Factura) CarritoResponse {
	renglones := make([]RenglonCarritoResponse, len(f.Renglones))
	for i, r := range f.Renglones {
		renglones[i] = RenglonCarritoResponse{Renglon: r, Indice: i, Importe: r.Importe()}
	}
	pagos := f.Pagos
	if pagos == nil {
		pagos = []pos.Pago{}
	}
	return CarritoResponse{
		ID:             f.ID.String(),
		ClienteID:      f.ClienteID.String(),
		Comprobante:    f.Comprobante,
		Renglones:      renglones,
		Pagos:          pagos,
		MetodoPago:     f.MetodoPago,
		Promocion:      f.Promocion,
		Subtotal:       f.Subtotal,
		Descuento:      f.Descuento,
		Interes:        f.Interes,
		Total:          f.Total,
		TotalPagado:    f.TotalPagado(),
		Restante:       f.Restante(),
		PuedeFinalizar: f.PuedeFinalizar(),
	}
}
