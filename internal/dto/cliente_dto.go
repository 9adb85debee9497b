package dto

import "github.com/shopspring/decimal"

// ─── Clientes ────────────────────────────────────────────────────────────────

type CrearClienteRequest struct {
	Nombre          string           `json:"nombre"           validate:"required,min=2,max=150"`
	TipoDocumento   string           `json:"tipo_documento"   validate:"required,oneof=dni cuit cuil pasaporte"`
	NumeroDocumento string           `json:"numero_documento" validate:"required,min=6,max=20"`
	Email           *string          `json:"email"            validate:"omitempty,email"`
	Telefono        *string          `json:"telefono"`
	Direccion       *string          `json:"direccion"`
	LimiteCredito   *decimal.Decimal `json:"limite_credito"`
}

type ActualizarClienteRequest struct {
	Nombre          *string          `json:"nombre"           validate:"omitempty,min=2,max=150"`
	TipoDocumento   *string          `json:"tipo_documento"   validate:"omitempty,oneof=dni cuit cuil pasaporte"`
	NumeroDocumento *string          `json:"numero_documento" validate:"omitempty,min=6,max=20"`
	Email           *string          `json:"email"            validate:"omitempty,email"`
	Telefono        *string          `json:"telefono"`
	Direccion       *string          `json:"direccion"`
	LimiteCredito   *decimal.Decimal `json:"limite_credito"`
	Activo          *bool            `json:"activo"`
}

type ClienteFilter struct {
	Paginacion
	Q string `form:"q"`
}

type ClienteResponse struct {
	ID                string          `json:"id"`
	Nombre            string          `json:"nombre"`
	TipoDocumento     string          `json:"tipo_documento"`
	NumeroDocumento   string          `json:"numero_documento"`
	Email             *string         `json:"email"`
	Telefono          *string         `json:"telefono"`
	Direccion         *string         `json:"direccion"`
	LimiteCredito     decimal.Decimal `json:"limite_credito"`
	EsConsumidorFinal bool            `json:"es_consumidor_final"`
	Activo            bool            `json:"activo"`
}

// ─── Cuenta corriente ────────────────────────────────────────────────────────

type PagoCuentaCorrienteRequest struct {
	SesionCajaID string          `json:"sesion_caja_id" validate:"required,uuid"`
	Monto        decimal.Decimal `json:"monto"          validate:"required,gt=0"`
	MetodoPago   string          `json:"metodo_pago"    validate:"required,oneof=efectivo debito tarjeta_credito transferencia"`
	Descripcion  string          `json:"descripcion"    validate:"omitempty,max=200"`
}

type MovimientoCuentaCorrienteResponse struct {
	ID          string          `json:"id"`
	FacturaID   *string         `json:"factura_id"`
	Debe        decimal.Decimal `json:"debe"`
	Haber       decimal.Decimal `json:"haber"`
	Descripcion string          `json:"descripcion"`
	CreatedAt   string          `json:"created_at"`
}

type SaldoResponse struct {
	ClienteID     string          `json:"cliente_id"`
	Saldo         decimal.Decimal `json:"saldo"`
	LimiteCredito decimal.Decimal `json:"limite_credito"`
	Disponible    decimal.Decimal `json:"disponible"`
}
