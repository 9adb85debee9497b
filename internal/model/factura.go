package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Factura is a finalized invoice.
// Estado: "emitida" | "anulada"
type Factura struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TipoComprobante string          `gorm:"type:varchar(20);not null;uniqueIndex:idx_factura_numero"`
	PuntoDeVenta    int             `gorm:"not null;uniqueIndex:idx_factura_numero"`
	Numero          int64           `gorm:"not null;uniqueIndex:idx_factura_numero"`
	ClienteID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	TipoDocumento   string          `gorm:"type:varchar(20)"`
	NumeroDocumento string          `gorm:"type:varchar(20)"`
	UsuarioID       uuid.UUID       `gorm:"type:uuid;not null"`
	SesionCajaID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Subtotal        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Descuento       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Interes         decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Total           decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PromocionID     *uuid.UUID      `gorm:"type:uuid"`
	Estado          string          `gorm:"type:varchar(20);not null;default:'emitida'"`
	MotivoAnulacion *string
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Renglones []FacturaRenglon `gorm:"foreignKey:FacturaID"`
	Pagos     []FacturaPago    `gorm:"foreignKey:FacturaID"`
	Cliente   *Cliente         `gorm:"foreignKey:ClienteID"`
}

func (Factura) TableName() string { return "facturas" }

// FacturaRenglon is one persisted invoice line. Cantidad and Peso are
// mutually exclusive, as in the cart.
type FacturaRenglon struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	FacturaID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	Orden       int        `gorm:"not null"`
	ProductoID  *uuid.UUID `gorm:"type:uuid;index"`
	Codigo      *string    `gorm:"type:varchar(50)"`
	Detalle     string     `gorm:"not null"`
	Cantidad    *int
	Peso        *decimal.Decimal `gorm:"type:decimal(10,3)"`
	PrecioVenta decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	Importe     decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
}

func (FacturaRenglon) TableName() string { return "factura_renglons" }

// FacturaPago stores one leg of a split payment.
type FacturaPago struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	FacturaID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	TipoPagoID     uuid.UUID       `gorm:"type:uuid;not null"`
	TipoPagoCodigo string          `gorm:"type:varchar(30);not null"`
	TipoPagoNombre string          `gorm:"not null"`
	Monto          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

func (FacturaPago) TableName() string { return "factura_pagos" }

// Talonario is the numbering sequence of one comprobante type at one
// punto de venta.
type Talonario struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TipoComprobante string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_talonario"`
	PuntoDeVenta    int       `gorm:"not null;uniqueIndex:idx_talonario"`
	UltimoNumero    int64     `gorm:"not null;default:0"`
	UpdatedAt       time.Time
}

func (Talonario) TableName() string { return "talonarios" }
