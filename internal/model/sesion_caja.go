package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SesionCaja represents the lifecycle of a cash register session.
// Estado: "abierta" | "cerrada"
type SesionCaja struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PuntoDeVenta int             `gorm:"not null;index"`
	UsuarioID    uuid.UUID       `gorm:"type:uuid;not null"`
	MontoInicial decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// MontoEsperado is set on close: MontoInicial + SUM(renglones)
	MontoEsperado  *decimal.Decimal `gorm:"type:decimal(12,2)"`
	MontoDeclarado *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Desvio         *decimal.Decimal `gorm:"type:decimal(12,2)"`
	DesvioPct      *decimal.Decimal `gorm:"type:decimal(7,2)"`
	Estado         string           `gorm:"type:varchar(20);not null;default:'abierta'"`
	// ClasificacionDesvio: "normal" | "advertencia" | "critico"
	ClasificacionDesvio *string `gorm:"type:varchar(20)"`
	Observaciones       *string
	OpenedAt            time.Time
	ClosedAt            *time.Time

	Renglones []CajaRenglon `gorm:"foreignKey:SesionCajaID"`
}

// CajaRenglon is an immutable entry of the register ledger.
// Tipo: "venta" | "vuelto" | "ingreso_manual" | "egreso_manual" | "anulacion" | "cobro_cuenta_corriente"
// Cancellations add inverse entries; rows are never modified.
type CajaRenglon struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SesionCajaID uuid.UUID       `gorm:"type:uuid;index;not null"`
	Tipo         string          `gorm:"type:varchar(30);not null"`
	MetodoPago   *string         `gorm:"type:varchar(30)"`
	Monto        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Descripcion  string          `gorm:"not null"`
	// ReferenciaID links to the originating factura or ledger entry
	ReferenciaID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt    time.Time
}

func (CajaRenglon) TableName() string { return "caja_renglons" }
