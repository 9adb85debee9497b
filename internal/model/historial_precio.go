package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// HistorialPrecio records every change to a supplier price record.
// Rows are never updated or deleted.
type HistorialPrecio struct {
	ID                  uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductoID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductoProveedorID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProveedorID         *uuid.UUID      `gorm:"type:uuid;index"`
	CostoAntes          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CostoDespues        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	GananciaAntes       decimal.Decimal `gorm:"type:decimal(8,2);not null"`
	GananciaDespues     decimal.Decimal `gorm:"type:decimal(8,2);not null"`
	VentaAntes          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	VentaDespues        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// PorcentajeAplicado is set only for bulk supplier updates.
	PorcentajeAplicado *decimal.Decimal `gorm:"type:decimal(6,2)"`
	Motivo             string           `gorm:"not null;default:'manual'"` // alta | manual | actualizacion_masiva | importacion
	UsuarioID          *uuid.UUID       `gorm:"type:uuid"`
	CreatedAt          time.Time

	Producto  *Producto  `gorm:"foreignKey:ProductoID"`
	Proveedor *Proveedor `gorm:"foreignKey:ProveedorID"`
}

func (HistorialPrecio) TableName() string { return "historial_precios" }
