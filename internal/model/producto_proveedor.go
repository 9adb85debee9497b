package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductoProveedor is one supplier's price record for a product. Cost,
// margin, sale and wholesale prices are kept consistent by the pricing
// package; the row never stores a value it did not derive.
type ProductoProveedor struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductoID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProveedorID        *uuid.UUID      `gorm:"type:uuid;index"`
	CodigoProveedor    *string         `gorm:"type:varchar(50)"`
	PrecioCosto        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PorcentajeGanancia decimal.Decimal `gorm:"type:decimal(8,2);not null"`
	PrecioVenta        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PrecioMayorista    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt          time.Time
	UpdatedAt          time.Time

	Proveedor *Proveedor `gorm:"foreignKey:ProveedorID"`
	Producto  *Producto  `gorm:"foreignKey:ProductoID"`
}

func (ProductoProveedor) TableName() string { return "producto_proveedors" }
