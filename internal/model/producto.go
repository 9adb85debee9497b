package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrSinPrecioActivo is returned for products whose active supplier price
// record is not set; such products cannot be sold.
var ErrSinPrecioActivo = errors.New("el producto no tiene un precio activo")

// Producto is a catalog item. Prices live in its supplier price records;
// ProveedorActivoID names the one the register sells at.
type Producto struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Codigo      string    `gorm:"uniqueIndex;not null"`
	Nombre      string    `gorm:"index;not null"`
	Descripcion *string
	CategoriaID *uuid.UUID `gorm:"type:uuid;index"`
	MarcaID     *uuid.UUID `gorm:"type:uuid;index"`
	// Pesable products are sold by weight; their price is per kg.
	Pesable           bool            `gorm:"not null;default:false"`
	StockActual       decimal.Decimal `gorm:"type:decimal(10,3);not null;default:0"`
	StockMinimo       decimal.Decimal `gorm:"type:decimal(10,3);not null;default:0"`
	ProveedorActivoID *uuid.UUID      `gorm:"type:uuid"`
	Activo            bool            `gorm:"not null;default:true"`
	CreatedAt         time.Time
	UpdatedAt         time.Time

	Categoria          *Categoria          `gorm:"foreignKey:CategoriaID"`
	Marca              *Marca              `gorm:"foreignKey:MarcaID"`
	ProveedorActivo    *ProductoProveedor  `gorm:"foreignKey:ProveedorActivoID"`
	ProductoProveedors []ProductoProveedor `gorm:"foreignKey:ProductoID"`
}

// PrecioActivo returns the active supplier price record.
func (p *Producto) PrecioActivo() (*ProductoProveedor, error) {
	if p.ProveedorActivoID == nil || p.ProveedorActivo == nil {
		return nil, ErrSinPrecioActivo
	}
	return p.ProveedorActivo, nil
}

// StockBajo reports whether stock is at or below the alert threshold.
func (p *Producto) StockBajo() bool {
	return p.StockActual.LessThanOrEqual(p.StockMinimo)
}
