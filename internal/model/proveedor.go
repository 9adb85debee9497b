package model

import (
	"time"

	"github.com/google/uuid"
)

// Proveedor is a supplier. Its price records live in ProductoProveedor;
// PreciosActualizadosAt marks the last bulk update or list import.
type Proveedor struct {
	ID                    uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RazonSocial           string    `gorm:"not null"`
	CUIT                  string    `gorm:"column:cuit;uniqueIndex;not null"`
	Contacto              *string
	Telefono              *string
	Email                 *string
	Direccion             *string
	CondicionPago         *string
	Activo                bool `gorm:"not null;default:true;index"`
	PreciosActualizadosAt *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

func (Proveedor) TableName() string { return "proveedores" }
