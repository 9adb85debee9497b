package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cliente is a customer. Exactly one row has EsConsumidorFinal set: the
// anonymous walk-in client every new cart starts with.
type Cliente struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre            string    `gorm:"index;not null"`
	TipoDocumento     string    `gorm:"type:varchar(20);not null;default:'dni'"`
	NumeroDocumento   string    `gorm:"type:varchar(20);index"`
	Email             *string
	Telefono          *string
	Direccion         *string
	LimiteCredito     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	EsConsumidorFinal bool            `gorm:"not null;default:false"`
	Activo            bool            `gorm:"not null;default:true"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (Cliente) TableName() string { return "clientes" }

// MovimientoCuentaCorriente is one ledger entry of a client's credit account.
// Invoices charged to the account are Debe, client payments are Haber.
type MovimientoCuentaCorriente struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ClienteID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	FacturaID   *uuid.UUID      `gorm:"type:uuid;index"`
	Debe        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Haber       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Descripcion string          `gorm:"not null"`
	UsuarioID   *uuid.UUID      `gorm:"type:uuid"`
	CreatedAt   time.Time

	Cliente *Cliente `gorm:"foreignKey:ClienteID"`
}

func (MovimientoCuentaCorriente) TableName() string { return "cuenta_corrientes" }
