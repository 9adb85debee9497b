package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TipoPago is a payment method. Codigo drives behaviour: "tarjeta_credito"
// adds card interest, "cuenta_corriente" charges the client's account.
type TipoPago struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Codigo    string    `gorm:"type:varchar(30);uniqueIndex;not null"`
	Nombre    string    `gorm:"not null"`
	Activo    bool      `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (TipoPago) TableName() string { return "tipo_pagos" }

// Promocion is a discount applicable at checkout. Exactly one of Porcentaje
// and Monto is set.
type Promocion struct {
	ID         uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre     string           `gorm:"not null"`
	Porcentaje *decimal.Decimal `gorm:"type:decimal(5,2)"`
	Monto      *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Desde      *time.Time
	Hasta      *time.Time
	Activo     bool `gorm:"not null;default:true"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (Promocion) TableName() string { return "promociones" }

// Vigente reports whether the promotion can be applied at t.
func (p *Promocion) Vigente(t time.Time) bool {
	if !p.Activo {
		return false
	}
	if p.Desde != nil && t.Before(*p.Desde) {
		return false
	}
	if p.Hasta != nil && t.After(*p.Hasta) {
		return false
	}
	return true
}
