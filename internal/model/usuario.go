package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	RolCajero        = "cajero"
	RolSupervisor    = "supervisor"
	RolAdministrador = "administrador"
)

// Usuario is a login. Email doubles as an alternative username.
type Usuario struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username     string    `gorm:"uniqueIndex;not null"`
	Nombre       string    `gorm:"not null"`
	Email        *string   `gorm:"uniqueIndex"`
	PasswordHash string    `gorm:"not null"`
	Rol          string    `gorm:"type:varchar(20);not null"`
	PuntoDeVenta *int      // nil: any register
	Activo       bool      `gorm:"not null;default:true"`
	UltimoLogin  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
