// cmd/seeduser/main.go: crea/actualiza el administrador y los datos base
// (consumidor final y tipos de pago).
// Uso: go run ./cmd/seeduser -username admin -password secreto123
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"time"

	"caffito/internal/config"
	"caffito/internal/infra"
	"caffito/internal/model"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var tiposPago = []model.TipoPago{
	{Codigo: "efectivo", Nombre: "Efectivo"},
	{Codigo: "debito", Nombre: "Tarjeta de debito"},
	{Codigo: "tarjeta_credito", Nombre: "Tarjeta de credito"},
	{Codigo: "transferencia", Nombre: "Transferencia"},
	{Codigo: "cuenta_corriente", Nombre: "Cuenta corriente"},
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	username := flag.String("username", "admin", "usuario administrador")
	password := flag.String("password", "", "password (por defecto SEED_PASSWORD)")
	nombre := flag.String("nombre", "Administrador", "nombre visible")
	flag.Parse()

	if *password == "" {
		*password = os.Getenv("SEED_PASSWORD")
	}
	if len(*password) < 8 {
		log.Fatal().Msg("password must have at least 8 characters (-password or SEED_PASSWORD)")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), 12)
	if err != nil {
		log.Fatal().Err(err).Msg("bcrypt")
	}

	err = db.WithContext(context.Background()).Transaction(func(tx *gorm.DB) error {
		admin := model.Usuario{
			Username: *username, Nombre: *nombre, PasswordHash: string(hash),
			Rol: model.RolAdministrador, Activo: true,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "username"}},
			DoUpdates: clause.AssignmentColumns([]string{"password_hash", "nombre", "rol", "activo"}),
		}).Create(&admin).Error; err != nil {
			return err
		}

		for _, tp := range tiposPago {
			tp.Activo = true
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&tp).Error; err != nil {
				return err
			}
		}

		var cf model.Cliente
		err := tx.Where("es_consumidor_final = ?", true).First(&cf).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			cf = model.Cliente{Nombre: "Consumidor Final", TipoDocumento: "dni", EsConsumidorFinal: true, Activo: true}
			return tx.Create(&cf).Error
		}
		return err
	})
	if err != nil {
		log.Fatal().Err(err).Msg("seed failed")
	}
	log.Info().Str("username", *username).Msg("usuario administrador y datos base listos")
}
