package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Business rule violations returned by services. Handlers map them to HTTP
// status codes; callers match them with errors.Is.
var (
	ErrNoEncontrado  = errors.New("no encontrado")
	ErrDuplicado     = errors.New("ya existe")
	ErrCredenciales  = errors.New("credenciales invalidas")
	ErrTokenInvalido = errors.New("token invalido o expirado")
	ErrInactivo      = errors.New("registro inactivo")
	ErrIDInvalido    = errors.New("identificador invalido")
	ErrMontoNegativo = errors.New("el monto no puede ser negativo")

	ErrCajaYaAbierta           = errors.New("ya existe una caja abierta en este punto de venta")
	ErrCajaNoAbierta           = errors.New("no hay sesion de caja abierta")
	ErrObservacionesRequeridas = errors.New("desvio critico: se requieren observaciones del supervisor")

	ErrEntradaVacia          = errors.New("codigo vacio")
	ErrPromocionNoVigente    = errors.New("la promocion no esta vigente")
	ErrConsumidorFinal       = errors.New("el consumidor final no tiene cuenta corriente")
	ErrLimiteCredito         = errors.New("el saldo excede el limite de credito del cliente")
	ErrFacturaAnulada        = errors.New("la factura ya esta anulada")
	ErrConsumidorFinalUnico  = errors.New("el consumidor final no puede modificarse ni desactivarse")
	ErrPromocionSinDescuento = errors.New("la promocion debe tener porcentaje o monto, no ambos")
	ErrArchivoInvalido       = errors.New("el archivo no es un xlsx valido")
)

// noEncontrado turns gorm.ErrRecordNotFound into ErrNoEncontrado naming what
// was looked up; any other error passes through.
func noEncontrado(err error, que string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", que, ErrNoEncontrado)
	}
	return err
}

// duplicado maps unique-constraint violations to ErrDuplicado. It relies on
// the connection being opened with TranslateError.
func duplicado(err error, que string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%s: %w", que, ErrDuplicado)
	}
	return err
}
