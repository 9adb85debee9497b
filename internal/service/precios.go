package service

import (
	"fmt"

	"caffito/internal/model"
	"caffito/internal/pricing"
	"caffito/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Motivos of a price history row.
const (
	MotivoAlta                = "alta"
	MotivoManual              = "manual"
	MotivoActualizacionMasiva = "actualizacion_masiva"
	MotivoImportacion         = "importacion"
)

func preciosDe(pp *model.ProductoProveedor) pricing.Precios {
	return pricing.Precios{
		Costo:     pp.PrecioCosto,
		Ganancia:  pp.PorcentajeGanancia,
		Venta:     pp.PrecioVenta,
		Mayorista: pp.PrecioMayorista,
	}
}

func aplicarPrecios(pp *model.ProductoProveedor, p pricing.Precios) {
	pp.PrecioCosto = p.Costo
	pp.PorcentajeGanancia = p.Ganancia
	pp.PrecioVenta = p.Venta
	pp.PrecioMayorista = p.Mayorista
}

// guardarPrecioTx updates the price record and appends its history row.
func guardarPrecioTx(
	tx *gorm.DB,
	productos repository.ProductoRepository,
	historial repository.HistorialPrecioRepository,
	pp *model.ProductoProveedor,
	nuevos pricing.Precios,
	motivo string,
	porcentaje *decimal.Decimal,
	usuarioID *uuid.UUID,
) error {
	antes := preciosDe(pp)
	aplicarPrecios(pp, nuevos)
	if err := productos.UpdatePrecioTx(tx, pp); err != nil {
		return fmt.Errorf("actualizar precio: %w", err)
	}
	return historial.CreateTx(tx, &model.HistorialPrecio{
		ProductoID:          pp.ProductoID,
		ProductoProveedorID: pp.ID,
		ProveedorID:         pp.ProveedorID,
		CostoAntes:          antes.Costo,
		CostoDespues:        nuevos.Costo,
		GananciaAntes:       antes.Ganancia,
		GananciaDespues:     nuevos.Ganancia,
		VentaAntes:          antes.Venta,
		VentaDespues:        nuevos.Venta,
		PorcentajeAplicado:  porcentaje,
		Motivo:              motivo,
		UsuarioID:           usuarioID,
	})
}

func parseOptUUID(s *string) (*uuid.UUID, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", *s, ErrIDInvalido)
	}
	return &id, nil
}

func optUUIDString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func usuarioRef(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}
