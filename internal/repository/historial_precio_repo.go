package repository

import (
	"context"

	"caffito/internal/dto"
	"caffito/internal/model"

	"gorm.io/gorm"
)

type HistorialPrecioRepository interface {
	CreateTx(tx *gorm.DB, h *model.HistorialPrecio) error
	List(ctx context.Context, filter dto.HistorialFilter) ([]model.HistorialPrecio, int64, error)
}

type historialPrecioRepository struct{ db *gorm.DB }

func NewHistorialPrecioRepository(db *gorm.DB) HistorialPrecioRepository {
	return &historialPrecioRepository{db: db}
}

var historialOrden = map[string]string{
	"created_at": "created_at",
	"motivo":     "motivo",
}

func (r *historialPrecioRepository) CreateTx(tx *gorm.DB, h *model.HistorialPrecio) error {
	return tx.Omit("Producto", "Proveedor").Create(h).Error
}

// List returns price-change records, newest first by default (append-only
// table, so this reflects natural insert order).
func (r *historialPrecioRepository) List(ctx context.Context, filter dto.HistorialFilter) ([]model.HistorialPrecio, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.HistorialPrecio{})
	if filter.ProductoID != "" {
		q = q.Where("producto_id = ?", filter.ProductoID)
	}
	if filter.ProveedorID != "" {
		q = q.Where("proveedor_id = ?", filter.ProveedorID)
	}
	if filter.Motivo != "" {
		q = q.Where("motivo = ?", filter.Motivo)
	}
	q = rangoFechas(q, "created_at", filter.Desde, filter.Hasta)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []model.HistorialPrecio
	err := paginar(q.Preload("Producto").Preload("Proveedor"), filter.Paginacion, historialOrden, "created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
