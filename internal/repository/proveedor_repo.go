package repository

import (
	"context"
	"time"

	"caffito/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProveedorRepository interface {
	Create(ctx context.Context, p *model.Proveedor) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Proveedor, error)
	FindByCUIT(ctx context.Context, cuit string) (*model.Proveedor, error)
	List(ctx context.Context, incluirInactivos bool) ([]model.Proveedor, error)
	Update(ctx context.Context, p *model.Proveedor) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	// MarcarPreciosActualizadosTx stamps the supplier inside the price
	// update transaction.
	MarcarPreciosActualizadosTx(tx *gorm.DB, id uuid.UUID, at time.Time) error
}

type proveedorRepo struct{ db *gorm.DB }

func NewProveedorRepository(db *gorm.DB) ProveedorRepository { return &proveedorRepo{db: db} }

func (r *proveedorRepo) Create(ctx context.Context, p *model.Proveedor) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *proveedorRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Proveedor, error) {
	var p model.Proveedor
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *proveedorRepo) FindByCUIT(ctx context.Context, cuit string) (*model.Proveedor, error) {
	var p model.Proveedor
	if err := r.db.WithContext(ctx).Where("cuit = ?", cuit).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *proveedorRepo) List(ctx context.Context, incluirInactivos bool) ([]model.Proveedor, error) {
	var proveedores []model.Proveedor
	q := r.db.WithContext(ctx).Order("razon_social ASC")
	if !incluirInactivos {
		q = q.Where("activo = true")
	}
	err := q.Find(&proveedores).Error
	return proveedores, err
}

func (r *proveedorRepo) Update(ctx context.Context, p *model.Proveedor) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *proveedorRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Proveedor{}).Where("id = ?", id).Update("activo", false).Error
}

func (r *proveedorRepo) MarcarPreciosActualizadosTx(tx *gorm.DB, id uuid.UUID, at time.Time) error {
	return tx.Model(&model.Proveedor{}).Where("id = ?", id).Update("precios_actualizados_at", at).Error
}
