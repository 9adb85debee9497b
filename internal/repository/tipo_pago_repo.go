package repository

import (
	"context"

	"caffito/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TipoPagoRepository interface {
	Create(ctx context.Context, t *model.TipoPago) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.TipoPago, error)
	FindByCodigo(ctx context.Context, codigo string) (*model.TipoPago, error)
	List(ctx context.Context, incluirInactivos bool) ([]model.TipoPago, error)
	Update(ctx context.Context, t *model.TipoPago) error
}

type tipoPagoRepo struct{ db *gorm.DB }

func NewTipoPagoRepository(db *gorm.DB) TipoPagoRepository { return &tipoPagoRepo{db: db} }

func (r *tipoPagoRepo) Create(ctx context.Context, t *model.TipoPago) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *tipoPagoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.TipoPago, error) {
	var t model.TipoPago
	if err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *tipoPagoRepo) FindByCodigo(ctx context.Context, codigo string) (*model.TipoPago, error) {
	var t model.TipoPago
	if err := r.db.WithContext(ctx).Where("codigo = ?", codigo).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *tipoPagoRepo) List(ctx context.Context, incluirInactivos bool) ([]model.TipoPago, error) {
	var tipos []model.TipoPago
	q := r.db.WithContext(ctx).Order("nombre ASC")
	if !incluirInactivos {
		q = q.Where("activo = true")
	}
	err := q.Find(&tipos).Error
	return tipos, err
}

func (r *tipoPagoRepo) Update(ctx context.Context, t *model.TipoPago) error {
	return r.db.WithContext(ctx).Save(t).Error
}

type PromocionRepository interface {
	Create(ctx context.Context, p *model.Promocion) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Promocion, error)
	List(ctx context.Context, soloActivas bool) ([]model.Promocion, error)
	Update(ctx context.Context, p *model.Promocion) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type promocionRepo struct{ db *gorm.DB }

func NewPromocionRepository(db *gorm.DB) PromocionRepository { return &promocionRepo{db: db} }

func (r *promocionRepo) Create(ctx context.Context, p *model.Promocion) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *promocionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Promocion, error) {
	var p model.Promocion
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *promocionRepo) List(ctx context.Context, soloActivas bool) ([]model.Promocion, error) {
	var promos []model.Promocion
	q := r.db.WithContext(ctx).Order("nombre ASC")
	if soloActivas {
		q = q.Where("activo = true")
	}
	err := q.Find(&promos).Error
	return promos, err
}

func (r *promocionRepo) Update(ctx context.Context, p *model.Promocion) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *promocionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Promocion{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
