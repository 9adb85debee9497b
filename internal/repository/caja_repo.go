package repository

import (
	"context"

	"caffito/internal/dto"
	"caffito/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CajaRepository interface {
	CreateSesion(ctx context.Context, s *model.SesionCaja) error
	FindSesionAbiertaPorPDV(ctx context.Context, puntoDeVenta int) (*model.SesionCaja, error)
	FindSesionByID(ctx context.Context, id uuid.UUID) (*model.SesionCaja, error)
	ListSesiones(ctx context.Context, filter dto.CajaFilter) ([]model.SesionCaja, int64, error)
	UpdateSesion(ctx context.Context, s *model.SesionCaja) error
	CreateRenglon(ctx context.Context, m *model.CajaRenglon) error
	ListRenglones(ctx context.Context, sesionCajaID uuid.UUID) ([]model.CajaRenglon, error)
	// SumRenglonesByMetodo returns the signed total of the session's ledger per
	// payment method. Renglones without a method are not included.
	SumRenglonesByMetodo(ctx context.Context, sesionCajaID uuid.UUID) (map[string]decimal.Decimal, error)

	// FindSesionAbiertaTx locks the session row so a concurrent close waits
	// for the sale that is being written.
	FindSesionAbiertaTx(tx *gorm.DB, id uuid.UUID) (*model.SesionCaja, error)
	CreateRenglonTx(tx *gorm.DB, m *model.CajaRenglon) error
}

type cajaRepo struct{ db *gorm.DB }

func NewCajaRepository(db *gorm.DB) CajaRepository { return &cajaRepo{db: db} }

var sesionOrden = map[string]string{
	"opened_at":      "opened_at",
	"closed_at":      "closed_at",
	"punto_de_venta": "punto_de_venta",
}

func (r *cajaRepo) CreateSesion(ctx context.Context, s *model.SesionCaja) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(s).Error
}

func (r *cajaRepo) FindSesionAbiertaPorPDV(ctx context.Context, puntoDeVenta int) (*model.SesionCaja, error) {
	var s model.SesionCaja
	err := r.db.WithContext(ctx).Where("punto_de_venta = ? AND estado = 'abierta'", puntoDeVenta).First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *cajaRepo) FindSesionByID(ctx context.Context, id uuid.UUID) (*model.SesionCaja, error) {
	var s model.SesionCaja
	err := r.db.WithContext(ctx).
		Preload("Renglones", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		First(&s, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *cajaRepo) ListSesiones(ctx context.Context, filter dto.CajaFilter) ([]model.SesionCaja, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.SesionCaja{})
	if filter.PuntoDeVenta > 0 {
		q = q.Where("punto_de_venta = ?", filter.PuntoDeVenta)
	}
	if filter.Estado != "" {
		q = q.Where("estado = ?", filter.Estado)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var sesiones []model.SesionCaja
	err := paginar(q, filter.Paginacion, sesionOrden, "opened_at DESC").Find(&sesiones).Error
	return sesiones, total, err
}

func (r *cajaRepo) UpdateSesion(ctx context.Context, s *model.SesionCaja) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(s).Error
}

func (r *cajaRepo) CreateRenglon(ctx context.Context, m *model.CajaRenglon) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *cajaRepo) ListRenglones(ctx context.Context, sesionCajaID uuid.UUID) ([]model.CajaRenglon, error) {
	var renglones []model.CajaRenglon
	err := r.db.WithContext(ctx).Where("sesion_caja_id = ?", sesionCajaID).Order("created_at ASC").Find(&renglones).Error
	return renglones, err
}

func (r *cajaRepo) SumRenglonesByMetodo(ctx context.Context, sesionCajaID uuid.UUID) (map[string]decimal.Decimal, error) {
	var filas []struct {
		MetodoPago string
		Total      decimal.Decimal
	}
	err := r.db.WithContext(ctx).Model(&model.CajaRenglon{}).
		Select("metodo_pago, COALESCE(SUM(monto), 0) AS total").
		Where("sesion_caja_id = ? AND metodo_pago IS NOT NULL", sesionCajaID).
		Group("metodo_pago").
		Scan(&filas).Error
	if err != nil {
		return nil, err
	}
	totales := make(map[string]decimal.Decimal, len(filas))
	for _, f := range filas {
		totales[f.MetodoPago] = f.Total
	}
	return totales, nil
}

func (r *cajaRepo) FindSesionAbiertaTx(tx *gorm.DB, id uuid.UUID) (*model.SesionCaja, error) {
	var s model.SesionCaja
	err := tx.Clauses(clause.Locking{Strength: "SHARE"}).
		Where("id = ? AND estado = 'abierta'", id).First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *cajaRepo) CreateRenglonTx(tx *gorm.DB, m *model.CajaRenglon) error {
	return tx.Create(m).Error
}
