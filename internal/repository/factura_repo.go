package repository

import (
	"context"

	"caffito/internal/dto"
	"caffito/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FacturaRepository interface {
	// CreateTx inserts the invoice with its renglones and pagos.
	CreateTx(tx *gorm.DB, f *model.Factura) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Factura, error)
	FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Factura, error)
	AnularTx(tx *gorm.DB, id uuid.UUID, motivo string) error
	// SiguienteNumeroTx reserves the next number of the talonario, creating
	// it on first use.
	SiguienteNumeroTx(tx *gorm.DB, tipoComprobante string, puntoDeVenta int) (int64, error)
	List(ctx context.Context, filter dto.FacturaFilter) ([]model.Factura, int64, error)
	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type facturaRepo struct{ db *gorm.DB }

func NewFacturaRepository(db *gorm.DB) FacturaRepository { return &facturaRepo{db: db} }

var facturaOrden = map[string]string{
	"created_at": "created_at",
	"numero":     "numero",
	"total":      "total",
}

func (r *facturaRepo) DB() *gorm.DB { return r.db }

func (r *facturaRepo) CreateTx(tx *gorm.DB, f *model.Factura) error {
	return tx.Omit("Cliente").Create(f).Error
}

func (r *facturaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Factura, error) {
	var f model.Factura
	err := r.db.WithContext(ctx).
		Preload("Renglones", func(db *gorm.DB) *gorm.DB { return db.Order("orden ASC") }).
		Preload("Pagos").Preload("Cliente").
		First(&f, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *facturaRepo) FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Factura, error) {
	var f model.Factura
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&f, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	if err := tx.Where("factura_id = ?", id).Order("orden ASC").Find(&f.Renglones).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("factura_id = ?", id).Find(&f.Pagos).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *facturaRepo) AnularTx(tx *gorm.DB, id uuid.UUID, motivo string) error {
	return tx.Model(&model.Factura{}).Where("id = ?", id).Updates(map[string]interface{}{
		"estado":           "anulada",
		"motivo_anulacion": motivo,
	}).Error
}

func (r *facturaRepo) SiguienteNumeroTx(tx *gorm.DB, tipoComprobante string, puntoDeVenta int) (int64, error) {
	var numero int64
	err := tx.Raw(`
		INSERT INTO talonarios (id, tipo_comprobante, punto_de_venta, ultimo_numero, updated_at)
		VALUES (gen_random_uuid(), ?, ?, 1, NOW())
		ON CONFLICT (tipo_comprobante, punto_de_venta)
		DO UPDATE SET ultimo_numero = talonarios.ultimo_numero + 1, updated_at = NOW()
		RETURNING ultimo_numero`, tipoComprobante, puntoDeVenta).Scan(&numero).Error
	return numero, err
}

func (r *facturaRepo) List(ctx context.Context, filter dto.FacturaFilter) ([]model.Factura, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Factura{})
	if filter.ClienteID != "" {
		q = q.Where("cliente_id = ?", filter.ClienteID)
	}
	if filter.SesionCajaID != "" {
		q = q.Where("sesion_caja_id = ?", filter.SesionCajaID)
	}
	if filter.Estado != "" {
		q = q.Where("estado = ?", filter.Estado)
	}
	q = rangoFechas(q, "created_at", filter.Desde, filter.Hasta)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var facturas []model.Factura
	err := paginar(q.Preload("Cliente"), filter.Paginacion, facturaOrden, "created_at DESC").
		Find(&facturas).Error
	return facturas, total, err
}
