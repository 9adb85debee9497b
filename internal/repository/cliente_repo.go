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

type ClienteRepository interface {
	Create(ctx context.Context, c *model.Cliente) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Cliente, error)
	FindConsumidorFinal(ctx context.Context) (*model.Cliente, error)
	List(ctx context.Context, filter dto.ClienteFilter) ([]model.Cliente, int64, error)
	Update(ctx context.Context, c *model.Cliente) error

	// FindByIDForUpdateTx serialises ledger writes for one client.
	FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Cliente, error)
	DB() *gorm.DB
}

type clienteRepo struct{ db *gorm.DB }

func NewClienteRepository(db *gorm.DB) ClienteRepository { return &clienteRepo{db: db} }

func (r *clienteRepo) DB() *gorm.DB { return r.db }

var clienteOrden = map[string]string{
	"nombre":           "nombre",
	"numero_documento": "numero_documento",
	"created_at":       "created_at",
}

func (r *clienteRepo) Create(ctx context.Context, c *model.Cliente) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *clienteRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Cliente, error) {
	var c model.Cliente
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *clienteRepo) FindConsumidorFinal(ctx context.Context) (*model.Cliente, error) {
	var c model.Cliente
	if err := r.db.WithContext(ctx).Where("es_consumidor_final = true").First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *clienteRepo) List(ctx context.Context, filter dto.ClienteFilter) ([]model.Cliente, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Cliente{}).Where("activo = true")
	if filter.Q != "" {
		patron := contiene(filter.Q)
		q = q.Where("(nombre ILIKE ? OR numero_documento ILIKE ?)", patron, patron)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var clientes []model.Cliente
	err := paginar(q, filter.Paginacion, clienteOrden, "nombre ASC").Find(&clientes).Error
	return clientes, total, err
}

func (r *clienteRepo) Update(ctx context.Context, c *model.Cliente) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *clienteRepo) FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Cliente, error) {
	var c model.Cliente
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&c, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ── Cuenta corriente ──────────────────────────────────────────────────────────

type CuentaCorrienteRepository interface {
	CreateTx(tx *gorm.DB, m *model.MovimientoCuentaCorriente) error
	// SaldoTx is Σdebe − Σhaber for the client, read inside tx.
	SaldoTx(tx *gorm.DB, clienteID uuid.UUID) (decimal.Decimal, error)
	Saldo(ctx context.Context, clienteID uuid.UUID) (decimal.Decimal, error)
	List(ctx context.Context, clienteID uuid.UUID, p dto.Paginacion) ([]model.MovimientoCuentaCorriente, int64, error)
}

type cuentaCorrienteRepo struct{ db *gorm.DB }

func NewCuentaCorrienteRepository(db *gorm.DB) CuentaCorrienteRepository {
	return &cuentaCorrienteRepo{db: db}
}

func (r *cuentaCorrienteRepo) CreateTx(tx *gorm.DB, m *model.MovimientoCuentaCorriente) error {
	return tx.Omit("Cliente").Create(m).Error
}

func saldo(q *gorm.DB, clienteID uuid.UUID) (decimal.Decimal, error) {
	var s decimal.Decimal
	err := q.Model(&model.MovimientoCuentaCorriente{}).
		Select("COALESCE(SUM(debe) - SUM(haber), 0)").
		Where("cliente_id = ?", clienteID).
		Scan(&s).Error
	return s, err
}

func (r *cuentaCorrienteRepo) SaldoTx(tx *gorm.DB, clienteID uuid.UUID) (decimal.Decimal, error) {
	return saldo(tx, clienteID)
}

func (r *cuentaCorrienteRepo) Saldo(ctx context.Context, clienteID uuid.UUID) (decimal.Decimal, error) {
	return saldo(r.db.WithContext(ctx), clienteID)
}

func (r *cuentaCorrienteRepo) List(ctx context.Context, clienteID uuid.UUID, p dto.Paginacion) ([]model.MovimientoCuentaCorriente, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.MovimientoCuentaCorriente{}).Where("cliente_id = ?", clienteID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var movs []model.MovimientoCuentaCorriente
	err := paginar(q, p, map[string]string{"created_at": "created_at"}, "created_at DESC").Find(&movs).Error
	return movs, total, err
}
