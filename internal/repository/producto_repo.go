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

// ProductoRepository defines the data access contract for products and their
// supplier price records. Services depend on this interface, not on the
// concrete GORM implementation, so they can be tested with in-memory stubs.
type ProductoRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Producto, error)
	// FindByCodigo is an exact, active-only lookup used at the register.
	FindByCodigo(ctx context.Context, codigo string) (*model.Producto, error)
	// Buscar is the case-insensitive substring fallback over name and code.
	Buscar(ctx context.Context, q string, limit int) ([]model.Producto, error)
	List(ctx context.Context, filter dto.ProductoFilter) ([]model.Producto, int64, error)
	ListAll(ctx context.Context, filter dto.ProductoFilter) ([]model.Producto, error)
	ListStockBajo(ctx context.Context) ([]model.Producto, error)
	Update(ctx context.Context, p *model.Producto) error
	SetActivo(ctx context.Context, id uuid.UUID, activo bool) error

	// Price records
	FindPrecio(ctx context.Context, id uuid.UUID) (*model.ProductoProveedor, error)
	ListPreciosByProveedor(ctx context.Context, proveedorID uuid.UUID) ([]model.ProductoProveedor, error)

	// Used inside transactions; callers must pass the tx instance
	CreateTx(tx *gorm.DB, p *model.Producto) error
	FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Producto, error)
	UpdateStockTx(tx *gorm.DB, id uuid.UUID, nuevo decimal.Decimal) error
	CreatePrecioTx(tx *gorm.DB, pp *model.ProductoProveedor) error
	UpdatePrecioTx(tx *gorm.DB, pp *model.ProductoProveedor) error
	SetProveedorActivoTx(tx *gorm.DB, productoID, precioID uuid.UUID) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type productoRepo struct{ db *gorm.DB }

func NewProductoRepository(db *gorm.DB) ProductoRepository { return &productoRepo{db: db} }

var productoOrden = map[string]string{
	"nombre":       "productos.nombre",
	"codigo":       "productos.codigo",
	"stock_actual": "productos.stock_actual",
	"created_at":   "productos.created_at",
}

func (r *productoRepo) DB() *gorm.DB { return r.db }

func (r *productoRepo) conPrecios(q *gorm.DB) *gorm.DB {
	return q.Preload("Categoria").Preload("Marca").
		Preload("ProveedorActivo").
		Preload("ProductoProveedors", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("ProductoProveedors.Proveedor")
}

func (r *productoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Producto, error) {
	var p model.Producto
	err := r.conPrecios(r.db.WithContext(ctx)).First(&p, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productoRepo) FindByCodigo(ctx context.Context, codigo string) (*model.Producto, error) {
	var p model.Producto
	err := r.db.WithContext(ctx).Preload("Marca").Preload("ProveedorActivo").
		Where("codigo = ? AND activo = true", codigo).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productoRepo) Buscar(ctx context.Context, q string, limit int) ([]model.Producto, error) {
	var productos []model.Producto
	patron := contiene(q)
	err := r.db.WithContext(ctx).Preload("Marca").Preload("ProveedorActivo").
		Where("activo = true AND (nombre ILIKE ? OR codigo ILIKE ?)", patron, patron).
		Order("nombre ASC").Limit(limit).Find(&productos).Error
	return productos, err
}

func (r *productoRepo) filtrar(ctx context.Context, filter dto.ProductoFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&model.Producto{})
	if !filter.Inactivos {
		q = q.Where("productos.activo = true")
	}
	if filter.Q != "" {
		patron := contiene(filter.Q)
		q = q.Where("(productos.nombre ILIKE ? OR productos.codigo ILIKE ?)", patron, patron)
	}
	if filter.CategoriaID != "" {
		q = q.Where("productos.categoria_id = ?", filter.CategoriaID)
	}
	if filter.MarcaID != "" {
		q = q.Where("productos.marca_id = ?", filter.MarcaID)
	}
	if filter.Pesable != nil {
		q = q.Where("productos.pesable = ?", *filter.Pesable)
	}
	if filter.ProveedorID != "" {
		q = q.Where("EXISTS (SELECT 1 FROM producto_proveedors pp WHERE pp.producto_id = productos.id AND pp.proveedor_id = ?)", filter.ProveedorID)
	}
	return q
}

func (r *productoRepo) List(ctx context.Context, filter dto.ProductoFilter) ([]model.Producto, int64, error) {
	var total int64
	if err := r.filtrar(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var productos []model.Producto
	q := r.conPrecios(r.filtrar(ctx, filter))
	err := paginar(q, filter.Paginacion, productoOrden, "productos.nombre ASC").Find(&productos).Error
	return productos, total, err
}

func (r *productoRepo) ListAll(ctx context.Context, filter dto.ProductoFilter) ([]model.Producto, error) {
	var productos []model.Producto
	err := r.conPrecios(r.filtrar(ctx, filter)).Order("productos.nombre ASC").Find(&productos).Error
	return productos, err
}

func (r *productoRepo) ListStockBajo(ctx context.Context) ([]model.Producto, error) {
	var productos []model.Producto
	err := r.db.WithContext(ctx).
		Where("activo = true AND stock_actual <= stock_minimo").
		Order("stock_actual ASC").Find(&productos).Error
	return productos, err
}

func (r *productoRepo) Update(ctx context.Context, p *model.Producto) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(p).Error
}

func (r *productoRepo) SetActivo(ctx context.Context, id uuid.UUID, activo bool) error {
	res := r.db.WithContext(ctx).Model(&model.Producto{}).Where("id = ?", id).Update("activo", activo)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *productoRepo) FindPrecio(ctx context.Context, id uuid.UUID) (*model.ProductoProveedor, error) {
	var pp model.ProductoProveedor
	err := r.db.WithContext(ctx).Preload("Proveedor").First(&pp, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &pp, nil
}

func (r *productoRepo) ListPreciosByProveedor(ctx context.Context, proveedorID uuid.UUID) ([]model.ProductoProveedor, error) {
	var precios []model.ProductoProveedor
	err := r.db.WithContext(ctx).Preload("Producto").
		Joins("JOIN productos ON productos.id = producto_proveedors.producto_id AND productos.activo = true").
		Where("producto_proveedors.proveedor_id = ?", proveedorID).
		Find(&precios).Error
	return precios, err
}

func (r *productoRepo) CreateTx(tx *gorm.DB, p *model.Producto) error {
	return tx.Omit(clause.Associations).Create(p).Error
}

func (r *productoRepo) FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Producto, error) {
	var p model.Producto
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productoRepo) UpdateStockTx(tx *gorm.DB, id uuid.UUID, nuevo decimal.Decimal) error {
	return tx.Model(&model.Producto{}).Where("id = ?", id).Update("stock_actual", nuevo).Error
}

func (r *productoRepo) CreatePrecioTx(tx *gorm.DB, pp *model.ProductoProveedor) error {
	return tx.Omit(clause.Associations).Create(pp).Error
}

func (r *productoRepo) UpdatePrecioTx(tx *gorm.DB, pp *model.ProductoProveedor) error {
	return tx.Model(pp).Updates(map[string]interface{}{
		"precio_costo":        pp.PrecioCosto,
		"porcentaje_ganancia": pp.PorcentajeGanancia,
		"precio_venta":        pp.PrecioVenta,
		"precio_mayorista":    pp.PrecioMayorista,
	}).Error
}

func (r *productoRepo) SetProveedorActivoTx(tx *gorm.DB, productoID, precioID uuid.UUID) error {
	res := tx.Model(&model.Producto{}).
		Where("id = ? AND EXISTS (SELECT 1 FROM producto_proveedors WHERE id = ? AND producto_id = ?)", productoID, precioID, productoID).
		Update("proveedor_activo_id", precioID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
