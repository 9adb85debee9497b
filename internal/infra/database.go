package infra

import (
	"fmt"

	"caffito/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens a GORM connection backed by pgx, migrates the schema and
// applies the idempotent SQL patches GORM cannot express.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		// productos.proveedor_activo_id and producto_proveedors.producto_id
		// reference each other; constraints are added by the patches below.
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations migrates every model and applies the schema patches. It is
// safe to run on an up-to-date database.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Usuario{},
		&model.Categoria{},
		&model.Marca{},
		&model.Proveedor{},
		&model.Producto{},
		&model.ProductoProveedor{},
		&model.HistorialPrecio{},
		&model.MovimientoStock{},
		&model.Cliente{},
		&model.MovimientoCuentaCorriente{},
		&model.TipoPago{},
		&model.Promocion{},
		&model.Talonario{},
		&model.SesionCaja{},
		&model.CajaRenglon{},
		&model.Factura{},
		&model.FacturaRenglon{},
		&model.FacturaPago{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if err := applySchemaPatches(db); err != nil {
		return fmt.Errorf("schema patches: %w", err)
	}
	return nil
}

// applySchemaPatches runs DDL that AutoMigrate cannot handle (partial
// indexes, cross-referencing foreign keys). Every statement is guarded so
// re-running it is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		{"single walk-in client", `
CREATE UNIQUE INDEX IF NOT EXISTS idx_clientes_consumidor_final
    ON clientes (es_consumidor_final) WHERE es_consumidor_final`},
		{"single open caja per punto de venta", `
CREATE UNIQUE INDEX IF NOT EXISTS idx_sesion_cajas_abierta
    ON sesion_cajas (punto_de_venta) WHERE estado = 'abierta'`},
		{"historial by producto and date", `
CREATE INDEX IF NOT EXISTS idx_historial_precios_producto_fecha
    ON historial_precios (producto_id, created_at DESC)`},
		{"fk producto_proveedors.producto_id", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'fk_producto_proveedors_producto') THEN
    ALTER TABLE producto_proveedors
      ADD CONSTRAINT fk_producto_proveedors_producto
      FOREIGN KEY (producto_id) REFERENCES productos(id) ON DELETE CASCADE;
  END IF;
END $$`},
		{"fk productos.proveedor_activo_id", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'fk_productos_proveedor_activo') THEN
    ALTER TABLE productos
      ADD CONSTRAINT fk_productos_proveedor_activo
      FOREIGN KEY (proveedor_activo_id) REFERENCES producto_proveedors(id)
      DEFERRABLE INITIALLY DEFERRED;
  END IF;
END $$`},
		{"fk factura children", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'fk_factura_renglons_factura') THEN
    ALTER TABLE factura_renglons
      ADD CONSTRAINT fk_factura_renglons_factura FOREIGN KEY (factura_id) REFERENCES facturas(id);
  END IF;
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'fk_factura_pagos_factura') THEN
    ALTER TABLE factura_pagos
      ADD CONSTRAINT fk_factura_pagos_factura FOREIGN KEY (factura_id) REFERENCES facturas(id);
  END IF;
END $$`},
	}
	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
