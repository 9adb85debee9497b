package service_test

import (
	"context"
	"strings"
	"sync"

	"caffito/internal/dto"
	"caffito/internal/model"
	"caffito/internal/repository"
	"caffito/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────
// All stubs return DB() == nil, so runTx calls the closure with a nil tx.

type stubProductoRepo struct {
	productos map[uuid.UUID]*model.Producto
	precios   map[uuid.UUID]*model.ProductoProveedor
	stockErr  error
}

func newStubProductoRepo() *stubProductoRepo {
	return &stubProductoRepo{
		productos: make(map[uuid.UUID]*model.Producto),
		precios:   make(map[uuid.UUID]*model.ProductoProveedor),
	}
}

// add stores a product with a single active price record.
func (r *stubProductoRepo) add(codigo, nombre string, venta int64, pesable bool) *model.Producto {
	p := &model.Producto{
		ID:          uuid.New(),
		Codigo:      codigo,
		Nombre:      nombre,
		Pesable:     pesable,
		StockActual: decimal.NewFromInt(10),
		Activo:      true,
	}
	pp := &model.ProductoProveedor{
		ID:                 uuid.New(),
		ProductoID:         p.ID,
		PrecioCosto:        decimal.NewFromInt(venta).Div(decimal.NewFromInt(2)),
		PorcentajeGanancia: decimal.NewFromInt(100),
		PrecioVenta:        decimal.NewFromInt(venta),
		PrecioMayorista:    decimal.NewFromInt(venta),
	}
	p.ProveedorActivoID = &pp.ID
	p.ProveedorActivo = pp
	p.ProductoProveedors = []model.ProductoProveedor{*pp}
	r.productos[p.ID] = p
	r.precios[pp.ID] = pp
	return p
}

func (r *stubProductoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Producto, error) {
	p, ok := r.productos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubProductoRepo) FindByCodigo(_ context.Context, codigo string) (*model.Producto, error) {
	for _, p := range r.productos {
		if p.Codigo == codigo && p.Activo {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProductoRepo) Buscar(_ context.Context, q string, limit int) ([]model.Producto, error) {
	var out []model.Producto
	q = strings.ToLower(q)
	for _, p := range r.productos {
		if len(out) == limit {
			break
		}
		if p.Activo && (strings.Contains(strings.ToLower(p.Nombre), q) || strings.Contains(p.Codigo, q)) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubProductoRepo) List(ctx context.Context, f dto.ProductoFilter) ([]model.Producto, int64, error) {
	all, _ := r.ListAll(ctx, f)
	return all, int64(len(all)), nil
}

func (r *stubProductoRepo) ListAll(_ context.Context, _ dto.ProductoFilter) ([]model.Producto, error) {
	out := make([]model.Producto, 0, len(r.productos))
	for _, p := range r.productos {
		out = append(out, *p)
	}
	return out, nil
}

func (r *stubProductoRepo) ListStockBajo(_ context.Context) ([]model.Producto, error) {
	var out []model.Producto
	for _, p := range r.productos {
		if p.Activo && p.StockBajo() {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubProductoRepo) Update(_ context.Context, p *model.Producto) error {
	r.productos[p.ID] = p
	return nil
}

func (r *stubProductoRepo) SetActivo(_ context.Context, id uuid.UUID, activo bool) error {
	p, ok := r.productos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Activo = activo
	return nil
}

func (r *stubProductoRepo) FindPrecio(_ context.Context, id uuid.UUID) (*model.ProductoProveedor, error) {
	pp, ok := r.precios[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return pp, nil
}

func (r *stubProductoRepo) ListPreciosByProveedor(_ context.Context, proveedorID uuid.UUID) ([]model.ProductoProveedor, error) {
	var out []model.ProductoProveedor
	for _, pp := range r.precios {
		if pp.ProveedorID != nil && *pp.ProveedorID == proveedorID {
			cp := *pp
			cp.Producto = r.productos[pp.ProductoID]
			out = append(out, cp)
		}
	}
	return out, nil
}

func (r *stubProductoRepo) CreateTx(_ *gorm.DB, p *model.Producto) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.productos[p.ID] = p
	return nil
}

func (r *stubProductoRepo) FindByIDForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.Producto, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubProductoRepo) UpdateStockTx(_ *gorm.DB, id uuid.UUID, nuevo decimal.Decimal) error {
	if r.stockErr != nil {
		return r.stockErr
	}
	p, ok := r.productos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.StockActual = nuevo
	return nil
}

func (r *stubProductoRepo) CreatePrecioTx(_ *gorm.DB, pp *model.ProductoProveedor) error {
	if pp.ID == uuid.Nil {
		pp.ID = uuid.New()
	}
	r.precios[pp.ID] = pp
	return nil
}

func (r *stubProductoRepo) UpdatePrecioTx(_ *gorm.DB, pp *model.ProductoProveedor) error {
	r.precios[pp.ID] = pp
	if p, ok := r.productos[pp.ProductoID]; ok && p.ProveedorActivoID != nil && *p.ProveedorActivoID == pp.ID {
		p.ProveedorActivo = pp
	}
	return nil
}

func (r *stubProductoRepo) SetProveedorActivoTx(_ *gorm.DB, productoID, precioID uuid.UUID) error {
	p, ok := r.productos[productoID]
	pp, okp := r.precios[precioID]
	if !ok || !okp || pp.ProductoID != productoID {
		return gorm.ErrRecordNotFound
	}
	p.ProveedorActivoID = &pp.ID
	p.ProveedorActivo = pp
	return nil
}

func (r *stubProductoRepo) DB() *gorm.DB { return nil }

var _ repository.ProductoRepository = (*stubProductoRepo)(nil)

// stubMovimientoRepo records stock movements.
type stubMovimientoRepo struct {
	movimientos []model.MovimientoStock
}

func (r *stubMovimientoRepo) CreateTx(_ *gorm.DB, m *model.MovimientoStock) error {
	m.ID = uuid.New()
	r.movimientos = append(r.movimientos, *m)
	return nil
}

func (r *stubMovimientoRepo) List(_ context.Context, _ dto.MovimientoStockFilter) ([]model.MovimientoStock, int64, error) {
	return r.movimientos, int64(len(r.movimientos)), nil
}

var _ repository.MovimientoStockRepository = (*stubMovimientoRepo)(nil)

type stubHistorialRepo struct {
	filas []model.HistorialPrecio
}

func (r *stubHistorialRepo) CreateTx(_ *gorm.DB, h *model.HistorialPrecio) error {
	r.filas = append(r.filas, *h)
	return nil
}

func (r *stubHistorialRepo) List(_ context.Context, _ dto.HistorialFilter) ([]model.HistorialPrecio, int64, error) {
	return r.filas, int64(len(r.filas)), nil
}

var _ repository.HistorialPrecioRepository = (*stubHistorialRepo)(nil)

// stubCajaRepo keeps sessions and captures every renglon written.
type stubCajaRepo struct {
	sesiones  map[uuid.UUID]*model.SesionCaja
	renglones []model.CajaRenglon
}

func newStubCajaRepo() *stubCajaRepo {
	return &stubCajaRepo{sesiones: make(map[uuid.UUID]*model.SesionCaja)}
}

func (r *stubCajaRepo) abrir(pdv int, inicial int64) *model.SesionCaja {
	s := &model.SesionCaja{ID: uuid.New(), PuntoDeVenta: pdv, MontoInicial: decimal.NewFromInt(inicial), Estado: "abierta"}
	r.sesiones[s.ID] = s
	return s
}

func (r *stubCajaRepo) CreateSesion(_ context.Context, s *model.SesionCaja) error {
	s.ID = uuid.New()
	r.sesiones[s.ID] = s
	return nil
}

func (r *stubCajaRepo) FindSesionAbiertaPorPDV(_ context.Context, pdv int) (*model.SesionCaja, error) {
	for _, s := range r.sesiones {
		if s.PuntoDeVenta == pdv && s.Estado == "abierta" {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubCajaRepo) FindSesionByID(_ context.Context, id uuid.UUID) (*model.SesionCaja, error) {
	s, ok := r.sesiones[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (r *stubCajaRepo) ListSesiones(_ context.Context, _ dto.CajaFilter) ([]model.SesionCaja, int64, error) {
	out := make([]model.SesionCaja, 0, len(r.sesiones))
	for _, s := range r.sesiones {
		out = append(out, *s)
	}
	return out, int64(len(out)), nil
}

func (r *stubCajaRepo) UpdateSesion(_ context.Context, s *model.SesionCaja) error {
	r.sesiones[s.ID] = s
	return nil
}

func (r *stubCajaRepo) CreateRenglon(_ context.Context, m *model.CajaRenglon) error {
	m.ID = uuid.New()
	r.renglones = append(r.renglones, *m)
	return nil
}

func (r *stubCajaRepo) ListRenglones(_ context.Context, id uuid.UUID) ([]model.CajaRenglon, error) {
	var out []model.CajaRenglon
	for _, m := range r.renglones {
		if m.SesionCajaID == id {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *stubCajaRepo) SumRenglonesByMetodo(_ context.Context, id uuid.UUID) (map[string]decimal.Decimal, error) {
	sums := make(map[string]decimal.Decimal)
	for _, m := range r.renglones {
		if m.SesionCajaID != id || m.MetodoPago == nil {
			continue
		}
		sums[*m.MetodoPago] = sums[*m.MetodoPago].Add(m.Monto)
	}
	return sums, nil
}

func (r *stubCajaRepo) FindSesionAbiertaTx(_ *gorm.DB, id uuid.UUID) (*model.SesionCaja, error) {
	s, ok := r.sesiones[id]
	if !ok || s.Estado != "abierta" {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (r *stubCajaRepo) CreateRenglonTx(_ *gorm.DB, m *model.CajaRenglon) error {
	return r.CreateRenglon(context.Background(), m)
}

func (r *stubCajaRepo) porTipo(tipo string) []model.CajaRenglon {
	var out []model.CajaRenglon
	for _, m := range r.renglones {
		if m.Tipo == tipo {
			out = append(out, m)
		}
	}
	return out
}

var _ repository.CajaRepository = (*stubCajaRepo)(nil)

type stubClienteRepo struct {
	clientes map[uuid.UUID]*model.Cliente
}

func newStubClienteRepo() *stubClienteRepo {
	return &stubClienteRepo{clientes: make(map[uuid.UUID]*model.Cliente)}
}

func (r *stubClienteRepo) add(nombre string, limite int64, consumidorFinal bool) *model.Cliente {
	c := &model.Cliente{
		ID:                uuid.New(),
		Nombre:            nombre,
		TipoDocumento:     "dni",
		NumeroDocumento:   "30111222",
		LimiteCredito:     decimal.NewFromInt(limite),
		EsConsumidorFinal: consumidorFinal,
		Activo:            true,
	}
	if consumidorFinal {
		c.TipoDocumento, c.NumeroDocumento = "consumidor_final", "0"
	}
	r.clientes[c.ID] = c
	return c
}

func (r *stubClienteRepo) Create(_ context.Context, c *model.Cliente) error {
	c.ID = uuid.New()
	r.clientes[c.ID] = c
	return nil
}

func (r *stubClienteRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Cliente, error) {
	c, ok := r.clientes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *stubClienteRepo) FindConsumidorFinal(_ context.Context) (*model.Cliente, error) {
	for _, c := range r.clientes {
		if c.EsConsumidorFinal {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubClienteRepo) List(_ context.Context, _ dto.ClienteFilter) ([]model.Cliente, int64, error) {
	out := make([]model.Cliente, 0, len(r.clientes))
	for _, c := range r.clientes {
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

func (r *stubClienteRepo) Update(_ context.Context, c *model.Cliente) error {
	r.clientes[c.ID] = c
	return nil
}

func (r *stubClienteRepo) FindByIDForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.Cliente, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubClienteRepo) DB() *gorm.DB { return nil }

var _ repository.ClienteRepository = (*stubClienteRepo)(nil)

type stubCuentaRepo struct {
	movimientos []model.MovimientoCuentaCorriente
}

func (r *stubCuentaRepo) CreateTx(_ *gorm.DB, m *model.MovimientoCuentaCorriente) error {
	m.ID = uuid.New()
	r.movimientos = append(r.movimientos, *m)
	return nil
}

func (r *stubCuentaRepo) SaldoTx(_ *gorm.DB, clienteID uuid.UUID) (decimal.Decimal, error) {
	saldo := decimal.Zero
	for _, m := range r.movimientos {
		if m.ClienteID == clienteID {
			saldo = saldo.Add(m.Debe).Sub(m.Haber)
		}
	}
	return saldo, nil
}

func (r *stubCuentaRepo) Saldo(_ context.Context, clienteID uuid.UUID) (decimal.Decimal, error) {
	return r.SaldoTx(nil, clienteID)
}

func (r *stubCuentaRepo) List(_ context.Context, clienteID uuid.UUID, _ dto.Paginacion) ([]model.MovimientoCuentaCorriente, int64, error) {
	var out []model.MovimientoCuentaCorriente
	for _, m := range r.movimientos {
		if m.ClienteID == clienteID {
			out = append(out, m)
		}
	}
	return out, int64(len(out)), nil
}

var _ repository.CuentaCorrienteRepository = (*stubCuentaRepo)(nil)

type stubFacturaRepo struct {
	facturas map[uuid.UUID]*model.Factura
	numeros  map[string]int64
}

func newStubFacturaRepo() *stubFacturaRepo {
	return &stubFacturaRepo{facturas: make(map[uuid.UUID]*model.Factura), numeros: make(map[string]int64)}
}

func (r *stubFacturaRepo) CreateTx(_ *gorm.DB, f *model.Factura) error {
	f.ID = uuid.New()
	r.facturas[f.ID] = f
	return nil
}

func (r *stubFacturaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Factura, error) {
	f, ok := r.facturas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return f, nil
}

func (r *stubFacturaRepo) FindByIDForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.Factura, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubFacturaRepo) AnularTx(_ *gorm.DB, id uuid.UUID, motivo string) error {
	f, ok := r.facturas[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	f.Estado = "anulada"
	f.MotivoAnulacion = &motivo
	return nil
}

func (r *stubFacturaRepo) SiguienteNumeroTx(_ *gorm.DB, tipo string, _ int) (int64, error) {
	r.numeros[tipo]++
	return r.numeros[tipo], nil
}

func (r *stubFacturaRepo) List(_ context.Context, _ dto.FacturaFilter) ([]model.Factura, int64, error) {
	out := make([]model.Factura, 0, len(r.facturas))
	for _, f := range r.facturas {
		out = append(out, *f)
	}
	return out, int64(len(out)), nil
}

func (r *stubFacturaRepo) DB() *gorm.DB { return nil }

var _ repository.FacturaRepository = (*stubFacturaRepo)(nil)

type stubTipoPagoRepo struct {
	tipos map[uuid.UUID]*model.TipoPago
}

func newStubTipoPagoRepo() *stubTipoPagoRepo {
	return &stubTipoPagoRepo{tipos: make(map[uuid.UUID]*model.TipoPago)}
}

func (r *stubTipoPagoRepo) add(codigo string, activo bool) *model.TipoPago {
	t := &model.TipoPago{ID: uuid.New(), Codigo: codigo, Nombre: codigo, Activo: activo}
	r.tipos[t.ID] = t
	return t
}

func (r *stubTipoPagoRepo) Create(_ context.Context, t *model.TipoPago) error {
	for _, o := range r.tipos {
		if o.Codigo == t.Codigo {
			return gorm.ErrDuplicatedKey
		}
	}
	t.ID = uuid.New()
	r.tipos[t.ID] = t
	return nil
}

func (r *stubTipoPagoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.TipoPago, error) {
	t, ok := r.tipos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return t, nil
}

func (r *stubTipoPagoRepo) FindByCodigo(_ context.Context, codigo string) (*model.TipoPago, error) {
	for _, t := range r.tipos {
		if t.Codigo == codigo {
			return t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubTipoPagoRepo) List(_ context.Context, incl bool) ([]model.TipoPago, error) {
	var out []model.TipoPago
	for _, t := range r.tipos {
		if incl || t.Activo {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *stubTipoPagoRepo) Update(_ context.Context, t *model.TipoPago) error {
	r.tipos[t.ID] = t
	return nil
}

var _ repository.TipoPagoRepository = (*stubTipoPagoRepo)(nil)

type stubPromocionRepo struct {
	promos map[uuid.UUID]*model.Promocion
}

func newStubPromocionRepo() *stubPromocionRepo {
	return &stubPromocionRepo{promos: make(map[uuid.UUID]*model.Promocion)}
}

func (r *stubPromocionRepo) Create(_ context.Context, p *model.Promocion) error {
	p.ID = uuid.New()
	r.promos[p.ID] = p
	return nil
}

func (r *stubPromocionRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Promocion, error) {
	p, ok := r.promos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubPromocionRepo) List(_ context.Context, soloActivas bool) ([]model.Promocion, error) {
	var out []model.Promocion
	for _, p := range r.promos {
		if !soloActivas || p.Activo {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubPromocionRepo) Update(_ context.Context, p *model.Promocion) error {
	r.promos[p.ID] = p
	return nil
}

func (r *stubPromocionRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.promos, id)
	return nil
}

var _ repository.PromocionRepository = (*stubPromocionRepo)(nil)

// stubDespachador captures enqueued jobs.
type stubDespachador struct {
	mu          sync.Mutex
	impresiones []worker.ImpresionPayload
	emails      []worker.EmailPayload
}

func (d *stubDespachador) EnqueueImpresion(_ context.Context, p worker.ImpresionPayload) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.impresiones = append(d.impresiones, p)
	return nil
}

func (d *stubDespachador) EnqueueEmail(_ context.Context, p worker.EmailPayload) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.emails = append(d.emails, p)
	return nil
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// modelDebe builds a debit ledger entry.
type modelDebe struct {
	cliente uuid.UUID
	monto   int64
}

func (d modelDebe) mov() *model.MovimientoCuentaCorriente {
	return &model.MovimientoCuentaCorriente{ClienteID: d.cliente, Debe: decimal.NewFromInt(d.monto), Descripcion: "Factura"}
}
