package service_test

import (
	"context"
	"testing"
	"time"

	"caffito/internal/dto"
	"caffito/internal/model"
	"caffito/internal/pricing"
	"caffito/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

func nuevaCalculadora() *pricing.Calculadora {
	return pricing.NewCalculadora(pricing.PoliticaPorDefecto())
}

func TestCrearProducto_DerivaPrecios(t *testing.T) {
	repo := newStubProductoRepo()
	historial := &stubHistorialRepo{}
	svc := service.NewProductoService(repo, historial, nuevaCalculadora(), nil, 0)

	resp, err := svc.Crear(context.Background(), uuid.New(), dto.CrearProductoRequest{
		Codigo: " 7790001 ",
		Nombre: "Cafe molido",
		Precio: dto.PrecioProveedorRequest{
			PrecioCosto:        decimal.NewFromInt(100),
			PorcentajeGanancia: decimal.NewFromInt(50),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "7790001", resp.Codigo)
	require.NotNil(t, resp.PrecioVenta)
	assert.True(t, resp.PrecioVenta.Equal(decimal.NewFromInt(150)))
	assert.True(t, resp.PrecioMayorista.Equal(decimal.NewFromInt(145)))

	require.Len(t, historial.filas, 1)
	assert.Equal(t, service.MotivoAlta, historial.filas[0].Motivo)
}

func TestCrearProducto_VentaFijaDerivaGanancia(t *testing.T) {
	repo := newStubProductoRepo()
	svc := service.NewProductoService(repo, &stubHistorialRepo{}, nuevaCalculadora(), nil, 0)

	venta := decimal.NewFromInt(180)
	resp, err := svc.Crear(context.Background(), uuid.Nil, dto.CrearProductoRequest{
		Codigo: "1",
		Nombre: "Te",
		Precio: dto.PrecioProveedorRequest{PrecioCosto: decimal.NewFromInt(120), PrecioVenta: &venta},
	})
	require.NoError(t, err)
	p, err := repo.FindByID(context.Background(), uuid.MustParse(resp.ID))
	require.NoError(t, err)
	assert.True(t, p.ProveedorActivo.PorcentajeGanancia.Equal(decimal.NewFromInt(50)))
}

func TestEditarPrecio_Triangulo(t *testing.T) {
	repo := newStubProductoRepo()
	historial := &stubHistorialRepo{}
	svc := service.NewProductoService(repo, historial, nuevaCalculadora(), nil, 0)
	p := repo.add("1001", "Cafe", 200, false) // costo 100, ganancia 100
	ppID := p.ProveedorActivoID.String()
	ctx := context.Background()

	tests := []struct {
		name     string
		req      dto.EditarPrecioRequest
		costo    string
		ganancia string
		venta    string
	}{
		{
			name:  "costo mantiene ganancia",
			req:   dto.EditarPrecioRequest{PrecioCosto: ptr(decimal.NewFromInt(120))},
			costo: "120", ganancia: "100", venta: "240",
		},
		{
			name:  "ganancia mantiene costo",
			req:   dto.EditarPrecioRequest{PorcentajeGanancia: ptr(decimal.NewFromInt(50))},
			costo: "120", ganancia: "50", venta: "180",
		},
		{
			name:  "venta deriva ganancia",
			req:   dto.EditarPrecioRequest{PrecioVenta: ptr(decimal.NewFromInt(150))},
			costo: "120", ganancia: "25", venta: "150",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.req.ProductoProveedorID = ppID
			resp, err := svc.EditarPrecio(ctx, uuid.New(), p.ID, tt.req)
			require.NoError(t, err)
			pp := p.ProveedorActivo
			assert.True(t, pp.PrecioCosto.Equal(dec(tt.costo)), pp.PrecioCosto.String())
			assert.True(t, pp.PorcentajeGanancia.Equal(dec(tt.ganancia)), pp.PorcentajeGanancia.String())
			assert.True(t, resp.PrecioVenta.Equal(dec(tt.venta)), resp.PrecioVenta.String())
		})
	}
	assert.Len(t, historial.filas, 3)

	_, err := svc.EditarPrecio(ctx, uuid.New(), p.ID, dto.EditarPrecioRequest{
		ProductoProveedorID: ppID,
		PrecioVenta:         ptr(decimal.NewFromInt(50)),
	})
	assert.ErrorIs(t, err, pricing.ErrGananciaNegativa)
	assert.Len(t, historial.filas, 3)
}

func TestEditarPrecio_PrecioDeOtroProducto(t *testing.T) {
	repo := newStubProductoRepo()
	svc := service.NewProductoService(repo, &stubHistorialRepo{}, nuevaCalculadora(), nil, 0)
	a := repo.add("1", "A", 100, false)
	b := repo.add("2", "B", 100, false)

	_, err := svc.EditarPrecio(context.Background(), uuid.New(), a.ID, dto.EditarPrecioRequest{
		ProductoProveedorID: b.ProveedorActivoID.String(),
		PrecioCosto:         ptr(decimal.NewFromInt(1)),
	})
	assert.ErrorIs(t, err, service.ErrNoEncontrado)
}

func TestAgregarPrecio_Activar(t *testing.T) {
	repo := newStubProductoRepo()
	svc := service.NewProductoService(repo, &stubHistorialRepo{}, nuevaCalculadora(), nil, 0)
	p := repo.add("1001", "Cafe", 200, false)
	anterior := *p.ProveedorActivoID

	resp, err := svc.AgregarPrecio(context.Background(), uuid.New(), p.ID, dto.PrecioProveedorRequest{
		PrecioCosto:        decimal.NewFromInt(80),
		PorcentajeGanancia: decimal.NewFromInt(100),
		Activar:            true,
	})
	require.NoError(t, err)
	assert.NotEqual(t, anterior, *p.ProveedorActivoID)
	assert.True(t, resp.PrecioVenta.Equal(decimal.NewFromInt(160)))

	_, err = svc.SetProveedorActivo(context.Background(), p.ID, dto.ProveedorActivoRequest{ProductoProveedorID: anterior.String()})
	require.NoError(t, err)
	assert.Equal(t, anterior, *p.ProveedorActivoID)
}

func TestConsultarPrecio(t *testing.T) {
	repo := newStubProductoRepo()
	svc := service.NewProductoService(repo, &stubHistorialRepo{}, nuevaCalculadora(), nil, 0)
	repo.add("1001", "Cafe", 200, false)

	resp, err := svc.ConsultarPrecio(context.Background(), "1001")
	require.NoError(t, err)
	assert.Equal(t, "Cafe", resp.Nombre)
	assert.True(t, resp.PrecioVenta.Equal(decimal.NewFromInt(200)))

	_, err = svc.ConsultarPrecio(context.Background(), "nope")
	assert.ErrorIs(t, err, service.ErrNoEncontrado)
	_, err = svc.ConsultarPrecio(context.Background(), " ")
	assert.ErrorIs(t, err, service.ErrEntradaVacia)
}

func TestStock_AjusteYAlertas(t *testing.T) {
	repo := newStubProductoRepo()
	movs := &stubMovimientoRepo{}
	svc := service.NewStockService(repo, movs)
	p := repo.add("1001", "Cafe", 200, false)
	p.StockMinimo = decimal.NewFromInt(5)

	mov, err := svc.Ajustar(context.Background(), p.ID, dto.AjusteStockRequest{Cantidad: decimal.NewFromInt(-12), Motivo: "rotura"})
	require.NoError(t, err)
	assert.True(t, mov.StockNuevo.Equal(decimal.NewFromInt(-2)), "stock may go negative")

	alertas, err := svc.Alertas(context.Background())
	require.NoError(t, err)
	require.Len(t, alertas, 1)
	assert.Equal(t, "1001", alertas[0].Codigo)

	_, err = svc.Ajustar(context.Background(), uuid.New(), dto.AjusteStockRequest{Cantidad: decimal.NewFromInt(1), Motivo: "x"})
	assert.ErrorIs(t, err, service.ErrNoEncontrado)
}

// ── Proveedores ───────────────────────────────────────────────────────────────

type stubProveedorRepo struct {
	proveedores map[uuid.UUID]*model.Proveedor
}

func (r *stubProveedorRepo) Create(_ context.Context, p *model.Proveedor) error {
	for _, o := range r.proveedores {
		if o.CUIT == p.CUIT {
			return gorm.ErrDuplicatedKey
		}
	}
	p.ID = uuid.New()
	r.proveedores[p.ID] = p
	return nil
}

func (r *stubProveedorRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Proveedor, error) {
	p, ok := r.proveedores[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubProveedorRepo) FindByCUIT(_ context.Context, cuit string) (*model.Proveedor, error) {
	for _, p := range r.proveedores {
		if p.CUIT == cuit {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProveedorRepo) List(_ context.Context, incl bool) ([]model.Proveedor, error) {
	var out []model.Proveedor
	for _, p := range r.proveedores {
		if incl || p.Activo {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubProveedorRepo) Update(_ context.Context, p *model.Proveedor) error {
	r.proveedores[p.ID] = p
	return nil
}

func (r *stubProveedorRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	r.proveedores[id].Activo = false
	return nil
}

func (r *stubProveedorRepo) MarcarPreciosActualizadosTx(_ *gorm.DB, id uuid.UUID, at time.Time) error {
	r.proveedores[id].PreciosActualizadosAt = &at
	return nil
}

type entornoProveedor struct {
	productos *stubProductoRepo
	historial *stubHistorialRepo
	svc       service.ProveedorService
	proveedor uuid.UUID
}

func nuevoEntornoProveedor(t *testing.T) *entornoProveedor {
	t.Helper()
	e := &entornoProveedor{
		productos: newStubProductoRepo(),
		historial: &stubHistorialRepo{},
	}
	repo := &stubProveedorRepo{proveedores: make(map[uuid.UUID]*model.Proveedor)}
	e.svc = service.NewProveedorService(repo, e.productos, e.historial, nuevaCalculadora())
	resp, err := e.svc.Crear(context.Background(), dto.CrearProveedorRequest{RazonSocial: "Tostadero SA", CUIT: "30-71234567-8"})
	require.NoError(t, err)
	assert.Equal(t, "30712345678", resp.CUIT)
	e.proveedor = uuid.MustParse(resp.ID)
	return e
}

// delProveedor ties the product's active price record to the supplier.
func (e *entornoProveedor) delProveedor(p *model.Producto, codigoProveedor string) {
	id := e.proveedor
	p.ProveedorActivo.ProveedorID = &id
	if codigoProveedor != "" {
		p.ProveedorActivo.CodigoProveedor = &codigoProveedor
	}
}

func TestProveedor_CUITDuplicado(t *testing.T) {
	e := nuevoEntornoProveedor(t)
	_, err := e.svc.Crear(context.Background(), dto.CrearProveedorRequest{RazonSocial: "Otro", CUIT: "30712345678"})
	assert.ErrorIs(t, err, service.ErrDuplicado)
}

func TestActualizacionMasiva(t *testing.T) {
	e := nuevoEntornoProveedor(t)
	cafe := e.productos.add("1001", "Cafe", 200, false) // costo 100
	e.delProveedor(cafe, "")
	e.productos.add("1002", "Ajeno", 200, false)
	ctx := context.Background()
	req := dto.ActualizacionMasivaRequest{Porcentaje: decimal.NewFromInt(10), Preview: true}

	preview, err := e.svc.ActualizarPreciosMasivo(ctx, uuid.New(), e.proveedor, req)
	require.NoError(t, err)
	require.Len(t, preview.Items, 1)
	assert.True(t, preview.Items[0].CostoDespues.Equal(decimal.NewFromInt(110)))
	assert.True(t, preview.Items[0].VentaDespues.Equal(decimal.NewFromInt(220)))
	assert.Zero(t, preview.Actualizados)
	assert.Empty(t, e.historial.filas)
	prov, err := e.svc.ObtenerPorID(ctx, e.proveedor)
	require.NoError(t, err)
	assert.Nil(t, prov.PreciosActualizadosAt, "a preview changes nothing")
	assert.True(t, cafe.ProveedorActivo.PrecioCosto.Equal(decimal.NewFromInt(100)))

	req.Preview = false
	resp, err := e.svc.ActualizarPreciosMasivo(ctx, uuid.New(), e.proveedor, req)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Actualizados)
	assert.True(t, cafe.ProveedorActivo.PrecioVenta.Equal(decimal.NewFromInt(220)))
	require.Len(t, e.historial.filas, 1)
	assert.Equal(t, service.MotivoActualizacionMasiva, e.historial.filas[0].Motivo)
	require.NotNil(t, e.historial.filas[0].PorcentajeAplicado)
	prov, err = e.svc.ObtenerPorID(ctx, e.proveedor)
	require.NoError(t, err)
	assert.NotNil(t, prov.PreciosActualizadosAt)
}

func TestImportarXLSX(t *testing.T) {
	e := nuevoEntornoProveedor(t)
	cafe := e.productos.add("1001", "Cafe", 200, false)
	e.delProveedor(cafe, "TOS-01")
	te := e.productos.add("1002", "Te", 100, false)
	e.delProveedor(te, "")

	f := excelize.NewFile()
	rows := [][]any{
		{"codigo", "costo"},
		{"TOS-01", "120,50"},
		{"1002", 60},
		{"9999", 10},
		{"1001"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	resp, err := e.svc.ImportarXLSX(context.Background(), uuid.New(), e.proveedor, buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, 5, resp.Procesadas)
	assert.Equal(t, 2, resp.Actualizados)
	require.Len(t, resp.Rechazadas, 3)
	assert.Equal(t, 1, resp.Rechazadas[0].Fila, "header row is reported")
	assert.Equal(t, "9999", resp.Rechazadas[1].Codigo)
	assert.Equal(t, "sin costo", resp.Rechazadas[2].Motivo)

	assert.True(t, cafe.ProveedorActivo.PrecioCosto.Equal(dec("120.5")))
	assert.True(t, cafe.ProveedorActivo.PrecioVenta.Equal(decimal.NewFromInt(241)))
	assert.True(t, te.ProveedorActivo.PrecioCosto.Equal(decimal.NewFromInt(60)))
	for _, h := range e.historial.filas {
		assert.Equal(t, service.MotivoImportacion, h.Motivo)
	}
}

func TestImportarXLSX_ArchivoInvalido(t *testing.T) {
	e := nuevoEntornoProveedor(t)
	_, err := e.svc.ImportarXLSX(context.Background(), uuid.New(), e.proveedor, []byte("no es un xlsx"))
	assert.ErrorIs(t, err, service.ErrArchivoInvalido)
}
