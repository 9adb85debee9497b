package service_test

import (
	"context"
	"testing"
	"time"

	"caffito/internal/dto"
	"caffito/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCliente_CrearYConsumidorFinalProtegido(t *testing.T) {
	repo := newStubClienteRepo()
	cf := repo.add("Consumidor Final", 0, true)
	svc := service.NewClienteService(repo)
	ctx := context.Background()

	resp, err := svc.Crear(ctx, dto.CrearClienteRequest{
		Nombre:          " Ana Gomez ",
		TipoDocumento:   "dni",
		NumeroDocumento: "30111222",
		LimiteCredito:   ptr(decimal.NewFromInt(5000)),
	})
	require.NoError(t, err)
	assert.Equal(t, "Ana Gomez", resp.Nombre)
	assert.True(t, resp.Activo)

	_, err = svc.Crear(ctx, dto.CrearClienteRequest{
		Nombre: "Negativo", TipoDocumento: "dni", NumeroDocumento: "123456",
		LimiteCredito: ptr(decimal.NewFromInt(-1)),
	})
	assert.ErrorIs(t, err, service.ErrMontoNegativo)

	assert.ErrorIs(t, svc.Desactivar(ctx, cf.ID), service.ErrConsumidorFinalUnico)
	_, err = svc.Actualizar(ctx, cf.ID, dto.ActualizarClienteRequest{Nombre: ptr("Otro")})
	assert.ErrorIs(t, err, service.ErrConsumidorFinalUnico)

	got, err := svc.ConsumidorFinal(ctx)
	require.NoError(t, err)
	assert.Equal(t, cf.ID, got.ID)
}

func TestCuentaCorriente_RegistrarPago(t *testing.T) {
	clientes := newStubClienteRepo()
	cuentas := &stubCuentaRepo{}
	caja := newStubCajaRepo()
	sesion := caja.abrir(1, 0)
	svc := service.NewCuentaCorrienteService(clientes, cuentas, caja)
	cliente := clientes.add("Ana", 5000, false)
	ctx := context.Background()

	require.NoError(t, cuentas.CreateTx(nil, modelDebe{cliente: cliente.ID, monto: 3000}.mov()))

	saldo, err := svc.RegistrarPago(ctx, uuid.New(), cliente.ID, dto.PagoCuentaCorrienteRequest{
		SesionCajaID: sesion.ID.String(),
		Monto:        decimal.NewFromInt(1200),
		MetodoPago:   "transferencia",
	})
	require.NoError(t, err)
	assert.True(t, saldo.Saldo.Equal(decimal.NewFromInt(1800)))
	assert.True(t, saldo.Disponible.Equal(decimal.NewFromInt(3200)))

	cobros := caja.porTipo("cobro_cuenta_corriente")
	require.Len(t, cobros, 1)
	assert.Equal(t, "transferencia", *cobros[0].MetodoPago)
	assert.True(t, cobros[0].Monto.Equal(decimal.NewFromInt(1200)))

	movs, err := svc.Movimientos(ctx, cliente.ID, dto.Paginacion{})
	require.NoError(t, err)
	assert.Len(t, movs.Data, 2)
}

func TestCuentaCorriente_PagoRechazado(t *testing.T) {
	clientes := newStubClienteRepo()
	caja := newStubCajaRepo()
	abierta := caja.abrir(1, 0)
	cerrada := caja.abrir(2, 0)
	cerrada.Estado = "cerrada"
	svc := service.NewCuentaCorrienteService(clientes, &stubCuentaRepo{}, caja)
	cf := clientes.add("Consumidor Final", 0, true)
	ana := clientes.add("Ana", 5000, false)
	ctx := context.Background()

	pagar := func(cliente uuid.UUID, sesion uuid.UUID) error {
		_, err := svc.RegistrarPago(ctx, uuid.New(), cliente, dto.PagoCuentaCorrienteRequest{
			SesionCajaID: sesion.String(), Monto: decimal.NewFromInt(100), MetodoPago: "efectivo",
		})
		return err
	}
	assert.ErrorIs(t, pagar(cf.ID, abierta.ID), service.ErrConsumidorFinal)
	assert.ErrorIs(t, pagar(ana.ID, cerrada.ID), service.ErrCajaNoAbierta)
	assert.ErrorIs(t, pagar(uuid.New(), abierta.ID), service.ErrNoEncontrado)
	assert.Empty(t, caja.renglones)
}

func TestCuentaCorriente_DisponibleNoNegativo(t *testing.T) {
	clientes := newStubClienteRepo()
	cuentas := &stubCuentaRepo{}
	svc := service.NewCuentaCorrienteService(clientes, cuentas, newStubCajaRepo())
	cliente := clientes.add("Ana", 1000, false)
	require.NoError(t, cuentas.CreateTx(nil, modelDebe{cliente: cliente.ID, monto: 1500}.mov()))

	saldo, err := svc.Saldo(context.Background(), cliente.ID)
	require.NoError(t, err)
	assert.True(t, saldo.Saldo.Equal(decimal.NewFromInt(1500)))
	assert.True(t, saldo.Disponible.IsZero())
}

// ── Tipos de pago y promociones ───────────────────────────────────────────────

func TestTipoPago_CodigoDuplicadoEInactivo(t *testing.T) {
	repo := newStubTipoPagoRepo()
	svc := service.NewTipoPagoService(repo)
	ctx := context.Background()

	resp, err := svc.Crear(ctx, dto.TipoPagoRequest{Codigo: "qr", Nombre: "Pago QR"})
	require.NoError(t, err)
	assert.True(t, resp.Activo)

	_, err = svc.Crear(ctx, dto.TipoPagoRequest{Codigo: "qr", Nombre: "Otro"})
	assert.ErrorIs(t, err, service.ErrDuplicado)

	id := uuid.MustParse(resp.ID)
	_, err = svc.Actualizar(ctx, id, dto.TipoPagoRequest{Codigo: "qr", Nombre: "Pago QR", Activo: ptr(false)})
	require.NoError(t, err)
	_, err = svc.Activo(ctx, id)
	assert.ErrorIs(t, err, service.ErrInactivo)

	activos, err := svc.Listar(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, activos)
}

func TestPromocion_ExactamenteUnDescuento(t *testing.T) {
	svc := service.NewPromocionService(newStubPromocionRepo())
	ctx := context.Background()
	diez := decimal.NewFromInt(10)

	tests := []struct {
		name string
		req  dto.PromocionRequest
		err  error
	}{
		{name: "porcentaje", req: dto.PromocionRequest{Nombre: "10%", Porcentaje: &diez}},
		{name: "monto", req: dto.PromocionRequest{Nombre: "$10", Monto: &diez}},
		{name: "ninguno", req: dto.PromocionRequest{Nombre: "nada"}, err: service.ErrPromocionSinDescuento},
		{name: "ambos", req: dto.PromocionRequest{Nombre: "ambos", Porcentaje: &diez, Monto: &diez}, err: service.ErrPromocionSinDescuento},
		{name: "porcentaje mayor a 100", req: dto.PromocionRequest{Nombre: "x", Porcentaje: ptr(decimal.NewFromInt(101))}, err: service.ErrPromocionSinDescuento},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Crear(ctx, tt.req)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestPromocion_HastaIncluyeElDia(t *testing.T) {
	repo := newStubPromocionRepo()
	svc := service.NewPromocionService(repo)
	ctx := context.Background()
	hoy := time.Now().Format(time.DateOnly)

	resp, err := svc.Crear(ctx, dto.PromocionRequest{Nombre: "Hoy", Monto: ptr(decimal.NewFromInt(50)), Desde: &hoy, Hasta: &hoy})
	require.NoError(t, err)
	assert.True(t, resp.Vigente)

	p, err := svc.Vigente(ctx, uuid.MustParse(resp.ID))
	require.NoError(t, err)
	assert.Equal(t, "Hoy", p.Nombre)

	manana := time.Now().AddDate(0, 0, 1).Format(time.DateOnly)
	futura, err := svc.Crear(ctx, dto.PromocionRequest{Nombre: "Manana", Monto: ptr(decimal.NewFromInt(50)), Desde: &manana})
	require.NoError(t, err)
	_, err = svc.Vigente(ctx, uuid.MustParse(futura.ID))
	assert.ErrorIs(t, err, service.ErrPromocionNoVigente)
}
