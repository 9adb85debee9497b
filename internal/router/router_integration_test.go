//go:build integration

package router_test

// End-to-end tests against real Postgres + Redis via testcontainers.
// Run with: go test -tags integration ./internal/router/... -v

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"caffito/internal/config"
	"caffito/internal/dto"
	"caffito/internal/infra"
	"caffito/internal/model"
	"caffito/internal/router"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"golang.org/x/crypto/bcrypt"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

type testEnv struct {
	server   *httptest.Server
	token    string // admin JWT
	efectivo string // tipo de pago id
}

func (e *testEnv) do(t *testing.T, method, path string, body any, dest any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, e.server.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if e.token != "" {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}
	resp, err := e.server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if dest != nil && resp.StatusCode < 300 {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
	}
	return resp.StatusCode
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.Run(ctx, "postgres:16-alpine",
		tcPostgres.WithDatabase("caffito_test"),
		tcPostgres.WithUsername("caffito"),
		tcPostgres.WithPassword("caffito"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })
	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })
	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Env:                "test",
		JWTSecret:          "test_jwt_secret_32_chars_minimum!",
		JWTExpirationHours: 8,
		JWTRefreshHours:    24,
		DatabaseURL:        pgURL,
		RedisURL:           rdURL,
		CORSOrigins:        "*",
		RateLimit:          1000,
		NombreNegocio:      "Caffito E2E",
		InteresTarjetaPct:  "10",
		PuntosMayorista:    "5",
		CarritoTTLHours:    1,
		PrecioCacheSeconds: 30,
		PDFStoragePath:     t.TempDir(),
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)
	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	hash, err := bcrypt.GenerateFromPassword([]byte("admin1234"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, db.Create(&model.Usuario{
		Username: "admin", Nombre: "Admin E2E", PasswordHash: string(hash), Rol: "administrador", Activo: true,
	}).Error)
	require.NoError(t, db.Create(&model.Cliente{
		Nombre: "Consumidor Final", TipoDocumento: "dni", EsConsumidorFinal: true, Activo: true,
	}).Error)
	efectivo := model.TipoPago{Codigo: "efectivo", Nombre: "Efectivo", Activo: true}
	require.NoError(t, db.Create(&efectivo).Error)

	r, err := router.New(cfg, db, rdb, nil)
	require.NoError(t, err)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	env := &testEnv{server: srv, efectivo: efectivo.ID.String()}
	var login dto.LoginResponse
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/v1/auth/login",
		dto.LoginRequest{Username: "admin", Password: "admin1234"}, &login))
	env.token = login.AccessToken
	return env
}

// ── Tests ────────────────────────────────────────────────────────────────────

// Full cycle: product → open caja → scan → pay → finalize → void → arqueo.
func TestE2E_CicloDeVenta(t *testing.T) {
	env := setupTestEnv(t)
	cien := decimal.NewFromInt(100)

	var prod dto.ProductoResponse
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/v1/productos", dto.CrearProductoRequest{
		Codigo: "7790001000015", Nombre: "Cafe molido 500g",
		StockActual: decimal.NewFromInt(10),
		Precio: dto.PrecioProveedorRequest{
			PrecioCosto: cien, PorcentajeGanancia: decimal.NewFromInt(50),
		},
	}, &prod))
	require.NotNil(t, prod.PrecioVenta)
	assert.True(t, prod.PrecioVenta.Equal(decimal.NewFromInt(150)), prod.PrecioVenta.String())

	// Public price check needs no token.
	publico := &testEnv{server: env.server}
	var consulta dto.ConsultaPreciosResponse
	require.Equal(t, http.StatusOK, publico.do(t, http.MethodGet, "/v1/precio/7790001000015", nil, &consulta))
	assert.Equal(t, "Cafe molido 500g", consulta.Nombre)

	var sesion dto.ReporteCajaResponse
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/v1/caja/abrir",
		dto.AbrirCajaRequest{PuntoDeVenta: 1, MontoInicial: decimal.NewFromInt(1000)}, &sesion))
	assert.Equal(t, http.StatusConflict, env.do(t, http.MethodPost, "/v1/caja/abrir",
		dto.AbrirCajaRequest{PuntoDeVenta: 1, MontoInicial: decimal.Zero}, nil))

	var carrito dto.CarritoResponse
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/v1/pos/carritos", nil, &carrito))
	base := "/v1/pos/carritos/" + carrito.ID

	var escaneo dto.EscaneoResponse
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, base+"/escanear",
		dto.EscanearRequest{Codigo: "7790001000015"}, &escaneo))
	assert.Equal(t, dto.EscaneoAgregado, escaneo.Resultado)
	assert.True(t, escaneo.Carrito.Total.Equal(decimal.NewFromInt(150)))

	// Finalizing before paying keeps the cart.
	assert.Equal(t, http.StatusUnprocessableEntity, env.do(t, http.MethodPost, base+"/finalizar",
		dto.FinalizarRequest{SesionCajaID: sesion.SesionCajaID}, nil))

	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, base+"/pagos",
		dto.AgregarPagoRequest{TipoPagoID: env.efectivo, Monto: decimal.NewFromInt(150)}, nil))

	var fin dto.FinalizarResponse
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, base+"/finalizar",
		dto.FinalizarRequest{SesionCajaID: sesion.SesionCajaID}, &fin))
	assert.Equal(t, int64(1), fin.Factura.Numero)
	assert.Empty(t, fin.Carrito.Renglones, "the cart is reset after a sale")

	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/v1/productos/"+prod.ID, nil, &prod))
	assert.True(t, prod.StockActual.Equal(decimal.NewFromInt(9)), prod.StockActual.String())

	var facturas dto.Lista[dto.FacturaResponse]
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/v1/facturas", nil, &facturas))
	assert.Equal(t, int64(1), facturas.Total)

	facturaPath := "/v1/facturas/" + fin.Factura.ID + "/anular"
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, facturaPath,
		dto.AnularFacturaRequest{Motivo: "error de carga"}, nil))
	assert.Equal(t, http.StatusConflict, env.do(t, http.MethodPost, facturaPath,
		dto.AnularFacturaRequest{Motivo: "error de carga"}, nil))

	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/v1/productos/"+prod.ID, nil, &prod))
	assert.True(t, prod.StockActual.Equal(decimal.NewFromInt(10)), "voiding restores stock")

	var arqueo dto.ArqueoResponse
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/v1/caja/arqueo", dto.ArqueoRequest{
		SesionCajaID: sesion.SesionCajaID,
		Declaracion:  dto.DeclaracionArqueo{Efectivo: decimal.NewFromInt(1000)},
	}, &arqueo))
	assert.True(t, arqueo.MontoEsperado.Efectivo.Equal(decimal.NewFromInt(1000)), arqueo.MontoEsperado.Efectivo.String())
	assert.Equal(t, "normal", arqueo.Desvio.Clasificacion)
}

func TestE2E_HistorialDePrecios(t *testing.T) {
	env := setupTestEnv(t)

	var prod dto.ProductoResponse
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/v1/productos", dto.CrearProductoRequest{
		Codigo: "000123", Nombre: "Queso por kilo", Pesable: true,
		Precio: dto.PrecioProveedorRequest{
			PrecioCosto: decimal.NewFromInt(2000), PorcentajeGanancia: decimal.NewFromInt(40),
		},
	}, &prod))

	var historial dto.Lista[dto.HistorialPrecioItem]
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet,
		"/v1/productos/"+prod.ID+"/historial-precios", nil, &historial))
	assert.Equal(t, int64(1), historial.Total)

	// Scanning a weighable product by code asks for a weight.
	var carrito dto.CarritoResponse
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/v1/pos/carritos", nil, &carrito))
	assert.Equal(t, http.StatusUnprocessableEntity, env.do(t, http.MethodPost,
		"/v1/pos/carritos/"+carrito.ID+"/escanear", dto.EscanearRequest{Codigo: "000123"}, nil))
}

func TestE2E_Seguridad(t *testing.T) {
	env := setupTestEnv(t)
	anonimo := &testEnv{server: env.server}

	assert.Equal(t, http.StatusUnauthorized, anonimo.do(t, http.MethodGet, "/v1/productos", nil, nil))
	assert.Equal(t, http.StatusOK, anonimo.do(t, http.MethodGet, "/health", nil, nil))
	assert.Equal(t, http.StatusNotFound, anonimo.do(t, http.MethodGet, "/v1/precio/no-existe", nil, nil))
}
