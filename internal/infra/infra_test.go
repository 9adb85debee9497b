package infra

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"caffito/internal/config"
	"caffito/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircuitBreaker_AbreYRecupera(t *testing.T) {
	var cambios []string
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 2,
		SuccessThreshold: 1,
		OpenTimeout:      time.Minute,
		OnStateChange:    func(from, to CBState) { cambios = append(cambios, from.String()+">"+to.String()) },
	})
	ahora := time.Now()
	cb.now = func() time.Time { return ahora }

	falla := errors.New("sin papel")
	assert.ErrorIs(t, cb.Execute(func() error { return falla }), falla)
	assert.ErrorIs(t, cb.Execute(func() error { return falla }), falla)
	assert.Equal(t, CBOpen, cb.State())

	llamado := false
	err := cb.Execute(func() error { llamado = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, llamado)

	ahora = ahora.Add(2 * time.Minute)
	assert.Equal(t, CBHalfOpen, cb.State())
	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, CBClosed, cb.State())

	assert.Equal(t, []string{"closed>open", "open>half-open", "half-open>closed"}, cambios)
}

func TestPrintBridge_Imprimir(t *testing.T) {
	var recibido PrintRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/print", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&recibido))
		_ = json.NewEncoder(w).Encode(PrintResponse{Success: true})
	}))
	defer srv.Close()

	b := NewPrintBridge(srv.URL)
	require.NoError(t, b.Imprimir(context.Background(), "ticketera", "hola"))
	assert.Equal(t, PrintRequest{Printer: "ticketera", Content: "hola", Raw: true}, recibido)
}

func TestPrintBridge_Rechazo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(PrintResponse{Success: false, Message: "impresora desconectada"})
	}))
	defer srv.Close()

	err := NewPrintBridge(srv.URL).Imprimir(context.Background(), "x", "y")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "impresora desconectada")
}

func facturaDePrueba() *model.Factura {
	cant := 2
	peso := decimal.RequireFromString("0.320")
	return &model.Factura{
		ID:              uuid.New(),
		TipoComprobante: "factura_b",
		PuntoDeVenta:    1,
		Numero:          42,
		Subtotal:        decimal.RequireFromString("1587"),
		Descuento:       decimal.RequireFromString("87"),
		Total:           decimal.RequireFromString("1500"),
		CreatedAt:       time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC),
		Renglones: []model.FacturaRenglon{
			{Detalle: "Cafe molido", Cantidad: &cant, PrecioVenta: decimal.NewFromInt(150), Importe: decimal.NewFromInt(300)},
			{Detalle: "Queso", Peso: &peso, PrecioVenta: decimal.NewFromInt(1287), Importe: decimal.NewFromInt(1287)},
		},
		Pagos: []model.FacturaPago{{TipoPagoNombre: "Efectivo", Monto: decimal.NewFromInt(1500)}},
	}
}

func TestTicketTexto(t *testing.T) {
	txt := TicketTexto(facturaDePrueba(), "Caffito", 32)

	assert.Contains(t, txt, "FACTURA B 0001-00000042")
	assert.Contains(t, txt, "2 x $150.00")
	assert.Contains(t, txt, "0.320 kg")
	assert.Contains(t, txt, "-$87.00")
	for _, linea := range strings.Split(strings.TrimRight(txt, "\n"), "\n") {
		assert.LessOrEqual(t, len([]rune(linea)), 32, linea)
	}
}

func TestGenerateFacturaPDF(t *testing.T) {
	dir := t.TempDir()
	path, err := GenerateFacturaPDF(facturaDePrueba(), "Caffito", dir)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"))
	assert.Contains(t, path, "factura_factura_b_0001_00000042.pdf")
}

// ── mailer ────────────────────────────────────────────────────────────────────

func TestMailer_Validaciones(t *testing.T) {
	m := NewMailer(&config.Config{SMTPPort: 587, SMTPUser: "ventas@caffito.test", NombreNegocio: "Caffito"})
	assert.False(t, m.Configurado())
	assert.Equal(t, `"Caffito" <ventas@caffito.test>`, m.from)
	assert.ErrorContains(t, m.SendFactura("a@b.c", "x", "y", ""), "SMTP_HOST")

	m.host = "localhost"
	assert.ErrorContains(t, m.SendFactura("no es un mail", "x", "y", ""), "destinatario")
	assert.ErrorContains(t, m.SendFactura("a@b.c", "x", "y", "/no/existe.pdf"), "existe.pdf")
}
