package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"caffito/internal/dto"
	"caffito/internal/infra"
	"caffito/internal/model"
	"caffito/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── stubs ─────────────────────────────────────────────────────────────────────

type stubFacturaRepo struct {
	facturas map[uuid.UUID]*model.Factura
}

var _ repository.FacturaRepository = (*stubFacturaRepo)(nil)

func (r *stubFacturaRepo) CreateTx(_ *gorm.DB, f *model.Factura) error { return nil }
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
func (r *stubFacturaRepo) AnularTx(_ *gorm.DB, _ uuid.UUID, _ string) error { return nil }
func (r *stubFacturaRepo) SiguienteNumeroTx(_ *gorm.DB, _ string, _ int) (int64, error) {
	return 1, nil
}
func (r *stubFacturaRepo) List(_ context.Context, _ dto.FacturaFilter) ([]model.Factura, int64, error) {
	return nil, 0, nil
}
func (r *stubFacturaRepo) DB() *gorm.DB { return nil }

type stubImpresora struct {
	fallas   int
	llamadas int
	printer  string
	texto    string
}

func (s *stubImpresora) Imprimir(_ context.Context, printer, content string) error {
	s.llamadas++
	if s.llamadas <= s.fallas {
		return errors.New("sin papel")
	}
	s.printer, s.texto = printer, content
	return nil
}

type stubMailer struct {
	to, subject, pdf string
}

func (m *stubMailer) SendFactura(to, subject, _ string, pdfPath string) error {
	m.to, m.subject, m.pdf = to, subject, pdfPath
	return nil
}

func facturaDePrueba() *model.Factura {
	cant := 2
	return &model.Factura{
		ID:              uuid.New(),
		TipoComprobante: "factura_b",
		PuntoDeVenta:    1,
		Numero:          42,
		Subtotal:        decimal.NewFromInt(200),
		Total:           decimal.NewFromInt(200),
		CreatedAt:       time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		Renglones: []model.FacturaRenglon{{
			Detalle: "Yerba 1kg", Cantidad: &cant,
			PrecioVenta: decimal.NewFromInt(100), Importe: decimal.NewFromInt(200),
		}},
		Pagos: []model.FacturaPago{{TipoPagoNombre: "Efectivo", Monto: decimal.NewFromInt(200)}},
	}
}

func payload(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

// ── impresion ─────────────────────────────────────────────────────────────────

func TestImpresionWorker_ImprimeTicket(t *testing.T) {
	f := facturaDePrueba()
	repo := &stubFacturaRepo{facturas: map[uuid.UUID]*model.Factura{f.ID: f}}
	bridge := &stubImpresora{fallas: 1}
	w := NewImpresionWorker(repo, bridge, infra.NewCircuitBreaker(infra.DefaultCBConfig()), "caja1", "Caffito", 40)
	w.backoff = time.Millisecond

	err := w.Process(context.Background(), payload(t, ImpresionPayload{FacturaID: f.ID.String()}))
	require.NoError(t, err)
	assert.Equal(t, 2, bridge.llamadas)
	assert.Equal(t, "caja1", bridge.printer)
	assert.Contains(t, bridge.texto, "0001-00000042")
	assert.Contains(t, bridge.texto, "Yerba 1kg")
}

func TestImpresionWorker_PrinterDelPayload(t *testing.T) {
	f := facturaDePrueba()
	repo := &stubFacturaRepo{facturas: map[uuid.UUID]*model.Factura{f.ID: f}}
	bridge := &stubImpresora{}
	w := NewImpresionWorker(repo, bridge, infra.NewCircuitBreaker(infra.DefaultCBConfig()), "caja1", "Caffito", 40)

	require.NoError(t, w.Process(context.Background(), payload(t, ImpresionPayload{FacturaID: f.ID.String(), Printer: "deposito"})))
	assert.Equal(t, "deposito", bridge.printer)
}

func TestImpresionWorker_FallaTrasReintentos(t *testing.T) {
	f := facturaDePrueba()
	repo := &stubFacturaRepo{facturas: map[uuid.UUID]*model.Factura{f.ID: f}}
	bridge := &stubImpresora{fallas: 10}
	w := NewImpresionWorker(repo, bridge, infra.NewCircuitBreaker(infra.CircuitBreakerConfig{FailureThreshold: 10}), "caja1", "Caffito", 40)
	w.backoff = time.Millisecond

	err := w.Process(context.Background(), payload(t, ImpresionPayload{FacturaID: f.ID.String()}))
	require.Error(t, err)
	assert.Equal(t, 3, bridge.llamadas)
}

func TestImpresionWorker_BreakerAbiertoNoLlamaAlBridge(t *testing.T) {
	f := facturaDePrueba()
	repo := &stubFacturaRepo{facturas: map[uuid.UUID]*model.Factura{f.ID: f}}
	bridge := &stubImpresora{fallas: 10}
	cb := infra.NewCircuitBreaker(infra.CircuitBreakerConfig{FailureThreshold: 1, OpenTimeout: time.Hour})
	_ = cb.Execute(func() error { return errors.New("x") })
	require.Equal(t, infra.CBOpen, cb.State())

	w := NewImpresionWorker(repo, bridge, cb, "caja1", "Caffito", 40)
	w.backoff = time.Millisecond
	err := w.Process(context.Background(), payload(t, ImpresionPayload{FacturaID: f.ID.String()}))
	require.ErrorIs(t, err, infra.ErrCircuitOpen)
	assert.Zero(t, bridge.llamadas)
}

func TestImpresionWorker_PayloadInvalido(t *testing.T) {
	w := NewImpresionWorker(&stubFacturaRepo{}, &stubImpresora{}, infra.NewCircuitBreaker(infra.DefaultCBConfig()), "", "", 40)
	assert.Error(t, w.Process(context.Background(), json.RawMessage(`{"factura_id":"x"}`)))
	assert.Error(t, w.Process(context.Background(), json.RawMessage(`not json`)))
}

// ── email ─────────────────────────────────────────────────────────────────────

func TestEmailWorker_EnviaPDF(t *testing.T) {
	f := facturaDePrueba()
	repo := &stubFacturaRepo{facturas: map[uuid.UUID]*model.Factura{f.ID: f}}
	mailer := &stubMailer{}
	w := NewEmailWorker(repo, mailer, "Caffito", t.TempDir())

	err := w.Process(context.Background(), payload(t, EmailPayload{FacturaID: f.ID.String(), ToEmail: "cliente@example.com"}))
	require.NoError(t, err)
	assert.Equal(t, "cliente@example.com", mailer.to)
	assert.Contains(t, mailer.subject, "0001-00000042")
	assert.FileExists(t, mailer.pdf)
}

func TestEmailWorker_SinDestinatarioSeOmite(t *testing.T) {
	mailer := &stubMailer{}
	w := NewEmailWorker(&stubFacturaRepo{}, mailer, "Caffito", t.TempDir())
	require.NoError(t, w.Process(context.Background(), payload(t, EmailPayload{FacturaID: uuid.NewString()})))
	assert.Empty(t, mailer.to)
}

func TestEmailWorker_FacturaInexistente(t *testing.T) {
	w := NewEmailWorker(&stubFacturaRepo{}, &stubMailer{}, "Caffito", t.TempDir())
	err := w.Process(context.Background(), payload(t, EmailPayload{FacturaID: uuid.NewString(), ToEmail: "a@b.c"}))
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

// ── withRetry ─────────────────────────────────────────────────────────────────

func TestWithRetry(t *testing.T) {
	intentos := 0
	err := withRetry(context.Background(), 3, time.Millisecond, func(int) error {
		intentos++
		if intentos < 3 {
			return errors.New("falla")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, intentos)
}

func TestWithRetry_ContextoCancelado(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := withRetry(ctx, 3, time.Hour, func(int) error { return errors.New("falla") })
	assert.ErrorIs(t, err, context.Canceled)
}
