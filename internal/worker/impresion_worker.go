package worker

// impresion_worker.go
// Prints the ticket of a finalized invoice on the register's thermal printer
// through the print bridge, guarded by the circuit breaker.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"caffito/internal/infra"
	"caffito/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ImpresionPayload is the job envelope sent to QueueImpresion.
type ImpresionPayload struct {
	FacturaID string `json:"factura_id"`
	// Printer overrides the configured printer name.
	Printer string `json:"printer,omitempty"`
}

// Impresora sends text to a named printer.
type Impresora interface {
	Imprimir(ctx context.Context, printer, content string) error
}

type ImpresionWorker struct {
	facturas repository.FacturaRepository
	bridge   Impresora
	cb       *infra.CircuitBreaker
	printer  string
	negocio  string
	ancho    int
	backoff  time.Duration
}

func NewImpresionWorker(
	facturas repository.FacturaRepository,
	bridge Impresora,
	cb *infra.CircuitBreaker,
	printer, negocio string,
	ancho int,
) *ImpresionWorker {
	return &ImpresionWorker{
		facturas: facturas,
		bridge:   bridge,
		cb:       cb,
		printer:  printer,
		negocio:  negocio,
		ancho:    ancho,
		backoff:  time.Second,
	}
}

// Process renders the ticket and sends it, retrying up to 3 times. An open
// breaker fails fast and the job waits in the DLQ for the retry cron.
func (w *ImpresionWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload ImpresionPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("impresion: invalid payload: %w", err)
	}
	id, err := uuid.Parse(payload.FacturaID)
	if err != nil {
		return fmt.Errorf("impresion: invalid factura_id %q", payload.FacturaID)
	}
	f, err := w.facturas.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("impresion: factura %s: %w", id, err)
	}

	printer := w.printer
	if payload.Printer != "" {
		printer = payload.Printer
	}
	texto := infra.TicketTexto(f, w.negocio, w.ancho)

	err = withRetry(ctx, 3, w.backoff, func(attempt int) error {
		err := w.cb.Execute(func() error {
			return w.bridge.Imprimir(ctx, printer, texto)
		})
		if err != nil {
			log.Warn().
				Err(err).
				Int("attempt", attempt+1).
				Str("factura_id", payload.FacturaID).
				Msg("impresion_worker: print attempt failed")
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("impresion: %w", err)
	}
	log.Info().Str("factura_id", payload.FacturaID).Str("printer", printer).Msg("impresion_worker: ticket printed")
	return nil
}
