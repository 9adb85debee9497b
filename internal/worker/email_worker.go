package worker

// email_worker.go
// Renders the invoice PDF and sends it to the client over SMTP.

import (
	"context"
	"encoding/json"
	"fmt"

	"caffito/internal/infra"
	"caffito/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// EmailPayload is the job envelope sent to QueueEmail.
type EmailPayload struct {
	FacturaID string `json:"factura_id"`
	ToEmail   string `json:"to_email"`
}

// Enviador sends an e-mail with an optional attachment.
type Enviador interface {
	SendFactura(to, subject, body, pdfPath string) error
}

type EmailWorker struct {
	facturas    repository.FacturaRepository
	mailer      Enviador
	negocio     string
	storagePath string
}

func NewEmailWorker(facturas repository.FacturaRepository, mailer Enviador, negocio, storagePath string) *EmailWorker {
	return &EmailWorker{facturas: facturas, mailer: mailer, negocio: negocio, storagePath: storagePath}
}

// Process sends the invoice with its PDF attached. An empty address is
// skipped, not failed.
func (w *EmailWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload EmailPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("email: invalid payload: %w", err)
	}
	if payload.ToEmail == "" {
		log.Warn().Str("factura_id", payload.FacturaID).Msg("email_worker: empty to_email, skipping")
		return nil
	}
	id, err := uuid.Parse(payload.FacturaID)
	if err != nil {
		return fmt.Errorf("email: invalid factura_id %q", payload.FacturaID)
	}
	f, err := w.facturas.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("email: factura %s: %w", id, err)
	}

	pdfPath, err := infra.GenerateFacturaPDF(f, w.negocio, w.storagePath)
	if err != nil {
		return fmt.Errorf("email: pdf: %w", err)
	}

	numero := infra.NumeroFormateado(f)
	subject := fmt.Sprintf("%s: comprobante %s", w.negocio, numero)
	body := fmt.Sprintf("Adjuntamos su comprobante %s.\nTotal: $%s\n", numero, f.Total.StringFixed(2))
	if err := w.mailer.SendFactura(payload.ToEmail, subject, body, pdfPath); err != nil {
		return fmt.Errorf("email: send to %s: %w", payload.ToEmail, err)
	}
	log.Info().Str("to", payload.ToEmail).Str("factura_id", payload.FacturaID).Msg("email_worker: factura sent")
	return nil
}
