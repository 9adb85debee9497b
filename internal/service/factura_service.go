package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"caffito/internal/dto"
	"caffito/internal/infra"
	"caffito/internal/metrics"
	"caffito/internal/model"
	"caffito/internal/pos"
	"caffito/internal/repository"
	"caffito/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Despachador enqueues the after-sale jobs. *worker.Dispatcher implements it.
type Despachador interface {
	EnqueueImpresion(ctx context.Context, payload worker.ImpresionPayload) error
	EnqueueEmail(ctx context.Context, payload worker.EmailPayload) error
}

type FacturaService interface {
	// Finalizar persists the in-progress invoice and its side effects in one
	// transaction. The cart itself is not touched.
	Finalizar(ctx context.Context, sesionID uuid.UUID, f *pos.Factura) (*dto.FacturaResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.FacturaResponse, error)
	Listar(ctx context.Context, filter dto.FacturaFilter) (dto.Lista[dto.FacturaResponse], error)
	Anular(ctx context.Context, usuarioID, id uuid.UUID, req dto.AnularFacturaRequest) (*dto.FacturaResponse, error)
	// PDF renders the invoice and returns the file path.
	PDF(ctx context.Context, id uuid.UUID) (string, error)
	Reimprimir(ctx context.Context, id uuid.UUID) error
}

type facturaService struct {
	repo        repository.FacturaRepository
	productos   repository.ProductoRepository
	movimientos repository.MovimientoStockRepository
	caja        repository.CajaRepository
	clientes    repository.ClienteRepository
	cuentas     repository.CuentaCorrienteRepository
	despachador Despachador
	negocio     string
	pdfPath     string
}

// FacturaDeps groups the repositories the invoice service writes to.
type FacturaDeps struct {
	Facturas    repository.FacturaRepository
	Productos   repository.ProductoRepository
	Movimientos repository.MovimientoStockRepository
	Caja        repository.CajaRepository
	Clientes    repository.ClienteRepository
	Cuentas     repository.CuentaCorrienteRepository
}

// NewFacturaService builds the service. despachador may be nil, in which
// case no tickets are printed or e-mailed.
func NewFacturaService(deps FacturaDeps, despachador Despachador, negocio, pdfPath string) FacturaService {
	return &facturaService{
		repo:        deps.Facturas,
		productos:   deps.Productos,
		movimientos: deps.Movimientos,
		caja:        deps.Caja,
		clientes:    deps.Clientes,
		cuentas:     deps.Cuentas,
		despachador: despachador,
		negocio:     negocio,
		pdfPath:     pdfPath,
	}
}

// ── Finalizar ─────────────────────────────────────────────────────────────────
// One transaction:
//   1. the caja session must be open (row share-locked so a close waits)
//   2. next talonario number
//   3. factura + renglones + pagos
//   4. stock decrement per product line (weight lines by Peso)
//   5. one CajaRenglon per payment, cuenta corriente excluded; change handed
//      back is a negative efectivo renglon
//   6. cuenta corriente payments debit the client's account within its limit
// After commit the print and e-mail jobs are enqueued.

func (s *facturaService) Finalizar(ctx context.Context, sesionID uuid.UUID, f *pos.Factura) (*dto.FacturaResponse, error) {
	if err := f.Validar(); err != nil {
		return nil, err
	}
	cliente, err := s.clientes.FindByID(ctx, f.ClienteID)
	if err != nil {
		return nil, noEncontrado(err, "cliente")
	}
	if !cliente.Activo {
		return nil, fmt.Errorf("cliente %s: %w", cliente.Nombre, ErrInactivo)
	}

	factura := &model.Factura{
		TipoComprobante: f.Comprobante.Tipo,
		ClienteID:       f.ClienteID,
		TipoDocumento:   f.Comprobante.TipoDocumento,
		NumeroDocumento: f.Comprobante.NumeroDocumento,
		UsuarioID:       f.UsuarioID,
		SesionCajaID:    sesionID,
		Subtotal:        f.Subtotal,
		Descuento:       f.Descuento,
		Interes:         f.Interes,
		Total:           f.Total,
		Estado:          "emitida",
		Renglones:       facturaRenglones(f.Renglones),
		Pagos:           facturaPagos(f.Pagos),
	}
	if f.Promocion != nil {
		id := f.Promocion.ID
		factura.PromocionID = &id
	}
	// The account is never charged more than the invoice total.
	deuda := decimal.Zero
	for _, p := range f.Pagos {
		if p.TipoPagoCodigo == pos.CodigoCuentaCorriente {
			deuda = deuda.Add(p.Monto)
		}
	}
	deuda = decimal.Min(deuda, f.Total)
	vuelto := f.Vuelto()

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		sesion, err := s.caja.FindSesionAbiertaTx(tx, sesionID)
		if err != nil {
			return cajaAbierta(err)
		}
		factura.PuntoDeVenta = sesion.PuntoDeVenta

		if factura.Numero, err = s.repo.SiguienteNumeroTx(tx, factura.TipoComprobante, sesion.PuntoDeVenta); err != nil {
			return fmt.Errorf("talonario: %w", err)
		}
		if err := s.repo.CreateTx(tx, factura); err != nil {
			return err
		}
		numero := infra.NumeroFormateado(factura)

		for _, r := range factura.Renglones {
			if r.ProductoID == nil {
				continue
			}
			if _, err := moverStockTx(tx, s.productos, s.movimientos, *r.ProductoID, cantidadVendida(r).Neg(),
				MovimientoVenta, "Factura "+numero, &factura.ID); err != nil {
				return noEncontrado(err, "producto")
			}
		}

		for _, p := range factura.Pagos {
			if p.TipoPagoCodigo == pos.CodigoCuentaCorriente {
				continue
			}
			if err := s.renglonCaja(tx, sesionID, "venta", p.TipoPagoCodigo, p.Monto, "Factura "+numero, factura.ID); err != nil {
				return err
			}
		}
		if vuelto.IsPositive() {
			if err := s.renglonCaja(tx, sesionID, "vuelto", pos.CodigoEfectivo, vuelto.Neg(), "Vuelto factura "+numero, factura.ID); err != nil {
				return err
			}
		}

		if deuda.IsPositive() {
			return s.debitarTx(tx, factura, deuda, "Factura "+numero)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	factura.Cliente = cliente
	metrics.FacturasEmitidas.WithLabelValues(factura.TipoComprobante).Inc()
	log.Info().
		Str("factura_id", factura.ID.String()).
		Str("numero", infra.NumeroFormateado(factura)).
		Str("total", factura.Total.String()).
		Int("renglones", len(factura.Renglones)).
		Msg("factura emitida")

	s.despachar(ctx, factura)
	resp := facturaToResponse(factura)
	return &resp, nil
}

func (s *facturaService) renglonCaja(tx *gorm.DB, sesionID uuid.UUID, tipo, metodo string, monto decimal.Decimal, descripcion string, ref uuid.UUID) error {
	m := metodo
	return s.caja.CreateRenglonTx(tx, &model.CajaRenglon{
		SesionCajaID: sesionID,
		Tipo:         tipo,
		MetodoPago:   &m,
		Monto:        monto,
		Descripcion:  descripcion,
		ReferenciaID: &ref,
	})
}

// debitarTx charges the client's account. The walk-in client has no account,
// and the resulting balance may not exceed the credit limit.
func (s *facturaService) debitarTx(tx *gorm.DB, factura *model.Factura, deuda decimal.Decimal, descripcion string) error {
	cliente, err := s.clientes.FindByIDForUpdateTx(tx, factura.ClienteID)
	if err != nil {
		return noEncontrado(err, "cliente")
	}
	if cliente.EsConsumidorFinal {
		return ErrConsumidorFinal
	}
	saldo, err := s.cuentas.SaldoTx(tx, cliente.ID)
	if err != nil {
		return err
	}
	if saldo.Add(deuda).GreaterThan(cliente.LimiteCredito) {
		return fmt.Errorf("%w: saldo %s + %s > limite %s", ErrLimiteCredito,
			saldo.StringFixed(2), deuda.StringFixed(2), cliente.LimiteCredito.StringFixed(2))
	}
	usuario := factura.UsuarioID
	return s.cuentas.CreateTx(tx, &model.MovimientoCuentaCorriente{
		ClienteID:   cliente.ID,
		FacturaID:   &factura.ID,
		Debe:        deuda,
		Descripcion: descripcion,
		UsuarioID:   usuarioRef(usuario),
	})
}

// despachar enqueues the ticket print and, for identified clients with an
// address, the e-mail. Failures are logged; the sale is already committed.
func (s *facturaService) despachar(ctx context.Context, f *model.Factura) {
	if s.despachador == nil {
		return
	}
	if err := s.despachador.EnqueueImpresion(ctx, worker.ImpresionPayload{FacturaID: f.ID.String()}); err != nil {
		log.Warn().Err(err).Str("factura_id", f.ID.String()).Msg("no se pudo encolar la impresion")
	}
	c := f.Cliente
	if c == nil || c.EsConsumidorFinal || c.Email == nil || *c.Email == "" {
		return
	}
	if err := s.despachador.EnqueueEmail(ctx, worker.EmailPayload{FacturaID: f.ID.String(), ToEmail: *c.Email}); err != nil {
		log.Warn().Err(err).Str("factura_id", f.ID.String()).Msg("no se pudo encolar el email")
	}
}

// ── Anular ────────────────────────────────────────────────────────────────────
// Cancellation never edits the original rows: stock comes back through
// "anulacion" movements, cash through negative caja renglones and the
// account through a haber entry.

func (s *facturaService) Anular(ctx context.Context, usuarioID, id uuid.UUID, req dto.AnularFacturaRequest) (*dto.FacturaResponse, error) {
	var sesionOverride *uuid.UUID
	if req.SesionCajaID != nil {
		sid, err := uuid.Parse(*req.SesionCajaID)
		if err != nil {
			return nil, fmt.Errorf("sesion_caja_id: %w", ErrIDInvalido)
		}
		sesionOverride = &sid
	}

	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		f, err := s.repo.FindByIDForUpdateTx(tx, id)
		if err != nil {
			return noEncontrado(err, "factura")
		}
		if f.Estado == "anulada" {
			return ErrFacturaAnulada
		}
		sesionID := f.SesionCajaID
		if sesionOverride != nil {
			sesionID = *sesionOverride
		}
		if _, err := s.caja.FindSesionAbiertaTx(tx, sesionID); err != nil {
			return cajaAbierta(err)
		}
		if err := s.repo.AnularTx(tx, id, req.Motivo); err != nil {
			return err
		}
		numero := infra.NumeroFormateado(f)
		motivo := "Anulacion factura " + numero

		for _, r := range f.Renglones {
			if r.ProductoID == nil {
				continue
			}
			if _, err := moverStockTx(tx, s.productos, s.movimientos, *r.ProductoID, cantidadVendida(r),
				MovimientoAnulacion, motivo, &f.ID); err != nil {
				return noEncontrado(err, "producto")
			}
		}

		pagado, deuda := decimal.Zero, decimal.Zero
		for _, p := range f.Pagos {
			pagado = pagado.Add(p.Monto)
			if p.TipoPagoCodigo == pos.CodigoCuentaCorriente {
				deuda = deuda.Add(p.Monto)
				continue
			}
			if err := s.renglonCaja(tx, sesionID, "anulacion", p.TipoPagoCodigo, p.Monto.Neg(), motivo, f.ID); err != nil {
				return err
			}
		}
		if vuelto := pagado.Sub(f.Total); vuelto.IsPositive() {
			if err := s.renglonCaja(tx, sesionID, "anulacion", pos.CodigoEfectivo, vuelto, "Vuelto "+motivo, f.ID); err != nil {
				return err
			}
		}
		if deuda.IsPositive() {
			return s.cuentas.CreateTx(tx, &model.MovimientoCuentaCorriente{
				ClienteID:   f.ClienteID,
				FacturaID:   &f.ID,
				Haber:       deuda,
				Descripcion: motivo,
				UsuarioID:   usuarioRef(usuarioID),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.FacturasAnuladas.Inc()
	log.Info().Str("factura_id", id.String()).Str("motivo", req.Motivo).Msg("factura anulada")
	return s.ObtenerPorID(ctx, id)
}

// ── Consultas ─────────────────────────────────────────────────────────────────

func (s *facturaService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.FacturaResponse, error) {
	f, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, noEncontrado(err, "factura")
	}
	resp := facturaToResponse(f)
	return &resp, nil
}

func (s *facturaService) Listar(ctx context.Context, filter dto.FacturaFilter) (dto.Lista[dto.FacturaResponse], error) {
	filter.Paginacion = filter.Paginacion.Normalizar()
	facturas, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.Lista[dto.FacturaResponse]{}, err
	}
	items := make([]dto.FacturaResponse, 0, len(facturas))
	for i := range facturas {
		items = append(items, facturaToResponse(&facturas[i]))
	}
	return dto.NuevaLista(items, total, filter.Paginacion), nil
}

func (s *facturaService) PDF(ctx context.Context, id uuid.UUID) (string, error) {
	f, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return "", noEncontrado(err, "factura")
	}
	return infra.GenerateFacturaPDF(f, s.negocio, s.pdfPath)
}

func (s *facturaService) Reimprimir(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return noEncontrado(err, "factura")
	}
	if s.despachador == nil {
		return errors.New("impresion no configurada")
	}
	return s.despachador.EnqueueImpresion(ctx, worker.ImpresionPayload{FacturaID: id.String()})
}

// ── Mapping ───────────────────────────────────────────────────────────────────

func cantidadVendida(r model.FacturaRenglon) decimal.Decimal {
	if r.Peso != nil {
		return *r.Peso
	}
	if r.Cantidad != nil {
		return decimal.NewFromInt(int64(*r.Cantidad))
	}
	return decimal.Zero
}

func facturaRenglones(renglones []pos.Renglon) []model.FacturaRenglon {
	out := make([]model.FacturaRenglon, 0, len(renglones))
	for i, r := range renglones {
		fr := model.FacturaRenglon{
			Orden:       i + 1,
			ProductoID:  r.ProductoID,
			Detalle:     r.Detalle,
			Peso:        r.Peso,
			PrecioVenta: r.PrecioVenta,
			Importe:     r.Importe(),
		}
		if r.Codigo != "" {
			codigo := r.Codigo
			fr.Codigo = &codigo
		}
		if !r.EsPesado() {
			cantidad := r.Cantidad
			fr.Cantidad = &cantidad
		}
		out = append(out, fr)
	}
	return out
}

func facturaPagos(pagos []pos.Pago) []model.FacturaPago {
	out := make([]model.FacturaPago, 0, len(pagos))
	for _, p := range pagos {
		out = append(out, model.FacturaPago{
			TipoPagoID:     p.TipoPagoID,
			TipoPagoCodigo: p.TipoPagoCodigo,
			TipoPagoNombre: p.TipoPagoNombre,
			Monto:          p.Monto,
		})
	}
	return out
}

func facturaToResponse(f *model.Factura) dto.FacturaResponse {
	resp := dto.FacturaResponse{
		ID:               f.ID.String(),
		TipoComprobante:  f.TipoComprobante,
		PuntoDeVenta:     f.PuntoDeVenta,
		Numero:           f.Numero,
		NumeroFormateado: infra.NumeroFormateado(f),
		ClienteID:        f.ClienteID.String(),
		TipoDocumento:    f.TipoDocumento,
		NumeroDocumento:  f.NumeroDocumento,
		Subtotal:         f.Subtotal,
		Descuento:        f.Descuento,
		Interes:          f.Interes,
		Total:            f.Total,
		Estado:           f.Estado,
		Renglones:        make([]dto.FacturaRenglonResponse, 0, len(f.Renglones)),
		Pagos:            make([]dto.FacturaPagoResponse, 0, len(f.Pagos)),
		CreatedAt:        f.CreatedAt.Format(time.RFC3339),
	}
	if f.Cliente != nil {
		resp.ClienteNombre = &f.Cliente.Nombre
	}
	for _, r := range f.Renglones {
		resp.Renglones = append(resp.Renglones, dto.FacturaRenglonResponse{
			ProductoID:  optUUIDString(r.ProductoID),
			Codigo:      r.Codigo,
			Detalle:     r.Detalle,
			Cantidad:    r.Cantidad,
			Peso:        r.Peso,
			PrecioVenta: r.PrecioVenta,
			Importe:     r.Importe,
		})
	}
	for _, p := range f.Pagos {
		resp.Pagos = append(resp.Pagos, dto.FacturaPagoResponse{
			TipoPagoID:     p.TipoPagoID.String(),
			TipoPagoCodigo: p.TipoPagoCodigo,
			TipoPagoNombre: p.TipoPagoNombre,
			Monto:          p.Monto,
		})
	}
	return resp
}
