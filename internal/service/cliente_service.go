package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"caffito/internal/dto"
	"caffito/internal/model"
	"caffito/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ClienteService interface {
	Crear(ctx context.Context, req dto.CrearClienteRequest) (*dto.ClienteResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ClienteResponse, error)
	Listar(ctx context.Context, filter dto.ClienteFilter) (dto.Lista[dto.ClienteResponse], error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarClienteRequest) (*dto.ClienteResponse, error)
	Desactivar(ctx context.Context, id uuid.UUID) error
	// ConsumidorFinal returns the walk-in client new carts start with.
	ConsumidorFinal(ctx context.Context) (*model.Cliente, error)
}

type clienteService struct {
	repo repository.ClienteRepository
}

func NewClienteService(repo repository.ClienteRepository) ClienteService {
	return &clienteService{repo: repo}
}

func (s *clienteService) Crear(ctx context.Context, req dto.CrearClienteRequest) (*dto.ClienteResponse, error) {
	c := &model.Cliente{
		Nombre:          strings.TrimSpace(req.Nombre),
		TipoDocumento:   req.TipoDocumento,
		NumeroDocumento: strings.TrimSpace(req.NumeroDocumento),
		Email:           req.Email,
		Telefono:        req.Telefono,
		Direccion:       req.Direccion,
		Activo:          true,
	}
	if req.LimiteCredito != nil {
		if req.LimiteCredito.IsNegative() {
			return nil, fmt.Errorf("limite de credito: %w", ErrMontoNegativo)
		}
		c.LimiteCredito = *req.LimiteCredito
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, duplicado(err, "cliente")
	}
	resp := clienteToResponse(c)
	return &resp, nil
}

func (s *clienteService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ClienteResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, noEncontrado(err, "cliente")
	}
	resp := clienteToResponse(c)
	return &resp, nil
}

func (s *clienteService) Listar(ctx context.Context, filter dto.ClienteFilter) (dto.Lista[dto.ClienteResponse], error) {
	filter.Paginacion = filter.Paginacion.Normalizar()
	clientes, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.Lista[dto.ClienteResponse]{}, err
	}
	items := make([]dto.ClienteResponse, 0, len(clientes))
	for i := range clientes {
		items = append(items, clienteToResponse(&clientes[i]))
	}
	return dto.NuevaLista(items, total, filter.Paginacion), nil
}

// Actualizar rejects any change to the walk-in client; it is seeded and
// shared by every register.
func (s *clienteService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarClienteRequest) (*dto.ClienteResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, noEncontrado(err, "cliente")
	}
	if c.EsConsumidorFinal {
		return nil, ErrConsumidorFinalUnico
	}
	if req.Nombre != nil {
		c.Nombre = strings.TrimSpace(*req.Nombre)
	}
	if req.TipoDocumento != nil {
		c.TipoDocumento = *req.TipoDocumento
	}
	if req.NumeroDocumento != nil {
		c.NumeroDocumento = strings.TrimSpace(*req.NumeroDocumento)
	}
	if req.Email != nil {
		c.Email = req.Email
	}
	if req.Telefono != nil {
		c.Telefono = req.Telefono
	}
	if req.Direccion != nil {
		c.Direccion = req.Direccion
	}
	if req.LimiteCredito != nil {
		c.LimiteCredito = *req.LimiteCredito
	}
	if req.Activo != nil {
		c.Activo = *req.Activo
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, duplicado(err, "cliente")
	}
	resp := clienteToResponse(c)
	return &resp, nil
}

func (s *clienteService) Desactivar(ctx context.Context, id uuid.UUID) error {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return noEncontrado(err, "cliente")
	}
	if c.EsConsumidorFinal {
		return ErrConsumidorFinalUnico
	}
	c.Activo = false
	return s.repo.Update(ctx, c)
}

func (s *clienteService) ConsumidorFinal(ctx context.Context) (*model.Cliente, error) {
	c, err := s.repo.FindConsumidorFinal(ctx)
	if err != nil {
		return nil, noEncontrado(err, "consumidor final")
	}
	return c, nil
}

func clienteToResponse(c *model.Cliente) dto.ClienteResponse {
	return dto.ClienteResponse{
		ID:                c.ID.String(),
		Nombre:            c.Nombre,
		TipoDocumento:     c.TipoDocumento,
		NumeroDocumento:   c.NumeroDocumento,
		Email:             c.Email,
		Telefono:          c.Telefono,
		Direccion:         c.Direccion,
		LimiteCredito:     c.LimiteCredito,
		EsConsumidorFinal: c.EsConsumidorFinal,
		Activo:            c.Activo,
	}
}

// ── Cuenta corriente ──────────────────────────────────────────────────────────

type CuentaCorrienteService interface {
	Movimientos(ctx context.Context, clienteID uuid.UUID, p dto.Paginacion) (dto.Lista[dto.MovimientoCuentaCorrienteResponse], error)
	Saldo(ctx context.Context, clienteID uuid.UUID) (*dto.SaldoResponse, error)
	// RegistrarPago credits the account and records the cash-in in the open
	// caja session, in one transaction.
	RegistrarPago(ctx context.Context, usuarioID, clienteID uuid.UUID, req dto.PagoCuentaCorrienteRequest) (*dto.SaldoResponse, error)
}

type cuentaCorrienteService struct {
	clientes repository.ClienteRepository
	cuentas  repository.CuentaCorrienteRepository
	caja     repository.CajaRepository
}

func NewCuentaCorrienteService(
	clientes repository.ClienteRepository,
	cuentas repository.CuentaCorrienteRepository,
	caja repository.CajaRepository,
) CuentaCorrienteService {
	return &cuentaCorrienteService{clientes: clientes, cuentas: cuentas, caja: caja}
}

func (s *cuentaCorrienteService) Movimientos(ctx context.Context, clienteID uuid.UUID, p dto.Paginacion) (dto.Lista[dto.MovimientoCuentaCorrienteResponse], error) {
	if _, err := s.clientes.FindByID(ctx, clienteID); err != nil {
		return dto.Lista[dto.MovimientoCuentaCorrienteResponse]{}, noEncontrado(err, "cliente")
	}
	p = p.Normalizar()
	rows, total, err := s.cuentas.List(ctx, clienteID, p)
	if err != nil {
		return dto.Lista[dto.MovimientoCuentaCorrienteResponse]{}, err
	}
	items := make([]dto.MovimientoCuentaCorrienteResponse, 0, len(rows))
	for _, m := range rows {
		items = append(items, dto.MovimientoCuentaCorrienteResponse{
			ID:          m.ID.String(),
			FacturaID:   optUUIDString(m.FacturaID),
			Debe:        m.Debe,
			Haber:       m.Haber,
			Descripcion: m.Descripcion,
			CreatedAt:   m.CreatedAt.Format(time.RFC3339),
		})
	}
	return dto.NuevaLista(items, total, p), nil
}

func (s *cuentaCorrienteService) Saldo(ctx context.Context, clienteID uuid.UUID) (*dto.SaldoResponse, error) {
	c, err := s.clientes.FindByID(ctx, clienteID)
	if err != nil {
		return nil, noEncontrado(err, "cliente")
	}
	saldo, err := s.cuentas.Saldo(ctx, clienteID)
	if err != nil {
		return nil, err
	}
	return saldoResponse(c, saldo), nil
}

func (s *cuentaCorrienteService) RegistrarPago(ctx context.Context, usuarioID, clienteID uuid.UUID, req dto.PagoCuentaCorrienteRequest) (*dto.SaldoResponse, error) {
	sesionID, err := uuid.Parse(req.SesionCajaID)
	if err != nil {
		return nil, fmt.Errorf("sesion_caja_id: %w", ErrIDInvalido)
	}
	descripcion := req.Descripcion
	if descripcion == "" {
		descripcion = "Pago a cuenta"
	}

	var (
		cliente *model.Cliente
		saldo   decimal.Decimal
	)
	err = runTx(ctx, s.clientes.DB(), func(tx *gorm.DB) error {
		var err error
		if cliente, err = s.clientes.FindByIDForUpdateTx(tx, clienteID); err != nil {
			return noEncontrado(err, "cliente")
		}
		if cliente.EsConsumidorFinal {
			return ErrConsumidorFinal
		}
		if _, err := s.caja.FindSesionAbiertaTx(tx, sesionID); err != nil {
			return cajaAbierta(err)
		}
		mov := &model.MovimientoCuentaCorriente{
			ClienteID:   clienteID,
			Haber:       req.Monto,
			Descripcion: descripcion,
			UsuarioID:   usuarioRef(usuarioID),
		}
		if err := s.cuentas.CreateTx(tx, mov); err != nil {
			return err
		}
		metodo := req.MetodoPago
		if err := s.caja.CreateRenglonTx(tx, &model.CajaRenglon{
			SesionCajaID: sesionID,
			Tipo:         "cobro_cuenta_corriente",
			MetodoPago:   &metodo,
			Monto:        req.Monto,
			Descripcion:  fmt.Sprintf("%s: %s", descripcion, cliente.Nombre),
			ReferenciaID: &mov.ID,
		}); err != nil {
			return err
		}
		saldo, err = s.cuentas.SaldoTx(tx, clienteID)
		return err
	})
	if err != nil {
		return nil, err
	}
	log.Info().
		Str("cliente_id", clienteID.String()).
		Str("monto", req.Monto.String()).
		Str("saldo", saldo.String()).
		Msg("pago de cuenta corriente registrado")
	return saldoResponse(cliente, saldo), nil
}

func saldoResponse(c *model.Cliente, saldo decimal.Decimal) *dto.SaldoResponse {
	disponible := c.LimiteCredito.Sub(saldo)
	if disponible.IsNegative() {
		disponible = decimal.Zero
	}
	return &dto.SaldoResponse{
		ClienteID:     c.ID.String(),
		Saldo:         saldo,
		LimiteCredito: c.LimiteCredito,
		Disponible:    disponible,
	}
}

// cajaAbierta maps a failed open-session lookup inside a transaction.
func cajaAbierta(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrCajaNoAbierta
	}
	return err
}
