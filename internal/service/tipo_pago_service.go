package service

import (
	"context"
	"strings"
	"time"

	"caffito/internal/dto"
	"caffito/internal/model"
	"caffito/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TipoPagoService interface {
	Crear(ctx context.Context, req dto.TipoPagoRequest) (*dto.TipoPagoResponse, error)
	Listar(ctx context.Context, incluirInactivos bool) ([]dto.TipoPagoResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.TipoPagoRequest) (*dto.TipoPagoResponse, error)
	// Activo returns an active payment type; inactive ones cannot be used at
	// checkout.
	Activo(ctx context.Context, id uuid.UUID) (*model.TipoPago, error)
	PorCodigo(ctx context.Context, codigo string) (*model.TipoPago, error)
}

type tipoPagoService struct {
	repo repository.TipoPagoRepository
}

func NewTipoPagoService(repo repository.TipoPagoRepository) TipoPagoService {
	return &tipoPagoService{repo: repo}
}

func (s *tipoPagoService) Crear(ctx context.Context, req dto.TipoPagoRequest) (*dto.TipoPagoResponse, error) {
	t := &model.TipoPago{
		Codigo: strings.TrimSpace(req.Codigo),
		Nombre: strings.TrimSpace(req.Nombre),
		Activo: req.Activo == nil || *req.Activo,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, duplicado(err, "tipo de pago con ese codigo")
	}
	resp := tipoPagoToResponse(t)
	return &resp, nil
}

func (s *tipoPagoService) Listar(ctx context.Context, incluirInactivos bool) ([]dto.TipoPagoResponse, error) {
	tipos, err := s.repo.List(ctx, incluirInactivos)
	if err != nil {
		return nil, err
	}
	out := make([]dto.TipoPagoResponse, 0, len(tipos))
	for i := range tipos {
		out = append(out, tipoPagoToResponse(&tipos[i]))
	}
	return out, nil
}

func (s *tipoPagoService) Actualizar(ctx context.Context, id uuid.UUID, req dto.TipoPagoRequest) (*dto.TipoPagoResponse, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, noEncontrado(err, "tipo de pago")
	}
	t.Codigo = strings.TrimSpace(req.Codigo)
	t.Nombre = strings.TrimSpace(req.Nombre)
	if req.Activo != nil {
		t.Activo = *req.Activo
	}
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, duplicado(err, "tipo de pago con ese codigo")
	}
	resp := tipoPagoToResponse(t)
	return &resp, nil
}

func (s *tipoPagoService) Activo(ctx context.Context, id uuid.UUID) (*model.TipoPago, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, noEncontrado(err, "tipo de pago")
	}
	if !t.Activo {
		return nil, ErrInactivo
	}
	return t, nil
}

func (s *tipoPagoService) PorCodigo(ctx context.Context, codigo string) (*model.TipoPago, error) {
	t, err := s.repo.FindByCodigo(ctx, codigo)
	if err != nil {
		return nil, noEncontrado(err, "tipo de pago")
	}
	return t, nil
}

func tipoPagoToResponse(t *model.TipoPago) dto.TipoPagoResponse {
	return dto.TipoPagoResponse{ID: t.ID.String(), Codigo: t.Codigo, Nombre: t.Nombre, Activo: t.Activo}
}

// ── Promociones ───────────────────────────────────────────────────────────────

type PromocionService interface {
	Crear(ctx context.Context, req dto.PromocionRequest) (*dto.PromocionResponse, error)
	Listar(ctx context.Context, soloActivas bool) ([]dto.PromocionResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.PromocionRequest) (*dto.PromocionResponse, error)
	Eliminar(ctx context.Context, id uuid.UUID) error
	// Vigente returns the promotion only if it can be applied now.
	Vigente(ctx context.Context, id uuid.UUID) (*model.Promocion, error)
}

type promocionService struct {
	repo repository.PromocionRepository
	now  func() time.Time
}

func NewPromocionService(repo repository.PromocionRepository) PromocionService {
	return &promocionService{repo: repo, now: time.Now}
}

func (s *promocionService) Crear(ctx context.Context, req dto.PromocionRequest) (*dto.PromocionResponse, error) {
	p := &model.Promocion{Activo: true}
	if err := aplicarPromocionRequest(p, req); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	resp := s.toResponse(p)
	return &resp, nil
}

func (s *promocionService) Listar(ctx context.Context, soloActivas bool) ([]dto.PromocionResponse, error) {
	promos, err := s.repo.List(ctx, soloActivas)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PromocionResponse, 0, len(promos))
	for i := range promos {
		out = append(out, s.toResponse(&promos[i]))
	}
	return out, nil
}

func (s *promocionService) Actualizar(ctx context.Context, id uuid.UUID, req dto.PromocionRequest) (*dto.PromocionResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, noEncontrado(err, "promocion")
	}
	if err := aplicarPromocionRequest(p, req); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	resp := s.toResponse(p)
	return &resp, nil
}

func (s *promocionService) Eliminar(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return noEncontrado(err, "promocion")
	}
	return s.repo.Delete(ctx, id)
}

func (s *promocionService) Vigente(ctx context.Context, id uuid.UUID) (*model.Promocion, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, noEncontrado(err, "promocion")
	}
	if !p.Vigente(s.now()) {
		return nil, ErrPromocionNoVigente
	}
	return p, nil
}

// aplicarPromocionRequest validates the exactly-one-of rule. Hasta is stored
// as the last instant of its day so the promotion covers it.
func aplicarPromocionRequest(p *model.Promocion, req dto.PromocionRequest) error {
	if (req.Porcentaje == nil) == (req.Monto == nil) {
		return ErrPromocionSinDescuento
	}
	if req.Porcentaje != nil && (!req.Porcentaje.IsPositive() || req.Porcentaje.GreaterThan(decimal.NewFromInt(100))) {
		return ErrPromocionSinDescuento
	}
	if req.Monto != nil && !req.Monto.IsPositive() {
		return ErrPromocionSinDescuento
	}
	desde, err := parseFecha(req.Desde)
	if err != nil {
		return err
	}
	hasta, err := parseFecha(req.Hasta)
	if err != nil {
		return err
	}
	if hasta != nil {
		fin := hasta.Add(24*time.Hour - time.Nanosecond)
		hasta = &fin
	}
	p.Nombre = strings.TrimSpace(req.Nombre)
	p.Porcentaje = req.Porcentaje
	p.Monto = req.Monto
	p.Desde = desde
	p.Hasta = hasta
	if req.Activo != nil {
		p.Activo = *req.Activo
	}
	return nil
}

func parseFecha(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(time.DateOnly, *s, time.Local)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *promocionService) toResponse(p *model.Promocion) dto.PromocionResponse {
	resp := dto.PromocionResponse{
		ID:         p.ID.String(),
		Nombre:     p.Nombre,
		Porcentaje: p.Porcentaje,
		Monto:      p.Monto,
		Activo:     p.Activo,
		Vigente:    p.Vigente(s.now()),
	}
	if p.Desde != nil {
		d := p.Desde.Format(time.DateOnly)
		resp.Desde = &d
	}
	if p.Hasta != nil {
		h := p.Hasta.Format(time.DateOnly)
		resp.Hasta = &h
	}
	return resp
}
