package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"caffito/internal/dto"
	"caffito/internal/model"
	"caffito/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CajaService interface {
	Abrir(ctx context.Context, usuarioID uuid.UUID, req dto.AbrirCajaRequest) (*dto.ReporteCajaResponse, error)
	RegistrarMovimiento(ctx context.Context, req dto.MovimientoManualRequest) error
	Arqueo(ctx context.Context, req dto.ArqueoRequest) (*dto.ArqueoResponse, error)
	ObtenerReporte(ctx context.Context, sesionID uuid.UUID) (*dto.ReporteCajaResponse, error)
	SesionActiva(ctx context.Context, puntoDeVenta int) (*dto.ReporteCajaResponse, error)
	Historial(ctx context.Context, filter dto.CajaFilter) (dto.Lista[dto.ReporteCajaResponse], error)
	// SesionAbierta is used by other services to check an open session.
	SesionAbierta(ctx context.Context, sesionID uuid.UUID) (*model.SesionCaja, error)
}

type cajaService struct {
	repo repository.CajaRepository
	now  func() time.Time
}

func NewCajaService(repo repository.CajaRepository) CajaService {
	return &cajaService{repo: repo, now: time.Now}
}

// ── Abrir ─────────────────────────────────────────────────────────────────────

func (s *cajaService) Abrir(ctx context.Context, usuarioID uuid.UUID, req dto.AbrirCajaRequest) (*dto.ReporteCajaResponse, error) {
	// Guard: no duplicate open session per punto_de_venta. The partial unique
	// index catches the race between two concurrent opens.
	existing, err := s.repo.FindSesionAbiertaPorPDV(ctx, req.PuntoDeVenta)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrCajaYaAbierta
	}

	sesion := &model.SesionCaja{
		PuntoDeVenta: req.PuntoDeVenta,
		UsuarioID:    usuarioID,
		MontoInicial: req.MontoInicial,
		Estado:       "abierta",
		OpenedAt:     s.now(),
	}
	if err := s.repo.CreateSesion(ctx, sesion); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrCajaYaAbierta
		}
		return nil, err
	}

	return s.buildReporte(ctx, sesion, false)
}

// ── RegistrarMovimiento ───────────────────────────────────────────────────────
// Ingreso / egreso manual. Renglones are immutable; egresos are stored negative.

func (s *cajaService) RegistrarMovimiento(ctx context.Context, req dto.MovimientoManualRequest) error {
	sesionID, err := uuid.Parse(req.SesionCajaID)
	if err != nil {
		return noEncontrado(gorm.ErrRecordNotFound, "sesion de caja")
	}
	if _, err := s.SesionAbierta(ctx, sesionID); err != nil {
		return err
	}

	monto := req.Monto
	if req.Tipo == "egreso_manual" {
		monto = req.Monto.Neg()
	}
	metodo := req.MetodoPago
	return s.repo.CreateRenglon(ctx, &model.CajaRenglon{
		SesionCajaID: sesionID,
		Tipo:         req.Tipo,
		MetodoPago:   &metodo,
		Monto:        monto,
		Descripcion:  req.Descripcion,
	})
}

// ── Arqueo ────────────────────────────────────────────────────────────────────
// Blind count: the expected amounts are computed only after the declaration
// is received. Closes the session and records the classification.

func (s *cajaService) Arqueo(ctx context.Context, req dto.ArqueoRequest) (*dto.ArqueoResponse, error) {
	sesionID, err := uuid.Parse(req.SesionCajaID)
	if err != nil {
		return nil, noEncontrado(gorm.ErrRecordNotFound, "sesion de caja")
	}
	sesion, err := s.SesionAbierta(ctx, sesionID)
	if err != nil {
		return nil, err
	}

	esperado, err := s.esperado(ctx, sesion)
	if err != nil {
		return nil, err
	}
	declarado := dto.MontosPorMetodo{
		Efectivo:       req.Declaracion.Efectivo,
		Debito:         req.Declaracion.Debito,
		TarjetaCredito: req.Declaracion.TarjetaCredito,
		Transferencia:  req.Declaracion.Transferencia,
	}
	declarado.Total = declarado.Efectivo.Add(declarado.Debito).Add(declarado.TarjetaCredito).Add(declarado.Transferencia)

	desvioMonto := declarado.Total.Sub(esperado.Total)
	desvioPct := decimal.Zero
	if !esperado.Total.IsZero() {
		desvioPct = desvioMonto.Div(esperado.Total).Mul(decimal.NewFromInt(100)).Round(2)
	} else if !declarado.Total.IsZero() {
		desvioPct = decimal.NewFromInt(100)
	}
	clasificacion := clasificarDesvio(desvioPct)

	if clasificacion == "critico" && (req.Observaciones == nil || strings.TrimSpace(*req.Observaciones) == "") {
		return nil, ErrObservacionesRequeridas
	}

	closedAt := s.now()
	montoEsperado := esperado.Total
	montoDeclarado := declarado.Total
	sesion.MontoEsperado = &montoEsperado
	sesion.MontoDeclarado = &montoDeclarado
	sesion.Desvio = &desvioMonto
	sesion.DesvioPct = &desvioPct
	sesion.Estado = "cerrada"
	sesion.ClasificacionDesvio = &clasificacion
	sesion.Observaciones = req.Observaciones
	sesion.ClosedAt = &closedAt

	if err := s.repo.UpdateSesion(ctx, sesion); err != nil {
		return nil, err
	}

	return &dto.ArqueoResponse{
		SesionCajaID:   sesionID.String(),
		MontoEsperado:  esperado,
		MontoDeclarado: declarado,
		Desvio: dto.DesvioResponse{
			Monto:         desvioMonto,
			Porcentaje:    desvioPct,
			Clasificacion: clasificacion,
		},
		Estado: "cerrada",
	}, nil
}

// ── Queries ───────────────────────────────────────────────────────────────────

func (s *cajaService) ObtenerReporte(ctx context.Context, sesionID uuid.UUID) (*dto.ReporteCajaResponse, error) {
	sesion, err := s.repo.FindSesionByID(ctx, sesionID)
	if err != nil {
		return nil, noEncontrado(err, "sesion de caja")
	}
	return s.buildReporte(ctx, sesion, true)
}

func (s *cajaService) SesionActiva(ctx context.Context, puntoDeVenta int) (*dto.ReporteCajaResponse, error) {
	sesion, err := s.repo.FindSesionAbiertaPorPDV(ctx, puntoDeVenta)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCajaNoAbierta
		}
		return nil, err
	}
	return s.buildReporte(ctx, sesion, false)
}

func (s *cajaService) Historial(ctx context.Context, filter dto.CajaFilter) (dto.Lista[dto.ReporteCajaResponse], error) {
	filter.Paginacion = filter.Paginacion.Normalizar()
	sesiones, total, err := s.repo.ListSesiones(ctx, filter)
	if err != nil {
		return dto.Lista[dto.ReporteCajaResponse]{}, err
	}
	items := make([]dto.ReporteCajaResponse, 0, len(sesiones))
	for i := range sesiones {
		items = append(items, reporteSinTotales(&sesiones[i]))
	}
	return dto.NuevaLista(items, total, filter.Paginacion), nil
}

func (s *cajaService) SesionAbierta(ctx context.Context, sesionID uuid.UUID) (*model.SesionCaja, error) {
	sesion, err := s.repo.FindSesionByID(ctx, sesionID)
	if err != nil {
		return nil, noEncontrado(err, "sesion de caja")
	}
	if sesion.Estado != "abierta" {
		return nil, ErrCajaNoAbierta
	}
	return sesion, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// clasificarDesvio returns "normal" | "advertencia" | "critico"
// normal: |desvio| <= 1%, advertencia: <= 5%, critico: > 5%
func clasificarDesvio(pct decimal.Decimal) string {
	abs := pct.Abs()
	switch {
	case abs.LessThanOrEqual(decimal.NewFromInt(1)):
		return "normal"
	case abs.LessThanOrEqual(decimal.NewFromInt(5)):
		return "advertencia"
	default:
		return "critico"
	}
}

// esperado adds the opening float to cash. Payment methods outside the four
// counted ones (cuenta corriente, custom codes) do not enter the arqueo.
func (s *cajaService) esperado(ctx context.Context, sesion *model.SesionCaja) (dto.MontosPorMetodo, error) {
	sums, err := s.repo.SumRenglonesByMetodo(ctx, sesion.ID)
	if err != nil {
		return dto.MontosPorMetodo{}, err
	}
	m := dto.MontosPorMetodo{
		Efectivo:       sesion.MontoInicial.Add(sums["efectivo"]),
		Debito:         sums["debito"],
		TarjetaCredito: sums["tarjeta_credito"],
		Transferencia:  sums["transferencia"],
	}
	m.Total = m.Efectivo.Add(m.Debito).Add(m.TarjetaCredito).Add(m.Transferencia)
	return m, nil
}

func reporteSinTotales(sesion *model.SesionCaja) dto.ReporteCajaResponse {
	r := dto.ReporteCajaResponse{
		SesionCajaID:   sesion.ID.String(),
		PuntoDeVenta:   sesion.PuntoDeVenta,
		UsuarioID:      sesion.UsuarioID.String(),
		MontoInicial:   sesion.MontoInicial,
		MontoDeclarado: sesion.MontoDeclarado,
		Estado:         sesion.Estado,
		Observaciones:  sesion.Observaciones,
		OpenedAt:       sesion.OpenedAt.Format(time.RFC3339),
	}
	if sesion.MontoEsperado != nil {
		r.MontoEsperado.Total = *sesion.MontoEsperado
	}
	if sesion.Desvio != nil && sesion.DesvioPct != nil && sesion.ClasificacionDesvio != nil {
		r.Desvio = &dto.DesvioResponse{
			Monto:         *sesion.Desvio,
			Porcentaje:    *sesion.DesvioPct,
			Clasificacion: *sesion.ClasificacionDesvio,
		}
	}
	if sesion.ClosedAt != nil {
		t := sesion.ClosedAt.Format(time.RFC3339)
		r.ClosedAt = &t
	}
	return r
}

func (s *cajaService) buildReporte(ctx context.Context, sesion *model.SesionCaja, conRenglones bool) (*dto.ReporteCajaResponse, error) {
	reporte := reporteSinTotales(sesion)
	esperado, err := s.esperado(ctx, sesion)
	if err != nil {
		return nil, err
	}
	reporte.MontoEsperado = esperado

	if conRenglones {
		reporte.Renglones = make([]dto.CajaRenglonResponse, 0, len(sesion.Renglones))
		for _, r := range sesion.Renglones {
			reporte.Renglones = append(reporte.Renglones, cajaRenglonToResponse(r))
		}
	}
	return &reporte, nil
}

func cajaRenglonToResponse(r model.CajaRenglon) dto.CajaRenglonResponse {
	resp := dto.CajaRenglonResponse{
		ID:          r.ID.String(),
		Tipo:        r.Tipo,
		MetodoPago:  r.MetodoPago,
		Monto:       r.Monto,
		Descripcion: r.Descripcion,
		CreatedAt:   r.CreatedAt.Format(time.RFC3339),
	}
	if r.ReferenciaID != nil {
		ref := r.ReferenciaID.String()
		resp.ReferenciaID = &ref
	}
	return resp
}
