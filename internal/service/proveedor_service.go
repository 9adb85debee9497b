package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"caffito/internal/dto"
	"caffito/internal/model"
	"caffito/internal/pricing"
	"caffito/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

type ProveedorService interface {
	Crear(ctx context.Context, req dto.CrearProveedorRequest) (*dto.ProveedorResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProveedorResponse, error)
	Listar(ctx context.Context, incluirInactivos bool) ([]dto.ProveedorResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProveedorRequest) (*dto.ProveedorResponse, error)
	Eliminar(ctx context.Context, id uuid.UUID) error
	// ActualizarPreciosMasivo moves every cost of the supplier by a
	// percentage; sale and wholesale prices follow through the triangle.
	ActualizarPreciosMasivo(ctx context.Context, usuarioID, id uuid.UUID, req dto.ActualizacionMasivaRequest) (*dto.ActualizacionMasivaResponse, error)
	// ImportarXLSX reads a price list (column A codigo, column B costo) and
	// sets the matching costs.
	ImportarXLSX(ctx context.Context, usuarioID, id uuid.UUID, data []byte) (*dto.ImportacionResponse, error)
}

type proveedorService struct {
	repo         repository.ProveedorRepository
	productoRepo repository.ProductoRepository
	historial    repository.HistorialPrecioRepository
	calc         *pricing.Calculadora
}

func NewProveedorService(
	repo repository.ProveedorRepository,
	productoRepo repository.ProductoRepository,
	historial repository.HistorialPrecioRepository,
	calc *pricing.Calculadora,
) ProveedorService {
	return &proveedorService{repo: repo, productoRepo: productoRepo, historial: historial, calc: calc}
}

func (s *proveedorService) Crear(ctx context.Context, req dto.CrearProveedorRequest) (*dto.ProveedorResponse, error) {
	p := &model.Proveedor{
		RazonSocial:   strings.TrimSpace(req.RazonSocial),
		CUIT:          normalizarCUIT(req.CUIT),
		Contacto:      req.Contacto,
		Telefono:      req.Telefono,
		Email:         req.Email,
		Direccion:     req.Direccion,
		CondicionPago: req.CondicionPago,
		Activo:        true,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, duplicado(err, "proveedor con ese CUIT")
	}
	resp := proveedorToResponse(p)
	return &resp, nil
}

func (s *proveedorService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProveedorResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, noEncontrado(err, "proveedor")
	}
	resp := proveedorToResponse(p)
	return &resp, nil
}

func (s *proveedorService) Listar(ctx context.Context, incluirInactivos bool) ([]dto.ProveedorResponse, error) {
	proveedores, err := s.repo.List(ctx, incluirInactivos)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProveedorResponse, 0, len(proveedores))
	for i := range proveedores {
		out = append(out, proveedorToResponse(&proveedores[i]))
	}
	return out, nil
}

func (s *proveedorService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProveedorRequest) (*dto.ProveedorResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, noEncontrado(err, "proveedor")
	}
	if req.RazonSocial != nil {
		p.RazonSocial = strings.TrimSpace(*req.RazonSocial)
	}
	if req.Contacto != nil {
		p.Contacto = req.Contacto
	}
	if req.Telefono != nil {
		p.Telefono = req.Telefono
	}
	if req.Email != nil {
		p.Email = req.Email
	}
	if req.Direccion != nil {
		p.Direccion = req.Direccion
	}
	if req.CondicionPago != nil {
		p.CondicionPago = req.CondicionPago
	}
	if req.Activo != nil {
		p.Activo = *req.Activo
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	resp := proveedorToResponse(p)
	return &resp, nil
}

func (s *proveedorService) Eliminar(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return noEncontrado(err, "proveedor")
	}
	return s.repo.SoftDelete(ctx, id)
}

// ── Actualización masiva ──────────────────────────────────────────────────────

func (s *proveedorService) ActualizarPreciosMasivo(ctx context.Context, usuarioID, id uuid.UUID, req dto.ActualizacionMasivaRequest) (*dto.ActualizacionMasivaResponse, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, noEncontrado(err, "proveedor")
	}
	precios, err := s.productoRepo.ListPreciosByProveedor(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := &dto.ActualizacionMasivaResponse{
		ProveedorID: id.String(),
		Porcentaje:  req.Porcentaje,
		Preview:     req.Preview,
		Items:       make([]dto.PrecioActualizadoItem, 0, len(precios)),
	}
	nuevos := make([]pricing.Precios, len(precios))
	for i := range precios {
		pp := &precios[i]
		antes := preciosDe(pp)
		if nuevos[i], err = s.calc.AjustarCosto(antes, req.Porcentaje); err != nil {
			return nil, err
		}
		item := dto.PrecioActualizadoItem{
			ProductoID:   pp.ProductoID.String(),
			CostoAntes:   antes.Costo,
			CostoDespues: nuevos[i].Costo,
			VentaAntes:   antes.Venta,
			VentaDespues: nuevos[i].Venta,
		}
		if pp.Producto != nil {
			item.Nombre = pp.Producto.Nombre
		}
		resp.Items = append(resp.Items, item)
	}
	if req.Preview {
		return resp, nil
	}

	porcentaje := req.Porcentaje
	err = runTx(ctx, s.productoRepo.DB(), func(tx *gorm.DB) error {
		for i := range precios {
			if err := guardarPrecioTx(tx, s.productoRepo, s.historial, &precios[i], nuevos[i], MotivoActualizacionMasiva, &porcentaje, usuarioRef(usuarioID)); err != nil {
				return err
			}
		}
		return s.repo.MarcarPreciosActualizadosTx(tx, id, time.Now())
	})
	if err != nil {
		return nil, err
	}
	resp.Actualizados = len(precios)
	log.Info().
		Str("proveedor_id", id.String()).
		Str("porcentaje", porcentaje.String()).
		Int("actualizados", resp.Actualizados).
		Msg("actualizacion masiva de precios")
	return resp, nil
}

// ── Importación XLSX ──────────────────────────────────────────────────────────
// Rows are matched first by the supplier's own code, then by the product
// code. A header row or any row whose cost does not parse is reported, not
// fatal. The whole import is one transaction.

func (s *proveedorService) ImportarXLSX(ctx context.Context, usuarioID, id uuid.UUID, data []byte) (*dto.ImportacionResponse, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, noEncontrado(err, "proveedor")
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArchivoInvalido, err)
	}
	defer f.Close()

	precios, err := s.productoRepo.ListPreciosByProveedor(ctx, id)
	if err != nil {
		return nil, err
	}
	porCodigo := make(map[string]*model.ProductoProveedor, len(precios)*2)
	for i := range precios {
		pp := &precios[i]
		if pp.Producto != nil {
			porCodigo[pp.Producto.Codigo] = pp
		}
	}
	for i := range precios {
		pp := &precios[i]
		if pp.CodigoProveedor != nil && *pp.CodigoProveedor != "" {
			porCodigo[*pp.CodigoProveedor] = pp
		}
	}

	resp := &dto.ImportacionResponse{ProveedorID: id.String(), Rechazadas: []dto.ImportacionFila{}}
	type cambio struct {
		pp     *model.ProductoProveedor
		nuevos pricing.Precios
	}
	cambios := make(map[uuid.UUID]cambio)

	for _, hoja := range f.GetSheetList() {
		rows, err := f.GetRows(hoja)
		if err != nil {
			return nil, fmt.Errorf("leer hoja %s: %w", hoja, err)
		}
		for n, row := range rows {
			if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
				continue
			}
			resp.Procesadas++
			codigo := strings.TrimSpace(row[0])
			rechazo := func(motivo string) {
				resp.Rechazadas = append(resp.Rechazadas, dto.ImportacionFila{Hoja: hoja, Fila: n + 1, Codigo: codigo, Motivo: motivo})
			}
			if len(row) < 2 {
				rechazo("sin costo")
				continue
			}
			costo, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(row[1]), ",", "."))
			if err != nil {
				rechazo("costo invalido")
				continue
			}
			pp, ok := porCodigo[codigo]
			if !ok {
				rechazo("codigo sin precio de este proveedor")
				continue
			}
			base := preciosDe(pp)
			if c, ok := cambios[pp.ID]; ok {
				base = c.nuevos
			}
			nuevos, err := s.calc.ConCosto(base, costo)
			if err != nil {
				rechazo(err.Error())
				continue
			}
			cambios[pp.ID] = cambio{pp: pp, nuevos: nuevos}
		}
	}

	err = runTx(ctx, s.productoRepo.DB(), func(tx *gorm.DB) error {
		for _, c := range cambios {
			if err := guardarPrecioTx(tx, s.productoRepo, s.historial, c.pp, c.nuevos, MotivoImportacion, nil, usuarioRef(usuarioID)); err != nil {
				return err
			}
		}
		if len(cambios) == 0 {
			return nil
		}
		return s.repo.MarcarPreciosActualizadosTx(tx, id, time.Now())
	})
	if err != nil {
		return nil, err
	}
	resp.Actualizados = len(cambios)
	log.Info().
		Str("proveedor_id", id.String()).
		Int("procesadas", resp.Procesadas).
		Int("actualizados", resp.Actualizados).
		Int("rechazadas", len(resp.Rechazadas)).
		Msg("lista de precios importada")
	return resp, nil
}

func normalizarCUIT(cuit string) string {
	return strings.ReplaceAll(strings.TrimSpace(cuit), "-", "")
}

func proveedorToResponse(p *model.Proveedor) dto.ProveedorResponse {
	resp := dto.ProveedorResponse{
		ID:            p.ID.String(),
		RazonSocial:   p.RazonSocial,
		CUIT:          p.CUIT,
		Contacto:      p.Contacto,
		Telefono:      p.Telefono,
		Email:         p.Email,
		Direccion:     p.Direccion,
		CondicionPago: p.CondicionPago,
		Activo:        p.Activo,
	}
	if p.PreciosActualizadosAt != nil {
		at := p.PreciosActualizadosAt.Format(time.RFC3339)
		resp.PreciosActualizadosAt = &at
	}
	return resp
}
