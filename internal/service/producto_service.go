package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"caffito/internal/dto"
	"caffito/internal/model"
	"caffito/internal/pricing"
	"caffito/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const precioCacheKeyPrefix = "caffito:precio:"

// ProductoService defines the business logic contract for products and their
// supplier price records.
type ProductoService interface {
	Crear(ctx context.Context, usuarioID uuid.UUID, req dto.CrearProductoRequest) (*dto.ProductoResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error)
	Listar(ctx context.Context, filter dto.ProductoFilter) (dto.Lista[dto.ProductoResponse], error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error)
	Desactivar(ctx context.Context, id uuid.UUID) error
	Reactivar(ctx context.Context, id uuid.UUID) error

	AgregarPrecio(ctx context.Context, usuarioID, productoID uuid.UUID, req dto.PrecioProveedorRequest) (*dto.ProductoResponse, error)
	EditarPrecio(ctx context.Context, usuarioID, productoID uuid.UUID, req dto.EditarPrecioRequest) (*dto.ProductoResponse, error)
	SetProveedorActivo(ctx context.Context, productoID uuid.UUID, req dto.ProveedorActivoRequest) (*dto.ProductoResponse, error)
	Historial(ctx context.Context, filter dto.HistorialFilter) (dto.Lista[dto.HistorialPrecioItem], error)

	// ConsultarPrecio is the public price check; results are cached in Redis.
	ConsultarPrecio(ctx context.Context, codigo string) (*dto.ConsultaPreciosResponse, error)
}

type productoService struct {
	repo      repository.ProductoRepository
	historial repository.HistorialPrecioRepository
	calc      *pricing.Calculadora
	rdb       *redis.Client
	cacheTTL  time.Duration
}

// NewProductoService builds the service. rdb may be nil, which disables the
// price check cache.
func NewProductoService(
	repo repository.ProductoRepository,
	historial repository.HistorialPrecioRepository,
	calc *pricing.Calculadora,
	rdb *redis.Client,
	cacheTTL time.Duration,
) ProductoService {
	return &productoService{repo: repo, historial: historial, calc: calc, rdb: rdb, cacheTTL: cacheTTL}
}

// ── Crear ─────────────────────────────────────────────────────────────────────
// The first supplier price record is created with the product and becomes the
// active one.

func (s *productoService) Crear(ctx context.Context, usuarioID uuid.UUID, req dto.CrearProductoRequest) (*dto.ProductoResponse, error) {
	categoriaID, err := parseOptUUID(req.CategoriaID)
	if err != nil {
		return nil, err
	}
	marcaID, err := parseOptUUID(req.MarcaID)
	if err != nil {
		return nil, err
	}
	pp, precios, err := s.nuevoPrecio(req.Precio)
	if err != nil {
		return nil, err
	}

	p := &model.Producto{
		Codigo:      strings.TrimSpace(req.Codigo),
		Nombre:      strings.TrimSpace(req.Nombre),
		Descripcion: req.Descripcion,
		CategoriaID: categoriaID,
		MarcaID:     marcaID,
		Pesable:     req.Pesable,
		StockActual: req.StockActual,
		StockMinimo: req.StockMinimo,
		Activo:      true,
	}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.CreateTx(tx, p); err != nil {
			return duplicado(err, "producto con ese codigo")
		}
		pp.ProductoID = p.ID
		if err := s.repo.CreatePrecioTx(tx, pp); err != nil {
			return err
		}
		if err := s.repo.SetProveedorActivoTx(tx, p.ID, pp.ID); err != nil {
			return err
		}
		return s.historial.CreateTx(tx, &model.HistorialPrecio{
			ProductoID:          p.ID,
			ProductoProveedorID: pp.ID,
			ProveedorID:         pp.ProveedorID,
			CostoDespues:        precios.Costo,
			GananciaDespues:     precios.Ganancia,
			VentaDespues:        precios.Venta,
			Motivo:              MotivoAlta,
			UsuarioID:           usuarioRef(usuarioID),
		})
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("producto_id", p.ID.String()).Str("codigo", p.Codigo).Msg("producto creado")
	return s.ObtenerPorID(ctx, p.ID)
}

// nuevoPrecio builds a price record from the request; PrecioVenta, when
// present, wins over PorcentajeGanancia.
func (s *productoService) nuevoPrecio(req dto.PrecioProveedorRequest) (*model.ProductoProveedor, pricing.Precios, error) {
	proveedorID, err := parseOptUUID(req.ProveedorID)
	if err != nil {
		return nil, pricing.Precios{}, err
	}
	precios, err := s.calc.Desde(req.PrecioCosto, req.PorcentajeGanancia)
	if err != nil {
		return nil, pricing.Precios{}, err
	}
	if req.PrecioVenta != nil {
		if precios, err = s.calc.ConVenta(precios, *req.PrecioVenta); err != nil {
			return nil, pricing.Precios{}, err
		}
	}
	pp := &model.ProductoProveedor{ProveedorID: proveedorID, CodigoProveedor: req.CodigoProveedor}
	aplicarPrecios(pp, precios)
	return pp, precios, nil
}

// ── Consultas ─────────────────────────────────────────────────────────────────

func (s *productoService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, noEncontrado(err, "producto")
	}
	resp := productoToResponse(p)
	return &resp, nil
}

func (s *productoService) Listar(ctx context.Context, filter dto.ProductoFilter) (dto.Lista[dto.ProductoResponse], error) {
	filter.Paginacion = filter.Paginacion.Normalizar()
	productos, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.Lista[dto.ProductoResponse]{}, err
	}
	items := make([]dto.ProductoResponse, 0, len(productos))
	for i := range productos {
		items = append(items, productoToResponse(&productos[i]))
	}
	return dto.NuevaLista(items, total, filter.Paginacion), nil
}

// ── Actualizar ────────────────────────────────────────────────────────────────

func (s *productoService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, noEncontrado(err, "producto")
	}
	codigoAnterior := p.Codigo

	if req.Codigo != nil {
		p.Codigo = strings.TrimSpace(*req.Codigo)
	}
	if req.Nombre != nil {
		p.Nombre = strings.TrimSpace(*req.Nombre)
	}
	if req.Descripcion != nil {
		p.Descripcion = req.Descripcion
	}
	if req.CategoriaID != nil {
		if p.CategoriaID, err = parseOptUUID(req.CategoriaID); err != nil {
			return nil, err
		}
		p.Categoria = nil
	}
	if req.MarcaID != nil {
		if p.MarcaID, err = parseOptUUID(req.MarcaID); err != nil {
			return nil, err
		}
		p.Marca = nil
	}
	if req.Pesable != nil {
		p.Pesable = *req.Pesable
	}
	if req.StockMinimo != nil {
		p.StockMinimo = *req.StockMinimo
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, duplicado(err, "producto con ese codigo")
	}
	s.invalidarPrecio(ctx, codigoAnterior, p.Codigo)
	return s.ObtenerPorID(ctx, id)
}

func (s *productoService) Desactivar(ctx context.Context, id uuid.UUID) error {
	return s.setActivo(ctx, id, false)
}

func (s *productoService) Reactivar(ctx context.Context, id uuid.UUID) error {
	return s.setActivo(ctx, id, true)
}

func (s *productoService) setActivo(ctx context.Context, id uuid.UUID, activo bool) error {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return noEncontrado(err, "producto")
	}
	if err := s.repo.SetActivo(ctx, id, activo); err != nil {
		return noEncontrado(err, "producto")
	}
	s.invalidarPrecio(ctx, p.Codigo)
	return nil
}

// ── Precios ───────────────────────────────────────────────────────────────────

func (s *productoService) AgregarPrecio(ctx context.Context, usuarioID, productoID uuid.UUID, req dto.PrecioProveedorRequest) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, productoID)
	if err != nil {
		return nil, noEncontrado(err, "producto")
	}
	pp, precios, err := s.nuevoPrecio(req)
	if err != nil {
		return nil, err
	}
	pp.ProductoID = productoID

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.CreatePrecioTx(tx, pp); err != nil {
			return err
		}
		if req.Activar || p.ProveedorActivoID == nil {
			if err := s.repo.SetProveedorActivoTx(tx, productoID, pp.ID); err != nil {
				return err
			}
		}
		return s.historial.CreateTx(tx, &model.HistorialPrecio{
			ProductoID:          productoID,
			ProductoProveedorID: pp.ID,
			ProveedorID:         pp.ProveedorID,
			CostoDespues:        precios.Costo,
			GananciaDespues:     precios.Ganancia,
			VentaDespues:        precios.Venta,
			Motivo:              MotivoAlta,
			UsuarioID:           usuarioRef(usuarioID),
		})
	})
	if err != nil {
		return nil, err
	}
	s.invalidarPrecio(ctx, p.Codigo)
	return s.ObtenerPorID(ctx, productoID)
}

// EditarPrecio applies the edited sides of the triangle in the order costo,
// ganancia, venta; the last one wins for the derived fields.
func (s *productoService) EditarPrecio(ctx context.Context, usuarioID, productoID uuid.UUID, req dto.EditarPrecioRequest) (*dto.ProductoResponse, error) {
	ppID, err := uuid.Parse(req.ProductoProveedorID)
	if err != nil {
		return nil, fmt.Errorf("producto_proveedor_id: %w", ErrIDInvalido)
	}
	p, err := s.repo.FindByID(ctx, productoID)
	if err != nil {
		return nil, noEncontrado(err, "producto")
	}
	pp, err := s.repo.FindPrecio(ctx, ppID)
	if err != nil {
		return nil, noEncontrado(err, "precio de proveedor")
	}
	if pp.ProductoID != productoID {
		return nil, fmt.Errorf("precio de proveedor: %w", ErrNoEncontrado)
	}

	nuevos := preciosDe(pp)
	if req.PrecioCosto != nil {
		if nuevos, err = s.calc.ConCosto(nuevos, *req.PrecioCosto); err != nil {
			return nil, err
		}
	}
	if req.PorcentajeGanancia != nil {
		if nuevos, err = s.calc.ConGanancia(nuevos, *req.PorcentajeGanancia); err != nil {
			return nil, err
		}
	}
	if req.PrecioVenta != nil {
		if nuevos, err = s.calc.ConVenta(nuevos, *req.PrecioVenta); err != nil {
			return nil, err
		}
	}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return guardarPrecioTx(tx, s.repo, s.historial, pp, nuevos, MotivoManual, nil, usuarioRef(usuarioID))
	})
	if err != nil {
		return nil, err
	}
	s.invalidarPrecio(ctx, p.Codigo)
	return s.ObtenerPorID(ctx, productoID)
}

func (s *productoService) SetProveedorActivo(ctx context.Context, productoID uuid.UUID, req dto.ProveedorActivoRequest) (*dto.ProductoResponse, error) {
	ppID, err := uuid.Parse(req.ProductoProveedorID)
	if err != nil {
		return nil, fmt.Errorf("producto_proveedor_id: %w", ErrIDInvalido)
	}
	p, err := s.repo.FindByID(ctx, productoID)
	if err != nil {
		return nil, noEncontrado(err, "producto")
	}
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.repo.SetProveedorActivoTx(tx, productoID, ppID)
	})
	if err != nil {
		return nil, noEncontrado(err, "precio de proveedor")
	}
	s.invalidarPrecio(ctx, p.Codigo)
	return s.ObtenerPorID(ctx, productoID)
}

func (s *productoService) Historial(ctx context.Context, filter dto.HistorialFilter) (dto.Lista[dto.HistorialPrecioItem], error) {
	filter.Paginacion = filter.Paginacion.Normalizar()
	rows, total, err := s.historial.List(ctx, filter)
	if err != nil {
		return dto.Lista[dto.HistorialPrecioItem]{}, err
	}
	items := make([]dto.HistorialPrecioItem, 0, len(rows))
	for _, h := range rows {
		item := dto.HistorialPrecioItem{
			ID:                 h.ID.String(),
			ProductoID:         h.ProductoID.String(),
			ProveedorID:        optUUIDString(h.ProveedorID),
			CostoAntes:         h.CostoAntes,
			CostoDespues:       h.CostoDespues,
			GananciaAntes:      h.GananciaAntes,
			GananciaDespues:    h.GananciaDespues,
			VentaAntes:         h.VentaAntes,
			VentaDespues:       h.VentaDespues,
			PorcentajeAplicado: h.PorcentajeAplicado,
			Motivo:             h.Motivo,
			CreatedAt:          h.CreatedAt.Format(time.RFC3339),
		}
		if h.Producto != nil {
			item.ProductoNombre = &h.Producto.Nombre
		}
		if h.Proveedor != nil {
			item.ProveedorNombre = &h.Proveedor.RazonSocial
		}
		items = append(items, item)
	}
	return dto.NuevaLista(items, total, filter.Paginacion), nil
}

// ── Consulta de precios ───────────────────────────────────────────────────────

func (s *productoService) ConsultarPrecio(ctx context.Context, codigo string) (*dto.ConsultaPreciosResponse, error) {
	codigo = strings.TrimSpace(codigo)
	if codigo == "" {
		return nil, ErrEntradaVacia
	}
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, precioCacheKeyPrefix+codigo).Bytes(); err == nil {
			var resp dto.ConsultaPreciosResponse
			if json.Unmarshal(cached, &resp) == nil {
				return &resp, nil
			}
		}
	}

	p, err := s.repo.FindByCodigo(ctx, codigo)
	if err != nil {
		return nil, noEncontrado(err, "producto")
	}
	activo, err := p.PrecioActivo()
	if err != nil {
		return nil, err
	}
	resp := &dto.ConsultaPreciosResponse{
		Codigo:          p.Codigo,
		Nombre:          p.Nombre,
		Pesable:         p.Pesable,
		PrecioVenta:     activo.PrecioVenta,
		PrecioMayorista: activo.PrecioMayorista,
	}
	if p.Marca != nil {
		resp.Marca = &p.Marca.Nombre
	}

	if s.rdb != nil && s.cacheTTL > 0 {
		if b, err := json.Marshal(resp); err == nil {
			if err := s.rdb.Set(ctx, precioCacheKeyPrefix+codigo, b, s.cacheTTL).Err(); err != nil {
				log.Warn().Err(err).Str("codigo", codigo).Msg("precio: no se pudo cachear")
			}
		}
	}
	return resp, nil
}

// invalidarPrecio drops cached price checks. Failures only delay freshness
// until the TTL expires.
func (s *productoService) invalidarPrecio(ctx context.Context, codigos ...string) {
	if s.rdb == nil {
		return
	}
	keys := make([]string, 0, len(codigos))
	for _, c := range codigos {
		keys = append(keys, precioCacheKeyPrefix+c)
	}
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil && !errors.Is(err, redis.Nil) {
		log.Warn().Err(err).Strs("codigos", codigos).Msg("precio: no se pudo invalidar la cache")
	}
}

// ── Mapping ───────────────────────────────────────────────────────────────────

func productoToResponse(p *model.Producto) dto.ProductoResponse {
	resp := dto.ProductoResponse{
		ID:          p.ID.String(),
		Codigo:      p.Codigo,
		Nombre:      p.Nombre,
		Descripcion: p.Descripcion,
		CategoriaID: optUUIDString(p.CategoriaID),
		MarcaID:     optUUIDString(p.MarcaID),
		Pesable:     p.Pesable,
		StockActual: p.StockActual,
		StockMinimo: p.StockMinimo,
		StockBajo:   p.StockBajo(),
		Activo:      p.Activo,
		Proveedores: make([]dto.ProductoProveedorResponse, 0, len(p.ProductoProveedors)),
	}
	if p.Categoria != nil {
		resp.Categoria = &p.Categoria.Nombre
	}
	if p.Marca != nil {
		resp.Marca = &p.Marca.Nombre
	}
	if activo, err := p.PrecioActivo(); err == nil {
		venta, mayorista := activo.PrecioVenta, activo.PrecioMayorista
		resp.PrecioVenta = &venta
		resp.PrecioMayorista = &mayorista
	}
	for _, pp := range p.ProductoProveedors {
		item := dto.ProductoProveedorResponse{
			ID:                 pp.ID.String(),
			ProveedorID:        optUUIDString(pp.ProveedorID),
			CodigoProveedor:    pp.CodigoProveedor,
			PrecioCosto:        pp.PrecioCosto,
			PorcentajeGanancia: pp.PorcentajeGanancia,
			PrecioVenta:        pp.PrecioVenta,
			PrecioMayorista:    pp.PrecioMayorista,
			Activo:             p.ProveedorActivoID != nil && *p.ProveedorActivoID == pp.ID,
		}
		if pp.Proveedor != nil {
			item.ProveedorNombre = &pp.Proveedor.RazonSocial
		}
		resp.Proveedores = append(resp.Proveedores, item)
	}
	return resp
}
