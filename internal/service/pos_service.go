package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"caffito/internal/barcode"
	"caffito/internal/dto"
	"caffito/internal/metrics"
	"caffito/internal/model"
	"caffito/internal/pos"
	"caffito/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const maxCandidatos = 20

// ComprobantePorDefecto is what every new or reset cart prints: a factura B
// for an anonymous consumer.
var ComprobantePorDefecto = pos.Comprobante{
	Tipo:            "factura_b",
	TipoDocumento:   "consumidor_final",
	NumeroDocumento: "0",
}

// PosService drives the checkout carts. Each cart is a whole pos.Factura
// stored in the CarritoStore; writes to one cart are serialised.
type PosService interface {
	Nuevo(ctx context.Context, usuarioID uuid.UUID) (*dto.CarritoResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.CarritoResponse, error)
	Cancelar(ctx context.Context, id uuid.UUID) error

	Escanear(ctx context.Context, id uuid.UUID, entrada string) (*dto.EscaneoResponse, error)
	AgregarRenglon(ctx context.Context, id uuid.UUID, req dto.AgregarRenglonRequest) (*dto.CarritoResponse, error)
	CambiarCantidad(ctx context.Context, id uuid.UUID, indice, cantidad int) (*dto.CarritoResponse, error)
	QuitarRenglon(ctx context.Context, id uuid.UUID, indice int) (*dto.CarritoResponse, error)

	AplicarDescuento(ctx context.Context, id uuid.UUID, monto decimal.Decimal) (*dto.CarritoResponse, error)
	AplicarPromocion(ctx context.Context, id, promocionID uuid.UUID) (*dto.CarritoResponse, error)
	QuitarPromocion(ctx context.Context, id uuid.UUID) (*dto.CarritoResponse, error)
	SeleccionarMetodo(ctx context.Context, id, tipoPagoID uuid.UUID) (*dto.CarritoResponse, error)
	SeleccionarCliente(ctx context.Context, id, clienteID uuid.UUID) (*dto.CarritoResponse, error)
	SetComprobante(ctx context.Context, id uuid.UUID, req dto.ComprobanteRequest) (*dto.CarritoResponse, error)

	AgregarPago(ctx context.Context, id uuid.UUID, req dto.AgregarPagoRequest) (*dto.CarritoResponse, error)
	QuitarPago(ctx context.Context, id uuid.UUID, indice int) (*dto.CarritoResponse, error)

	// Finalizar persists the cart as an invoice. On success the cart is reset
	// to the walk-in client; on failure it is left exactly as it was.
	Finalizar(ctx context.Context, id, sesionID uuid.UUID) (*dto.FinalizarResponse, error)
}

type PosDeps struct {
	Carritos    repository.CarritoStore
	Productos   repository.ProductoRepository
	Clientes    ClienteService
	TiposPago   TipoPagoService
	Promociones PromocionService
	Facturas    FacturaService
}

type posService struct {
	carritos    repository.CarritoStore
	productos   repository.ProductoRepository
	clientes    ClienteService
	tiposPago   TipoPagoService
	promociones PromocionService
	facturas    FacturaService
	politica    pos.Politica

	mu    sync.Mutex
	locks map[uuid.UUID]*carritoLock
}

// carritoLock serialises writes to one cart. refs counts holders and
// waiters; the entry leaves the map when it drops to zero, so the map only
// holds carts being written right now.
type carritoLock struct {
	sync.Mutex
	refs int
}

func NewPosService(deps PosDeps, politica pos.Politica) PosService {
	return &posService{
		carritos:    deps.Carritos,
		productos:   deps.Productos,
		clientes:    deps.Clientes,
		tiposPago:   deps.TiposPago,
		promociones: deps.Promociones,
		facturas:    deps.Facturas,
		politica:    politica,
		locks:       make(map[uuid.UUID]*carritoLock),
	}
}

func (s *posService) lock(id uuid.UUID) func() {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &carritoLock{}
		s.locks[id] = l
	}
	l.refs++
	s.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		s.mu.Lock()
		if l.refs--; l.refs == 0 {
			delete(s.locks, id)
		}
		s.mu.Unlock()
	}
}

// locksActivos is the number of carts with a pending or held lock.
func (s *posService) locksActivos() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.locks)
}

// mutar loads the cart, applies fn and saves it. A failing fn leaves the
// stored cart untouched.
func (s *posService) mutar(ctx context.Context, id uuid.UUID, fn func(f *pos.Factura) error) (*dto.CarritoResponse, error) {
	defer s.lock(id)()
	f, err := s.carritos.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(f); err != nil {
		return nil, err
	}
	if err := s.carritos.Save(ctx, f); err != nil {
		return nil, fmt.Errorf("guardar carrito: %w", err)
	}
	resp := dto.NewCarritoResponse(f)
	return &resp, nil
}

// ── Ciclo de vida ─────────────────────────────────────────────────────────────

func (s *posService) Nuevo(ctx context.Context, usuarioID uuid.UUID) (*dto.CarritoResponse, error) {
	cf, err := s.clientes.ConsumidorFinal(ctx)
	if err != nil {
		return nil, err
	}
	f := pos.Nueva(uuid.New(), cf.ID, ComprobantePorDefecto, s.politica)
	f.UsuarioID = usuarioID
	if err := s.carritos.Save(ctx, f); err != nil {
		return nil, fmt.Errorf("guardar carrito: %w", err)
	}
	resp := dto.NewCarritoResponse(f)
	return &resp, nil
}

func (s *posService) Obtener(ctx context.Context, id uuid.UUID) (*dto.CarritoResponse, error) {
	f, err := s.carritos.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := dto.NewCarritoResponse(f)
	return &resp, nil
}

func (s *posService) Cancelar(ctx context.Context, id uuid.UUID) error {
	defer s.lock(id)()
	return s.carritos.Delete(ctx, id)
}

// ── Escanear ──────────────────────────────────────────────────────────────────
// Exact code first, then the scale barcode layout, then a substring search
// that only returns candidates.

func (s *posService) Escanear(ctx context.Context, id uuid.UUID, entrada string) (*dto.EscaneoResponse, error) {
	entrada = strings.TrimSpace(entrada)
	if entrada == "" {
		return nil, ErrEntradaVacia
	}

	p, err := s.buscarExacto(ctx, entrada)
	if err != nil {
		return nil, err
	}
	if p != nil {
		return s.agregarEscaneado(ctx, id, "exacto", func(f *pos.Factura, item pos.Item) error {
			return f.AgregarProducto(item, 1)
		}, p)
	}

	if barcode.PuedeSerPesable(entrada) {
		cod, err := barcode.DecodificarPesable(entrada)
		if err != nil {
			return nil, err
		}
		p, err := s.buscarExacto(ctx, cod.SubCodigo)
		if err != nil {
			return nil, err
		}
		if p != nil {
			return s.agregarEscaneado(ctx, id, "pesable", func(f *pos.Factura, item pos.Item) error {
				return f.AgregarPorImporte(item, cod.Importe)
			}, p)
		}
	}

	candidatos, err := s.productos.Buscar(ctx, entrada, maxCandidatos)
	if err != nil {
		return nil, err
	}
	carrito, err := s.Obtener(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := &dto.EscaneoResponse{Carrito: *carrito}
	if len(candidatos) == 0 {
		resp.Resultado = dto.EscaneoSinResultados
		metrics.Escaneos.WithLabelValues(dto.EscaneoSinResultados).Inc()
		return resp, nil
	}
	resp.Resultado = dto.EscaneoCandidatos
	resp.Candidatos = make([]dto.ProductoResponse, 0, len(candidatos))
	for i := range candidatos {
		resp.Candidatos = append(resp.Candidatos, productoToResponse(&candidatos[i]))
	}
	metrics.Escaneos.WithLabelValues(dto.EscaneoCandidatos).Inc()
	return resp, nil
}

func (s *posService) buscarExacto(ctx context.Context, codigo string) (*model.Producto, error) {
	p, err := s.productos.FindByCodigo(ctx, codigo)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return p, err
}

func (s *posService) agregarEscaneado(ctx context.Context, id uuid.UUID, via string, add func(*pos.Factura, pos.Item) error, p *model.Producto) (*dto.EscaneoResponse, error) {
	item, err := posItem(p)
	if err != nil {
		return nil, err
	}
	carrito, err := s.mutar(ctx, id, func(f *pos.Factura) error { return add(f, item) })
	if err != nil {
		return nil, err
	}
	metrics.Escaneos.WithLabelValues(via).Inc()
	return &dto.EscaneoResponse{Resultado: dto.EscaneoAgregado, Carrito: *carrito}, nil
}

// posItem snapshots a product for the cart. Products without an active price
// record cannot be sold.
func posItem(p *model.Producto) (pos.Item, error) {
	activo, err := p.PrecioActivo()
	if err != nil {
		return pos.Item{}, fmt.Errorf("%s: %w", p.Nombre, err)
	}
	return pos.Item{
		ProductoID:  p.ID,
		Codigo:      p.Codigo,
		Nombre:      p.Nombre,
		PrecioVenta: activo.PrecioVenta,
		Pesable:     p.Pesable,
	}, nil
}

// ── Renglones ─────────────────────────────────────────────────────────────────

func (s *posService) AgregarRenglon(ctx context.Context, id uuid.UUID, req dto.AgregarRenglonRequest) (*dto.CarritoResponse, error) {
	cantidad := req.Cantidad
	if cantidad == 0 && req.Peso == nil {
		cantidad = 1
	}

	if req.ProductoID == nil {
		if req.Precio == nil {
			return nil, pos.ErrPrecioInvalido
		}
		return s.mutar(ctx, id, func(f *pos.Factura) error {
			return f.AgregarLibre(req.Detalle, *req.Precio, cantidad)
		})
	}

	pid, err := uuid.Parse(*req.ProductoID)
	if err != nil {
		return nil, fmt.Errorf("producto_id: %w", ErrIDInvalido)
	}
	p, err := s.productos.FindByID(ctx, pid)
	if err != nil {
		return nil, noEncontrado(err, "producto")
	}
	if !p.Activo {
		return nil, fmt.Errorf("%s: %w", p.Nombre, ErrInactivo)
	}
	item, err := posItem(p)
	if err != nil {
		return nil, err
	}
	return s.mutar(ctx, id, func(f *pos.Factura) error {
		if req.Peso != nil {
			return f.AgregarPesable(item, *req.Peso)
		}
		return f.AgregarProducto(item, cantidad)
	})
}

func (s *posService) CambiarCantidad(ctx context.Context, id uuid.UUID, indice, cantidad int) (*dto.CarritoResponse, error) {
	return s.mutar(ctx, id, func(f *pos.Factura) error { return f.CambiarCantidad(indice, cantidad) })
}

func (s *posService) QuitarRenglon(ctx context.Context, id uuid.UUID, indice int) (*dto.CarritoResponse, error) {
	return s.mutar(ctx, id, func(f *pos.Factura) error { return f.Quitar(indice) })
}

// ── Descuentos, método, cliente ───────────────────────────────────────────────

func (s *posService) AplicarDescuento(ctx context.Context, id uuid.UUID, monto decimal.Decimal) (*dto.CarritoResponse, error) {
	return s.mutar(ctx, id, func(f *pos.Factura) error { return f.AplicarDescuento(monto) })
}

func (s *posService) AplicarPromocion(ctx context.Context, id, promocionID uuid.UUID) (*dto.CarritoResponse, error) {
	p, err := s.promociones.Vigente(ctx, promocionID)
	if err != nil {
		return nil, err
	}
	promo := pos.Promocion{ID: p.ID, Nombre: p.Nombre, Porcentaje: p.Porcentaje, Monto: p.Monto}
	return s.mutar(ctx, id, func(f *pos.Factura) error { return f.AplicarPromocion(promo) })
}

func (s *posService) QuitarPromocion(ctx context.Context, id uuid.UUID) (*dto.CarritoResponse, error) {
	return s.mutar(ctx, id, func(f *pos.Factura) error {
		f.QuitarPromocion()
		return nil
	})
}

func (s *posService) SeleccionarMetodo(ctx context.Context, id, tipoPagoID uuid.UUID) (*dto.CarritoResponse, error) {
	t, err := s.tiposPago.Activo(ctx, tipoPagoID)
	if err != nil {
		return nil, err
	}
	tp := pos.TipoPago{ID: t.ID, Codigo: t.Codigo, Nombre: t.Nombre}
	return s.mutar(ctx, id, func(f *pos.Factura) error {
		f.SeleccionarMetodo(tp)
		return nil
	})
}

// SeleccionarCliente also fills the document of the comprobante; choosing
// the walk-in client restores the default one.
func (s *posService) SeleccionarCliente(ctx context.Context, id, clienteID uuid.UUID) (*dto.CarritoResponse, error) {
	c, err := s.clientes.ObtenerPorID(ctx, clienteID)
	if err != nil {
		return nil, err
	}
	if !c.Activo {
		return nil, fmt.Errorf("cliente %s: %w", c.Nombre, ErrInactivo)
	}
	return s.mutar(ctx, id, func(f *pos.Factura) error {
		f.SeleccionarCliente(clienteID)
		if c.EsConsumidorFinal {
			f.SetComprobante(ComprobantePorDefecto)
		} else {
			f.SetComprobante(pos.Comprobante{
				Tipo:            f.Comprobante.Tipo,
				TipoDocumento:   c.TipoDocumento,
				NumeroDocumento: c.NumeroDocumento,
			})
		}
		return nil
	})
}

func (s *posService) SetComprobante(ctx context.Context, id uuid.UUID, req dto.ComprobanteRequest) (*dto.CarritoResponse, error) {
	c := pos.Comprobante{Tipo: req.Tipo, TipoDocumento: req.TipoDocumento, NumeroDocumento: strings.TrimSpace(req.NumeroDocumento)}
	if c.NumeroDocumento == "" {
		c.NumeroDocumento = "0"
	}
	return s.mutar(ctx, id, func(f *pos.Factura) error {
		f.SetComprobante(c)
		return nil
	})
}

// ── Pagos ─────────────────────────────────────────────────────────────────────

func (s *posService) AgregarPago(ctx context.Context, id uuid.UUID, req dto.AgregarPagoRequest) (*dto.CarritoResponse, error) {
	tid, err := uuid.Parse(req.TipoPagoID)
	if err != nil {
		return nil, fmt.Errorf("tipo_pago_id: %w", ErrIDInvalido)
	}
	t, err := s.tiposPago.Activo(ctx, tid)
	if err != nil {
		return nil, err
	}
	tp := pos.TipoPago{ID: t.ID, Codigo: t.Codigo, Nombre: t.Nombre}
	return s.mutar(ctx, id, func(f *pos.Factura) error { return f.AgregarPago(tp, req.Monto) })
}

func (s *posService) QuitarPago(ctx context.Context, id uuid.UUID, indice int) (*dto.CarritoResponse, error) {
	return s.mutar(ctx, id, func(f *pos.Factura) error { return f.QuitarPago(indice) })
}

// ── Finalizar ─────────────────────────────────────────────────────────────────

func (s *posService) Finalizar(ctx context.Context, id, sesionID uuid.UUID) (*dto.FinalizarResponse, error) {
	defer s.lock(id)()

	f, err := s.carritos.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	factura, err := s.facturas.Finalizar(ctx, sesionID, f)
	if err != nil {
		log.Warn().Err(err).Str("carrito_id", id.String()).Msg("finalizar: carrito conservado")
		return nil, err
	}

	cf, err := s.clientes.ConsumidorFinal(ctx)
	if err != nil {
		return nil, err
	}
	f.Reiniciar(cf.ID, ComprobantePorDefecto)
	if err := s.carritos.Save(ctx, f); err != nil {
		// The invoice is committed; a stale cart here would sell twice.
		log.Error().Err(err).Str("carrito_id", id.String()).Msg("finalizar: no se pudo reiniciar el carrito")
		_ = s.carritos.Delete(ctx, id)
	}
	return &dto.FinalizarResponse{Factura: *factura, Carrito: dto.NewCarritoResponse(f)}, nil
}
