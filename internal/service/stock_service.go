package service

import (
	"context"
	"fmt"
	"time"

	"caffito/internal/dto"
	"caffito/internal/model"
	"caffito/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Tipos de movimiento de stock.
const (
	MovimientoVenta     = "venta"
	MovimientoAjuste    = "ajuste_manual"
	MovimientoAnulacion = "anulacion"
)

// StockService defines the contract for stock adjustments and alerts.
type StockService interface {
	Ajustar(ctx context.Context, productoID uuid.UUID, req dto.AjusteStockRequest) (*dto.MovimientoStockResponse, error)
	ListarMovimientos(ctx context.Context, filter dto.MovimientoStockFilter) (dto.Lista[dto.MovimientoStockResponse], error)
	Alertas(ctx context.Context) ([]dto.AlertaStockResponse, error)
}

type stockService struct {
	productos   repository.ProductoRepository
	movimientos repository.MovimientoStockRepository
}

func NewStockService(productos repository.ProductoRepository, movimientos repository.MovimientoStockRepository) StockService {
	return &stockService{productos: productos, movimientos: movimientos}
}

func (s *stockService) Ajustar(ctx context.Context, productoID uuid.UUID, req dto.AjusteStockRequest) (*dto.MovimientoStockResponse, error) {
	if req.Cantidad.IsZero() {
		return nil, fmt.Errorf("ajuste de stock en cero: %w", ErrEntradaVacia)
	}
	var mov *model.MovimientoStock
	err := runTx(ctx, s.productos.DB(), func(tx *gorm.DB) error {
		var err error
		mov, err = moverStockTx(tx, s.productos, s.movimientos, productoID, req.Cantidad, MovimientoAjuste, req.Motivo, nil)
		return err
	})
	if err != nil {
		return nil, noEncontrado(err, "producto")
	}
	log.Info().
		Str("producto_id", productoID.String()).
		Str("cantidad", req.Cantidad.String()).
		Str("stock_nuevo", mov.StockNuevo.String()).
		Msg("stock ajustado")
	resp := movimientoToResponse(mov)
	return &resp, nil
}

func (s *stockService) ListarMovimientos(ctx context.Context, filter dto.MovimientoStockFilter) (dto.Lista[dto.MovimientoStockResponse], error) {
	filter.Paginacion = filter.Paginacion.Normalizar()
	rows, total, err := s.movimientos.List(ctx, filter)
	if err != nil {
		return dto.Lista[dto.MovimientoStockResponse]{}, err
	}
	items := make([]dto.MovimientoStockResponse, 0, len(rows))
	for i := range rows {
		items = append(items, movimientoToResponse(&rows[i]))
	}
	return dto.NuevaLista(items, total, filter.Paginacion), nil
}

func (s *stockService) Alertas(ctx context.Context) ([]dto.AlertaStockResponse, error) {
	productos, err := s.productos.ListStockBajo(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.AlertaStockResponse, 0, len(productos))
	for _, p := range productos {
		out = append(out, dto.AlertaStockResponse{
			ProductoID:  p.ID.String(),
			Codigo:      p.Codigo,
			Nombre:      p.Nombre,
			StockActual: p.StockActual,
			StockMinimo: p.StockMinimo,
		})
	}
	return out, nil
}

// moverStockTx locks the product row, applies the signed delta and records
// the movement. Stock may go negative: the register never blocks a sale on a
// stale count.
func moverStockTx(
	tx *gorm.DB,
	productos repository.ProductoRepository,
	movimientos repository.MovimientoStockRepository,
	productoID uuid.UUID,
	delta decimal.Decimal,
	tipo, motivo string,
	referenciaID *uuid.UUID,
) (*model.MovimientoStock, error) {
	p, err := productos.FindByIDForUpdateTx(tx, productoID)
	if err != nil {
		return nil, err
	}
	nuevo := p.StockActual.Add(delta)
	if err := productos.UpdateStockTx(tx, productoID, nuevo); err != nil {
		return nil, err
	}
	mov := &model.MovimientoStock{
		ProductoID:    productoID,
		Tipo:          tipo,
		Cantidad:      delta,
		StockAnterior: p.StockActual,
		StockNuevo:    nuevo,
		Motivo:        motivo,
		ReferenciaID:  referenciaID,
	}
	if err := movimientos.CreateTx(tx, mov); err != nil {
		return nil, err
	}
	mov.Producto = p
	return mov, nil
}

func movimientoToResponse(m *model.MovimientoStock) dto.MovimientoStockResponse {
	resp := dto.MovimientoStockResponse{
		ID:            m.ID.String(),
		ProductoID:    m.ProductoID.String(),
		Tipo:          m.Tipo,
		Cantidad:      m.Cantidad,
		StockAnterior: m.StockAnterior,
		StockNuevo:    m.StockNuevo,
		Motivo:        m.Motivo,
		ReferenciaID:  optUUIDString(m.ReferenciaID),
		CreatedAt:     m.CreatedAt.Format(time.RFC3339),
	}
	if m.Producto != nil {
		resp.ProductoNombre = m.Producto.Nombre
	}
	return resp
}
