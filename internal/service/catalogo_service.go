package service

import (
	"context"
	"fmt"
	"io"

	"caffito/internal/dto"
	"caffito/internal/etiqueta"
	"caffito/internal/repository"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

const hojaProductos = "Productos"

var columnasExport = []interface{}{
	"Codigo", "Nombre", "Marca", "Categoria", "Pesable",
	"Stock", "Stock minimo", "Costo", "Ganancia %", "Venta", "Mayorista",
}

// CatalogoService renders catalog documents: the XLSX export and label sheets.
type CatalogoService interface {
	Exportar(ctx context.Context, w io.Writer, filter dto.ProductoFilter) (int, error)
	Etiquetas(ctx context.Context, w io.Writer, req dto.EtiquetasRequest) (int, error)
}

type catalogoService struct {
	productos repository.ProductoRepository
}

func NewCatalogoService(productos repository.ProductoRepository) CatalogoService {
	return &catalogoService{productos: productos}
}

// Exportar writes every product matching filter, ignoring pagination, and
// returns the number of rows written.
func (s *catalogoService) Exportar(ctx context.Context, w io.Writer, filter dto.ProductoFilter) (int, error) {
	productos, err := s.productos.ListAll(ctx, filter)
	if err != nil {
		return 0, err
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName(f.GetSheetName(0), hojaProductos); err != nil {
		return 0, err
	}
	if err := f.SetSheetRow(hojaProductos, "A1", &columnasExport); err != nil {
		return 0, err
	}

	for i := range productos {
		p := &productos[i]
		fila := []interface{}{p.Codigo, p.Nombre, "", "", p.Pesable, p.StockActual.InexactFloat64(), p.StockMinimo.InexactFloat64()}
		if p.Marca != nil {
			fila[2] = p.Marca.Nombre
		}
		if p.Categoria != nil {
			fila[3] = p.Categoria.Nombre
		}
		if pp, err := p.PrecioActivo(); err == nil {
			fila = append(fila,
				pp.PrecioCosto.InexactFloat64(),
				pp.PorcentajeGanancia.InexactFloat64(),
				pp.PrecioVenta.InexactFloat64(),
				pp.PrecioMayorista.InexactFloat64(),
			)
		}
		celda, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return 0, err
		}
		if err := f.SetSheetRow(hojaProductos, celda, &fila); err != nil {
			return 0, err
		}
	}

	if err := f.Write(w); err != nil {
		return 0, fmt.Errorf("escribir xlsx: %w", err)
	}
	return len(productos), nil
}

// Etiquetas renders a label sheet with the active sale price of each product
// and returns the page count. Products without an active price cannot be
// labelled.
func (s *catalogoService) Etiquetas(ctx context.Context, w io.Writer, req dto.EtiquetasRequest) (int, error) {
	if len(req.Items) == 0 {
		return 0, etiqueta.ErrSinEtiquetas
	}
	etiquetas := make([]etiqueta.Etiqueta, 0, len(req.Items))
	for _, item := range req.Items {
		id, err := uuid.Parse(item.ProductoID)
		if err != nil {
			return 0, fmt.Errorf("producto_id: %w", ErrIDInvalido)
		}
		p, err := s.productos.FindByID(ctx, id)
		if err != nil {
			return 0, noEncontrado(err, "producto")
		}
		pp, err := p.PrecioActivo()
		if err != nil {
			return 0, fmt.Errorf("%s: %w", p.Nombre, err)
		}
		e := etiqueta.Etiqueta{
			Nombre:   p.Nombre,
			Codigo:   p.Codigo,
			Precio:   pp.PrecioVenta,
			Cantidad: item.Cantidad,
		}
		if p.Marca != nil {
			e.Marca = p.Marca.Nombre
		}
		etiquetas = append(etiquetas, e)
	}
	return etiqueta.Generar(w, etiquetas)
}
