// Package etiqueta renders shelf price labels as A4 PDF sheets.
package etiqueta

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// Sheet geometry in millimetres.
const (
	Columnas  = 3
	Filas     = 6
	PorPagina = Columnas * Filas

	anchoHoja = 210.0
	altoHoja  = 297.0
	margen    = 6.0

	anchoEtiqueta = (anchoHoja - 2*margen) / Columnas
	altoEtiqueta  = (altoHoja - 2*margen) / Filas
	relleno       = 2.5

	anchoCodigo = 48.0
	altoCodigo  = 14.0
)

var (
	ErrSinEtiquetas     = errors.New("no hay etiquetas para generar")
	ErrCantidadInvalida = errors.New("la cantidad de copias debe ser mayor o igual a 1")
)

// Etiqueta is one product to print, Cantidad times.
type Etiqueta struct {
	Nombre   string
	Marca    string
	Codigo   string
	Precio   decimal.Decimal
	Cantidad int
}

// Paginas returns how many sheets n labels need.
func Paginas(n int) int {
	return (n + PorPagina - 1) / PorPagina
}

// Expandir repeats each label Cantidad times, in order.
func Expandir(etiquetas []Etiqueta) ([]Etiqueta, error) {
	if len(etiquetas) == 0 {
		return nil, ErrSinEtiquetas
	}
	var out []Etiqueta
	for _, e := range etiquetas {
		if e.Cantidad < 1 {
			return nil, fmt.Errorf("%s: %w", e.Nombre, ErrCantidadInvalida)
		}
		for i := 0; i < e.Cantidad; i++ {
			out = append(out, e)
		}
	}
	return out, nil
}

// Generar writes the label sheet PDF to w and returns the number of pages.
// A code that cannot be encoded leaves its label without a barcode instead
// of failing the sheet.
func Generar(w io.Writer, etiquetas []Etiqueta) (int, error) {
	todas, err := Expandir(etiquetas)
	if err != nil {
		return 0, err
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(margen, margen, margen)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetDrawColor(200, 200, 200)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	simbolos := map[string]simbolo{}
	for i, e := range todas {
		pos := i % PorPagina
		if pos == 0 {
			pdf.AddPage()
		}
		x := margen + float64(pos%Columnas)*anchoEtiqueta
		y := margen + float64(pos/Columnas)*altoEtiqueta

		pdf.Rect(x, y, anchoEtiqueta, altoEtiqueta, "D")
		dibujarTexto(pdf, tr, e, x, y)

		s, ok := simbolos[e.Codigo]
		if !ok {
			s = registrarCodigo(pdf, e.Codigo, len(simbolos))
			simbolos[e.Codigo] = s
		}
		if s.imagen != "" {
			cx := x + (anchoEtiqueta-anchoCodigo)/2
			cy := y + altoEtiqueta - altoCodigo - relleno - 3
			pdf.ImageOptions(s.imagen, cx, cy, anchoCodigo, altoCodigo, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
			pdf.SetFont("Helvetica", "", 6)
			pdf.SetXY(x, cy+altoCodigo)
			pdf.CellFormat(anchoEtiqueta, 3, s.texto, "", 0, "C", false, 0, "")
		}
	}

	if err := pdf.Output(w); err != nil {
		return 0, fmt.Errorf("etiqueta: write pdf: %w", err)
	}
	return Paginas(len(todas)), nil
}

func dibujarTexto(pdf *fpdf.Fpdf, tr func(string) string, e Etiqueta, x, y float64) {
	ancho := anchoEtiqueta - 2*relleno
	l1, l2 := PartirNombre(e.Nombre)

	pdf.SetXY(x+relleno, y+relleno)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(ancho, 4.5, tr(l1), "", 2, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(ancho, 4, tr(l2), "", 2, "L", false, 0, "")

	if e.Marca != "" {
		pdf.SetFont("Helvetica", "I", 7)
		pdf.CellFormat(ancho, 3.5, tr(e.Marca), "", 2, "L", false, 0, "")
	}

	pdf.SetXY(x+relleno, y+relleno+13)
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(ancho, 8, FormatearPrecio(e.Precio), "", 2, "R", false, 0, "")
}

// simbolo is a registered barcode image and the digits printed under it,
// which are the encoded ones (a completed EAN-13), not the product code.
type simbolo struct {
	imagen string
	texto  string
}

// registrarCodigo embeds the barcode image. The zero simbolo means the code
// has no printable symbol.
func registrarCodigo(pdf *fpdf.Fpdf, codigo string, n int) simbolo {
	c, ok := CodigoBarras(codigo)
	if !ok {
		return simbolo{}
	}
	img, err := c.PNG()
	if err != nil {
		return simbolo{}
	}
	nombre := fmt.Sprintf("codigo-%d", n)
	pdf.RegisterImageOptionsReader(nombre, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(img))
	if pdf.Err() {
		pdf.ClearError()
		return simbolo{}
	}
	return simbolo{imagen: nombre, texto: c.Texto}
}
