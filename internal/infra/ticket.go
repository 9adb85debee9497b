package infra

// ticket.go renders a finalized Factura in the two formats the register
// needs: plain text for the thermal printer and a small PDF that is stored
// and e-mailed to the client.

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"caffito/internal/model"

	"github.com/go-pdf/fpdf"
)

// TicketTexto renders the invoice as fixed-width text, ancho columns wide.
func TicketTexto(f *model.Factura, negocio string, ancho int) string {
	if ancho < 24 {
		ancho = 24
	}
	var b strings.Builder
	sep := strings.Repeat("-", ancho) + "\n"

	b.WriteString(centrar(strings.ToUpper(negocio), ancho) + "\n")
	b.WriteString(centrar(etiquetaComprobante(f), ancho) + "\n")
	b.WriteString(f.CreatedAt.Format("02/01/2006 15:04") + "\n")
	if f.Cliente != nil && !f.Cliente.EsConsumidorFinal {
		b.WriteString("Cliente: " + f.Cliente.Nombre + "\n")
		if f.NumeroDocumento != "" {
			b.WriteString(strings.ToUpper(f.TipoDocumento) + ": " + f.NumeroDocumento + "\n")
		}
	}
	b.WriteString(sep)

	for _, r := range f.Renglones {
		b.WriteString(recortar(r.Detalle, ancho) + "\n")
		var detalle string
		switch {
		case r.Peso != nil:
			detalle = "  " + r.Peso.StringFixed(3) + " kg"
		case r.Cantidad != nil:
			detalle = fmt.Sprintf("  %d x $%s", *r.Cantidad, r.PrecioVenta.StringFixed(2))
		}
		b.WriteString(columnas(detalle, "$"+r.Importe.StringFixed(2), ancho) + "\n")
	}
	b.WriteString(sep)

	b.WriteString(columnas("Subtotal", "$"+f.Subtotal.StringFixed(2), ancho) + "\n")
	if !f.Descuento.IsZero() {
		b.WriteString(columnas("Descuento", "-$"+f.Descuento.StringFixed(2), ancho) + "\n")
	}
	if !f.Interes.IsZero() {
		b.WriteString(columnas("Recargo tarjeta", "$"+f.Interes.StringFixed(2), ancho) + "\n")
	}
	b.WriteString(columnas("TOTAL", "$"+f.Total.StringFixed(2), ancho) + "\n")
	b.WriteString(sep)
	for _, p := range f.Pagos {
		b.WriteString(columnas(p.TipoPagoNombre, "$"+p.Monto.StringFixed(2), ancho) + "\n")
	}
	b.WriteString("\n" + centrar("Gracias por su compra", ancho) + "\n")
	return b.String()
}

func etiquetaComprobante(f *model.Factura) string {
	tipo := strings.ToUpper(strings.ReplaceAll(f.TipoComprobante, "_", " "))
	return tipo + " " + NumeroFormateado(f)
}

// NumeroFormateado is the printed invoice number, PPPP-NNNNNNNN.
func NumeroFormateado(f *model.Factura) string {
	return fmt.Sprintf("%04d-%08d", f.PuntoDeVenta, f.Numero)
}

func columnas(izq, der string, ancho int) string {
	espacio := ancho - utf8.RuneCountInString(der)
	if espacio < 2 {
		return der
	}
	izq = recortar(izq, espacio-1)
	return izq + strings.Repeat(" ", espacio-utf8.RuneCountInString(izq)) + der
}

func centrar(s string, ancho int) string {
	s = recortar(s, ancho)
	pad := (ancho - utf8.RuneCountInString(s)) / 2
	return strings.Repeat(" ", pad) + s
}

func recortar(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

// GenerateFacturaPDF writes the invoice as a receipt-sized PDF under
// storagePath and returns the file path.
func GenerateFacturaPDF(f *model.Factura, negocio, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("factura_%s_%04d_%08d.pdf", f.TipoComprobante, f.PuntoDeVenta, f.Numero)
	filePath := filepath.Join(storagePath, fileName)

	// 80mm roll; height grows with the number of lines.
	alto := 90.0 + 5*float64(len(f.Renglones)+len(f.Pagos))
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 80, Ht: alto},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 8

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(contentW, 7, tr(negocio), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, etiquetaComprobante(f), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, f.CreatedAt.Format("02/01/2006  15:04"), "", 1, "C", false, 0, "")
	if f.Cliente != nil {
		pdf.CellFormat(contentW, 4, tr("Cliente: "+f.Cliente.Nombre), "", 1, "L", false, 0, "")
	}
	pdf.Ln(1)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	// ── Lines ────────────────────────────────────────────────────────────────
	col1 := contentW * 0.52
	col2 := contentW * 0.18
	col3 := contentW * 0.30

	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(col1, 5, "Detalle", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, "Cant", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 5, "Importe", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	for _, r := range f.Renglones {
		cant := ""
		if r.Peso != nil {
			cant = r.Peso.StringFixed(3) + "kg"
		} else if r.Cantidad != nil {
			cant = fmt.Sprintf("x%d", *r.Cantidad)
		}
		pdf.CellFormat(col1, 5, tr(recortar(r.Detalle, 26)), "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, cant, "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 5, "$"+r.Importe.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	// ── Totals ───────────────────────────────────────────────────────────────
	fila := func(label, valor string) {
		pdf.CellFormat(col1+col2, 5, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 5, valor, "", 1, "R", false, 0, "")
	}
	fila("Subtotal:", "$"+f.Subtotal.StringFixed(2))
	if !f.Descuento.IsZero() {
		fila("Descuento:", "-$"+f.Descuento.StringFixed(2))
	}
	if !f.Interes.IsZero() {
		fila("Recargo tarjeta:", "$"+f.Interes.StringFixed(2))
	}
	pdf.SetFont("Helvetica", "B", 9)
	fila("TOTAL:", "$"+f.Total.StringFixed(2))

	pdf.Ln(2)
	pdf.SetFont("Helvetica", "", 7)
	for _, p := range f.Pagos {
		fila(tr(p.TipoPagoNombre+":"), "$"+p.Monto.StringFixed(2))
	}

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, tr("¡Gracias por su compra!"), "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}
