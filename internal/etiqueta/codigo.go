package etiqueta

import (
	"bytes"
	"image/png"

	bc "github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/boombuler/barcode/ean"

	"caffito/internal/barcode"
)

// Symbology of a rendered code.
const (
	SimbologiaEAN13   = "EAN13"
	SimbologiaCODE128 = "CODE128"
)

// Codigo is the barcode chosen for a label.
type Codigo struct {
	Simbologia string
	Texto      string
	simbolo    bc.Barcode
}

// CodigoBarras picks EAN-13 for numeric codes and CODE128 for the rest. When
// the EAN-13 encoder rejects the normalized code (a 13-digit code with a bad
// check digit) the original text is encoded as CODE128. ok is false only when
// nothing could be encoded, e.g. an empty code.
func CodigoBarras(codigo string) (Codigo, bool) {
	if n, err := barcode.NormalizarEAN13(codigo); err == nil {
		if s, err := ean.Encode(n); err == nil {
			return Codigo{Simbologia: SimbologiaEAN13, Texto: n, simbolo: s}, true
		}
	}
	if codigo == "" {
		return Codigo{}, false
	}
	s, err := code128.Encode(codigo)
	if err != nil {
		return Codigo{}, false
	}
	return Codigo{Simbologia: SimbologiaCODE128, Texto: codigo, simbolo: s}, true
}

// PNG renders the symbol scaled to an integer multiple of its module width.
func (c Codigo) PNG() ([]byte, error) {
	ancho := c.simbolo.Bounds().Dx() * 4
	escalado, err := bc.Scale(c.simbolo, ancho, 120)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, escalado); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
