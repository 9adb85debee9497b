package barcode

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// Layout of the scale barcodes: one prefix digit, a 5-character product
// sub-code and a 6-digit embedded amount. Anything after position 12
// (usually the check digit) is ignored.
const (
	LongitudMinimaPesable = 12

	inicioSubCodigo = 1
	finSubCodigo    = 6
	finImporte      = 12
)

var (
	// ErrNoPesable is returned for input that does not have the scale layout.
	ErrNoPesable = errors.New("el codigo no tiene formato de balanza")
	// ErrImporteInvalido is returned when the embedded amount is not numeric.
	ErrImporteInvalido = errors.New("importe embebido en el codigo de balanza invalido")
)

// CodigoPesable is the decoded content of a scale barcode.
type CodigoPesable struct {
	SubCodigo string
	Importe   decimal.Decimal
}

// PuedeSerPesable reports whether the input has the shape of a scale
// barcode: at least 12 characters whose prefix and sub-code are digits. Text
// such as a product name never qualifies, so it reaches the name search.
// The amount digits are checked by DecodificarPesable.
func PuedeSerPesable(entrada string) bool {
	return len(entrada) >= LongitudMinimaPesable && EsNumerico(entrada[:finSubCodigo])
}

// DecodificarPesable extracts sub-code and amount from a scale barcode.
// A malformed amount is rejected instead of being read as zero.
func DecodificarPesable(entrada string) (CodigoPesable, error) {
	if !PuedeSerPesable(entrada) {
		return CodigoPesable{}, ErrNoPesable
	}
	crudo := entrada[finSubCodigo:finImporte]
	if !EsNumerico(crudo) {
		return CodigoPesable{}, fmt.Errorf("%w: %q", ErrImporteInvalido, crudo)
	}
	n, err := strconv.ParseInt(crudo, 10, 64)
	if err != nil {
		return CodigoPesable{}, fmt.Errorf("%w: %v", ErrImporteInvalido, err)
	}
	return CodigoPesable{
		SubCodigo: entrada[inicioSubCodigo:finSubCodigo],
		Importe:   decimal.NewFromInt(n),
	}, nil
}
