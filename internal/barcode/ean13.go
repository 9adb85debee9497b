// Package barcode holds the code rules used at the register and on shelf
// labels: EAN-13 check digit completion and decoding of the weight-encoded
// barcodes printed by the deli scale.
package barcode

import (
	"errors"
	"fmt"
	"strings"
)

// ErrCodigoNoNumerico is returned when an EAN-13 is requested for a code that
// contains anything other than digits.
var ErrCodigoNoNumerico = errors.New("el codigo no es numerico")

// EsNumerico reports whether s is a non-empty run of ASCII digits.
func EsNumerico(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// DigitoVerificador computes the EAN-13 check digit of a 12-digit body.
// Odd positions weigh 1, even positions weigh 3.
func DigitoVerificador(cuerpo string) (byte, error) {
	if len(cuerpo) != 12 || !EsNumerico(cuerpo) {
		return 0, fmt.Errorf("cuerpo EAN-13 %q: se esperaban 12 digitos: %w", cuerpo, ErrCodigoNoNumerico)
	}
	suma := 0
	for i := 0; i < 12; i++ {
		d := int(cuerpo[i] - '0')
		if i%2 == 1 {
			d *= 3
		}
		suma += d
	}
	return byte('0' + (10-suma%10)%10), nil
}

// NormalizarEAN13 turns a numeric product code into a 13-digit EAN.
//
//	13 digits       as-is (the check digit is not validated here)
//	12 digits       check digit appended
//	10 or fewer     zero-padded to 10, then to 12, check digit appended
//	11 digits       zero-padded to 12, check digit appended
//	more than 13    first 12 digits, check digit appended
//
// Non-numeric codes return ErrCodigoNoNumerico; callers fall back to CODE128.
func NormalizarEAN13(codigo string) (string, error) {
	if !EsNumerico(codigo) {
		return "", ErrCodigoNoNumerico
	}
	switch n := len(codigo); {
	case n == 13:
		return codigo, nil
	case n > 13:
		codigo = codigo[:12]
	case n <= 10:
		codigo = rellenar(rellenar(codigo, 10), 12)
	case n == 11:
		codigo = rellenar(codigo, 12)
	}
	d, err := DigitoVerificador(codigo)
	if err != nil {
		return "", err
	}
	return codigo + string(d), nil
}

// ValidarEAN13 reports whether codigo is 13 digits with a correct check digit.
func ValidarEAN13(codigo string) bool {
	if len(codigo) != 13 || !EsNumerico(codigo) {
		return false
	}
	d, err := DigitoVerificador(codigo[:12])
	return err == nil && d == codigo[12]
}

func rellenar(s string, largo int) string {
	if len(s) >= largo {
		return s
	}
	return strings.Repeat("0", largo-len(s)) + s
}
