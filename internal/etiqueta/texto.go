package etiqueta

import (
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	maxLinea1 = 22
	maxLinea2 = 28

	// Prices with more integer digits than this are printed without cents.
	maxDigitosConDecimales = 5
)

// PartirNombre word-wraps a product name into two label lines. Words that do
// not fit in line 2 are dropped; a single word longer than a line is cut.
func PartirNombre(nombre string) (string, string) {
	palabras := strings.Fields(nombre)
	l1, resto := llenarLinea(palabras, maxLinea1)
	l2, _ := llenarLinea(resto, maxLinea2)
	return l1, l2
}

func llenarLinea(palabras []string, max int) (string, []string) {
	if len(palabras) == 0 {
		return "", nil
	}
	if utf8.RuneCountInString(palabras[0]) > max {
		return cortar(palabras[0], max), palabras[1:]
	}
	linea := palabras[0]
	i := 1
	for ; i < len(palabras); i++ {
		candidata := linea + " " + palabras[i]
		if utf8.RuneCountInString(candidata) > max {
			break
		}
		linea = candidata
	}
	return linea, palabras[i:]
}

func cortar(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

// FormatearPrecio renders a label price, dropping cents on large amounts.
func FormatearPrecio(p decimal.Decimal) string {
	if len(p.Abs().Truncate(0).String()) > maxDigitosConDecimales {
		return "$" + p.StringFixed(0)
	}
	return "$" + p.StringFixed(2)
}
