package pos

import "errors"

var (
	ErrRenglonInexistente      = errors.New("renglon inexistente")
	ErrPagoInexistente         = errors.New("pago inexistente")
	ErrCantidadInvalida        = errors.New("la cantidad debe ser un entero mayor o igual a 1")
	ErrPesoInvalido            = errors.New("el peso debe ser mayor a cero")
	ErrPrecioInvalido          = errors.New("el producto no tiene un precio valido")
	ErrRenglonPesado           = errors.New("los renglones por peso no admiten cambio de cantidad")
	ErrRequierePeso            = errors.New("el producto se vende por peso")
	ErrDetalleVacio            = errors.New("el detalle del item libre es obligatorio")
	ErrMontoInvalido           = errors.New("el monto debe ser mayor a cero")
	ErrMontoExcedeRestante     = errors.New("el monto excede el saldo restante")
	ErrDescuentoExcedeSubtotal = errors.New("el descuento excede el subtotal")
	ErrPromocionInvalida       = errors.New("la promocion debe tener porcentaje o monto, no ambos")
	ErrFacturaVacia            = errors.New("la factura no tiene renglones")
	ErrPagoIncompleto          = errors.New("los pagos no cubren el total")
	ErrExcedenteNoEfectivo     = errors.New("los pagos exceden el total y el excedente no es efectivo")
)
