// Package pos models the invoice being built at the register: its lines,
// discount, card interest and the split payments that settle it.
//
// Every mutating method recomputes the derived totals before returning, so
// Total == Subtotal - Descuento + Interes holds between any two calls. A
// method that returns an error leaves the invoice unchanged.
package pos

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment method codes with special behaviour.
const (
	CodigoEfectivo        = "efectivo"
	CodigoTarjetaCredito  = "tarjeta_credito"
	CodigoCuentaCorriente = "cuenta_corriente"
)

var cien = decimal.NewFromInt(100)

// Politica holds the configurable invoice rules.
type Politica struct {
	InteresTarjetaPct decimal.Decimal `json:"interes_tarjeta_pct"`
}

func PoliticaPorDefecto() Politica {
	return Politica{InteresTarjetaPct: decimal.NewFromInt(10)}
}

// Item is the product snapshot a line is built from.
type Item struct {
	ProductoID  uuid.UUID
	Codigo      string
	Nombre      string
	PrecioVenta decimal.Decimal // per unit, or per kg when Pesable
	Pesable     bool
}

// Renglon is one invoice line. Exactly one of Cantidad and Peso is set.
type Renglon struct {
	ProductoID *uuid.UUID       `json:"producto_id,omitempty"`
	Libre      bool             `json:"libre"`
	Codigo     string           `json:"codigo,omitempty"`
	Detalle    string           `json:"detalle"`
	Cantidad   int              `json:"cantidad,omitempty"`
	Peso       *decimal.Decimal `json:"peso,omitempty"`
	PrecioKg   *decimal.Decimal `json:"precio_kg,omitempty"`
	// PrecioVenta is the unit price, or the line total on weight lines.
	PrecioVenta decimal.Decimal `json:"precio_venta"`
}

func (r Renglon) EsPesado() bool { return r.Peso != nil }

func (r Renglon) Importe() decimal.Decimal {
	if r.EsPesado() {
		return r.PrecioVenta
	}
	return r.PrecioVenta.Mul(decimal.NewFromInt(int64(r.Cantidad)))
}

// TipoPago identifies a payment method.
type TipoPago struct {
	ID     uuid.UUID `json:"id"`
	Codigo string    `json:"codigo"`
	Nombre string    `json:"nombre"`
}

type Pago struct {
	TipoPagoID     uuid.UUID       `json:"tipo_pago_id"`
	TipoPagoCodigo string          `json:"tipo_pago_codigo"`
	TipoPagoNombre string          `json:"tipo_pago_nombre"`
	Monto          decimal.Decimal `json:"monto"`
}

// Comprobante is the fiscal document triple printed on the invoice.
type Comprobante struct {
	Tipo            string `json:"tipo"`
	TipoDocumento   string `json:"tipo_documento"`
	NumeroDocumento string `json:"numero_documento"`
}

// Promocion discounts either a percentage of the subtotal or a fixed amount.
type Promocion struct {
	ID         uuid.UUID        `json:"id"`
	Nombre     string           `json:"nombre"`
	Porcentaje *decimal.Decimal `json:"porcentaje,omitempty"`
	Monto      *decimal.Decimal `json:"monto,omitempty"`
}

func (p Promocion) valida() bool {
	switch {
	case p.Porcentaje != nil && p.Monto == nil:
		return p.Porcentaje.IsPositive() && p.Porcentaje.LessThanOrEqual(cien)
	case p.Monto != nil && p.Porcentaje == nil:
		return p.Monto.IsPositive()
	}
	return false
}

// Factura is the in-progress invoice. Fields are exported for storage; mutate
// it only through its methods.
type Factura struct {
	ID          uuid.UUID   `json:"id"`
	UsuarioID   uuid.UUID   `json:"usuario_id"`
	ClienteID   uuid.UUID   `json:"cliente_id"`
	Comprobante Comprobante `json:"comprobante"`
	Politica    Politica    `json:"politica"`

	Renglones     []Renglon       `json:"renglones"`
	Pagos         []Pago          `json:"pagos"`
	MetodoPago    string          `json:"metodo_pago,omitempty"`
	Promocion     *Promocion      `json:"promocion,omitempty"`
	DescuentoFijo decimal.Decimal `json:"descuento_fijo"`

	Subtotal  decimal.Decimal `json:"subtotal"`
	Descuento decimal.Decimal `json:"descuento"`
	Interes   decimal.Decimal `json:"interes"`
	Total     decimal.Decimal `json:"total"`
}

// Nueva returns an empty invoice for the given client.
func Nueva(id, clienteID uuid.UUID, c Comprobante, p Politica) *Factura {
	f := &Factura{ID: id, ClienteID: clienteID, Comprobante: c, Politica: p}
	f.recalcular()
	return f
}

// Reiniciar empties the invoice in place, keeping its ID, user and policy.
func (f *Factura) Reiniciar(clienteID uuid.UUID, c Comprobante) {
	*f = Factura{ID: f.ID, UsuarioID: f.UsuarioID, Politica: f.Politica, ClienteID: clienteID, Comprobante: c}
	f.recalcular()
}

// ── Lines ─────────────────────────────────────────────────────────────────────

// AgregarProducto adds cantidad units, merging into an existing quantity line
// for the same product and price.
func (f *Factura) AgregarProducto(item Item, cantidad int) error {
	if item.Pesable {
		return ErrRequierePeso
	}
	if cantidad < 1 {
		return ErrCantidadInvalida
	}
	if item.PrecioVenta.IsNegative() {
		return ErrPrecioInvalido
	}
	for i := range f.Renglones {
		r := &f.Renglones[i]
		if r.ProductoID != nil && *r.ProductoID == item.ProductoID && !r.EsPesado() && r.PrecioVenta.Equal(item.PrecioVenta) {
			r.Cantidad += cantidad
			f.recalcular()
			return nil
		}
	}
	id := item.ProductoID
	f.Renglones = append(f.Renglones, Renglon{
		ProductoID:  &id,
		Codigo:      item.Codigo,
		Detalle:     item.Nombre,
		Cantidad:    cantidad,
		PrecioVenta: item.PrecioVenta,
	})
	f.recalcular()
	return nil
}

// AgregarPesable adds a weight line priced at peso × price per kg.
func (f *Factura) AgregarPesable(item Item, peso decimal.Decimal) error {
	if !peso.IsPositive() {
		return ErrPesoInvalido
	}
	if !item.PrecioVenta.IsPositive() {
		return ErrPrecioInvalido
	}
	f.agregarPesado(item, peso.Round(3), item.PrecioVenta.Mul(peso).Round(2))
	return nil
}

// AgregarPorImporte adds the line read from a scale barcode. Pesable products
// get a weight line whose total is the embedded amount; any other product is
// added as one unit.
func (f *Factura) AgregarPorImporte(item Item, importe decimal.Decimal) error {
	if !item.Pesable {
		return f.AgregarProducto(item, 1)
	}
	if !importe.IsPositive() {
		return ErrMontoInvalido
	}
	if !item.PrecioVenta.IsPositive() {
		return ErrPrecioInvalido
	}
	peso := importe.Div(item.PrecioVenta).Round(2)
	if !peso.IsPositive() {
		return ErrPesoInvalido
	}
	f.agregarPesado(item, peso, importe)
	return nil
}

func (f *Factura) agregarPesado(item Item, peso, importe decimal.Decimal) {
	id := item.ProductoID
	kg := item.PrecioVenta
	f.Renglones = append(f.Renglones, Renglon{
		ProductoID:  &id,
		Codigo:      item.Codigo,
		Detalle:     item.Nombre,
		Peso:        &peso,
		PrecioKg:    &kg,
		PrecioVenta: importe,
	})
	f.recalcular()
}

// AgregarLibre adds a free-text item that is not in the catalog.
func (f *Factura) AgregarLibre(detalle string, precio decimal.Decimal, cantidad int) error {
	detalle = strings.TrimSpace(detalle)
	if detalle == "" {
		return ErrDetalleVacio
	}
	if !precio.IsPositive() {
		return ErrPrecioInvalido
	}
	if cantidad < 1 {
		return ErrCantidadInvalida
	}
	f.Renglones = append(f.Renglones, Renglon{
		Libre:       true,
		Detalle:     detalle,
		Cantidad:    cantidad,
		PrecioVenta: precio,
	})
	f.recalcular()
	return nil
}

func (f *Factura) CambiarCantidad(i, cantidad int) error {
	if i < 0 || i >= len(f.Renglones) {
		return ErrRenglonInexistente
	}
	if f.Renglones[i].EsPesado() {
		return ErrRenglonPesado
	}
	if cantidad < 1 {
		return ErrCantidadInvalida
	}
	f.Renglones[i].Cantidad = cantidad
	f.recalcular()
	return nil
}

func (f *Factura) Quitar(i int) error {
	if i < 0 || i >= len(f.Renglones) {
		return ErrRenglonInexistente
	}
	f.Renglones = append(f.Renglones[:i], f.Renglones[i+1:]...)
	f.recalcular()
	return nil
}

// ── Discount, interest, client ────────────────────────────────────────────────

// AplicarDescuento sets a fixed discount and drops any promotion.
func (f *Factura) AplicarDescuento(monto decimal.Decimal) error {
	if monto.IsNegative() {
		return ErrMontoInvalido
	}
	if monto.GreaterThan(f.Subtotal) {
		return ErrDescuentoExcedeSubtotal
	}
	f.Promocion = nil
	f.DescuentoFijo = monto
	f.recalcular()
	return nil
}

// AplicarPromocion replaces any fixed discount with the promotion.
func (f *Factura) AplicarPromocion(p Promocion) error {
	if !p.valida() {
		return ErrPromocionInvalida
	}
	f.Promocion = &p
	f.DescuentoFijo = decimal.Zero
	f.recalcular()
	return nil
}

func (f *Factura) QuitarPromocion() {
	f.Promocion = nil
	f.recalcular()
}

// SeleccionarMetodo sets the payment method; card interest applies only
// while it is tarjeta_credito.
func (f *Factura) SeleccionarMetodo(tp TipoPago) {
	f.MetodoPago = tp.Codigo
	f.recalcular()
}

func (f *Factura) SeleccionarCliente(clienteID uuid.UUID) {
	f.ClienteID = clienteID
}

func (f *Factura) SetComprobante(c Comprobante) {
	f.Comprobante = c
}

// ── Payments ──────────────────────────────────────────────────────────────────

func (f *Factura) AgregarPago(tp TipoPago, monto decimal.Decimal) error {
	if !monto.IsPositive() {
		return ErrMontoInvalido
	}
	if monto.GreaterThan(f.Restante()) {
		return ErrMontoExcedeRestante
	}
	f.Pagos = append(f.Pagos, Pago{
		TipoPagoID:     tp.ID,
		TipoPagoCodigo: tp.Codigo,
		TipoPagoNombre: tp.Nombre,
		Monto:          monto,
	})
	return nil
}

func (f *Factura) QuitarPago(i int) error {
	if i < 0 || i >= len(f.Pagos) {
		return ErrPagoInexistente
	}
	f.Pagos = append(f.Pagos[:i], f.Pagos[i+1:]...)
	return nil
}

func (f *Factura) TotalPagado() decimal.Decimal {
	s := decimal.Zero
	for _, p := range f.Pagos {
		s = s.Add(p.Monto)
	}
	return s
}

// Restante is the amount still to be paid, never negative.
func (f *Factura) Restante() decimal.Decimal {
	return decimal.Max(decimal.Zero, f.Total.Sub(f.TotalPagado()))
}

// Vuelto is the change owed when payments exceed the total, which happens
// when the total drops after paying.
func (f *Factura) Vuelto() decimal.Decimal {
	return decimal.Max(decimal.Zero, f.TotalPagado().Sub(f.Total))
}

func (f *Factura) pagadoEn(codigo string) decimal.Decimal {
	s := decimal.Zero
	for _, p := range f.Pagos {
		if p.TipoPagoCodigo == codigo {
			s = s.Add(p.Monto)
		}
	}
	return s
}

func (f *Factura) PuedeFinalizar() bool {
	return f.Validar() == nil
}

// Validar returns why the invoice cannot be finalized, or nil.
func (f *Factura) Validar() error {
	if len(f.Renglones) == 0 {
		return ErrFacturaVacia
	}
	if f.TotalPagado().LessThan(f.Total) {
		return ErrPagoIncompleto
	}
	// Only cash can be handed back as change.
	if f.Vuelto().GreaterThan(f.pagadoEn(CodigoEfectivo)) {
		return ErrExcedenteNoEfectivo
	}
	return nil
}

func (f *Factura) recalcular() {
	sub := decimal.Zero
	for _, r := range f.Renglones {
		sub = sub.Add(r.Importe())
	}

	desc := f.DescuentoFijo
	if f.Promocion != nil {
		if f.Promocion.Porcentaje != nil {
			desc = sub.Mul(*f.Promocion.Porcentaje).Div(cien).Round(2)
		} else if f.Promocion.Monto != nil {
			desc = *f.Promocion.Monto
		}
	}
	desc = decimal.Min(decimal.Max(desc, decimal.Zero), sub)

	interes := decimal.Zero
	if f.MetodoPago == CodigoTarjetaCredito {
		interes = sub.Mul(f.Politica.InteresTarjetaPct).Div(cien).Round(2)
	}

	f.Subtotal = sub
	f.Descuento = desc
	f.Interes = interes
	f.Total = sub.Sub(desc).Add(interes)
}
