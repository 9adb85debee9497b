package handler

import (
	"net/http"

	"caffito/internal/dto"
	"caffito/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PosHandler exposes the register: one cart per in-progress invoice,
// addressed by its ID.
type PosHandler struct{ svc service.PosService }

func NewPosHandler(svc service.PosService) *PosHandler { return &PosHandler{svc: svc} }

// carritoResp is the common tail of every cart mutation.
func carritoResp(c *gin.Context, resp *dto.CarritoResponse, err error) {
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Nuevo godoc
// @Summary Abre un carrito nuevo
// @Description Arranca con el consumidor final y factura B.
// @Tags pos
// @Produce json
// @Security BearerAuth
// @Success 201 {object} dto.CarritoResponse
// @Router /v1/pos/carritos [post]
func (h *PosHandler) Nuevo(c *gin.Context) {
	resp, err := h.svc.Nuevo(c.Request.Context(), usuarioActual(c))
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *PosHandler) Obtener(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Obtener(c.Request.Context(), id)
	carritoResp(c, resp, err)
}

func (h *PosHandler) Cancelar(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Cancelar(c.Request.Context(), id); err != nil {
		responderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Escanear godoc
// @Summary Procesa la entrada del lector o del teclado
// @Description Busca por codigo exacto, luego como codigo de balanza y por ultimo por texto.
// @Description Con un unico resultado lo agrega; con varios devuelve los candidatos.
// @Tags pos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID del carrito"
// @Param body body dto.EscanearRequest true "Codigo o texto"
// @Success 200 {object} dto.EscaneoResponse
// @Failure 422 {object} apierror.APIError
// @Router /v1/pos/carritos/{id}/escanear [post]
func (h *PosHandler) Escanear(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.EscanearRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Escanear(c.Request.Context(), id, req.Codigo)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ── Renglones ─────────────────────────────────────────────────────────────────

// AgregarRenglon godoc
// @Summary Agrega un renglon
// @Description Con producto_id agrega del catalogo (cantidad o peso); sin el, un item libre con detalle y precio.
// @Tags pos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID del carrito"
// @Param body body dto.AgregarRenglonRequest true "Renglon"
// @Success 200 {object} dto.CarritoResponse
// @Router /v1/pos/carritos/{id}/renglones [post]
func (h *PosHandler) AgregarRenglon(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.AgregarRenglonRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AgregarRenglon(c.Request.Context(), id, req)
	carritoResp(c, resp, err)
}

func (h *PosHandler) CambiarCantidad(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	idx, ok := indiceParam(c)
	if !ok {
		return
	}
	var req dto.CambiarCantidadRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CambiarCantidad(c.Request.Context(), id, idx, req.Cantidad)
	carritoResp(c, resp, err)
}

func (h *PosHandler) QuitarRenglon(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	idx, ok := indiceParam(c)
	if !ok {
		return
	}
	resp, err := h.svc.QuitarRenglon(c.Request.Context(), id, idx)
	carritoResp(c, resp, err)
}

// ── Ajustes ───────────────────────────────────────────────────────────────────

func (h *PosHandler) AplicarDescuento(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.DescuentoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AplicarDescuento(c.Request.Context(), id, req.Monto)
	carritoResp(c, resp, err)
}

func (h *PosHandler) AplicarPromocion(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.PromocionCarritoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AplicarPromocion(c.Request.Context(), id, uuid.MustParse(req.PromocionID))
	carritoResp(c, resp, err)
}

func (h *PosHandler) QuitarPromocion(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.QuitarPromocion(c.Request.Context(), id)
	carritoResp(c, resp, err)
}

// SeleccionarMetodo godoc
// @Summary Selecciona el metodo de pago principal
// @Description tarjeta_credito suma el interes configurado; cualquier otro lo quita.
// @Tags pos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID del carrito"
// @Param body body dto.MetodoPagoRequest true "Tipo de pago"
// @Success 200 {object} dto.CarritoResponse
// @Router /v1/pos/carritos/{id}/metodo-pago [put]
func (h *PosHandler) SeleccionarMetodo(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.MetodoPagoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.SeleccionarMetodo(c.Request.Context(), id, uuid.MustParse(req.TipoPagoID))
	carritoResp(c, resp, err)
}

func (h *PosHandler) SeleccionarCliente(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.ClienteCarritoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.SeleccionarCliente(c.Request.Context(), id, uuid.MustParse(req.ClienteID))
	carritoResp(c, resp, err)
}

func (h *PosHandler) SetComprobante(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.ComprobanteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.SetComprobante(c.Request.Context(), id, req)
	carritoResp(c, resp, err)
}

// ── Pagos ─────────────────────────────────────────────────────────────────────

// AgregarPago godoc
// @Summary Agrega un pago parcial
// @Description El monto no puede superar el saldo restante.
// @Tags pos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID del carrito"
// @Param body body dto.AgregarPagoRequest true "Pago"
// @Success 200 {object} dto.CarritoResponse
// @Failure 422 {object} apierror.APIError
// @Router /v1/pos/carritos/{id}/pagos [post]
func (h *PosHandler) AgregarPago(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.AgregarPagoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AgregarPago(c.Request.Context(), id, req)
	carritoResp(c, resp, err)
}

func (h *PosHandler) QuitarPago(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	idx, ok := indiceParam(c)
	if !ok {
		return
	}
	resp, err := h.svc.QuitarPago(c.Request.Context(), id, idx)
	carritoResp(c, resp, err)
}

// Finalizar godoc
// @Summary Finaliza la venta
// @Description Persiste la factura, descuenta stock y registra los pagos en la caja.
// @Description Si falla, el carrito queda como estaba; si no, vuelve a empezar vacio.
// @Tags pos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID del carrito"
// @Param body body dto.FinalizarRequest true "Sesion de caja"
// @Success 201 {object} dto.FinalizarResponse
// @Failure 422 {object} apierror.APIError
// @Router /v1/pos/carritos/{id}/finalizar [post]
func (h *PosHandler) Finalizar(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.FinalizarRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Finalizar(c.Request.Context(), id, uuid.MustParse(req.SesionCajaID))
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}
