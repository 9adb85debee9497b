package handler

import (
	"net/http"

	"caffito/internal/dto"
	"caffito/internal/service"

	"github.com/gin-gonic/gin"
)

type ClientesHandler struct {
	svc    service.ClienteService
	cuenta service.CuentaCorrienteService
}

func NewClientesHandler(svc service.ClienteService, cuenta service.CuentaCorrienteService) *ClientesHandler {
	return &ClientesHandler{svc: svc, cuenta: cuenta}
}

func (h *ClientesHandler) Crear(c *gin.Context) {
	var req dto.CrearClienteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Listar GET /v1/clientes?q= searches by name or document number.
func (h *ClientesHandler) Listar(c *gin.Context) {
	var filter dto.ClienteFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		responderError(c, err)
		return
	}
	lista(c, resp)
}

func (h *ClientesHandler) ObtenerPorID(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerPorID(c.Request.Context(), id)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ClientesHandler) Actualizar(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.ActualizarClienteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), id, req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ClientesHandler) Desactivar(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Desactivar(c.Request.Context(), id); err != nil {
		responderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ── Cuenta corriente ──────────────────────────────────────────────────────────

func (h *ClientesHandler) Movimientos(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var p dto.Paginacion
	if !bindQuery(c, &p) {
		return
	}
	resp, err := h.cuenta.Movimientos(c.Request.Context(), id, p)
	if err != nil {
		responderError(c, err)
		return
	}
	lista(c, resp)
}

func (h *ClientesHandler) Saldo(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.cuenta.Saldo(c.Request.Context(), id)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RegistrarPago godoc
// @Summary Registra un pago a cuenta corriente
// @Description Acredita la cuenta y registra el ingreso en la sesion de caja indicada.
// @Tags clientes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID del cliente"
// @Param body body dto.PagoCuentaCorrienteRequest true "Pago"
// @Success 201 {object} dto.SaldoResponse
// @Failure 422 {object} apierror.APIError
// @Router /v1/clientes/{id}/cuenta-corriente/pagos [post]
func (h *ClientesHandler) RegistrarPago(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.PagoCuentaCorrienteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.cuenta.RegistrarPago(c.Request.Context(), usuarioActual(c), id, req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}
