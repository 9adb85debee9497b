package handler

import (
	"fmt"
	"net/http"

	"caffito/internal/dto"
	"caffito/internal/service"

	"github.com/gin-gonic/gin"
)

type FacturasHandler struct{ svc service.FacturaService }

func NewFacturasHandler(svc service.FacturaService) *FacturasHandler {
	return &FacturasHandler{svc: svc}
}

// Listar godoc
// @Summary      Listar facturas
// @Description  Lista paginada filtrada por cliente, sesion de caja, estado y fechas.
// @Tags         facturas
// @Produce      json
// @Security     BearerAuth
// @Param        estado query string false "emitida | anulada"
// @Param        desde  query string false "YYYY-MM-DD"
// @Param        hasta  query string false "YYYY-MM-DD"
// @Success      200    {object} dto.Lista[dto.FacturaResponse]
// @Router       /v1/facturas [get]
func (h *FacturasHandler) Listar(c *gin.Context) {
	var filter dto.FacturaFilter
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

func (h *FacturasHandler) ObtenerPorID(c *gin.Context) {
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

// Anular godoc
// @Summary      Anular factura
// @Description  Restaura stock, revierte los pagos en caja y la deuda en cuenta corriente.
// @Tags         facturas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path     string                   true "UUID de la factura"
// @Param        body body     dto.AnularFacturaRequest true "Motivo"
// @Success      200  {object} dto.FacturaResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/facturas/{id}/anular [post]
func (h *FacturasHandler) Anular(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.AnularFacturaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Anular(c.Request.Context(), usuarioActual(c), id, req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DescargarPDF GET /v1/facturas/:id/pdf
func (h *FacturasHandler) DescargarPDF(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	path, err := h.svc.PDF(c.Request.Context(), id)
	if err != nil {
		responderError(c, err)
		return
	}
	c.FileAttachment(path, fmt.Sprintf("factura-%s.pdf", id))
}

// Reimprimir enqueues the ticket again; the print itself is asynchronous.
func (h *FacturasHandler) Reimprimir(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Reimprimir(c.Request.Context(), id); err != nil {
		responderError(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}
