package handler

import (
	"errors"
	"net/http"
	"strconv"

	"caffito/internal/apierror"
	"caffito/internal/dto"
	"caffito/internal/middleware"
	"caffito/internal/service"

	"github.com/gin-gonic/gin"
)

type CajaHandler struct{ svc service.CajaService }

func NewCajaHandler(svc service.CajaService) *CajaHandler { return &CajaHandler{svc: svc} }

// Abrir godoc
// @Summary Abre una nueva sesion de caja
// @Tags caja
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.AbrirCajaRequest true "Datos de apertura"
// @Success 201 {object} dto.ReporteCajaResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/caja/abrir [post]
func (h *CajaHandler) Abrir(c *gin.Context) {
	var req dto.AbrirCajaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Abrir(c.Request.Context(), usuarioActual(c), req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Arqueo godoc
// @Summary Realiza el arqueo ciego y cierra la sesion
// @Tags caja
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.ArqueoRequest true "Declaracion de arqueo"
// @Success 200 {object} dto.ArqueoResponse
// @Failure 422 {object} apierror.APIError
// @Router /v1/caja/arqueo [post]
func (h *CajaHandler) Arqueo(c *gin.Context) {
	var req dto.ArqueoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Arqueo(c.Request.Context(), req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ObtenerReporte godoc
// @Summary Obtiene el reporte de una sesion de caja
// @Tags caja
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de sesion"
// @Success 200 {object} dto.ReporteCajaResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/caja/{id}/reporte [get]
func (h *CajaHandler) ObtenerReporte(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerReporte(c.Request.Context(), id)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RegistrarMovimiento godoc
// @Summary Registra un ingreso o egreso manual en caja
// @Tags caja
// @Accept json
// @Security BearerAuth
// @Param body body dto.MovimientoManualRequest true "Movimiento manual"
// @Success 204
// @Failure 422 {object} apierror.APIError
// @Router /v1/caja/movimiento [post]
func (h *CajaHandler) RegistrarMovimiento(c *gin.Context) {
	var req dto.MovimientoManualRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.RegistrarMovimiento(c.Request.Context(), req); err != nil {
		responderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetActiva returns the open session of a punto de venta. Without the query
// parameter the one assigned to the user's token is used.
func (h *CajaHandler) GetActiva(c *gin.Context) {
	pdv := 0
	if q := c.Query("punto_de_venta"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, apierror.New("punto de venta invalido"))
			return
		}
		pdv = n
	} else if claims := middleware.GetClaims(c); claims != nil && claims.PuntoDeVenta != nil {
		pdv = *claims.PuntoDeVenta
	}
	if pdv == 0 {
		c.JSON(http.StatusBadRequest, apierror.New("indique el punto de venta"))
		return
	}
	resp, err := h.svc.SesionActiva(c.Request.Context(), pdv)
	if errors.Is(err, service.ErrCajaNoAbierta) {
		c.JSON(http.StatusNotFound, apierror.New("Sin sesion activa"))
		return
	}
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Historial returns a paginated list of cash sessions.
func (h *CajaHandler) Historial(c *gin.Context) {
	var filter dto.CajaFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Historial(c.Request.Context(), filter)
	if err != nil {
		responderError(c, err)
		return
	}
	lista(c, resp)
}
