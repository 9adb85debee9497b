package handler

import (
	"net/http"

	"caffito/internal/dto"
	"caffito/internal/service"

	"github.com/gin-gonic/gin"
)

type ProductosHandler struct{ svc service.ProductoService }

func NewProductosHandler(svc service.ProductoService) *ProductosHandler {
	return &ProductosHandler{svc: svc}
}

// Crear godoc
// @Summary Alta de producto con su primer precio de proveedor
// @Tags productos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CrearProductoRequest true "Producto"
// @Success 201 {object} dto.ProductoResponse
// @Failure 409 {object} apierror.APIError
// @Failure 422 {object} apierror.ValidationError
// @Router /v1/productos [post]
func (h *ProductosHandler) Crear(c *gin.Context) {
	var req dto.CrearProductoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), usuarioActual(c), req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Listar godoc
// @Summary Lista y busca productos
// @Tags productos
// @Produce json
// @Security BearerAuth
// @Param q query string false "Texto en nombre o codigo"
// @Param page query int false "Pagina"
// @Param size query int false "Tamano de pagina"
// @Param sort query string false "campo[,desc]"
// @Success 200 {object} dto.Lista[dto.ProductoResponse]
// @Header 200 {integer} X-Total-Count "Total de registros"
// @Router /v1/productos [get]
func (h *ProductosHandler) Listar(c *gin.Context) {
	var filter dto.ProductoFilter
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

func (h *ProductosHandler) ObtenerPorID(c *gin.Context) {
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

func (h *ProductosHandler) Actualizar(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.ActualizarProductoRequest
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

func (h *ProductosHandler) Desactivar(c *gin.Context) {
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

func (h *ProductosHandler) Reactivar(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Reactivar(c.Request.Context(), id); err != nil {
		responderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ── Precios ───────────────────────────────────────────────────────────────────

// AgregarPrecio godoc
// @Summary Agrega un precio de proveedor al producto
// @Tags productos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID del producto"
// @Param body body dto.PrecioProveedorRequest true "Precio"
// @Success 201 {object} dto.ProductoResponse
// @Router /v1/productos/{id}/precios [post]
func (h *ProductosHandler) AgregarPrecio(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.PrecioProveedorRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AgregarPrecio(c.Request.Context(), usuarioActual(c), id, req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// EditarPrecio godoc
// @Summary Edita costo, ganancia o venta de un precio de proveedor
// @Description Los otros vertices del triangulo se recalculan.
// @Tags productos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID del producto"
// @Param body body dto.EditarPrecioRequest true "Cambios"
// @Success 200 {object} dto.ProductoResponse
// @Failure 422 {object} apierror.APIError
// @Router /v1/productos/{id}/precios [put]
func (h *ProductosHandler) EditarPrecio(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.EditarPrecioRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.EditarPrecio(c.Request.Context(), usuarioActual(c), id, req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProductosHandler) SetProveedorActivo(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.ProveedorActivoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.SetProveedorActivo(c.Request.Context(), id, req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
