package handler

import (
	"io"
	"net/http"

	"caffito/internal/apierror"
	"caffito/internal/dto"
	"caffito/internal/service"

	"github.com/gin-gonic/gin"
)

// maxImportacion caps the uploaded price list.
const maxImportacion = 10 << 20

type ProveedoresHandler struct{ svc service.ProveedorService }

func NewProveedoresHandler(svc service.ProveedorService) *ProveedoresHandler {
	return &ProveedoresHandler{svc: svc}
}

func (h *ProveedoresHandler) Crear(c *gin.Context) {
	var req dto.CrearProveedorRequest
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

func (h *ProveedoresHandler) Listar(c *gin.Context) {
	resp, err := h.svc.Listar(c.Request.Context(), c.Query("inactivos") == "true")
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProveedoresHandler) ObtenerPorID(c *gin.Context) {
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

func (h *ProveedoresHandler) Actualizar(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.ActualizarProveedorRequest
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

func (h *ProveedoresHandler) Eliminar(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Eliminar(c.Request.Context(), id); err != nil {
		responderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ActualizarPreciosMasivo godoc
// @Summary Actualizacion masiva de costos de un proveedor
// @Description Mueve todos los costos por un porcentaje; venta y mayorista se recalculan. Con preview no se guarda nada.
// @Tags proveedores
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID del proveedor"
// @Param body body dto.ActualizacionMasivaRequest true "Porcentaje"
// @Success 200 {object} dto.ActualizacionMasivaResponse
// @Router /v1/proveedores/{id}/precios/masivo [post]
func (h *ProveedoresHandler) ActualizarPreciosMasivo(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.ActualizacionMasivaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ActualizarPreciosMasivo(c.Request.Context(), usuarioActual(c), id, req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ImportarXLSX godoc
// @Summary Importa una lista de costos en XLSX
// @Description Columna A codigo, columna B costo. Las filas que no se pueden aplicar se informan en la respuesta.
// @Tags proveedores
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID del proveedor"
// @Param archivo formData file true "Lista de precios .xlsx"
// @Success 200 {object} dto.ImportacionResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/proveedores/{id}/precios/importar [post]
func (h *ProveedoresHandler) ImportarXLSX(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	fh, err := c.FormFile("archivo")
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("falta el archivo"))
		return
	}
	if fh.Size > maxImportacion {
		c.JSON(http.StatusRequestEntityTooLarge, apierror.New("el archivo supera 10 MB"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		responderError(c, err)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxImportacion))
	if err != nil {
		responderError(c, err)
		return
	}
	resp, err := h.svc.ImportarXLSX(c.Request.Context(), usuarioActual(c), id, data)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
