package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"caffito/internal/dto"
	"caffito/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimePDF  = "application/pdf"
)

// CatalogoHandler serves the product-list export and label sheets. Files are
// rendered into memory first so a failure can still be answered as JSON.
type CatalogoHandler struct{ svc service.CatalogoService }

func NewCatalogoHandler(svc service.CatalogoService) *CatalogoHandler {
	return &CatalogoHandler{svc: svc}
}

// Exportar godoc
// @Summary Exporta el listado de productos a XLSX
// @Tags productos
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param q query string false "Mismos filtros que el listado"
// @Success 200 {file} file
// @Router /v1/productos/export [get]
func (h *CatalogoHandler) Exportar(c *gin.Context) {
	var filter dto.ProductoFilter
	if !bindQuery(c, &filter) {
		return
	}
	var buf bytes.Buffer
	n, err := h.svc.Exportar(c.Request.Context(), &buf, filter)
	if err != nil {
		responderError(c, err)
		return
	}
	nombre := fmt.Sprintf("productos-%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", `attachment; filename="`+nombre+`"`)
	c.Header("X-Total-Count", strconv.Itoa(n))
	c.Data(http.StatusOK, mimeXLSX, buf.Bytes())
}

// Etiquetas godoc
// @Summary Genera la hoja de etiquetas con codigos de barras
// @Description EAN-13 cuando el codigo es valido, CODE128 en otro caso. 18 etiquetas por hoja A4.
// @Tags productos
// @Accept json
// @Produce application/pdf
// @Security BearerAuth
// @Param body body dto.EtiquetasRequest true "Productos y copias"
// @Success 200 {file} file
// @Failure 422 {object} apierror.APIError
// @Router /v1/productos/etiquetas [post]
func (h *CatalogoHandler) Etiquetas(c *gin.Context) {
	var req dto.EtiquetasRequest
	if !bindAndValidate(c, &req) {
		return
	}
	var buf bytes.Buffer
	paginas, err := h.svc.Etiquetas(c.Request.Context(), &buf, req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.Header("Content-Disposition", `inline; filename="etiquetas.pdf"`)
	c.Header("X-Page-Count", strconv.Itoa(paginas))
	c.Data(http.StatusOK, mimePDF, buf.Bytes())
}
