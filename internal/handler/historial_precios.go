package handler

import (
	"caffito/internal/dto"
	"caffito/internal/service"

	"github.com/gin-gonic/gin"
)

// HistorialPreciosHandler serves the immutable price-change history.
type HistorialPreciosHandler struct{ svc service.ProductoService }

func NewHistorialPreciosHandler(svc service.ProductoService) *HistorialPreciosHandler {
	return &HistorialPreciosHandler{svc: svc}
}

// ListarPorProducto godoc
// @Summary      Historial de precios de un producto
// @Description  Cambios de costo y venta del producto, del mas reciente al mas antiguo.
// @Tags         productos
// @Security     BearerAuth
// @Param        id    path     string  true  "UUID del producto"
// @Param        page  query    int     false "Pagina (default 1)"
// @Param        size  query    int     false "Registros por pagina (default 20, max 200)"
// @Success      200   {object} dto.Lista[dto.HistorialPrecioItem]
// @Failure      400   {object} apierror.APIError
// @Router       /v1/productos/{id}/historial-precios [get]
func (h *HistorialPreciosHandler) ListarPorProducto(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var filter dto.HistorialFilter
	if !bindQuery(c, &filter) {
		return
	}
	filter.ProductoID = id.String()
	h.listar(c, filter)
}

// Listar GET /v1/historial-precios, filtered by proveedor, motivo and dates.
func (h *HistorialPreciosHandler) Listar(c *gin.Context) {
	var filter dto.HistorialFilter
	if !bindQuery(c, &filter) {
		return
	}
	h.listar(c, filter)
}

func (h *HistorialPreciosHandler) listar(c *gin.Context, filter dto.HistorialFilter) {
	resp, err := h.svc.Historial(c.Request.Context(), filter)
	if err != nil {
		responderError(c, err)
		return
	}
	lista(c, resp)
}
