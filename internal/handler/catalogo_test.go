package handler_test

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"caffito/internal/dto"
	"caffito/internal/etiqueta"
	"caffito/internal/handler"
	"caffito/internal/middleware"
	"caffito/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalogo struct {
	err    error
	filtro dto.ProductoFilter
}

func (f *fakeCatalogo) Exportar(_ context.Context, w io.Writer, filter dto.ProductoFilter) (int, error) {
	f.filtro = filter
	if f.err != nil {
		return 0, f.err
	}
	_, _ = w.Write([]byte("PK\x03\x04"))
	return 3, nil
}

func (f *fakeCatalogo) Etiquetas(_ context.Context, w io.Writer, req dto.EtiquetasRequest) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	_, _ = w.Write([]byte("%PDF-1.3"))
	return 2, nil
}

var _ service.CatalogoService = (*fakeCatalogo)(nil)

// fakeFacturas answers Listar with a fixed page.
type fakeFacturas struct {
	service.FacturaService
	filtro dto.FacturaFilter
}

func (f *fakeFacturas) Listar(_ context.Context, filter dto.FacturaFilter) (dto.Lista[dto.FacturaResponse], error) {
	f.filtro = filter
	data := []dto.FacturaResponse{{NumeroFormateado: "0001-00000007"}}
	return dto.NuevaLista(data, 41, filter.Paginacion), nil
}

func catalogoRouter(cat service.CatalogoService, fac service.FacturaService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.JWTAuth(testSecret))
	ch := handler.NewCatalogoHandler(cat)
	r.GET("/productos/export", ch.Exportar)
	r.POST("/productos/etiquetas", ch.Etiquetas)
	r.GET("/facturas", handler.NewFacturasHandler(fac).Listar)
	return r
}

func TestCatalogo_ExportarXLSX(t *testing.T) {
	cat := &fakeCatalogo{}
	r := catalogoRouter(cat, &fakeFacturas{})
	tok := signToken(t, uuid.NewString(), "administrador", time.Hour)

	w := doJSON(r, http.MethodGet, "/productos/export?q=yerba&pesable=true", nil, tok)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "spreadsheetml")
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")
	assert.Equal(t, "3", w.Header().Get("X-Total-Count"))
	assert.Equal(t, "yerba", cat.filtro.Q)
	require.NotNil(t, cat.filtro.Pesable)
	assert.True(t, *cat.filtro.Pesable)

	w = doJSON(r, http.MethodGet, "/productos/export?categoria_id=nope", nil, tok)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestCatalogo_Etiquetas(t *testing.T) {
	cat := &fakeCatalogo{}
	r := catalogoRouter(cat, &fakeFacturas{})
	tok := signToken(t, uuid.NewString(), "administrador", time.Hour)
	req := dto.EtiquetasRequest{Items: []dto.EtiquetaItem{{ProductoID: uuid.NewString(), Cantidad: 20}}}

	w := doJSON(r, http.MethodPost, "/productos/etiquetas", req, tok)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, "2", w.Header().Get("X-Page-Count"))

	w = doJSON(r, http.MethodPost, "/productos/etiquetas", dto.EtiquetasRequest{}, tok)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	cat.err = etiqueta.ErrSinEtiquetas
	w = doJSON(r, http.MethodPost, "/productos/etiquetas", req, tok)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
}

func TestFacturas_ListarPaginado(t *testing.T) {
	fac := &fakeFacturas{}
	r := catalogoRouter(&fakeCatalogo{}, fac)
	tok := signToken(t, uuid.NewString(), "supervisor", time.Hour)

	w := doJSON(r, http.MethodGet, "/facturas?page=3&size=10&estado=emitida", nil, tok)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "41", w.Header().Get("X-Total-Count"))
	assert.Equal(t, 3, fac.filtro.Page)
	assert.Equal(t, 10, fac.filtro.Size)
	assert.Contains(t, w.Body.String(), "0001-00000007")

	w = doJSON(r, http.MethodGet, "/facturas?estado=borrador", nil, tok)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = doJSON(r, http.MethodGet, "/facturas?size=500", nil, tok)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
