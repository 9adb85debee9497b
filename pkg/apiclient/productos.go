package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"caffito/internal/dto"
)

// ProductoQuery filters the product list. Zero values are omitted.
type ProductoQuery struct {
	Q           string
	CategoriaID string
	Page        int
	Size        int
	Sort        string
}

func (q ProductoQuery) values() url.Values {
	v := url.Values{}
	if q.Q != "" {
		v.Set("q", q.Q)
	}
	if q.CategoriaID != "" {
		v.Set("categoria_id", q.CategoriaID)
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Size > 0 {
		v.Set("size", strconv.Itoa(q.Size))
	}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	return v
}

func (c *Client) Productos(ctx context.Context, q ProductoQuery) (Pagina[dto.ProductoResponse], error) {
	var l dto.Lista[dto.ProductoResponse]
	h, err := c.do(ctx, http.MethodGet, "/v1/productos", q.values(), nil, &l, true)
	if err != nil {
		return Pagina[dto.ProductoResponse]{}, err
	}
	return pagina(l, h), nil
}

func (c *Client) Producto(ctx context.Context, id string) (*dto.ProductoResponse, error) {
	var p dto.ProductoResponse
	if _, err := c.do(ctx, http.MethodGet, "/v1/productos/"+url.PathEscape(id), nil, nil, &p, true); err != nil {
		return nil, err
	}
	return &p, nil
}

// ConsultarPrecio is the public price check; it works without a session.
func (c *Client) ConsultarPrecio(ctx context.Context, codigo string) (*dto.ConsultaPreciosResponse, error) {
	var p dto.ConsultaPreciosResponse
	if _, err := c.do(ctx, http.MethodGet, "/v1/precio/"+url.PathEscape(codigo), nil, nil, &p, false); err != nil {
		return nil, err
	}
	return &p, nil
}

// BuscarProductos is the search function a Buscador uses by default.
func (c *Client) BuscarProductos(size int) BuscarFunc {
	return func(ctx context.Context, q string) (Pagina[dto.ProductoResponse], error) {
		return c.Productos(ctx, ProductoQuery{Q: q, Page: 1, Size: size})
	}
}
