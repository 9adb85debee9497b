package dto

// Paginacion is embedded by every list filter. Sort is "campo" or
// "campo,desc"; unknown fields fall back to the resource default.
type Paginacion struct {
	Page int    `form:"page,default=1"  validate:"min=1"`
	Size int    `form:"size,default=20" validate:"min=1,max=200"`
	Sort string `form:"sort"`
}

func (p Paginacion) Offset() int { return (p.Page - 1) * p.Size }

// Normalizar fills defaults for callers that did not go through query binding.
func (p Paginacion) Normalizar() Paginacion {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Size < 1 {
		p.Size = 20
	}
	if p.Size > 200 {
		p.Size = 200
	}
	return p
}

// Lista is the paginated envelope; the total is also sent as X-Total-Count.
type Lista[T any] struct {
	Data  []T   `json:"data"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Size  int   `json:"size"`
}

func NuevaLista[T any](data []T, total int64, p Paginacion) Lista[T] {
	if data == nil {
		data = []T{}
	}
	return Lista[T]{Data: data, Total: total, Page: p.Page, Size: p.Size}
}
