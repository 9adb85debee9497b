package service

import (
	"context"
	"errors"

	"caffito/internal/dto"
	"caffito/internal/model"
	"caffito/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CategoriaService defines business operations for product categories.
type CategoriaService interface {
	Crear(ctx context.Context, req dto.CrearCategoriaRequest) (dto.CategoriaResponse, error)
	Listar(ctx context.Context) ([]dto.CategoriaResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarCategoriaRequest) (dto.CategoriaResponse, error)
	Desactivar(ctx context.Context, id uuid.UUID) error
}

type categoriaService struct {
	repo repository.CategoriaRepository
}

func NewCategoriaService(repo repository.CategoriaRepository) CategoriaService {
	return &categoriaService{repo: repo}
}

// mapCategoria converts a model to a DTO response.
func mapCategoria(c model.Categoria) dto.CategoriaResponse {
	return dto.CategoriaResponse{
		ID:          c.ID,
		Nombre:      c.Nombre,
		Descripcion: c.Descripcion,
		Activo:      c.Activo,
	}
}

func (s *categoriaService) Crear(ctx context.Context, req dto.CrearCategoriaRequest) (dto.CategoriaResponse, error) {
	if err := s.nombreLibre(ctx, req.Nombre, uuid.Nil); err != nil {
		return dto.CategoriaResponse{}, err
	}

	c := &model.Categoria{
		Nombre:      req.Nombre,
		Descripcion: req.Descripcion,
		Activo:      true,
	}
	if err := s.repo.Crear(ctx, c); err != nil {
		return dto.CategoriaResponse{}, duplicado(err, "categoria")
	}
	return mapCategoria(*c), nil
}

func (s *categoriaService) Listar(ctx context.Context) ([]dto.CategoriaResponse, error) {
	list, err := s.repo.Listar(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]dto.CategoriaResponse, 0, len(list))
	for _, c := range list {
		result = append(result, mapCategoria(c))
	}
	return result, nil
}

func (s *categoriaService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarCategoriaRequest) (dto.CategoriaResponse, error) {
	c, err := s.repo.ObtenerPorID(ctx, id)
	if err != nil {
		return dto.CategoriaResponse{}, noEncontrado(err, "categoria")
	}

	if req.Nombre != nil {
		if err := s.nombreLibre(ctx, *req.Nombre, id); err != nil {
			return dto.CategoriaResponse{}, err
		}
		c.Nombre = *req.Nombre
	}
	if req.Descripcion != nil {
		c.Descripcion = req.Descripcion
	}
	if req.Activo != nil {
		c.Activo = *req.Activo
	}

	if err := s.repo.Actualizar(ctx, c); err != nil {
		return dto.CategoriaResponse{}, duplicado(err, "categoria")
	}
	return mapCategoria(*c), nil
}

func (s *categoriaService) Desactivar(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.ObtenerPorID(ctx, id); err != nil {
		return noEncontrado(err, "categoria")
	}
	return s.repo.Desactivar(ctx, id)
}

// nombreLibre fails with ErrDuplicado when a row other than propio already
// uses nombre, compared case-insensitively.
func nombreLibre(id uuid.UUID, err error, propio uuid.UUID, que string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if id == uuid.Nil || id == propio {
		return nil
	}
	return duplicado(gorm.ErrDuplicatedKey, que)
}

func (s *categoriaService) nombreLibre(ctx context.Context, nombre string, propio uuid.UUID) error {
	c, err := s.repo.ObtenerPorNombre(ctx, nombre)
	var id uuid.UUID
	if c != nil {
		id = c.ID
	}
	return nombreLibre(id, err, propio, "categoria")
}

// ── Marcas ────────────────────────────────────────────────────────────────────

type MarcaService interface {
	Crear(ctx context.Context, req dto.MarcaRequest) (dto.MarcaResponse, error)
	Listar(ctx context.Context) ([]dto.MarcaResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.MarcaRequest) (dto.MarcaResponse, error)
	Desactivar(ctx context.Context, id uuid.UUID) error
}

type marcaService struct {
	repo repository.MarcaRepository
}

func NewMarcaService(repo repository.MarcaRepository) MarcaService {
	return &marcaService{repo: repo}
}

func mapMarca(m model.Marca) dto.MarcaResponse {
	return dto.MarcaResponse{ID: m.ID, Nombre: m.Nombre, Activo: m.Activo}
}

func (s *marcaService) nombreLibre(ctx context.Context, nombre string, propio uuid.UUID) error {
	m, err := s.repo.ObtenerPorNombre(ctx, nombre)
	var id uuid.UUID
	if m != nil {
		id = m.ID
	}
	return nombreLibre(id, err, propio, "marca")
}

func (s *marcaService) Crear(ctx context.Context, req dto.MarcaRequest) (dto.MarcaResponse, error) {
	if err := s.nombreLibre(ctx, req.Nombre, uuid.Nil); err != nil {
		return dto.MarcaResponse{}, err
	}
	m := &model.Marca{Nombre: req.Nombre, Activo: true}
	if err := s.repo.Crear(ctx, m); err != nil {
		return dto.MarcaResponse{}, duplicado(err, "marca")
	}
	return mapMarca(*m), nil
}

func (s *marcaService) Listar(ctx context.Context) ([]dto.MarcaResponse, error) {
	list, err := s.repo.Listar(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]dto.MarcaResponse, 0, len(list))
	for _, m := range list {
		result = append(result, mapMarca(m))
	}
	return result, nil
}

func (s *marcaService) Actualizar(ctx context.Context, id uuid.UUID, req dto.MarcaRequest) (dto.MarcaResponse, error) {
	m, err := s.repo.ObtenerPorID(ctx, id)
	if err != nil {
		return dto.MarcaResponse{}, noEncontrado(err, "marca")
	}
	if err := s.nombreLibre(ctx, req.Nombre, id); err != nil {
		return dto.MarcaResponse{}, err
	}
	m.Nombre = req.Nombre
	if req.Activo != nil {
		m.Activo = *req.Activo
	}
	if err := s.repo.Actualizar(ctx, m); err != nil {
		return dto.MarcaResponse{}, duplicado(err, "marca")
	}
	return mapMarca(*m), nil
}

func (s *marcaService) Desactivar(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.ObtenerPorID(ctx, id); err != nil {
		return noEncontrado(err, "marca")
	}
	return s.repo.Desactivar(ctx, id)
}
