package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"caffito/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func servidor(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func TestLogin_GuardaToken(t *testing.T) {
	srv := servidor(t, func(w http.ResponseWriter, r *http.Request) {
		var req dto.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Password != "secreto123" || !req.Recordar {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"Credenciales invalidas"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(dto.LoginResponse{AccessToken: "tok-1", TokenType: "bearer"})
	})
	store := FileStore{Path: filepath.Join(t.TempDir(), "sesion", "token")}
	c := New(srv.URL, NewSession(store))

	_, err := c.Login(context.Background(), "cajero", "mala", false)
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr, "a login 401 is a credential error, not a session loss")
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.False(t, c.Session().Autenticado())

	_, err = c.Login(context.Background(), "cajero", "secreto123", true)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", c.Session().Token())

	// A new session over the same file is still logged in.
	assert.Equal(t, "tok-1", NewSession(store).Token())
}

func TestNoAutorizado_LimpiaLaSesion(t *testing.T) {
	srv := servidor(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	store := FileStore{Path: filepath.Join(t.TempDir(), "token")}
	s := NewSession(store)
	require.NoError(t, s.Set("vencido"))
	c := New(srv.URL, s)

	_, err := c.Productos(context.Background(), ProductoQuery{})
	assert.ErrorIs(t, err, ErrNoAutenticado)
	assert.False(t, s.Autenticado())
	tok, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, tok)

	// Without a token nothing is sent.
	_, err = c.Producto(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNoAutenticado)
}

func TestProductos_PaginaYFiltros(t *testing.T) {
	srv := servidor(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "cafe", r.URL.Query().Get("q"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Empty(t, r.URL.Query().Get("categoria_id"))
		w.Header().Set("X-Total-Count", "41")
		_ = json.NewEncoder(w).Encode(dto.Lista[dto.ProductoResponse]{
			Data: []dto.ProductoResponse{{ID: "1", Nombre: "Cafe"}}, Total: 41, Page: 2, Size: 20,
		})
	})
	s := NewSession(nil)
	require.NoError(t, s.Set("tok"))

	p, err := New(srv.URL, s).Productos(context.Background(), ProductoQuery{Q: "cafe", Page: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(41), p.Total)
	assert.Equal(t, 2, p.Page)
	require.Len(t, p.Items, 1)
	assert.Equal(t, "Cafe", p.Items[0].Nombre)
}

func TestErrorDeValidacion(t *testing.T) {
	srv := servidor(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"code":"validacion","detail":"Error de validacion","fields":{"Codigo":"required"}}`))
	})
	s := NewSession(nil)
	require.NoError(t, s.Set("tok"))

	_, err := New(srv.URL, s).Producto(context.Background(), "1")
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "required", apiErr.Fields["Codigo"])
	assert.True(t, s.Autenticado(), "only 401 logs out")
}

func TestConsultarPrecio_SinSesion(t *testing.T) {
	srv := servidor(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		assert.Equal(t, "/v1/precio/7790001000015", r.URL.Path)
		_ = json.NewEncoder(w).Encode(dto.ConsultaPreciosResponse{Codigo: "7790001000015", Nombre: "Cafe"})
	})
	p, err := New(srv.URL, NewSession(nil)).ConsultarPrecio(context.Background(), "7790001000015")
	require.NoError(t, err)
	assert.Equal(t, "Cafe", p.Nombre)
}

// ── Buscador ──────────────────────────────────────────────────────────────────

type recolector struct {
	mu  sync.Mutex
	res []Resultado
	ch  chan struct{}
}

func nuevoRecolector() *recolector { return &recolector{ch: make(chan struct{}, 16)} }

func (r *recolector) entregar(res Resultado) {
	r.mu.Lock()
	r.res = append(r.res, res)
	r.mu.Unlock()
	r.ch <- struct{}{}
}

func (r *recolector) esperar(t *testing.T) {
	t.Helper()
	select {
	case <-r.ch:
	case <-time.After(2 * time.Second):
		t.Fatal("no result delivered")
	}
}

func (r *recolector) resultados() []Resultado {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Resultado(nil), r.res...)
}

func TestBuscador_Debounce(t *testing.T) {
	var mu sync.Mutex
	var consultas []string
	buscar := func(_ context.Context, q string) (Pagina[dto.ProductoResponse], error) {
		mu.Lock()
		consultas = append(consultas, q)
		mu.Unlock()
		return Pagina[dto.ProductoResponse]{Total: 1}, nil
	}
	rec := nuevoRecolector()
	b := NewBuscador(buscar, rec.entregar, 30*time.Millisecond)
	defer b.Close()

	b.Teclear("c")
	b.Teclear("ca")
	b.Teclear("caf")
	rec.esperar(t)

	mu.Lock()
	assert.Equal(t, []string{"caf"}, consultas)
	mu.Unlock()
	assert.Equal(t, "caf", rec.resultados()[0].Query)
}

func TestBuscador_DescartaRespuestaVieja(t *testing.T) {
	lenta := make(chan struct{})
	buscar := func(ctx context.Context, q string) (Pagina[dto.ProductoResponse], error) {
		if q == "le" {
			// Ignores cancellation and answers after the newer query.
			<-lenta
			return Pagina[dto.ProductoResponse]{Total: 99}, nil
		}
		return Pagina[dto.ProductoResponse]{Total: 1}, nil
	}
	rec := nuevoRecolector()
	b := NewBuscador(buscar, rec.entregar, 5*time.Millisecond)
	defer b.Close()

	b.Teclear("le")
	time.Sleep(30 * time.Millisecond) // "le" is in flight
	b.Teclear("leche")
	rec.esperar(t)
	close(lenta)
	time.Sleep(30 * time.Millisecond)

	res := rec.resultados()
	require.Len(t, res, 1)
	assert.Equal(t, "leche", res[0].Query)
	assert.Equal(t, int64(1), res[0].Pagina.Total)
}

func TestBuscador_CancelaLaPeticionEnCurso(t *testing.T) {
	cancelada := make(chan struct{})
	buscar := func(ctx context.Context, q string) (Pagina[dto.ProductoResponse], error) {
		if q == "a" {
			<-ctx.Done()
			close(cancelada)
			return Pagina[dto.ProductoResponse]{}, ctx.Err()
		}
		return Pagina[dto.ProductoResponse]{}, errors.New("sin conexion")
	}
	rec := nuevoRecolector()
	b := NewBuscador(buscar, rec.entregar, 5*time.Millisecond)
	defer b.Close()

	b.Teclear("a")
	time.Sleep(30 * time.Millisecond)
	b.Teclear("ab")

	select {
	case <-cancelada:
	case <-time.After(2 * time.Second):
		t.Fatal("in-flight search was not cancelled")
	}
	rec.esperar(t)
	res := rec.resultados()
	require.Len(t, res, 1)
	assert.EqualError(t, res[0].Err, "sin conexion", "errors of the latest search are delivered")
}

func TestBuscador_VacioLimpia(t *testing.T) {
	rec := nuevoRecolector()
	b := NewBuscador(func(context.Context, string) (Pagina[dto.ProductoResponse], error) {
		t.Error("empty input must not search")
		return Pagina[dto.ProductoResponse]{}, nil
	}, rec.entregar, 0)
	defer b.Close()

	b.Teclear("")
	rec.esperar(t)
	assert.Equal(t, Resultado{}, rec.resultados()[0])
}
