// Package apiclient is the Go client of the caffito REST API used by register
// terminals and tooling. Every call goes through one Session; a 401 from the
// server logs the session out and surfaces as ErrNoAutenticado.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"caffito/internal/dto"
)

// ErrNoAutenticado is returned when there is no token or the server rejected it.
var ErrNoAutenticado = errors.New("sesion no autenticada")

// Error is a non-2xx answer other than 401.
type Error struct {
	Status int
	Code   string            `json:"code"`
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields,omitempty"`
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("http %d", e.Status)
	}
	return fmt.Sprintf("http %d: %s", e.Status, e.Detail)
}

type Client struct {
	base    string
	http    *http.Client
	session *Session
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

// New builds a client for baseURL ("http://host:8000"). The session is
// required; pass NewSession(nil) for an in-memory one.
func New(baseURL string, session *Session, opts ...Option) *Client {
	c := &Client{
		base:    strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		session: session,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) Session() *Session { return c.session }

// Login authenticates and stores the access token in the session. recordar
// asks the server for a refresh token; pair it with a FileStore session.
func (c *Client) Login(ctx context.Context, username, password string, recordar bool) (*dto.LoginResponse, error) {
	var resp dto.LoginResponse
	_, err := c.do(ctx, http.MethodPost, "/v1/auth/login", nil,
		dto.LoginRequest{Username: username, Password: password, Recordar: recordar}, &resp, false)
	if err != nil {
		return nil, err
	}
	if err := c.session.Set(resp.AccessToken); err != nil {
		return nil, fmt.Errorf("guardar sesion: %w", err)
	}
	return &resp, nil
}

func (c *Client) Logout() error { return c.session.Clear() }

// Pagina is one page of a list endpoint; Total comes from X-Total-Count.
type Pagina[T any] struct {
	Items []T
	Total int64
	Page  int
	Size  int
}

func pagina[T any](l dto.Lista[T], h http.Header) Pagina[T] {
	p := Pagina[T]{Items: l.Data, Total: l.Total, Page: l.Page, Size: l.Size}
	if v := h.Get("X-Total-Count"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			p.Total = n
		}
	}
	return p
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, dest any, auth bool) (http.Header, error) {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		rdr = bytes.NewReader(b)
	}

	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth {
		tok := c.session.Token()
		if tok == "" {
			return nil, ErrNoAutenticado
		}
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized && auth {
		_ = c.session.Clear()
		return resp.Header, ErrNoAutenticado
	}
	if resp.StatusCode >= 300 {
		apiErr := &Error{Status: resp.StatusCode}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(apiErr)
		return resp.Header, apiErr
	}
	if dest != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
			return resp.Header, fmt.Errorf("decodificar respuesta: %w", err)
		}
	}
	return resp.Header, nil
}
