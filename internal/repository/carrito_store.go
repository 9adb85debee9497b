package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"caffito/internal/pos"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrCarritoNoEncontrado is returned for unknown or expired carts.
var ErrCarritoNoEncontrado = errors.New("carrito no encontrado")

// CarritoStore keeps in-progress invoices between requests. Carts are stored
// as whole documents and expire after the configured TTL of inactivity.
type CarritoStore interface {
	Get(ctx context.Context, id uuid.UUID) (*pos.Factura, error)
	Save(ctx context.Context, f *pos.Factura) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ── Redis ─────────────────────────────────────────────────────────────────────

const carritoKeyPrefix = "caffito:carrito:"

type redisCarritoStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisCarritoStore(rdb *redis.Client, ttl time.Duration) CarritoStore {
	return &redisCarritoStore{rdb: rdb, ttl: ttl}
}

func carritoKey(id uuid.UUID) string { return carritoKeyPrefix + id.String() }

func (s *redisCarritoStore) Get(ctx context.Context, id uuid.UUID) (*pos.Factura, error) {
	data, err := s.rdb.Get(ctx, carritoKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCarritoNoEncontrado
	}
	if err != nil {
		return nil, fmt.Errorf("leer carrito: %w", err)
	}
	var f pos.Factura
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decodificar carrito: %w", err)
	}
	return &f, nil
}

func (s *redisCarritoStore) Save(ctx context.Context, f *pos.Factura) error {
	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("codificar carrito: %w", err)
	}
	return s.rdb.Set(ctx, carritoKey(f.ID), data, s.ttl).Err()
}

func (s *redisCarritoStore) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := s.rdb.Del(ctx, carritoKey(id)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrCarritoNoEncontrado
	}
	return nil
}

// ── Memory ────────────────────────────────────────────────────────────────────

type carritoEntrada struct {
	data   []byte
	expira time.Time
}

// memoriaCarritoStore serialises on Save like the Redis store, so callers
// never share a *pos.Factura with the store.
type memoriaCarritoStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[uuid.UUID]carritoEntrada
}

// NewMemoriaCarritoStore is used in development without Redis and in tests.
func NewMemoriaCarritoStore(ttl time.Duration) CarritoStore {
	return &memoriaCarritoStore{ttl: ttl, now: time.Now, entries: map[uuid.UUID]carritoEntrada{}}
}

func (s *memoriaCarritoStore) Get(_ context.Context, id uuid.UUID) (*pos.Factura, error) {
	s.mu.Lock()
	e, ok := s.entries[id]
	if ok && s.ttl > 0 && s.now().After(e.expira) {
		delete(s.entries, id)
		ok = false
	}
	s.mu.Unlock()
	if !ok {
		return nil, ErrCarritoNoEncontrado
	}
	var f pos.Factura
	if err := json.Unmarshal(e.data, &f); err != nil {
		return nil, fmt.Errorf("decodificar carrito: %w", err)
	}
	return &f, nil
}

func (s *memoriaCarritoStore) Save(_ context.Context, f *pos.Factura) error {
	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("codificar carrito: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[f.ID] = carritoEntrada{data: data, expira: s.now().Add(s.ttl)}
	return nil
}

func (s *memoriaCarritoStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[id]; !ok {
		return ErrCarritoNoEncontrado
	}
	delete(s.entries, id)
	return nil
}
