package apiclient

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"caffito/internal/dto"
)

const esperaPorDefecto = 300 * time.Millisecond

type BuscarFunc func(ctx context.Context, q string) (Pagina[dto.ProductoResponse], error)

// Resultado is one delivered search. Err is set when the search failed; a
// search cancelled by newer input is never delivered.
type Resultado struct {
	Query  string
	Pagina Pagina[dto.ProductoResponse]
	Err    error
}

// Buscador runs search-as-you-type. Input is debounced, each new input
// cancels the request in flight and a response is delivered only if no newer
// input arrived since it was issued.
type Buscador struct {
	buscar   BuscarFunc
	entregar func(Resultado)
	espera   time.Duration

	mu     sync.Mutex
	timer  *time.Timer
	cancel context.CancelFunc
	closed bool

	seq atomic.Uint64

	entregaMu sync.Mutex
	entregado uint64
}

// NewBuscador calls entregar from a background goroutine, one result at a
// time; entregar must not call back into the Buscador. espera <= 0 uses 300ms.
func NewBuscador(buscar BuscarFunc, entregar func(Resultado), espera time.Duration) *Buscador {
	if espera <= 0 {
		espera = esperaPorDefecto
	}
	return &Buscador{buscar: buscar, entregar: entregar, espera: espera}
}

// Teclear registers the current input. An empty query clears the results
// immediately.
func (b *Buscador) Teclear(q string) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	s := b.seq.Add(1)
	b.detener()
	if q == "" {
		b.mu.Unlock()
		b.publicar(s, Resultado{})
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel
	b.timer = time.AfterFunc(b.espera, func() { b.ejecutar(ctx, s, q) })
	b.mu.Unlock()
}

// Close cancels any pending search. Nothing is delivered afterwards.
func (b *Buscador) Close() {
	b.mu.Lock()
	b.closed = true
	b.seq.Add(1)
	b.detener()
	b.mu.Unlock()
}

// detener requires b.mu.
func (b *Buscador) detener() {
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
}

func (b *Buscador) ejecutar(ctx context.Context, s uint64, q string) {
	p, err := b.buscar(ctx, q)
	if errors.Is(err, context.Canceled) || ctx.Err() != nil {
		return
	}
	b.publicar(s, Resultado{Query: q, Pagina: p, Err: err})
}

func (b *Buscador) publicar(s uint64, r Resultado) {
	b.entregaMu.Lock()
	defer b.entregaMu.Unlock()
	if s != b.seq.Load() || s <= b.entregado {
		return
	}
	b.entregado = s
	b.entregar(r)
}
