package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"caffito/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ── Fixed-window limiter per client IP ────────────────────────────────────────

type ventana struct {
	count int
	fin   time.Time
}

type limitador struct {
	nombre string
	limit  int
	window time.Duration
	now    func() time.Time

	mu  sync.Mutex
	ips map[string]*ventana
}

func newLimitador(nombre string, limit int, window time.Duration) *limitador {
	return &limitador{nombre: nombre, limit: limit, window: window, now: time.Now, ips: make(map[string]*ventana)}
}

// permitir counts one hit for ip and reports whether it is within the limit,
// plus when the current window ends.
func (l *limitador) permitir(ip string) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	v, ok := l.ips[ip]
	if !ok || now.After(v.fin) {
		v = &ventana{fin: now.Add(l.window)}
		l.ips[ip] = v
	}
	v.count++
	return v.count <= l.limit, v.fin
}

func (l *limitador) purgar() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	n := 0
	for ip, v := range l.ips {
		if now.After(v.fin) {
			delete(l.ips, ip)
			n++
		}
	}
	return n
}

func (l *limitador) middleware(msg string) gin.HandlerFunc {
	registrarPurga(l)
	return func(c *gin.Context) {
		ok, fin := l.permitir(c.ClientIP())
		if !ok {
			segs := int(time.Until(fin).Seconds()) + 1
			c.Header("Retry-After", strconv.Itoa(segs))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(msg))
			return
		}
		c.Next()
	}
}

// LoginRateLimiter limits login attempts to 20 per minute per IP.
func LoginRateLimiter() gin.HandlerFunc {
	return newLimitador("login", 20, time.Minute).
		middleware("Demasiados intentos de login. Intente en 1 minuto.")
}

// RateLimiter returns the general API limiter.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	return newLimitador("api", limit, window).
		middleware("Demasiadas solicitudes. Intente nuevamente en un momento.")
}

// ── Purge goroutine ───────────────────────────────────────────────────────────
// Expired windows are dropped periodically so IPs that never come back do not
// accumulate.

const purgeInterval = 5 * time.Minute

var (
	purgaMu     sync.Mutex
	limitadores []*limitador
	purgaOnce   sync.Once
)

func registrarPurga(l *limitador) {
	purgaMu.Lock()
	limitadores = append(limitadores, l)
	purgaMu.Unlock()
	purgaOnce.Do(func() { go purgarPeriodicamente() })
}

func purgarPeriodicamente() {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()
	for range ticker.C {
		purgaMu.Lock()
		ls := append([]*limitador(nil), limitadores...)
		purgaMu.Unlock()
		for _, l := range ls {
			if n := l.purgar(); n > 0 {
				log.Debug().Str("limitador", l.nombre).Int("purgadas", n).Msg("rate limiter purged")
			}
		}
	}
}
