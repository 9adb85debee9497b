package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"caffito/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var errInterno = apierror.New("Error interno del servidor")

// ErrorHandler logs the errors a handler attached with c.Error. If the
// handler wrote nothing, the client gets a generic 500; details stay in the
// log.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if len(c.Errors) == 0 {
			return
		}

		ev := log.Error().
			Str("request_id", c.GetString(RequestIDKey)).
			Str("route", c.FullPath()).
			Str("method", c.Request.Method)
		for i, e := range c.Errors {
			if i == len(c.Errors)-1 {
				ev = ev.Err(e.Err)
			} else {
				ev = ev.AnErr("previo", e.Err)
			}
		}
		ev.Msg("request failed")

		if !c.Writer.Written() {
			c.AbortWithStatusJSON(http.StatusInternalServerError, errInterno)
		}
	}
}

// Recovery turns a panic into a 500. The stack goes to the log only.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().
					Str("request_id", c.GetString(RequestIDKey)).
					Str("path", c.Request.URL.Path).
					Interface("panic", r).
					Bytes("stack", debug.Stack()).
					Msg("panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, errInterno)
			}
		}()
		c.Next()
	}
}

// Logger writes one line per request. 5xx log at error, 4xx at warn, and
// monitoring endpoints (/health, /metrics) at debug.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		var ev *zerolog.Event
		switch path := c.Request.URL.Path; {
		case status >= http.StatusInternalServerError:
			ev = log.Error()
		case status >= http.StatusBadRequest:
			ev = log.Warn()
		case path == "/health" || path == "/metrics":
			ev = log.Debug()
		default:
			ev = log.Info()
		}
		ev.Str("request_id", c.GetString(RequestIDKey)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("ip", c.ClientIP()).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
