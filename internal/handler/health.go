package handler

import (
	"context"
	"net/http"
	"time"

	"caffito/internal/infra"
	"caffito/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

var arranque = time.Now()

// Health answers 503 only when Postgres or Redis are unreachable. The print
// bridge breaker and the dead letter queues are reported but never fail the
// check, since sales keep working without a printer.
//
// @Summary  Health check
// @Tags     sistema
// @Produce  json
// @Success  200 {object} map[string]interface{}
// @Failure  503 {object} map[string]interface{}
// @Router   /health [get]
func Health(db *gorm.DB, rdb *redis.Client, printCB *infra.CircuitBreaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		estado := func(err error) string {
			if err != nil {
				return "error"
			}
			return "connected"
		}
		var dbErr error
		if sqlDB, err := db.DB(); err != nil {
			dbErr = err
		} else {
			dbErr = sqlDB.PingContext(ctx)
		}
		redisErr := rdb.Ping(ctx).Err()

		body := gin.H{
			"ok":       dbErr == nil && redisErr == nil,
			"db":       estado(dbErr),
			"redis":    estado(redisErr),
			"uptime_s": int64(time.Since(arranque).Seconds()),
		}
		if printCB != nil {
			body["impresora"] = printCB.State().String()
		}
		if redisErr == nil {
			dlq := gin.H{}
			for _, q := range []string{worker.QueueImpresion, worker.QueueEmail} {
				if n, err := worker.DLQLength(ctx, rdb, q); err == nil {
					dlq[q] = n
				}
			}
			body["dlq"] = dlq
		}

		status := http.StatusOK
		if dbErr != nil || redisErr != nil {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, body)
	}
}
