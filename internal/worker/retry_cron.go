package worker

// retry_cron.go
// Background goroutine that periodically re-drives failed jobs from the dead
// letter queues. Print jobs are only re-driven while the print bridge
// breaker is not open, so a printer that is off does not bounce jobs
// between the queue and the DLQ.

import (
	"context"
	"time"

	"caffito/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	retryTickInterval = 30 * time.Second
	retryBatchSize    = 10
)

// RetryCronConfig holds all dependencies for the retry goroutine.
type RetryCronConfig struct {
	RDB      *redis.Client
	CB       *infra.CircuitBreaker
	Interval time.Duration
}

// StartRetryCron launches a background goroutine that re-drives the DLQs on
// every tick. It respects the context for graceful shutdown.
func StartRetryCron(ctx context.Context, cfg RetryCronConfig) {
	if cfg.Interval <= 0 {
		cfg.Interval = retryTickInterval
	}
	go func() {
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()

		log.Info().Msg("retry_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry_cron: shutting down")
				return
			case <-ticker.C:
				processRetries(ctx, cfg)
			}
		}
	}()
}

func processRetries(ctx context.Context, cfg RetryCronConfig) {
	if cfg.CB != nil && cfg.CB.State() == infra.CBOpen {
		log.Debug().Msg("retry_cron: circuit breaker is open, skipping print jobs")
	} else {
		redrive(ctx, cfg.RDB, QueueImpresion)
	}
	redrive(ctx, cfg.RDB, QueueEmail)
}

func redrive(ctx context.Context, rdb *redis.Client, queue string) {
	n, err := Redrive(ctx, rdb, queue, retryBatchSize)
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("retry_cron: re-drive failed")
		return
	}
	if n > 0 {
		log.Info().Int("count", n).Str("queue", queue).Msg("retry_cron: jobs re-driven from DLQ")
	}
}
