package worker

// dlq.go: Dead Letter Queue
// Jobs whose handler failed are moved here. The retry cron re-drives them
// until MaxAttempts deliveries have been made; after that they stay for
// manual inspection.

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"caffito/internal/metrics"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	DLQPrefix = "dlq:"
	// MaxAttempts is the number of deliveries after which a job is no longer
	// re-driven.
	MaxAttempts = 5
)

// DLQEntry wraps a failed job with metadata for debugging.
type DLQEntry struct {
	OriginalQueue string          `json:"original_queue"`
	JobType       string          `json:"job_type"`
	Payload       json.RawMessage `json:"payload"`
	Reason        string          `json:"reason"`
	FailedAt      string          `json:"failed_at"` // ISO 8601
	Attempts      int             `json:"attempts"`
}

// SendToDLQ pushes a failed job to the dead letter queue.
func SendToDLQ(ctx context.Context, rdb *redis.Client, queue string, job Job, reason string) {
	entry := DLQEntry{
		OriginalQueue: queue,
		JobType:       job.Type,
		Payload:       job.Payload,
		Reason:        reason,
		FailedAt:      time.Now().UTC().Format(time.RFC3339),
		Attempts:      job.Attempts,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: failed to marshal entry")
		return
	}

	dlqKey := DLQPrefix + queue
	if err := rdb.LPush(ctx, dlqKey, data).Err(); err != nil {
		log.Error().Err(err).Str("dlq_key", dlqKey).Msg("dlq: failed to push to DLQ")
		return
	}

	log.Warn().
		Str("queue", queue).
		Str("job_type", job.Type).
		Str("reason", reason).
		Int("attempts", job.Attempts).
		Msg("dlq: job moved to dead letter queue")
}

// DLQLength returns the number of entries in a DLQ for monitoring.
func DLQLength(ctx context.Context, rdb *redis.Client, queue string) (int64, error) {
	return rdb.LLen(ctx, DLQPrefix+queue).Result()
}

// Redrive moves up to max entries, oldest first, from the DLQ back to their
// queue. Entries that reached MaxAttempts are put back at the head of the
// DLQ and end the pass, so an exhausted entry is inspected once per pass.
func Redrive(ctx context.Context, rdb *redis.Client, queue string, max int) (int, error) {
	dlqKey := DLQPrefix + queue
	moved := 0
	for moved < max {
		raw, err := rdb.RPop(ctx, dlqKey).Result()
		if errors.Is(err, redis.Nil) {
			return moved, nil
		}
		if err != nil {
			return moved, err
		}

		var entry DLQEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			log.Error().Err(err).Str("dlq_key", dlqKey).Msg("dlq: dropping unreadable entry")
			continue
		}
		if entry.Attempts >= MaxAttempts {
			if err := rdb.LPush(ctx, dlqKey, raw).Err(); err != nil {
				return moved, err
			}
			return moved, nil
		}

		job := Job{Type: entry.JobType, Payload: entry.Payload, Attempts: entry.Attempts}
		if err := push(ctx, rdb, entry.OriginalQueue, job); err != nil {
			// Put it back where it was so nothing is lost.
			_ = rdb.RPush(ctx, dlqKey, raw).Err()
			return moved, err
		}
		moved++
		metrics.DLQRedrive.WithLabelValues(queue).Inc()
	}
	return moved, nil
}
