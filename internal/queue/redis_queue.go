package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/roamio-app/roamio-backend/internal/repository/ports"
)

// RedisQueue is a durable delayed job queue over a Redis sorted set. Members
// are JSON envelopes scored by the time they become eligible; delivery is
// at-least-once, with no ordering guarantee across jobs. Consumers must be
// idempotent.
type RedisQueue struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

func NewRedisQueue(client *redis.Client, prefix string) *RedisQueue {
	if prefix == "" {
		prefix = "jobs"
	}
	return &RedisQueue{
		client: client,
		prefix: prefix,
		now:    time.Now,
	}
}

type envelope struct {
	ID         string          `json:"id"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
	Payload    json.RawMessage `json:"payload"`
}

func (q *RedisQueue) key(queue string) string {
	return q.prefix + ":" + queue
}

func (q *RedisQueue) Enqueue(ctx context.Context, queue string, payload any, delay time.Duration) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal job payload: %w", err)
	}

	// The envelope id keeps otherwise identical payloads as distinct
	// members, so a burst of writes to the same place enqueues every job.
	data, err := json.Marshal(envelope{
		ID:         uuid.NewString(),
		EnqueuedAt: q.now(),
		Payload:    body,
	})
	if err != nil {
		return fmt.Errorf("marshal job envelope: %w", err)
	}

	readyAt := q.now().Add(delay)
	return q.client.ZAdd(ctx, q.key(queue), redis.Z{
		Score:  float64(readyAt.UnixMilli()),
		Member: data,
	}).Err()
}

// Job is one dequeued unit of work.
type Job struct {
	ID      string
	Payload []byte
}

// Dequeue claims the earliest ready job, or returns nil when none is
// eligible yet. The ZREM acts as the claim: when several workers race, only
// the one whose removal succeeds processes the job.
func (q *RedisQueue) Dequeue(ctx context.Context, queue string) (*Job, error) {
	now := q.now().UnixMilli()

	members, err := q.client.ZRangeByScore(ctx, q.key(queue), &redis.ZRangeBy{
		Min:   "-inf",
		Max:   fmt.Sprintf("%d", now),
		Count: 1,
	}).Result()
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, nil
	}

	removed, err := q.client.ZRem(ctx, q.key(queue), members[0]).Result()
	if err != nil {
		return nil, err
	}
	if removed == 0 {
		// Another worker claimed it first.
		return nil, nil
	}

	var env envelope
	if err := json.Unmarshal([]byte(members[0]), &env); err != nil {
		return nil, fmt.Errorf("decode job envelope: %w", err)
	}
	return &Job{ID: env.ID, Payload: env.Payload}, nil
}

// Consume polls the queue and hands each ready job to handler. Handler
// failures are logged and swallowed; a failed job is not retried here, the
// next job for the same subject converges the state. Blocks until ctx is
// done.
func (q *RedisQueue) Consume(ctx context.Context, queue string, interval time.Duration, handler func(ctx context.Context, payload []byte) error) {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		for {
			job, err := q.Dequeue(ctx, queue)
			if err != nil {
				log.Printf("queue %s: dequeue failed: %v", queue, err)
				break
			}
			if job == nil {
				break
			}
			if err := handler(ctx, job.Payload); err != nil {
				log.Printf("queue %s: job %s failed: %v", queue, job.ID, err)
			}
		}
	}
}

var _ ports.JobQueue = (*RedisQueue)(nil)
