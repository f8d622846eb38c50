package ports

import (
	"context"
	"time"
)

// JobQueue is a durable at-least-once queue with delayed delivery. Ordering
// across jobs is not guaranteed; consumers must be idempotent.
type JobQueue interface {
	Enqueue(ctx context.Context, queue string, payload any, delay time.Duration) error
}
