// Package queue provides the Redis-backed job queue shared by the API and the
// worker. The API pushes job IDs onto a list; workers block-pop them.
package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const tryonQueueKey = "tryon:jobs:queue"

// ErrEmpty is returned by Dequeue when the blocking pop times out.
var ErrEmpty = errors.New("queue: no job available")

// Queue wraps a Redis list used as a FIFO job queue.
type Queue struct {
	rdb *redis.Client
	key string
}

// Connect parses the Redis URL, verifies connectivity and returns a Queue.
func Connect(ctx context.Context, redisURL string) (*Queue, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("queue: parse redis url: %w", err)
	}
	opts.DialTimeout = 10 * time.Second
	opts.ReadTimeout = 30 * time.Second
	opts.WriteTimeout = 30 * time.Second

	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("queue: ping redis: %w", err)
	}

	return &Queue{rdb: rdb, key: tryonQueueKey}, nil
}

// Enqueue pushes a job ID onto the queue.
func (q *Queue) Enqueue(ctx context.Context, jobID string) error {
	if err := q.rdb.LPush(ctx, q.key, jobID).Err(); err != nil {
		return fmt.Errorf("queue: enqueue job: %w", err)
	}
	return nil
}

// Dequeue blocks up to timeout waiting for the next job ID. A zero timeout
// blocks indefinitely; context cancellation always wins.
func (q *Queue) Dequeue(ctx context.Context, timeout time.Duration) (string, error) {
	res, err := q.rdb.BRPop(ctx, timeout, q.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrEmpty
		}
		return "", fmt.Errorf("queue: dequeue job: %w", err)
	}
	// BRPOP returns [key, value].
	if len(res) != 2 {
		return "", ErrEmpty
	}
	return res[1], nil
}

// Depth reports the number of queued jobs.
func (q *Queue) Depth(ctx context.Context) (int64, error) {
	n, err := q.rdb.LLen(ctx, q.key).Result()
	if err != nil {
		return 0, fmt.Errorf("queue: queue depth: %w", err)
	}
	return n, nil
}

// Close releases the underlying Redis connection.
func (q *Queue) Close() error {
	if q == nil || q.rdb == nil {
		return nil
	}
	return q.rdb.Close()
}
