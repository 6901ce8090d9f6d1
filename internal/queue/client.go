package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"phishguard/internal/models"
)

// QueueName is the Redis list scan tasks are pushed onto.
const QueueName = "phishguard:scans"

var (
	// ErrNoTask means Pop timed out with the queue empty.
	ErrNoTask = errors.New("no task available")
	// ErrMalformedTask means a queued payload could not be decoded.
	ErrMalformedTask = errors.New("malformed task")
)

// ScanTask is one page observation waiting to be scored.
type ScanTask struct {
	ID          string         `json:"id"`
	Signals     models.Signals `json:"signals"`
	Origin      models.Origin  `json:"origin"`
	SubmittedAt time.Time      `json:"submittedAt"`
}

// NewClient builds a client without touching the network.
func NewClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        addr,
		DB:          0,
		DialTimeout: 5 * time.Second,
	})
}

// Enqueue appends a task to the tail of the queue, filling in ID and
// SubmittedAt when missing. It returns the stored task.
func Enqueue(ctx context.Context, c *redis.Client, task ScanTask) (ScanTask, error) {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if task.SubmittedAt.IsZero() {
		task.SubmittedAt = time.Now().UTC()
	}
	if task.Origin == "" {
		task.Origin = models.OriginAutomatic
	}

	payload, err := json.Marshal(task)
	if err != nil {
		return task, fmt.Errorf("encode task: %w", err)
	}
	if err := c.RPush(ctx, QueueName, payload).Err(); err != nil {
		return task, fmt.Errorf("enqueue task: %w", err)
	}
	return task, nil
}

// Pop blocks up to timeout for the next task. A zero timeout waits forever.
func Pop(ctx context.Context, c *redis.Client, timeout time.Duration) (ScanTask, error) {
	// BLPOP returns: [queue_name, value]
	result, err := c.BLPop(ctx, timeout, QueueName).Result()
	if errors.Is(err, redis.Nil) {
		return ScanTask{}, ErrNoTask
	}
	if err != nil {
		return ScanTask{}, fmt.Errorf("dequeue task: %w", err)
	}

	var task ScanTask
	if err := json.Unmarshal([]byte(result[1]), &task); err != nil {
		return ScanTask{}, fmt.Errorf("%w: %v", ErrMalformedTask, err)
	}
	return task, nil
}

// Depth reports how many tasks are waiting.
func Depth(ctx context.Context, c *redis.Client) (int64, error) {
	return c.LLen(ctx, QueueName).Result()
}
