package worker

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"phishguard/internal/logging"
	"phishguard/internal/queue"
	"phishguard/internal/scan"
)

// DefaultPollTimeout is how long one BLPOP waits before the loop re-checks
// for shutdown. Redis does not accept anything shorter than a second.
const DefaultPollTimeout = time.Second

// Runner drains the scan queue into the scan service.
type Runner struct {
	Client      *redis.Client
	Scanner     *scan.Service
	PollTimeout time.Duration
	// ErrorBackoff is the pause after a Redis failure.
	ErrorBackoff time.Duration
}

// Start launches the worker loop. It blocks until ctx is cancelled.
func (r *Runner) Start(ctx context.Context) error {
	log := logging.FromContext(ctx)
	log.Info("👷 worker started, waiting for tasks", "queue", queue.QueueName)

	for {
		if ctx.Err() != nil {
			log.Info("worker stopping")
			return nil
		}

		_, err := r.ProcessOne(ctx)
		switch {
		case err == nil, errors.Is(err, queue.ErrNoTask):
		case errors.Is(err, queue.ErrMalformedTask):
			log.Warn("dropping malformed task", "err", err)
		case ctx.Err() != nil:
			continue
		default:
			log.Error("queue error", "err", err)
			r.sleep(ctx)
		}
	}
}

// ProcessOne pops a single task and scans it. processed is false when the
// queue stayed empty for the poll timeout.
func (r *Runner) ProcessOne(ctx context.Context) (processed bool, err error) {
	timeout := r.PollTimeout
	if timeout <= 0 {
		timeout = DefaultPollTimeout
	}

	task, err := queue.Pop(ctx, r.Client, timeout)
	if err != nil {
		return false, err
	}

	log := logging.FromContext(ctx).With("task", task.ID, "url", task.Signals.URL)
	res, err := r.Scanner.Scan(ctx, task.Signals, task.Origin)
	if err != nil {
		// The task is consumed either way; a report that cannot be built or
		// stored is logged and dropped.
		log.Error("scan failed", "err", err)
		return true, nil
	}

	log.Info("✅ processed",
		"score", res.Report.Score,
		"level", res.Report.Level,
		"stored", res.Stored,
		"queued_for", time.Since(task.SubmittedAt).Round(time.Millisecond),
	)
	return true, nil
}

func (r *Runner) sleep(ctx context.Context) {
	d := r.ErrorBackoff
	if d <= 0 {
		d = time.Second
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
