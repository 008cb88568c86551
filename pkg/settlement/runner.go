// Package settlement runs the atomic writes of the engines.
package settlement

import (
	"context"
	"log/slog"
	"time"

	"github.com/chris/clothing-swap-settlement/pkg/events"
	"github.com/chris/clothing-swap-settlement/pkg/storage"
)

// Observer records the outcome of each settlement.
type Observer interface {
	ObserveSettlement(kind string, err error, elapsed time.Duration)
}

// Runner executes settlements. The zero value is ready to use: it retries
// conflicts storage.DefaultMaxRetries times, publishes nothing and logs to the
// default logger.
type Runner struct {
	MaxRetries uint64
	Publisher  events.Publisher
	Observer   Observer
	Logger     *slog.Logger
}

func (r *Runner) logger() *slog.Logger {
	if r == nil || r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

// Run executes op, re-running it while the write loses a race. op must read
// and validate its preconditions again on each attempt.
func (r *Runner) Run(ctx context.Context, kind string, op func() error) error {
	retries := uint64(storage.DefaultMaxRetries)
	if r != nil && r.MaxRetries > 0 {
		retries = r.MaxRetries
	}

	start := time.Now()
	err := storage.RetryConflicts(ctx, retries, op)
	if r != nil && r.Observer != nil {
		r.Observer.ObserveSettlement(kind, err, time.Since(start))
	}
	if err != nil {
		r.logger().DebugContext(ctx, "settlement not applied", "kind", kind, "error", err)
	}
	return err
}

// Announce publishes the event of a committed settlement. Failures are logged only.
func (r *Runner) Announce(ctx context.Context, event events.Event) {
	if r == nil {
		return
	}
	events.Announce(ctx, r.logger(), r.Publisher, event)
}
