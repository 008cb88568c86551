package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/chris/clothing-swap-settlement/pkg/models"
)

// DefaultMaxRetries bounds how often a settlement is re-attempted after a conflict.
const DefaultMaxRetries = 3

// RetryConflicts runs op and re-runs it while it fails with ErrConflict.
// op must re-read and re-validate its inputs on every attempt, so that a lost
// race surfaces as the precondition failure the winner caused. When the retry
// budget runs out the conflict is reported as models.ErrTransactionFailed.
func RetryConflicts(ctx context.Context, maxRetries uint64, op func() error) error {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = 10 * time.Millisecond
	eb.MaxInterval = 200 * time.Millisecond
	eb.MaxElapsedTime = 2 * time.Second

	b := backoff.WithContext(backoff.WithMaxRetries(eb, maxRetries), ctx)

	err := backoff.Retry(func() error {
		err := op()
		if err == nil || errors.Is(err, ErrConflict) {
			return err
		}
		return backoff.Permanent(err)
	}, b)
	if errors.Is(err, ErrConflict) {
		return fmt.Errorf("%w: %w", models.ErrTransactionFailed, err)
	}
	return err
}
