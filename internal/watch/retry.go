package watch

import (
	"context"
	"time"
)

const defaultRetryBackoff = 500 * time.Millisecond

// retry runs fn up to cfg.MaxRetries extra times, doubling the delay between
// attempts. Cancellation wins over a pending backoff.
func (w *Watcher) retry(ctx context.Context, fn func(context.Context) error) error {
	delay := w.cfg.RetryBackoff
	for attempt := 0; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if attempt >= w.cfg.MaxRetries {
			return err
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay *= 2
	}
}
