package watch

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetryRecoversAfterFailures(t *testing.T) {
	w := NewWatcher(Config{MaxRetries: 3, RetryBackoff: time.Millisecond}, nil, nil, nil, nil)

	calls := 0
	err := w.retry(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls: got %d want 3", calls)
	}
}

func TestRetryExhausted(t *testing.T) {
	w := NewWatcher(Config{MaxRetries: 2, RetryBackoff: time.Millisecond}, nil, nil, nil, nil)

	calls := 0
	wantErr := errors.New("persistent")
	err := w.retry(context.Background(), func(context.Context) error {
		calls++
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("retry: got %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls: got %d want 3", calls)
	}
}

func TestRetryStopsOnCancel(t *testing.T) {
	w := NewWatcher(Config{MaxRetries: 10, RetryBackoff: time.Minute}, nil, nil, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := w.retry(ctx, func(context.Context) error {
		return errors.New("transient")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("retry: got %v", err)
	}
}

func TestNewWatcherNormalizesRetrySettings(t *testing.T) {
	w := NewWatcher(Config{MaxRetries: -1}, nil, nil, nil, nil)
	if w.cfg.MaxRetries != 0 {
		t.Fatalf("max retries: got %d", w.cfg.MaxRetries)
	}
	if w.cfg.RetryBackoff != defaultRetryBackoff {
		t.Fatalf("backoff: got %v", w.cfg.RetryBackoff)
	}
}
