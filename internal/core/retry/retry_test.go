package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestAttempt_SucceedsFirstTry(t *testing.T) {
	calls := 0
	err := Attempt(context.Background(), 3, nil, func(ctx context.Context) error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestAttempt_RetriesOnlyRetryableErrors(t *testing.T) {
	permanent := errors.New("permanent failure")

	calls := 0
	err := Attempt(context.Background(), 5, nil, func(ctx context.Context) error {
		calls++
		return permanent
	})
	if !errors.Is(err, permanent) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (no retry for unmarked errors)", calls)
	}
}

func TestAttempt_RetryableUntilSuccess(t *testing.T) {
	transient := errors.New("transient")

	calls := 0
	err := Attempt(context.Background(), 5, nil, func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return MarkRetryable(transient)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestAttempt_ExhaustionReturnsUnwrappedError(t *testing.T) {
	transient := errors.New("still failing")

	calls := 0
	err := Attempt(context.Background(), 3, nil, func(ctx context.Context) error {
		calls++
		return MarkRetryable(transient)
	})
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	if err != transient {
		t.Errorf("expected the underlying error without the retry marker, got %v", err)
	}
	if IsRetryable(err) {
		t.Error("final error should not carry the retry marker")
	}
}

func TestAttempt_ContextCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	backoff := func(attempt int) time.Duration { return time.Hour }
	errCh := make(chan error, 1)
	go func() {
		errCh <- Attempt(ctx, 3, backoff, func(ctx context.Context) error {
			calls++
			return MarkRetryable(errors.New("transient"))
		})
	}()

	// Give the first attempt time to fail and enter backoff.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Attempt did not return after cancellation")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestMarkRetryable_Nil(t *testing.T) {
	if MarkRetryable(nil) != nil {
		t.Error("MarkRetryable(nil) should be nil")
	}
}

func TestIsRetryable_Wrapped(t *testing.T) {
	base := errors.New("base")
	if !IsRetryable(MarkRetryable(base)) {
		t.Error("marked error should be retryable")
	}
	if IsRetryable(base) {
		t.Error("unmarked error should not be retryable")
	}
}

func TestLinear(t *testing.T) {
	backoff := Linear(50 * time.Millisecond)

	want := []time.Duration{50 * time.Millisecond, 100 * time.Millisecond, 150 * time.Millisecond}
	for i, d := range want {
		if got := backoff(i + 1); got != d {
			t.Errorf("Linear(%d) = %v, want %v", i+1, got, d)
		}
	}
}
