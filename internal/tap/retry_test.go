package tap

import (
	"errors"
	"testing"
	"time"
)

func TestRetryOnFreshThreads_StopsAtFirstSuccess(t *testing.T) {
	var seen []int
	n, err := RetryOnFreshThreads(10, 0, func(attempt int) error {
		seen = append(seen, attempt)
		if attempt == 3 {
			return nil
		}
		return errors.New("not ready")
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 3 {
		t.Errorf("attempts = %d, want 3", n)
	}
	for i, a := range seen {
		if a != i+1 {
			t.Fatalf("attempt numbers not sequential: %v", seen)
		}
	}
	if len(seen) != 3 {
		t.Errorf("fn called %d times after success, want 3", len(seen))
	}
}

func TestRetryOnFreshThreads_ExhaustsAttempts(t *testing.T) {
	sentinel := errors.New("dispatcher not up")
	calls := 0
	n, err := RetryOnFreshThreads(4, 0, func(int) error {
		calls++
		return sentinel
	})
	if n != 4 || calls != 4 {
		t.Errorf("attempts = %d (calls %d), want 4", n, calls)
	}
	if !errors.Is(err, sentinel) {
		t.Errorf("final error must wrap the last attempt error, got %v", err)
	}
}

func TestRetryOnFreshThreads_FirstAttemptSucceeds(t *testing.T) {
	start := time.Now()
	n, err := RetryOnFreshThreads(ActivationAttempts, ActivationRetryDelay, func(int) error {
		return nil
	})
	if err != nil || n != 1 {
		t.Fatalf("got n=%d err=%v, want 1, nil", n, err)
	}
	if elapsed := time.Since(start); elapsed > ActivationRetryDelay {
		t.Errorf("success must not incur the retry delay, took %v", elapsed)
	}
}
