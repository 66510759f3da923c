package tap

import (
	"errors"
	"fmt"
	"runtime"
	"time"
)

// Activation retry bounds. The XAML diagnostics activation call is only
// accepted once the host has its dispatcher up, which can take a while
// after the shell starts; 60 attempts at 500ms covers half a minute.
const (
	ActivationAttempts     = 60
	ActivationRetryDelay   = 500 * time.Millisecond
	activationAttemptLimit = 5 * time.Second
)

// ErrAttemptTimeout marks an attempt whose worker did not report back
// within the per-attempt bound.
var ErrAttemptTimeout = errors.New("activation attempt timed out")

// RetryOnFreshThreads runs fn up to attempts times, each attempt on its own
// OS thread, stopping at the first success. It returns the number of
// attempts made and the final error, nil on success.
//
// The diagnostics activation entry point succeeds at most once per calling
// thread, so a shared retry thread would fail spuriously even when the
// registration itself would have succeeded. Each attempt therefore locks a
// new goroutine to a thread and lets the goroutine exit, which retires the
// thread with it; the next attempt is guaranteed a fresh one.
func RetryOnFreshThreads(attempts int, delay time.Duration, fn func(attempt int) error) (int, error) {
	var lastErr error
	for n := 1; n <= attempts; n++ {
		errc := make(chan error, 1)
		go func(attempt int) {
			runtime.LockOSThread()
			// Deliberately no UnlockOSThread: the thread must die with
			// this goroutine so it is never reused for a later attempt.
			errc <- fn(attempt)
		}(n)

		select {
		case lastErr = <-errc:
		case <-time.After(activationAttemptLimit):
			lastErr = ErrAttemptTimeout
		}
		if lastErr == nil {
			return n, nil
		}
		if n < attempts {
			time.Sleep(delay)
		}
	}
	return attempts, fmt.Errorf("activation not accepted after %d attempts: %w", attempts, lastErr)
}
