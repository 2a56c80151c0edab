package control

import (
	"time"

	"github.com/rjfmedia/lempicka-sync/pkg/sync/syncerrors"
)

// RetryPolicy configures the exponential-backoff retry wrapper.
type RetryPolicy struct {
	// MaxAttempts is the maximum number of retry attempts after the
	// initial try (default: 2, i.e. up to 3 tries total).
	MaxAttempts int
	// BaseDelay is the exponential-backoff base (default: 300ms, floored
	// at 50ms).
	BaseDelay time.Duration
}

// DefaultRetryPolicy is the reference retry policy used when a caller
// doesn't specify one.
var DefaultRetryPolicy = RetryPolicy{MaxAttempts: 2, BaseDelay: 300 * time.Millisecond}

// Normalize applies the 50ms floor on BaseDelay.
func (p RetryPolicy) Normalize() RetryPolicy {
	if p.BaseDelay < 50*time.Millisecond {
		p.BaseDelay = 50 * time.Millisecond
	}
	return p
}

// RetryEvent is reported to the OnRetry callback before each backoff sleep.
type RetryEvent struct {
	Attempt int
	Delay   time.Duration
	Err     error
}

// Retry runs op, retrying on recoverable errors (per
// syncerrors.IsRecoverable) with exponential backoff up to policy's
// MaxAttempts. Cancellation, observed via tokens, pre-empts any sleep and
// aborts retrying immediately. onRetry, if non-nil, is called before each
// backoff sleep.
func Retry(policy RetryPolicy, tokens Tokens, onRetry func(RetryEvent), op func() error) error {
	policy = policy.Normalize()

	var lastErr error
	for attempt := 0; attempt <= policy.MaxAttempts; attempt++ {
		if err := tokens.Checkpoint(); err != nil {
			return err
		}

		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !syncerrors.IsRecoverable(lastErr) {
			return lastErr
		}
		if attempt == policy.MaxAttempts {
			break
		}

		delay := policy.BaseDelay * (1 << uint(attempt))
		if onRetry != nil {
			onRetry(RetryEvent{Attempt: attempt + 1, Delay: delay, Err: lastErr})
		}

		if interrupted := sleepInterruptible(delay, tokens); interrupted != nil {
			return interrupted
		}
	}

	return lastErr
}

// sleepInterruptible sleeps for delay, checking the cancel predicate in
// small slices so that cancellation pre-empts the sleep promptly.
func sleepInterruptible(delay time.Duration, tokens Tokens) error {
	const slice = 25 * time.Millisecond

	cancel := tokens.ShouldCancel
	if cancel == nil {
		cancel = AlwaysFalse
	}

	remaining := delay
	for remaining > 0 {
		if cancel() {
			return syncerrors.New(syncerrors.CodeSyncCancelled, "cancelled")
		}
		step := slice
		if step > remaining {
			step = remaining
		}
		time.Sleep(step)
		remaining -= step
	}

	return nil
}
