package runner

import (
	"context"
	"errors"
	"time"

	"github.com/go-rod/rod/lib/utils"
)

// Condition is polled by WaitUntil.
type Condition func(ctx context.Context) (bool, error)

// WaitUntil polls cond with exponential backoff between initial and max
// interval until it holds or timeout elapses. A timeout is not an error: it
// returns false, nil. Errors from cond and cancellation of ctx are returned.
func WaitUntil(ctx context.Context, timeout, initial, maxInterval time.Duration, cond Condition) (bool, error) {
	if initial <= 0 {
		initial = 50 * time.Millisecond
	}
	if maxInterval < initial {
		maxInterval = initial
	}

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	sleep := utils.BackoffSleeper(initial, maxInterval, nil)
	for {
		ok, err := cond(waitCtx)
		if err != nil {
			if expired(ctx, waitCtx) {
				return false, nil
			}
			return false, err
		}
		if ok {
			return true, nil
		}

		if err := sleep(waitCtx); err != nil {
			if ctx.Err() != nil {
				return false, ctx.Err()
			}
			if errors.Is(err, context.DeadlineExceeded) || waitCtx.Err() != nil {
				return false, nil
			}
			return false, err
		}
	}
}

// expired reports whether the wait's own deadline passed while the parent is alive.
func expired(parent, wait context.Context) bool {
	return parent.Err() == nil && wait.Err() != nil
}

// sleepCtx sleeps for d unless ctx ends first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
