package browser

import (
	"context"
	"fmt"
	"time"
)

// pollInterval is the fixed delay between two condition evaluations.
const pollInterval = 100 * time.Millisecond

// Poll repeatedly evaluates cond until it returns true or the timeout
// elapses. The condition may block (it usually performs browser I/O);
// it is never invoked concurrently with itself, the next evaluation
// is only scheduled once the previous one has returned. A condition
// error is terminal and returned as is. On expiry Poll returns an
// error wrapping ErrPollTimeout.
func Poll(ctx context.Context, timeout time.Duration, cond func(context.Context) (bool, error)) error {
	start := time.Now()
	deadline := start.Add(timeout)
	for {
		ok, err := cond(ctx)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w (waited %v)", ErrPollTimeout, time.Since(start).Round(time.Millisecond))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}
