package browser

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestPollReturnsOnFirstSuccess(t *testing.T) {
	calls := 0
	err := Poll(context.Background(), time.Second, func(ctx context.Context) (bool, error) {
		calls++
		return true, nil
	})
	if err != nil {
		t.Fatalf("got unexpected error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call but got %d", calls)
	}
}

func TestPollRetriesUntilSuccess(t *testing.T) {
	calls := 0
	start := time.Now()
	err := Poll(context.Background(), time.Second, func(ctx context.Context) (bool, error) {
		calls++
		return calls == 3, nil
	})
	if err != nil {
		t.Fatalf("got unexpected error: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls but got %d", calls)
	}
	// two waits of 100ms each must have happened between the calls
	if elapsed := time.Since(start); elapsed < 200*time.Millisecond {
		t.Fatalf("expected at least 200ms of polling but got %v", elapsed)
	}
}

func TestPollTimesOut(t *testing.T) {
	calls := 0
	start := time.Now()
	timeout := 250 * time.Millisecond
	err := Poll(context.Background(), timeout, func(ctx context.Context) (bool, error) {
		calls++
		return false, nil
	})
	if !errors.Is(err, ErrPollTimeout) {
		t.Fatalf("expected ErrPollTimeout but got %v", err)
	}
	if elapsed := time.Since(start); elapsed < timeout {
		t.Fatalf("poll returned after %v, before the %v deadline", elapsed, timeout)
	}
	if calls < 2 {
		t.Fatalf("expected the condition to be retried but got %d calls", calls)
	}
}

func TestPollDoesNotRunConditionConcurrently(t *testing.T) {
	running := false
	calls := 0
	err := Poll(context.Background(), time.Second, func(ctx context.Context) (bool, error) {
		if running {
			t.Fatal("condition invoked concurrently with itself")
		}
		running = true
		time.Sleep(30 * time.Millisecond)
		running = false
		calls++
		return calls == 3, nil
	})
	if err != nil {
		t.Fatalf("got unexpected error: %v", err)
	}
}

func TestPollConditionErrorIsTerminal(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	err := Poll(context.Background(), time.Second, func(ctx context.Context) (bool, error) {
		calls++
		return false, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected the condition error but got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call but got %d", calls)
	}
}

func TestPollStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()
	err := Poll(ctx, time.Second, func(ctx context.Context) (bool, error) {
		return false, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled but got %v", err)
	}
}
