package workflow

import (
	"context"
	"log/slog"
	"time"

	"github.com/jakopako/visawatch/internal/types"
)

// Supervise races the workflow against a hard wall-clock ceiling.
// Whichever settles first determines the result. The ceiling is also
// the deadline of the context the workflow runs under, so the losing
// side gets cancelled rather than merely abandoned; the session is
// closed here once more in case the workflow goroutine never reaches
// its own cleanup.
func Supervise(ctx context.Context, w *Workflow, ceiling time.Duration) types.RunStatus {
	runCtx, cancel := context.WithTimeout(ctx, ceiling)
	defer cancel()

	start := time.Now()
	done := make(chan types.RunStatus, 1)
	go func() {
		done <- w.Run(runCtx)
	}()

	timer := time.NewTimer(ceiling)
	defer timer.Stop()
	select {
	case status := <-done:
		return status
	case <-timer.C:
		cancel()
		w.driver.Close()
		slog.Error("run exceeded the hard ceiling, abandoning it",
			slog.Duration("ceiling", ceiling))
		return types.RunStatus{
			Outcome:    types.OutcomeTimedOut,
			Err:        context.DeadlineExceeded,
			StartedAt:  start,
			FinishedAt: time.Now(),
		}
	}
}
