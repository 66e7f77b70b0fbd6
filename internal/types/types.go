// Package types defines shared types used across the application.
package types

import "time"

// Outcome is the terminal state of one run.
type Outcome string

const (
	OutcomeEarlierFound Outcome = "earlier-slot-found"
	OutcomeNoEarlier    Outcome = "no-earlier-slot"
	OutcomeNoSlots      Outcome = "no-slots-at-all"
	OutcomeFailed       Outcome = "failed"
	OutcomeTimedOut     Outcome = "timed-out"
)

// StepTiming records how long a single workflow step took and whether
// it succeeded.
type StepTiming struct {
	Name    string
	Elapsed time.Duration
	Err     error
}

// RunStatus represents the result of a single run.
type RunStatus struct {
	Outcome      Outcome
	EarliestSlot time.Time
	Err          error
	StartedAt    time.Time
	FinishedAt   time.Time
	Steps        []StepTiming
}
