// Package workflow orchestrates one complete run: authenticate into
// the portal, query the open appointment days, decide whether an
// earlier slot than the one currently held is available and alert the
// user if so. All steps run strictly sequentially; each step's
// preconditions depend on the previous step's DOM and session effects.
package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/goodsign/monday"
	"github.com/jakopako/visawatch/internal/browser"
	"github.com/jakopako/visawatch/internal/config"
	"github.com/jakopako/visawatch/internal/portal"
	"github.com/jakopako/visawatch/internal/types"
)

// Driver is the browser surface the workflow drives. Implemented by
// *browser.Session, mocked in tests.
type Driver interface {
	SetViewport(ctx context.Context, width, height int64) error
	Navigate(ctx context.Context, url string, timeout time.Duration) error
	Fill(ctx context.Context, t browser.Target, value string) error
	Click(ctx context.Context, t browser.Target) error
	WaitFor(ctx context.Context, t browser.Target) error
	CookieHeader(ctx context.Context, pageURL string) (string, error)
	UserAgent(ctx context.Context) (string, error)
	HTML(ctx context.Context) (string, error)
	Close()
}

// SlotLister answers the authenticated slot query. Implemented by
// *portal.Client.
type SlotLister interface {
	AvailableDays(ctx context.Context, q portal.Query) ([]portal.Slot, error)
}

// Notifier dispatches a user-facing alert. Implemented by
// *notify.Notifier.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

// Workflow holds everything one run needs. A Workflow is single use:
// Run releases the browser session on the way out.
type Workflow struct {
	cfg      *config.Config
	driver   Driver
	slots    SlotLister
	notifier Notifier
	logger   *slog.Logger
	steps    []types.StepTiming
}

func New(cfg *config.Config, driver Driver, slots SlotLister, notifier Notifier) *Workflow {
	return &Workflow{
		cfg:      cfg,
		driver:   driver,
		slots:    slots,
		notifier: notifier,
		logger:   slog.With(slog.String("component", "workflow")),
	}
}

// Run executes the full state sequence and always releases the
// browser session, regardless of which path led to the end.
func (w *Workflow) Run(ctx context.Context) types.RunStatus {
	status := types.RunStatus{StartedAt: time.Now()}
	defer w.driver.Close()

	outcome, earliest, err := w.run(ctx)
	status.Outcome = outcome
	status.EarliestSlot = earliest
	status.Err = err
	status.FinishedAt = time.Now()
	status.Steps = w.steps
	if err != nil {
		w.logger.Error(fmt.Sprintf("run failed: %v", err))
	} else {
		w.logger.Info("run finished", slog.String("outcome", string(outcome)))
	}
	return status
}

func (w *Workflow) run(ctx context.Context) (types.Outcome, time.Time, error) {
	stepTimeout := w.cfg.StepTimeout()
	target := func(name string, strategies []browser.Strategy) browser.Target {
		return browser.Target{Name: name, Strategies: strategies, Timeout: stepTimeout}
	}

	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"set viewport", func(ctx context.Context) error {
			return w.driver.SetViewport(ctx, 1920, 1080)
		}},
		{"open sign-in page", func(ctx context.Context) error {
			return w.driver.Navigate(ctx, w.cfg.SignInURL(), stepTimeout)
		}},
		{"enter username", func(ctx context.Context) error {
			return w.driver.Fill(ctx, target("username field", w.cfg.Selectors.Username), w.cfg.Username)
		}},
		{"enter password", func(ctx context.Context) error {
			return w.driver.Fill(ctx, target("password field", w.cfg.Selectors.Password), w.cfg.Password)
		}},
		{"accept privacy policy", func(ctx context.Context) error {
			return w.driver.Click(ctx, target("policy checkbox", w.cfg.Selectors.Policy))
		}},
		{"submit login", func(ctx context.Context) error {
			return w.driver.Click(ctx, target("submit button", w.cfg.Selectors.Submit))
		}},
		{"await account page", func(ctx context.Context) error {
			err := w.driver.WaitFor(ctx, target("account page marker", w.cfg.Selectors.AccountPage))
			if err != nil {
				if reason := w.loginFailureReason(ctx); reason != "" {
					err = fmt.Errorf("%w (portal says: %s)", err, reason)
				}
			}
			return err
		}},
	}
	for _, s := range steps {
		if err := w.step(ctx, s.name, s.fn); err != nil {
			return types.OutcomeFailed, time.Time{}, err
		}
	}

	var slots []portal.Slot
	err := w.step(ctx, "query available days", func(ctx context.Context) error {
		cookie, err := w.driver.CookieHeader(ctx, w.cfg.BaseURL)
		if err != nil {
			return err
		}
		agent, err := w.driver.UserAgent(ctx)
		if err != nil {
			return err
		}
		slots, err = w.slots.AvailableDays(ctx, portal.Query{
			Region:       w.cfg.Region,
			ScheduleID:   w.cfg.ScheduleID,
			FacilityID:   w.cfg.FacilityID,
			CookieHeader: cookie,
			UserAgent:    agent,
		})
		return err
	})
	if err != nil {
		return types.OutcomeFailed, time.Time{}, err
	}

	current := w.cfg.CurrentAppointmentDate()
	outcome := Decide(slots, current)
	earliest, ok := portal.Earliest(slots)
	w.logger.Info("decision made",
		slog.String("outcome", string(outcome)),
		slog.Int("slots", len(slots)))

	if outcome == types.OutcomeEarlierFound {
		// notification is best effort, a failed push never fails the run
		if err := w.notifier.Notify(ctx, notificationMessage(earliest.Date, current)); err != nil {
			w.logger.Warn(fmt.Sprintf("notification delivery failed: %v", err))
		}
	}
	if !ok {
		return outcome, time.Time{}, nil
	}
	return outcome, earliest.Date, nil
}

// step runs one state transition, recording its timing. Cancellation
// is observed before every transition so the browser session is
// released even when the run deadline fires mid-flight.
func (w *Workflow) step(ctx context.Context, name string, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		w.steps = append(w.steps, types.StepTiming{Name: name, Err: err})
		return err
	}
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	w.steps = append(w.steps, types.StepTiming{Name: name, Elapsed: elapsed, Err: err})
	if err != nil {
		w.logger.Error("step failed",
			slog.String("step", name),
			slog.Duration("elapsed", elapsed),
			slog.String("err", err.Error()))
		return fmt.Errorf("%s: %w", name, err)
	}
	w.logger.Debug("step done", slog.String("step", name), slog.Duration("elapsed", elapsed))
	return nil
}

// loginFailureReason snapshots the current page and extracts the
// portal's visible error banner, if any. Diagnostics only.
func (w *Workflow) loginFailureReason(ctx context.Context) string {
	html, err := w.driver.HTML(ctx)
	if err != nil {
		return ""
	}
	return portal.LoginFailureReason(html)
}

// Decide maps a slot listing to a run outcome: no slots at all, an
// earlier slot than the date currently held, or nothing better.
func Decide(slots []portal.Slot, current time.Time) types.Outcome {
	if len(slots) == 0 {
		return types.OutcomeNoSlots
	}
	earliest, _ := portal.Earliest(slots)
	if earliest.Date.Before(current) {
		return types.OutcomeEarlierFound
	}
	return types.OutcomeNoEarlier
}

func notificationMessage(earliest, current time.Time) string {
	return fmt.Sprintf("earlier appointment available: %s (%s), currently held: %s",
		earliest.Format("2006-01-02"),
		monday.Format(earliest, "Monday, 2 January 2006", monday.LocaleEnUS),
		current.Format("2006-01-02"))
}
