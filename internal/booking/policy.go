package booking

import (
	"context"
	"time"

	"github.com/lumina-dental/portal/internal/scheduling"
	"github.com/lumina-dental/portal/pkg/logging"
)

// Outcome is the policy-decided result of an appointment creation attempt.
type Outcome struct {
	// Appointment is the confirmed remote record; nil when Optimistic.
	Appointment *scheduling.Appointment
	// Optimistic marks a success reported before the backend confirmed it.
	Optimistic bool
}

// OutcomePolicy decides how long a submission waits on the scheduling
// backend and what to report when it is slow. The optimistic variant exists
// because the upstream scheduler has a history of multi-second stalls; it is
// an explicit product trade-off of perceived responsiveness over confirmed
// delivery, kept swappable so it can be revisited in one place.
type OutcomePolicy interface {
	Name() string
	Execute(ctx context.Context, create func(ctx context.Context) (*scheduling.Appointment, error)) (*Outcome, error)
}

// StrictPolicy waits for the backend's answer, however long it takes.
type StrictPolicy struct{}

func (StrictPolicy) Name() string { return "strict" }

func (StrictPolicy) Execute(ctx context.Context, create func(ctx context.Context) (*scheduling.Appointment, error)) (*Outcome, error) {
	appt, err := create(ctx)
	if err != nil {
		return nil, err
	}
	return &Outcome{Appointment: appt}, nil
}

// OptimisticPolicy races the creation call against a fixed deadline. If the
// deadline elapses first the submission is reported successful while the
// real request stays in flight; its eventual result is only logged. The
// in-flight request is deliberately not cancelled.
type OptimisticPolicy struct {
	Timeout time.Duration
	Logger  *logging.Logger
}

// NewOptimisticPolicy returns the default 5s optimistic policy.
func NewOptimisticPolicy(timeout time.Duration, logger *logging.Logger) *OptimisticPolicy {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &OptimisticPolicy{Timeout: timeout, Logger: logger}
}

func (p *OptimisticPolicy) Name() string { return "optimistic" }

func (p *OptimisticPolicy) Execute(ctx context.Context, create func(ctx context.Context) (*scheduling.Appointment, error)) (*Outcome, error) {
	type result struct {
		appt *scheduling.Appointment
		err  error
	}
	results := make(chan result, 1)

	// Detach from the request context so the handler returning does not
	// abort the still-running creation call.
	detached := context.WithoutCancel(ctx)
	go func() {
		appt, err := create(detached)
		results <- result{appt: appt, err: err}
	}()

	timer := time.NewTimer(p.Timeout)
	defer timer.Stop()

	select {
	case res := <-results:
		if res.err != nil {
			return nil, res.err
		}
		return &Outcome{Appointment: res.appt}, nil
	case <-timer.C:
		p.Logger.Warn("appointment creation exceeded deadline, reporting optimistic success",
			"timeout", p.Timeout.String(),
		)
		// Log the late result so the real outcome is at least visible.
		go func() {
			res := <-results
			if res.err != nil {
				p.Logger.Error("late appointment creation failed after optimistic success", "error", res.err)
				return
			}
			if res.appt != nil {
				p.Logger.Info("late appointment creation settled after optimistic success", "appointment_id", res.appt.ID)
			}
		}()
		return &Outcome{Optimistic: true}, nil
	}
}
