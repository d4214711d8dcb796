package benchmark

import (
	"context"

	"golang.org/x/time/rate"
)

// Trial performs one transfer.
type Trial func(ctx context.Context) Outcome

// Stepper is notified after every trial.
type Stepper interface {
	Step()
}

// TrialOptions tunes RunTrials. The zero value runs trials back to back.
type TrialOptions struct {
	// Limiter delays trial starts. Nil means no pacing.
	Limiter *rate.Limiter
	// Progress is stepped once per trial. May be nil.
	Progress Stepper
	// Kind marks outcomes recorded when a trial could not be started.
	Kind TransferKind
}

// NewLimiter paces trial starts to perSecond. It returns nil for perSecond <= 0.
func NewLimiter(perSecond float64) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(perSecond), 1)
}

// RunTrials invokes trial count times, one after another, and returns the
// outcomes in call order. A trial that cannot start because ctx is done is
// recorded as a failure so the set always holds count outcomes.
func RunTrials(ctx context.Context, count int, trial Trial, opts TrialOptions) TrialSet {
	if count < 0 {
		count = 0
	}
	set := TrialSet{Outcomes: make([]Outcome, 0, count)}

	for i := 0; i < count; i++ {
		var outcome Outcome
		if opts.Limiter != nil {
			if err := opts.Limiter.Wait(ctx); err != nil {
				outcome = failed(opts.Kind, err)
			}
		}
		if outcome.Err == nil {
			outcome = trial(ctx)
		}

		set.Outcomes = append(set.Outcomes, outcome)
		if opts.Progress != nil {
			opts.Progress.Step()
		}
	}
	return set
}
