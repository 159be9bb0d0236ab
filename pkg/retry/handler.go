package retry

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// DefaultDelaySchedule is the default fixed delay sequence (spec §4.4):
// 1s, 2s, 5s, after which delays grow exponentially from the last entry.
var DefaultDelaySchedule = []time.Duration{time.Second, 2 * time.Second, 5 * time.Second}

// Hooks are optional, operation-specific recovery actions invoked before
// the next retry, keyed by the error class that triggered them. A nil hook
// is simply skipped.
type Hooks struct {
	// ReduceContext handles token_limit: shrink the prompt/context for the
	// given (zero-based) attempt number before retrying.
	ReduceContext func(attempt int)
	// AddFeedback handles generation: feed the parser/model error back into
	// the next prompt.
	AddFeedback func(message string)
	// TryAlternative handles validation: attempt a different strategy.
	TryAlternative func(attempt int)
	// IncreaseTimeout handles timeout; invoked at most once per operation.
	IncreaseTimeout func()
	// RetryAfter handles rate_limit: if it returns ok, its duration is used
	// instead of the delay schedule.
	RetryAfter func(err error) (time.Duration, bool)
}

// Config tunes a Handler's retry behavior.
type Config struct {
	DelaySchedule []time.Duration
	MaxRetries    int // total attempts = MaxRetries + 1
}

// Handler wraps one operation with classification-driven retry.
type Handler struct {
	schedule   []time.Duration
	maxRetries int
	log        *slog.Logger
}

// NewHandler constructs a Handler. Zero-value Config selects the defaults:
// DefaultDelaySchedule and MaxRetries == len(DefaultDelaySchedule).
func NewHandler(cfg Config) *Handler {
	schedule := cfg.DelaySchedule
	if schedule == nil {
		schedule = DefaultDelaySchedule
	}
	maxRetries := cfg.MaxRetries
	if maxRetries == 0 {
		maxRetries = len(schedule)
	}
	return &Handler{schedule: schedule, maxRetries: maxRetries, log: slog.With("component", "retry")}
}

// Operation is one attempt of the wrapped unit of work.
type Operation func(ctx context.Context, attempt int) error

// Do runs op, retrying per the classification and delay/backoff rules in
// spec §4.4, until it succeeds, an unrecoverable class is hit, or
// MaxRetries+1 attempts have been made.
func (h *Handler) Do(ctx context.Context, op Operation, hooks Hooks) error {
	exp := backoff.NewExponentialBackOff()
	if len(h.schedule) > 0 {
		exp.InitialInterval = h.schedule[len(h.schedule)-1]
	}
	exp.Reset()

	timeoutIncreased := false
	var lastErr error

	for attempt := 0; attempt <= h.maxRetries; attempt++ {
		err := op(ctx, attempt)
		if err == nil {
			return nil
		}
		lastErr = err

		class := Classify(err)
		if !class.Recoverable() {
			h.log.Warn("non-recoverable error, not retrying", "class", class, "error", err)
			return err
		}
		if attempt == h.maxRetries {
			break
		}

		delay := h.delayFor(attempt, exp)

		switch class {
		case ClassRateLimit:
			if hooks.RetryAfter != nil {
				if d, ok := hooks.RetryAfter(err); ok {
					delay = d
				}
			}
		case ClassTokenLimit:
			if hooks.ReduceContext != nil {
				hooks.ReduceContext(attempt)
			}
		case ClassGeneration:
			if hooks.AddFeedback != nil {
				hooks.AddFeedback(err.Error())
			}
		case ClassValidation:
			if hooks.TryAlternative != nil {
				hooks.TryAlternative(attempt)
			}
		case ClassTimeout:
			if hooks.IncreaseTimeout != nil && !timeoutIncreased {
				hooks.IncreaseTimeout()
				timeoutIncreased = true
			}
		case ClassNetwork, ClassToolError:
			// delay only
		}

		h.log.Debug("retrying after classified error", "class", class, "attempt", attempt, "delay", delay)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return lastErr
}

// delayFor returns the schedule entry for attempt if one exists, otherwise
// the next step of exponential backoff seeded from the schedule's last entry.
func (h *Handler) delayFor(attempt int, exp *backoff.ExponentialBackOff) time.Duration {
	if attempt < len(h.schedule) {
		return h.schedule[attempt]
	}
	d := exp.NextBackOff()
	if d == backoff.Stop {
		return h.schedule[len(h.schedule)-1]
	}
	return d
}
