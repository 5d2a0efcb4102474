package execution

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/compozy/foodtour/engine/core"
	"github.com/compozy/foodtour/engine/remote"
	"github.com/compozy/foodtour/pkg/logger"
	"github.com/sethvargo/go-retry"
)

var errStillRunning = errors.New("execution still in progress")

// StatusFetcher is the single remote capability the controller needs.
type StatusFetcher interface {
	GetExecution(ctx context.Context, id remote.ExecutionID) (*remote.ExecutionResult, error)
}

// Controller drives a started execution to a terminal outcome or declares a
// timeout. Status queries are strictly sequential.
type Controller struct {
	fetcher  StatusFetcher
	policy   Policy
	reporter Reporter
}

type Option func(*Controller)

// WithReporter sets the progress sink.
func WithReporter(r Reporter) Option {
	return func(c *Controller) {
		if r != nil {
			c.reporter = r
		}
	}
}

func NewController(fetcher StatusFetcher, policy Policy, opts ...Option) (*Controller, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("status fetcher is required")
	}
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid poll policy: %w", err)
	}
	c := &Controller{
		fetcher:  fetcher,
		policy:   policy,
		reporter: NopReporter{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Policy returns the polling budget in use.
func (c *Controller) Policy() Policy {
	return c.policy
}

// Await polls id until it succeeds, fails, or the attempt budget runs out.
// Query errors never abort the loop; only context cancellation returns an
// error.
func (c *Controller) Await(ctx context.Context, id remote.ExecutionID) (*Outcome, error) {
	loop := &pollLoop{
		ctrl: c,
		id:   id,
		log:  logger.FromContext(ctx).With("exec_id", id),
	}
	err := retry.Do(ctx, loop, loop.poll)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("polling execution %s: %w", id, ctxErr)
	}
	var outcome *Outcome
	if err == nil {
		outcome = loop.terminalOutcome()
	} else {
		outcome, err = loop.timeoutOutcome(ctx)
		if err != nil {
			return nil, err
		}
	}
	c.reporter.Finished(outcome)
	return outcome, nil
}

// pollLoop carries the loop state and doubles as the retry.Backoff that
// schedules the next query.
type pollLoop struct {
	ctrl    *Controller
	id      remote.ExecutionID
	log     logger.Logger
	attempt int
	next    time.Duration
	last    *remote.ExecutionResult
	lastErr error
}

// Next implements retry.Backoff.
func (l *pollLoop) Next() (time.Duration, bool) {
	if l.attempt >= l.ctrl.policy.MaxAttempts {
		return 0, true
	}
	return l.next, false
}

func (l *pollLoop) poll(ctx context.Context) error {
	l.attempt++
	result, err := l.ctrl.fetcher.GetExecution(ctx, l.id)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		l.lastErr = err
		l.next = l.ctrl.policy.WaitAfter(true)
		l.log.Warn("error checking status",
			"attempt", l.attempt,
			"max_attempts", l.ctrl.policy.MaxAttempts,
			"transient", remote.IsTransient(err),
			"error", core.RedactError(err))
		l.ctrl.reporter.Progress(PollAttempt{
			Ordinal: l.attempt,
			Max:     l.ctrl.policy.MaxAttempts,
			Err:     err,
			Wait:    l.next,
		})
		return retry.RetryableError(err)
	}
	l.last = result
	if result.Status.IsTerminal() {
		l.log.Debug("execution reached terminal status", "status", result.Status, "attempt", l.attempt)
		return nil
	}
	l.next = l.ctrl.policy.WaitAfter(false)
	l.log.Debug("execution in progress", "status", result.Status, "attempt", l.attempt)
	if ShouldReport(l.attempt) {
		l.ctrl.reporter.Progress(PollAttempt{
			Ordinal: l.attempt,
			Max:     l.ctrl.policy.MaxAttempts,
			Status:  result.Status,
			Wait:    l.next,
		})
	}
	return retry.RetryableError(errStillRunning)
}

func (l *pollLoop) terminalOutcome() *Outcome {
	state := StateSucceeded
	if l.last.Status == remote.StatusFailed {
		state = StateFailed
		l.log.Error("execution failed", "attempt", l.attempt, "detail", l.last.Error)
	} else {
		l.log.Info("execution completed successfully", "attempt", l.attempt)
	}
	return &Outcome{
		ExecutionID: l.id,
		State:       state,
		Result:      l.last,
		Attempts:    l.attempt,
		Err:         l.lastErr,
	}
}

// timeoutOutcome makes the single best-effort query once the budget is spent.
// The last attempt gets its regular wait first, like every other attempt.
func (l *pollLoop) timeoutOutcome(ctx context.Context) (*Outcome, error) {
	l.log.Warn("execution is taking longer than expected", "attempts", l.attempt)
	if err := sleep(ctx, l.next); err != nil {
		return nil, fmt.Errorf("polling execution %s: %w", l.id, err)
	}
	result, err := l.ctrl.fetcher.GetExecution(ctx, l.id)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("polling execution %s: %w", l.id, ctxErr)
	}
	if err != nil {
		l.log.Error("could not retrieve results", "error", core.RedactError(err))
		return &Outcome{
			ExecutionID: l.id,
			State:       StateUnreachable,
			Attempts:    l.attempt,
			Err:         err,
		}, nil
	}
	return &Outcome{
		ExecutionID: l.id,
		State:       StateTimedOut,
		Result:      result,
		Attempts:    l.attempt,
		Err:         l.lastErr,
	}, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
