package execution

import (
	"fmt"
	"time"
)

const (
	DefaultMaxAttempts = 20
	DefaultInterval    = 10 * time.Second
)

// Policy is a fixed-interval polling budget. There is no exponential growth
// and no jitter: the service normally finishes within a handful of polls.
type Policy struct {
	MaxAttempts int
	Interval    time.Duration
}

// DefaultPolicy returns the reference policy of 20 attempts every 10s.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: DefaultMaxAttempts, Interval: DefaultInterval}
}

// Validate rejects budgets that cannot make progress.
func (p Policy) Validate() error {
	if p.MaxAttempts < 1 {
		return fmt.Errorf("max attempts must be at least 1, got %d", p.MaxAttempts)
	}
	if p.Interval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", p.Interval)
	}
	return nil
}

// DegradedInterval is the wait after a failed status query.
func (p Policy) DegradedInterval() time.Duration {
	return p.Interval / 2
}

// WaitAfter returns the wait that follows an attempt.
func (p Policy) WaitAfter(queryFailed bool) time.Duration {
	if queryFailed {
		return p.DegradedInterval()
	}
	return p.Interval
}
