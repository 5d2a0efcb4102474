package execution

import (
	"time"

	"github.com/compozy/foodtour/engine/remote"
)

// State is the controller state machine position.
type State string

const (
	StatePolling   State = "POLLING"
	StateSucceeded State = "SUCCEEDED"
	StateFailed    State = "FAILED"
	StateTimedOut  State = "TIMED_OUT"
	// StateUnreachable is a timeout whose final best-effort query also failed.
	StateUnreachable State = "UNREACHABLE"
)

func (s State) String() string {
	return string(s)
}

// PollAttempt is one status query. Exactly one of Status or Err is set.
type PollAttempt struct {
	Ordinal int
	Max     int
	Status  remote.ExecutionStatus
	Err     error
	// Wait is the delay before the next query, including the final one after
	// a timeout.
	Wait time.Duration
}

// Outcome is what the controller returns once the loop has ended.
type Outcome struct {
	ExecutionID remote.ExecutionID
	State       State
	// Result is the terminal observation, the final best-effort observation
	// after a timeout, or nil when the execution was unreachable.
	Result   *remote.ExecutionResult
	Attempts int
	// Err is the last query error, if any.
	Err error
}

// ErrorDetail returns the service-supplied failure detail, if any.
func (o *Outcome) ErrorDetail() string {
	if o == nil || o.Result == nil {
		return ""
	}
	return o.Result.Error
}

// LastStatus returns the last observed status, or an empty status.
func (o *Outcome) LastStatus() remote.ExecutionStatus {
	if o == nil || o.Result == nil {
		return ""
	}
	return o.Result.Status
}
