package helpers

import (
	"errors"
	"fmt"
	"time"

	"github.com/compozy/foodtour/engine/credential"
	"github.com/compozy/foodtour/engine/remote"
	"github.com/compozy/foodtour/engine/tour"
)

// Process exit codes.
const (
	ExitOK             = 0
	ExitUnexpected     = 1
	ExitInvalidInput   = 2
	ExitWorkflowFailed = 3
	ExitTimedOut       = 4
	ExitUnreachable    = 5
	ExitServiceError   = 6
)

// CliError represents a CLI-specific error with enhanced context
type CliError struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Details   string         `json:"details,omitempty"`
	Context   map[string]any `json:"context,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	ExitCode  int            `json:"-"`
	cause     error
}

func (e *CliError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *CliError) Unwrap() error {
	return e.cause
}

// NewCliError creates a new CLI error with context
func NewCliError(code, message string, details ...string) *CliError {
	err := &CliError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
		Context:   make(map[string]any),
		ExitCode:  ExitUnexpected,
	}
	if len(details) > 0 {
		err.Details = details[0]
	}
	return err
}

// WithContext adds context to the error
func (e *CliError) WithContext(key string, value any) *CliError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// WithCause records the underlying error and derives the exit code from it.
func (e *CliError) WithCause(err error) *CliError {
	e.cause = err
	e.ExitCode = ExitCode(err)
	return e
}

// WithExitCode overrides the process exit code.
func (e *CliError) WithExitCode(code int) *CliError {
	e.ExitCode = code
	return e
}

// ExitError carries an exit code for an error that was already reported to
// the user.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode maps an error to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	var cliErr *CliError
	if errors.As(err, &cliErr) && cliErr.ExitCode != ExitUnexpected {
		return cliErr.ExitCode
	}
	var stepErr *tour.StepError
	switch {
	case errors.Is(err, credential.ErrMissingCredential), errors.Is(err, tour.ErrDefinition):
		return ExitInvalidInput
	case errors.As(err, &stepErr), errors.Is(err, remote.ErrService):
		return ExitServiceError
	default:
		return ExitUnexpected
	}
}
