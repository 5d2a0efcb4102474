package remote

import "encoding/json"

type (
	AgentID     string
	TaskID      string
	ExecutionID string
)

// ExecutionStatus is the status string reported by the service. The set is
// open-ended; only succeeded and failed are terminal.
type ExecutionStatus string

const (
	StatusQueued        ExecutionStatus = "queued"
	StatusStarting      ExecutionStatus = "starting"
	StatusRunning       ExecutionStatus = "running"
	StatusAwaitingInput ExecutionStatus = "awaiting_input"
	StatusSucceeded     ExecutionStatus = "succeeded"
	StatusFailed        ExecutionStatus = "failed"
)

func (s ExecutionStatus) String() string {
	return string(s)
}

// IsTerminal reports whether no further progress will occur.
func (s ExecutionStatus) IsTerminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// AgentSpec is the payload used to provision an agent.
type AgentSpec struct {
	Name  string `json:"name"`
	About string `json:"about,omitempty"`
	Model string `json:"model"`
}

// TaskDefinition is the declarative task document, forwarded verbatim.
type TaskDefinition map[string]any

// ExecutionResult is a single observation of an execution.
type ExecutionResult struct {
	ID     ExecutionID     `json:"id"`
	Status ExecutionStatus `json:"status"`
	Output json.RawMessage `json:"output,omitempty"`
	Error  string          `json:"error,omitempty"`
}

type resourceRef struct {
	ID string `json:"id"`
}

type executionRequest struct {
	Input any `json:"input"`
}
