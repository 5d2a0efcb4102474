package cmd

import (
	"bytes"
	"errors"
	"testing"

	"github.com/compozy/foodtour/cli/helpers"
	"github.com/compozy/foodtour/engine/artifact"
	"github.com/compozy/foodtour/engine/execution"
	"github.com/compozy/foodtour/engine/remote"
	"github.com/compozy/foodtour/engine/tour"
	"github.com/stretchr/testify/assert"
)

func outcome(state execution.State, status remote.ExecutionStatus) *execution.Outcome {
	o := &execution.Outcome{ExecutionID: "exec-1", State: state, Attempts: 3}
	if status != "" {
		o.Result = &remote.ExecutionResult{ID: "exec-1", Status: status}
	}
	return o
}

func TestOutcomeExitCode(t *testing.T) {
	cases := []struct {
		name string
		o    *execution.Outcome
		want int
	}{
		{"success", outcome(execution.StateSucceeded, remote.StatusSucceeded), helpers.ExitOK},
		{"failure", outcome(execution.StateFailed, remote.StatusFailed), helpers.ExitWorkflowFailed},
		{"timeout", outcome(execution.StateTimedOut, remote.StatusRunning), helpers.ExitTimedOut},
		{"timeout that finished successfully", outcome(execution.StateTimedOut, remote.StatusSucceeded), helpers.ExitOK},
		{"timeout that finished with a failure", outcome(execution.StateTimedOut, remote.StatusFailed), helpers.ExitWorkflowFailed},
		{"unreachable", outcome(execution.StateUnreachable, ""), helpers.ExitUnreachable},
		{"missing outcome", nil, helpers.ExitUnexpected},
	}
	for _, tc := range cases {
		t.Run("Should map "+tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, OutcomeExitCode(tc.o))
		})
	}
}

func TestNewRunSummary(t *testing.T) {
	t.Run("Should flatten the report", func(t *testing.T) {
		o := outcome(execution.StateFailed, remote.StatusFailed)
		o.Result.Error = "step crashed"
		report := &tour.Report{RunID: "run-1", AgentID: "a", TaskID: "t", ExecutionID: "exec-1", Outcome: o}

		s := NewRunSummary(report)

		assert.Equal(t, "run-1", s.RunID)
		assert.Equal(t, execution.StateFailed, s.State)
		assert.Equal(t, remote.StatusFailed, s.Status)
		assert.Equal(t, 3, s.Attempts)
		assert.Equal(t, "step crashed", s.Error)
	})

	t.Run("Should use the query error for an unreachable execution", func(t *testing.T) {
		o := outcome(execution.StateUnreachable, "")
		o.Err = errors.New("connection refused")

		s := NewRunSummary(&tour.Report{Outcome: o})

		assert.Equal(t, "connection refused", s.Error)
	})

	t.Run("Should surface a persistence failure", func(t *testing.T) {
		report := &tour.Report{
			Outcome: outcome(execution.StateSucceeded, remote.StatusSucceeded),
			Result:  &artifact.Materialized{Kind: artifact.KindGuide, PersistErr: errors.New("read-only file system")},
		}

		s := NewRunSummary(report)

		assert.Equal(t, "read-only file system", s.PersistError)
	})
}

func TestTUIProgress(t *testing.T) {
	t.Run("Should print step lines and the banner", func(t *testing.T) {
		var buf bytes.Buffer
		p := NewTUIProgress(&buf)

		p.StepCompleted(tour.StepCreateAgent, "agent-1")
		p.Starting("run-1", tour.Input{Cities: []string{"Tokyo", "Istanbul"}, DietaryPreferences: []string{"vegan"}, BudgetLevel: "upscale"})
		p.StepCompleted(tour.StepStartExecution, "exec-1")

		out := buf.String()
		assert.Contains(t, out, "Agent created with ID: agent-1")
		assert.Contains(t, out, "Tokyo, Istanbul")
		assert.Contains(t, out, "vegan")
		assert.Contains(t, out, "upscale")
		assert.Contains(t, out, "Execution started with ID: exec-1")
		assert.Contains(t, out, "Processing your foodie tour...")
	})

	t.Run("Should add the attempt counter after the first attempts", func(t *testing.T) {
		var buf bytes.Buffer
		p := NewTUIProgress(&buf)

		p.Progress(execution.PollAttempt{Ordinal: 2, Max: 20, Status: remote.StatusQueued})
		p.Progress(execution.PollAttempt{Ordinal: 9, Max: 20, Status: remote.StatusQueued})

		out := buf.String()
		assert.Contains(t, out, "Status: queued\n")
		assert.Contains(t, out, "(attempt 9/20)")
		assert.NotContains(t, out, "(attempt 2/20)")
	})

	t.Run("Should report query errors", func(t *testing.T) {
		var buf bytes.Buffer
		NewTUIProgress(&buf).Progress(execution.PollAttempt{Ordinal: 1, Max: 20, Err: errors.New("timeout")})
		assert.Contains(t, buf.String(), "Error checking status: timeout")
	})

	t.Run("Should describe each final state", func(t *testing.T) {
		cases := map[execution.State]string{
			execution.StateSucceeded:   "Execution completed successfully!",
			execution.StateFailed:      "Execution failed: Unknown error",
			execution.StateTimedOut:    "taking longer than expected",
			execution.StateUnreachable: "Could not retrieve results",
		}
		for state, want := range cases {
			var buf bytes.Buffer
			NewTUIProgress(&buf).Finished(outcome(state, ""))
			assert.Contains(t, buf.String(), want, state)
		}
	})
}

func TestRenderResult(t *testing.T) {
	t.Run("Should print the guide and where it was saved", func(t *testing.T) {
		var buf bytes.Buffer
		RenderResult(&buf, &tour.Report{Result: &artifact.Materialized{
			Kind:         artifact.KindGuide,
			Guide:        "Day 1: ramen",
			ArtifactPath: "foodie_tour_results_1.json",
		}})

		out := buf.String()
		assert.Contains(t, out, "YOUR COMPLETE FOODIE TOUR GUIDE:")
		assert.Contains(t, out, "Day 1: ramen")
		assert.Contains(t, out, "saved to 'foodie_tour_results_1.json'")
	})

	t.Run("Should warn when saving failed", func(t *testing.T) {
		var buf bytes.Buffer
		RenderResult(&buf, &tour.Report{Result: &artifact.Materialized{
			Kind:       artifact.KindGuide,
			Guide:      "Day 1",
			PersistErr: errors.New("disk full"),
		}})

		assert.Contains(t, buf.String(), "Failed to save results: disk full")
		assert.NotContains(t, buf.String(), "saved to")
	})

	t.Run("Should print partial results", func(t *testing.T) {
		var buf bytes.Buffer
		RenderResult(&buf, &tour.Report{Result: &artifact.Materialized{Kind: artifact.KindPartial, Guide: `{"draft": "x"}`}})

		assert.Contains(t, buf.String(), "Partial results received:")
		assert.Contains(t, buf.String(), `"draft"`)
	})

	t.Run("Should print the status when there is no output", func(t *testing.T) {
		var buf bytes.Buffer
		RenderResult(&buf, &tour.Report{Result: &artifact.Materialized{Kind: artifact.KindNoOutput, Status: remote.StatusRunning}})

		assert.Contains(t, buf.String(), "No output received")
		assert.Contains(t, buf.String(), "running")
	})

	t.Run("Should print nothing without a result", func(t *testing.T) {
		var buf bytes.Buffer
		RenderResult(&buf, &tour.Report{})
		assert.Empty(t, buf.String())
	})
}
