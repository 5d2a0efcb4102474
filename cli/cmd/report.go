package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/compozy/foodtour/cli/helpers"
	"github.com/compozy/foodtour/cli/tui/styles"
	"github.com/compozy/foodtour/engine/artifact"
	"github.com/compozy/foodtour/engine/execution"
	"github.com/compozy/foodtour/engine/remote"
	"github.com/compozy/foodtour/engine/tour"
)

// RunSummary is the machine readable view of a tour.Report.
type RunSummary struct {
	RunID        string                 `json:"run_id"`
	AgentID      remote.AgentID         `json:"agent_id,omitempty"`
	TaskID       remote.TaskID          `json:"task_id,omitempty"`
	ExecutionID  remote.ExecutionID     `json:"execution_id"`
	Input        *tour.Input            `json:"input,omitempty"`
	State        execution.State        `json:"state"`
	Status       remote.ExecutionStatus `json:"status,omitempty"`
	Attempts     int                    `json:"attempts"`
	Error        string                 `json:"error,omitempty"`
	Result       *artifact.Materialized `json:"result,omitempty"`
	PersistError string                 `json:"persist_error,omitempty"`
}

func NewRunSummary(report *tour.Report) *RunSummary {
	s := &RunSummary{
		RunID:       report.RunID,
		AgentID:     report.AgentID,
		TaskID:      report.TaskID,
		ExecutionID: report.ExecutionID,
		Input:       report.Input,
		Result:      report.Result,
	}
	if o := report.Outcome; o != nil {
		s.State = o.State
		s.Status = o.LastStatus()
		s.Attempts = o.Attempts
		s.Error = o.ErrorDetail()
		if s.Error == "" && o.State == execution.StateUnreachable && o.Err != nil {
			s.Error = o.Err.Error()
		}
	}
	if report.Result != nil && report.Result.PersistErr != nil {
		s.PersistError = report.Result.PersistErr.Error()
	}
	return s
}

// OutcomeExitCode maps a finished run to the process exit code. A timed out
// run whose final observation is terminal takes that observation's code.
func OutcomeExitCode(o *execution.Outcome) int {
	if o == nil {
		return helpers.ExitUnexpected
	}
	switch o.State {
	case execution.StateSucceeded:
		return helpers.ExitOK
	case execution.StateFailed:
		return helpers.ExitWorkflowFailed
	case execution.StateUnreachable:
		return helpers.ExitUnreachable
	case execution.StateTimedOut:
		switch o.LastStatus() {
		case remote.StatusSucceeded:
			return helpers.ExitOK
		case remote.StatusFailed:
			return helpers.ExitWorkflowFailed
		}
		return helpers.ExitTimedOut
	default:
		return helpers.ExitUnexpected
	}
}

// TUIProgress prints styled progress lines as the run advances.
type TUIProgress struct {
	w io.Writer
}

func NewTUIProgress(w io.Writer) *TUIProgress {
	return &TUIProgress{w: w}
}

func (p *TUIProgress) StepCompleted(step tour.Step, id string) {
	var label string
	switch step {
	case tour.StepCreateAgent:
		label = "Agent created with ID"
	case tour.StepCreateTask:
		label = "Task created with ID"
	case tour.StepStartExecution:
		label = "Execution started with ID"
	default:
		label = string(step)
	}
	fmt.Fprintf(p.w, "%s %s: %s\n", styles.SuccessStyle.Render("✓"), label, id)
	if step == tour.StepStartExecution {
		fmt.Fprintln(p.w, styles.MutedStyle.Render("Processing your foodie tour..."))
	}
}

func (p *TUIProgress) Starting(_ string, in tour.Input) {
	fmt.Fprintln(p.w, styles.TitleStyle.Render("Starting foodie tour planning for: "+strings.Join(in.Cities, ", ")))
	fmt.Fprintf(p.w, "%s%s\n", styles.LabelStyle.Render("Dietary preferences"), strings.Join(in.DietaryPreferences, ", "))
	fmt.Fprintf(p.w, "%s%s\n", styles.LabelStyle.Render("Budget level"), in.BudgetLevel)
	fmt.Fprintln(p.w, styles.Separator)
}

func (p *TUIProgress) Progress(a execution.PollAttempt) {
	switch {
	case a.Err != nil:
		fmt.Fprintf(p.w, "%s\n", styles.WarningStyle.Render("! Error checking status: "+a.Err.Error()))
	case a.Ordinal <= execution.FullReportAttempts:
		fmt.Fprintf(p.w, "Status: %s\n", renderStatus(a.Status))
	default:
		fmt.Fprintf(p.w, "Status: %s... (attempt %d/%d)\n", renderStatus(a.Status), a.Ordinal, a.Max)
	}
}

func (p *TUIProgress) Finished(o *execution.Outcome) {
	switch o.State {
	case execution.StateSucceeded:
		fmt.Fprintln(p.w, styles.SuccessStyle.Render("Execution completed successfully!"))
	case execution.StateFailed:
		detail := o.ErrorDetail()
		if detail == "" {
			detail = "Unknown error"
		}
		fmt.Fprintln(p.w, styles.ErrorStyle.Render("✗ Execution failed: "+detail))
	case execution.StateTimedOut:
		fmt.Fprintln(p.w, styles.WarningStyle.Render("Execution is taking longer than expected."))
	case execution.StateUnreachable:
		fmt.Fprintln(p.w, styles.WarningStyle.Render("Execution is taking longer than expected."))
		fmt.Fprintln(p.w, styles.ErrorStyle.Render("✗ Could not retrieve results"))
	}
}

func renderStatus(s remote.ExecutionStatus) string {
	switch s {
	case remote.StatusSucceeded:
		return styles.SuccessStyle.Render(s.String())
	case remote.StatusFailed:
		return styles.ErrorStyle.Render(s.String())
	case remote.StatusRunning:
		return styles.InfoStyle.Render(s.String())
	default:
		return s.String()
	}
}

// RenderResult prints the materialized result of a run.
func RenderResult(w io.Writer, report *tour.Report) {
	m := report.Result
	if m == nil {
		return
	}
	fmt.Fprintln(w, styles.Separator)
	fmt.Fprintln(w, styles.TitleStyle.Render("Foodie tour results"))
	fmt.Fprintln(w, styles.Separator)
	switch m.Kind {
	case artifact.KindGuide:
		fmt.Fprintln(w, styles.TitleStyle.Render("YOUR COMPLETE FOODIE TOUR GUIDE:"))
		fmt.Fprintln(w, styles.GuideStyle.Render(m.Guide))
		if m.Persisted() {
			fmt.Fprintf(w, "%s Complete results saved to '%s'\n", styles.SuccessStyle.Render("✓"), m.ArtifactPath)
		}
		if m.PersistErr != nil {
			fmt.Fprintln(w, styles.WarningStyle.Render("! Failed to save results: "+m.PersistErr.Error()))
		}
	case artifact.KindPartial:
		fmt.Fprintln(w, styles.WarningStyle.Render("Partial results received:"))
		fmt.Fprintln(w, m.Guide)
	case artifact.KindNoOutput:
		fmt.Fprintln(w, styles.ErrorStyle.Render("✗ No output received"))
		fmt.Fprintf(w, "Status: %s\n", renderStatus(m.Status))
	}
}
