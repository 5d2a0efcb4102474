package tour

import (
	"context"
	"fmt"
	"strings"

	"github.com/compozy/foodtour/engine/artifact"
	"github.com/compozy/foodtour/engine/core"
	"github.com/compozy/foodtour/engine/execution"
	"github.com/compozy/foodtour/engine/remote"
	"github.com/compozy/foodtour/pkg/logger"
	"github.com/google/uuid"
)

// Service is the subset of the remote client a run needs.
type Service interface {
	CreateAgent(ctx context.Context, spec remote.AgentSpec) (remote.AgentID, error)
	CreateTask(ctx context.Context, agentID remote.AgentID, def remote.TaskDefinition) (remote.TaskID, error)
	StartExecution(ctx context.Context, taskID remote.TaskID, input any) (remote.ExecutionID, error)
	execution.StatusFetcher
}

type Step string

const (
	StepCreateAgent    Step = "create agent"
	StepCreateTask     Step = "create task"
	StepStartExecution Step = "start execution"
)

// StepError is a fatal failure of one of the creation steps.
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Progress follows a run from creation to the final outcome.
type Progress interface {
	execution.Reporter
	StepCompleted(step Step, id string)
	Starting(runID string, in Input)
}

// NopProgress discards all progress.
type NopProgress struct {
	execution.NopReporter
}

func (NopProgress) StepCompleted(Step, string) {}
func (NopProgress) Starting(string, Input)     {}

type Options struct {
	Agent        remote.AgentSpec
	Definition   remote.TaskDefinition
	Defaults     Input
	Policy       execution.Policy
	Materializer *artifact.Materializer
	Progress     Progress
}

// Report summarizes a run.
type Report struct {
	RunID       string                 `json:"run_id"`
	AgentID     remote.AgentID         `json:"agent_id,omitempty"`
	TaskID      remote.TaskID          `json:"task_id,omitempty"`
	ExecutionID remote.ExecutionID     `json:"execution_id"`
	Input       *Input                 `json:"input,omitempty"`
	Outcome     *execution.Outcome     `json:"-"`
	Result      *artifact.Materialized `json:"result,omitempty"`
}

// Planner provisions the agent and task, starts the execution and drives it
// to an outcome.
type Planner struct {
	service      Service
	agent        remote.AgentSpec
	definition   remote.TaskDefinition
	defaults     Input
	controller   *execution.Controller
	materializer *artifact.Materializer
	progress     Progress
}

func NewPlanner(service Service, opts Options) (*Planner, error) {
	if service == nil {
		return nil, fmt.Errorf("remote service is required")
	}
	progress := opts.Progress
	if progress == nil {
		progress = NopProgress{}
	}
	controller, err := execution.NewController(service, opts.Policy, execution.WithReporter(progress))
	if err != nil {
		return nil, err
	}
	materializer := opts.Materializer
	if materializer == nil {
		materializer = artifact.New(artifact.Options{})
	}
	defaults := opts.Defaults
	if len(defaults.Cities) == 0 && len(defaults.DietaryPreferences) == 0 && defaults.BudgetLevel == "" {
		defaults = DefaultInput()
	}
	return &Planner{
		service:      service,
		agent:        opts.Agent,
		definition:   opts.Definition,
		defaults:     defaults,
		controller:   controller,
		materializer: materializer,
		progress:     progress,
	}, nil
}

// Run executes the full flow for in. Creation failures are returned as
// *StepError; everything after the execution has started ends in a Report.
func (p *Planner) Run(ctx context.Context, in Input) (*Report, error) {
	if len(p.definition) == 0 {
		return nil, fmt.Errorf("%w: no task definition loaded", ErrDefinition)
	}
	input, err := in.WithDefaults(p.defaults)
	if err != nil {
		return nil, err
	}
	report := &Report{RunID: uuid.NewString(), Input: &input}
	log := logger.FromContext(ctx).With("run_id", report.RunID)
	ctx = logger.ContextWithLogger(ctx, log)

	log.Info("creating agent", "name", p.agent.Name, "model", p.agent.Model)
	report.AgentID, err = p.service.CreateAgent(ctx, p.agent)
	if err != nil {
		return report, &StepError{Step: StepCreateAgent, Err: err}
	}
	p.progress.StepCompleted(StepCreateAgent, string(report.AgentID))

	def, err := core.CopyMap(p.definition)
	if err != nil {
		return report, err
	}
	report.TaskID, err = p.service.CreateTask(ctx, report.AgentID, def)
	if err != nil {
		return report, &StepError{Step: StepCreateTask, Err: err}
	}
	p.progress.StepCompleted(StepCreateTask, string(report.TaskID))

	p.progress.Starting(report.RunID, input)
	log.Info("starting foodie tour planning",
		"cities", strings.Join(input.Cities, ", "),
		"dietary_preferences", strings.Join(input.DietaryPreferences, ", "),
		"budget_level", input.BudgetLevel)
	report.ExecutionID, err = p.service.StartExecution(ctx, report.TaskID, input)
	if err != nil {
		return report, &StepError{Step: StepStartExecution, Err: err}
	}
	p.progress.StepCompleted(StepStartExecution, string(report.ExecutionID))

	return p.finish(ctx, report)
}

// Watch resumes an execution that was started elsewhere.
func (p *Planner) Watch(ctx context.Context, id remote.ExecutionID) (*Report, error) {
	if strings.TrimSpace(string(id)) == "" {
		return nil, fmt.Errorf("execution id is required")
	}
	report := &Report{RunID: uuid.NewString(), ExecutionID: id}
	ctx = logger.ContextWithLogger(ctx, logger.FromContext(ctx).With("run_id", report.RunID))
	return p.finish(ctx, report)
}

func (p *Planner) finish(ctx context.Context, report *Report) (*Report, error) {
	outcome, err := p.controller.Await(ctx, report.ExecutionID)
	if err != nil {
		return report, err
	}
	report.Outcome = outcome
	switch outcome.State {
	case execution.StateSucceeded, execution.StateTimedOut:
		report.Result = p.materializer.Materialize(ctx, outcome.Result)
	}
	return report, nil
}
