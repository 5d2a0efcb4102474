package cmd

import (
	"fmt"
	"time"

	"github.com/compozy/foodtour/cli/helpers"
	"github.com/compozy/foodtour/engine/artifact"
	"github.com/compozy/foodtour/engine/execution"
	"github.com/compozy/foodtour/engine/remote"
	"github.com/compozy/foodtour/engine/tour"
	"github.com/compozy/foodtour/pkg/config"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// PlannerOptions controls how BuildPlanner wires a tour.Planner.
type PlannerOptions struct {
	Fs             afero.Fs
	LoadDefinition bool
	Progress       tour.Progress
}

// BuildPlanner wires a planner from the configuration on the command context
// and the executor's service client.
func BuildPlanner(cmd *cobra.Command, executor *CommandExecutor, opts PlannerOptions) (*tour.Planner, error) {
	cfg := config.FromContext(cmd.Context())
	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	var def remote.TaskDefinition
	if opts.LoadDefinition {
		var err error
		def, err = tour.LoadDefinition(fs, cfg.Task.DefinitionFile)
		if err != nil {
			return nil, helpers.NewCliError("INVALID_TASK", "failed to load task definition", err.Error()).
				WithContext("path", cfg.Task.DefinitionFile).
				WithCause(err)
		}
	}
	return tour.NewPlanner(executor.Client(), tour.Options{
		Agent: remote.AgentSpec{
			Name:  cfg.Agent.Name,
			About: cfg.Agent.About,
			Model: cfg.Agent.Model,
		},
		Definition: def,
		Defaults: tour.Input{
			Cities:             cfg.Tour.Cities,
			DietaryPreferences: cfg.Tour.DietaryPreferences,
			BudgetLevel:        cfg.Tour.BudgetLevel,
		},
		Policy: execution.Policy{
			MaxAttempts: cfg.Poll.MaxAttempts,
			Interval:    cfg.Poll.Interval,
		},
		Materializer: artifact.New(artifact.Options{
			Fs:         fs,
			Dir:        cfg.Artifact.Dir,
			Prefix:     cfg.Artifact.Prefix,
			GuideField: cfg.Artifact.GuideField,
		}),
		Progress: opts.Progress,
	})
}

// ProgressFor returns the progress sink for the executor's mode.
func ProgressFor(executor *CommandExecutor) tour.Progress {
	if executor.Mode() == helpers.ModeTUI {
		return NewTUIProgress(executor.Out())
	}
	return tour.NopProgress{}
}

// EmitReport writes the final report and converts the outcome to an exit
// code. The returned error is nil only for a zero exit code.
func EmitReport(cmd *cobra.Command, executor *CommandExecutor, report *tour.Report) error {
	code := OutcomeExitCode(report.Outcome)
	switch executor.Mode() {
	case helpers.ModeJSON:
		out, err := helpers.NewJSONFormatter(true).FormatSuccess(NewRunSummary(report), &helpers.FormatterMetadata{
			Timestamp: time.Now(),
			Command:   cmd.Name(),
			ExitCode:  code,
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(executor.Out(), out)
	default:
		RenderResult(executor.Out(), report)
	}
	if code != helpers.ExitOK {
		return &helpers.ExitError{Code: code}
	}
	return nil
}
