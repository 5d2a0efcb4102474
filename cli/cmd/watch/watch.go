package watch

import (
	"context"

	"github.com/compozy/foodtour/cli/cmd"
	"github.com/compozy/foodtour/engine/remote"
	"github.com/spf13/cobra"
)

// NewWatchCommand creates the command that resumes polling an execution.
func NewWatchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch <execution-id>",
		Short: "Wait for an already started execution and save its guide",
		Args:  cobra.ExactArgs(1),
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			return cmd.ExecuteCommand(cobraCmd, cmd.ExecutorOptions{RequireClient: true}, cmd.ModeHandlers{
				JSON: runWatch,
				TUI:  runWatch,
			}, args)
		},
	}
}

func runWatch(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, args []string) error {
	planner, err := cmd.BuildPlanner(cobraCmd, executor, cmd.PlannerOptions{
		Progress: cmd.ProgressFor(executor),
	})
	if err != nil {
		return err
	}
	report, err := planner.Watch(ctx, remote.ExecutionID(args[0]))
	if err != nil {
		return err
	}
	return cmd.EmitReport(cobraCmd, executor, report)
}
