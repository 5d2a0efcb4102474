package plan

import (
	"context"

	"github.com/compozy/foodtour/cli/cmd"
	"github.com/compozy/foodtour/engine/tour"
	"github.com/compozy/foodtour/pkg/config"
	"github.com/spf13/cobra"
)

// NewPlanCommand creates the command that plans a new foodie tour.
func NewPlanCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "plan",
		Short: "Plan a foodie tour",
		Long: `Create the planner agent and task, start an execution for the given cities
and wait for the guide. The full result is saved as a timestamped JSON file.`,
		Example: `  foodtour plan
  foodtour plan --city Paris --city Rome --diet none --budget upscale`,
		Args: cobra.NoArgs,
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			return cmd.ExecuteCommand(cobraCmd, cmd.ExecutorOptions{RequireClient: true}, cmd.ModeHandlers{
				JSON: runPlan,
				TUI:  runPlan,
			}, args)
		},
	}
	c.Flags().StringSlice("city", nil, "City to include in the tour (repeatable)")
	c.Flags().StringSlice("diet", nil, "Dietary preference (repeatable)")
	c.Flags().String("budget", "", "Budget level, e.g. street-food, mid-range, upscale")
	c.Flags().String("agent-name", "", "Name of the agent to create")
	c.Flags().String("model", "", "Model used by the agent")
	c.Flags().String("task-file", "", "Path to the YAML task definition")
	return c
}

func runPlan(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, _ []string) error {
	planner, err := cmd.BuildPlanner(cobraCmd, executor, cmd.PlannerOptions{
		LoadDefinition: true,
		Progress:       cmd.ProgressFor(executor),
	})
	if err != nil {
		return err
	}
	// Input comes from configuration, which already merged the flags.
	cfg := config.FromContext(ctx)
	report, err := planner.Run(ctx, tour.Input{
		Cities:             cfg.Tour.Cities,
		DietaryPreferences: cfg.Tour.DietaryPreferences,
		BudgetLevel:        cfg.Tour.BudgetLevel,
	})
	if err != nil {
		return err
	}
	return cmd.EmitReport(cobraCmd, executor, report)
}
