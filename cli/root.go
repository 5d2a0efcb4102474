package cli

import (
	"context"
	"errors"
	"io"

	"github.com/compozy/foodtour/cli/cmd"
	configcmd "github.com/compozy/foodtour/cli/cmd/config"
	"github.com/compozy/foodtour/cli/cmd/plan"
	"github.com/compozy/foodtour/cli/cmd/watch"
	"github.com/compozy/foodtour/cli/helpers"
	"github.com/compozy/foodtour/pkg/config"
	"github.com/compozy/foodtour/pkg/logger"
	"github.com/compozy/foodtour/pkg/version"
	"github.com/spf13/cobra"
)

const defaultConfigFile = "foodtour.yaml"

func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "foodtour",
		Short:         "Plan foodie tours with a remote AI workflow",
		Version:       version.Get().String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cobraCmd *cobra.Command, _ []string) error {
			if err := SetupGlobalConfig(cobraCmd); err != nil {
				return cmd.HandleCommonErrors(cobraCmd, err, helpers.DetectMode(cobraCmd))
			}
			return nil
		},
	}
	addGlobalFlags(root)
	root.AddCommand(
		plan.NewPlanCommand(),
		watch.NewWatchCommand(),
		configcmd.NewConfigCommand(),
	)
	return root
}

func addGlobalFlags(root *cobra.Command) {
	d := config.Default()
	flags := root.PersistentFlags()
	flags.String("config", defaultConfigFile, "Path to the YAML configuration file")
	flags.String("env-file", "", "Path to a .env file (default: .env in the working directory)")
	flags.String("format", d.CLI.Format, "Output format: auto, json or tui")
	flags.String("log-level", d.Runtime.LogLevel, "Log level: debug, info, warn, error or disabled")
	flags.Bool("log-json", d.Runtime.LogJSON, "Write logs as JSON")
	flags.Bool("log-source", d.Runtime.LogSource, "Include source locations in logs")
	flags.String("base-url", d.Julep.BaseURL, "Workflow service base URL")
	flags.String("api-key-env", d.Julep.APIKeyEnv, "Environment variable holding the API key")
	flags.Duration("timeout", d.Julep.Timeout, "Per-request timeout")
	flags.Int("retry-count", d.Julep.RetryCount, "Retries for transient request failures")
	flags.Int("max-attempts", d.Poll.MaxAttempts, "Maximum number of status queries")
	flags.Duration("interval", d.Poll.Interval, "Wait between status queries")
	flags.String("output-dir", d.Artifact.Dir, "Directory for result files")
	flags.String("guide-field", d.Artifact.GuideField, "Output field holding the guide")
}

// SetupGlobalConfig loads .env, then the configuration from defaults, YAML,
// environment and changed flags, and attaches it and the logger to the
// command context.
func SetupGlobalConfig(cobraCmd *cobra.Command) error {
	ctx := cobraCmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	flags := cobraCmd.Flags()
	envFile, err := flags.GetString("env-file")
	if err != nil {
		return err
	}
	if err := config.LoadDotEnv(envFile, flags.Changed("env-file")); err != nil {
		return helpers.NewCliError("INVALID_ENV_FILE", "failed to load env file", err.Error()).
			WithExitCode(helpers.ExitInvalidInput)
	}
	cfgFile, err := flags.GetString("config")
	if err != nil {
		return err
	}
	loader, err := config.NewLoader()
	if err != nil {
		return err
	}
	cfg, err := loader.Load(
		ctx,
		config.NewYAMLProvider(cfgFile, flags.Changed("config")),
		config.NewEnvProvider(),
		config.NewCLIProvider(helpers.ChangedFlags(cobraCmd)),
	)
	if err != nil {
		return helpers.NewCliError("INVALID_CONFIG", "invalid configuration", err.Error()).
			WithExitCode(helpers.ExitInvalidInput)
	}
	log := logger.SetupLogger(cfg.Runtime.LogLevel, cfg.Runtime.LogJSON, cfg.Runtime.LogSource)
	ctx = logger.ContextWithLogger(ctx, log)
	ctx = config.ContextWithConfig(ctx, cfg)
	ctx = config.ContextWithSources(ctx, loader.Sources())
	cobraCmd.SetContext(ctx)
	log.Debug("configuration loaded", "config_file", cfgFile)
	return nil
}

// Execute runs the CLI and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := RootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return helpers.ExitOK
	}
	var exitErr *helpers.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	// Anything else comes from cobra itself: unknown flags, wrong arguments.
	helpers.OutputError(stderr, err, helpers.ModeTUI)
	return helpers.ExitInvalidInput
}
