package config

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/compozy/foodtour/cli/cmd"
	"github.com/compozy/foodtour/cli/helpers"
	"github.com/compozy/foodtour/cli/tui/styles"
	"github.com/compozy/foodtour/engine/tour"
	"github.com/compozy/foodtour/pkg/config"
	"github.com/compozy/foodtour/pkg/logger"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// NewConfigCommand creates the config command using the unified command pattern
func NewConfigCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "config",
		Short: "Configuration management and diagnostics",
	}
	c.AddCommand(
		NewConfigShowCommand(),
		NewConfigValidateCommand(),
		NewConfigSchemaCommand(),
	)
	return c
}

// NewConfigShowCommand creates the config show subcommand
func NewConfigShowCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration and where each value came from",
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			return cmd.ExecuteCommand(cobraCmd, cmd.ExecutorOptions{}, cmd.ModeHandlers{
				JSON: handleConfigShowJSON,
				TUI:  handleConfigShowTUI,
			}, args)
		},
	}
	return c
}

type configEntry struct {
	Key    string            `json:"key"`
	Value  any               `json:"value"`
	Source config.SourceType `json:"source"`
	EnvVar string            `json:"env_var,omitempty"`
}

func collectEntries(ctx context.Context) ([]configEntry, error) {
	flat, err := config.Flatten(config.FromContext(ctx))
	if err != nil {
		return nil, err
	}
	sources := config.SourcesFromContext(ctx)
	entries := make([]configEntry, 0, len(flat))
	for key, value := range flat {
		source, ok := sources[key]
		if !ok {
			source = config.SourceDefault
		}
		entries = append(entries, configEntry{
			Key:    key,
			Value:  value,
			Source: source,
			EnvVar: config.GetEnvVarForConfigPath(key),
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries, nil
}

func handleConfigShowJSON(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, _ []string) error {
	logger.FromContext(ctx).Debug("executing config show command in JSON mode")
	entries, err := collectEntries(ctx)
	if err != nil {
		return err
	}
	out, err := helpers.NewJSONFormatter(true).FormatSuccess(entries, &helpers.FormatterMetadata{
		Timestamp: time.Now(),
		Command:   cobraCmd.CommandPath(),
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(executor.Out(), out)
	return nil
}

func handleConfigShowTUI(ctx context.Context, _ *cobra.Command, executor *cmd.CommandExecutor, _ []string) error {
	logger.FromContext(ctx).Debug("executing config show command in TUI mode")
	entries, err := collectEntries(ctx)
	if err != nil {
		return err
	}
	return writeTable(executor.Out(), entries)
}

func writeTable(out io.Writer, entries []configEntry) error {
	fmt.Fprintln(out, styles.TitleStyle.Render("Effective configuration"))
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tVALUE\tSOURCE\tENV")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Key, formatValue(e.Value), e.Source, e.EnvVar)
	}
	return w.Flush()
}

func formatValue(v any) string {
	switch val := v.(type) {
	case []string:
		return strings.Join(val, ",")
	case time.Duration:
		return val.String()
	default:
		return fmt.Sprintf("%v", val)
	}
}

// NewConfigValidateCommand creates the config validate subcommand
func NewConfigValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration and the task definition file",
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			return cmd.ExecuteCommand(cobraCmd, cmd.ExecutorOptions{}, cmd.ModeHandlers{
				JSON: handleConfigValidateJSON,
				TUI:  handleConfigValidateTUI,
			}, args)
		},
	}
}

type validation struct {
	Valid          bool   `json:"valid"`
	DefinitionFile string `json:"definition_file"`
	TaskName       string `json:"task_name,omitempty"`
}

// validate checks what loading the configuration could not: the task file.
// The configuration itself was validated before the command ran.
func validate(ctx context.Context) (*validation, error) {
	cfg := config.FromContext(ctx)
	def, err := tour.LoadDefinition(afero.NewOsFs(), cfg.Task.DefinitionFile)
	if err != nil {
		return nil, helpers.NewCliError("INVALID_TASK", "task definition is invalid", err.Error()).WithCause(err)
	}
	name, _ := def["name"].(string)
	return &validation{Valid: true, DefinitionFile: cfg.Task.DefinitionFile, TaskName: name}, nil
}

func handleConfigValidateJSON(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, _ []string) error {
	result, err := validate(ctx)
	if err != nil {
		return err
	}
	out, err := helpers.NewJSONFormatter(true).FormatSuccess(result, &helpers.FormatterMetadata{
		Timestamp: time.Now(),
		Command:   cobraCmd.CommandPath(),
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(executor.Out(), out)
	return nil
}

func handleConfigValidateTUI(ctx context.Context, _ *cobra.Command, executor *cmd.CommandExecutor, _ []string) error {
	result, err := validate(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(executor.Out(), "%s Configuration is valid\n", styles.SuccessStyle.Render("✓"))
	fmt.Fprintf(executor.Out(), "%s%s\n", styles.LabelStyle.Render("Task definition"), result.DefinitionFile)
	if result.TaskName != "" {
		fmt.Fprintf(executor.Out(), "%s%s\n", styles.LabelStyle.Render("Task name"), result.TaskName)
	}
	return nil
}

// NewConfigSchemaCommand creates the config schema subcommand
func NewConfigSchemaCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema of the configuration file",
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			return cmd.ExecuteCommand(cobraCmd, cmd.ExecutorOptions{}, cmd.ModeHandlers{
				JSON: handleConfigSchema,
				TUI:  handleConfigSchema,
			}, args)
		},
	}
	c.Flags().StringP("output", "o", "", "Write the schema to this file instead of stdout")
	return c
}

func handleConfigSchema(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, _ []string) error {
	schema, err := config.JSONSchema()
	if err != nil {
		return err
	}
	path, err := cobraCmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	if path == "" {
		fmt.Fprintln(executor.Out(), string(schema))
		return nil
	}
	if err := afero.WriteFile(afero.NewOsFs(), path, append(schema, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write schema to %s: %w", path, err)
	}
	logger.FromContext(ctx).Info("schema written", "file", path)
	return nil
}
