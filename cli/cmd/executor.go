package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/compozy/foodtour/cli/helpers"
	"github.com/compozy/foodtour/engine/credential"
	"github.com/compozy/foodtour/engine/remote"
	"github.com/compozy/foodtour/pkg/config"
	"github.com/compozy/foodtour/pkg/logger"
	"github.com/compozy/foodtour/pkg/version"
	"github.com/spf13/cobra"
)

// CommandExecutor handles common setup and execution patterns for CLI commands:
// credential resolution, client creation, mode detection and error handling.
type CommandExecutor struct {
	mode   helpers.Mode
	client *remote.Client
	out    io.Writer
	errOut io.Writer
}

// HandlerFunc defines the signature for command handlers.
type HandlerFunc func(ctx context.Context, cmd *cobra.Command, executor *CommandExecutor, args []string) error

// ModeHandlers contains handlers for different execution modes.
type ModeHandlers struct {
	JSON HandlerFunc
	TUI  HandlerFunc
}

// ExecutorOptions allows customization of the command executor
type ExecutorOptions struct {
	// RequireClient resolves the credential and builds the service client
	// before any handler runs.
	RequireClient bool
	// LookupEnv overrides os.LookupEnv for credential resolution.
	LookupEnv credential.LookupFunc
}

// NewCommandExecutor creates a new command executor with all necessary setup.
func NewCommandExecutor(cmd *cobra.Command, opts ExecutorOptions) (*CommandExecutor, error) {
	ctx := cmd.Context()
	log := logger.FromContext(ctx)
	mode := helpers.DetectMode(cmd)
	log.Debug("detected execution mode", "mode", mode)
	executor := &CommandExecutor{
		mode:   mode,
		out:    cmd.OutOrStdout(),
		errOut: cmd.ErrOrStderr(),
	}
	if !opts.RequireClient {
		return executor, nil
	}
	cfg := config.FromContext(ctx)
	lookup := opts.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	cred, err := credential.NewResolver(cfg.Julep.APIKeyEnv, lookup).Resolve(ctx)
	if err != nil {
		return executor, helpers.NewCliError(
			"MISSING_CREDENTIAL",
			fmt.Sprintf("%s not found in environment", cfg.Julep.APIKeyEnv),
			fmt.Sprintf("set your API key: export %s='your_api_key_here'", cfg.Julep.APIKeyEnv),
		).WithContext("env", cfg.Julep.APIKeyEnv).WithCause(err)
	}
	client, err := remote.NewClient(remote.Options{
		BaseURL:    cfg.Julep.BaseURL,
		Token:      cred.Value(),
		Timeout:    cfg.Julep.Timeout,
		RetryCount: cfg.Julep.RetryCount,
		UserAgent:  version.UserAgent(),
	})
	if err != nil {
		return executor, helpers.NewCliError("INVALID_CONFIG", "failed to create service client", err.Error()).
			WithExitCode(helpers.ExitInvalidInput)
	}
	executor.client = client
	return executor, nil
}

// Execute runs the appropriate handler based on the detected mode.
func (e *CommandExecutor) Execute(ctx context.Context, cmd *cobra.Command, handlers ModeHandlers, args []string) error {
	switch e.mode {
	case helpers.ModeJSON:
		if handlers.JSON == nil {
			return fmt.Errorf("JSON mode handler not implemented")
		}
		return handlers.JSON(ctx, cmd, e, args)
	case helpers.ModeTUI:
		if handlers.TUI == nil {
			return fmt.Errorf("TUI mode handler not implemented")
		}
		return handlers.TUI(ctx, cmd, e, args)
	default:
		return fmt.Errorf("unsupported mode: %s", e.mode)
	}
}

// Client returns the service client; nil unless RequireClient was set.
func (e *CommandExecutor) Client() *remote.Client {
	return e.client
}

// Mode returns the detected execution mode.
func (e *CommandExecutor) Mode() helpers.Mode {
	return e.mode
}

// Out is where command results are written.
func (e *CommandExecutor) Out() io.Writer {
	return e.out
}

// ExecuteCommand is a convenience function that combines executor creation and execution.
func ExecuteCommand(cmd *cobra.Command, opts ExecutorOptions, handlers ModeHandlers, args []string) error {
	executor, err := NewCommandExecutor(cmd, opts)
	if err != nil {
		return HandleCommonErrors(cmd, err, executor.Mode())
	}
	return HandleCommonErrors(cmd, executor.Execute(cmd.Context(), cmd, handlers, args), executor.Mode())
}

// HandleCommonErrors reports err once in the command's mode and returns an
// *helpers.ExitError carrying the exit code.
func HandleCommonErrors(cmd *cobra.Command, err error, mode helpers.Mode) error {
	if err == nil {
		return nil
	}
	var exitErr *helpers.ExitError
	if errors.As(err, &exitErr) {
		return err
	}
	if cliErr := categorizeError(err); cliErr != nil {
		err = cliErr
	}
	helpers.OutputError(cmd.ErrOrStderr(), err, mode)
	return &helpers.ExitError{Code: helpers.ExitCode(err), Err: err}
}

// categorizeError converts errors to structured CLI errors
func categorizeError(err error) *helpers.CliError {
	var cliErr *helpers.CliError
	if errors.As(err, &cliErr) {
		return nil
	}
	var svcErr *remote.ServiceError
	switch {
	case errors.Is(err, context.Canceled):
		return helpers.NewCliError("OPERATION_CANCELED", "Operation was canceled by user").WithCause(err)
	case errors.As(err, &svcErr):
		return helpers.NewCliError("SERVICE_ERROR", "Workflow service request failed", err.Error()).WithCause(err)
	default:
		return nil
	}
}
