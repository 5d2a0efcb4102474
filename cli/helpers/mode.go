package helpers

import (
	"os"

	"github.com/compozy/foodtour/pkg/config"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// isRunningInCI checks if we're running in a CI/CD environment
func isRunningInCI() bool {
	if os.Getenv("CI") != "" {
		return true
	}
	ciVars := []string{
		"GITHUB_ACTIONS",
		"GITLAB_CI",
		"CIRCLECI",
		"BUILDKITE",
		"JENKINS_URL",
		"TF_BUILD", // Azure DevOps
		"CONTINUOUS_INTEGRATION",
	}
	for _, v := range ciVars {
		if os.Getenv(v) != "" {
			return true
		}
	}
	return false
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// isInteractiveEnvironment reports whether styled output will reach a person
func isInteractiveEnvironment() bool {
	if isRunningInCI() {
		return false
	}
	if !isTerminal(os.Stdout) {
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	term := os.Getenv("TERM")
	return term != "dumb" && term != ""
}

// ModeForFormat resolves an explicit format; ok is false for "auto".
func ModeForFormat(format string) (mode Mode, ok bool) {
	switch OutputFormat(format) {
	case OutputFormatJSON:
		return ModeJSON, true
	case OutputFormatTUI:
		return ModeTUI, true
	default:
		return ModeJSON, false
	}
}

// DetectMode picks the output mode from --format, falling back to terminal
// detection.
func DetectMode(cmd *cobra.Command) Mode {
	cfg := config.FromContext(cmd.Context())
	if mode, ok := ModeForFormat(cfg.CLI.Format); ok {
		return mode
	}
	if isInteractiveEnvironment() {
		return ModeTUI
	}
	return ModeJSON
}
