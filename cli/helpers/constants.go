package helpers

// Mode is the output mode of a command.
type Mode string

const (
	// ModeTUI renders styled, human oriented progress and results.
	ModeTUI Mode = "tui"
	// ModeJSON writes a single machine readable document to stdout.
	ModeJSON Mode = "json"
)

// OutputFormat is the user facing value of --format.
type OutputFormat string

const (
	OutputFormatAuto OutputFormat = "auto"
	OutputFormatJSON OutputFormat = "json"
	OutputFormatTUI  OutputFormat = "tui"
)
