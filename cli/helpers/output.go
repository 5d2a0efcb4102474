package helpers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/compozy/foodtour/cli/tui/styles"
	"github.com/tidwall/pretty"
)

// FormatterMetadata is attached to every JSON document.
type FormatterMetadata struct {
	Timestamp time.Time `json:"timestamp"`
	Command   string    `json:"command,omitempty"`
	ExitCode  int       `json:"exit_code"`
}

// JSONFormatter wraps command results in a stable envelope.
type JSONFormatter struct {
	indent bool
}

func NewJSONFormatter(indent bool) *JSONFormatter {
	return &JSONFormatter{indent: indent}
}

type successEnvelope struct {
	Data     any                `json:"data"`
	Metadata *FormatterMetadata `json:"metadata,omitempty"`
}

// FormatSuccess renders data with its metadata.
func (f *JSONFormatter) FormatSuccess(data any, meta *FormatterMetadata) (string, error) {
	raw, err := json.Marshal(successEnvelope{Data: data, Metadata: meta})
	if err != nil {
		return "", fmt.Errorf("failed to marshal output: %w", err)
	}
	if f.indent {
		raw = pretty.Pretty(raw)
	}
	return strings.TrimSuffix(string(raw), "\n"), nil
}

// FormatError formats errors based on output mode
func FormatError(err error, mode Mode) string {
	if err == nil {
		return ""
	}
	switch mode {
	case ModeJSON:
		return formatErrorJSON(err)
	case ModeTUI:
		return formatErrorTUI(err)
	default:
		return err.Error()
	}
}

func extractErrorInfo(err error) (code, message, details string, errCtx map[string]any) {
	var cliErr *CliError
	if errors.As(err, &cliErr) {
		return cliErr.Code, cliErr.Message, cliErr.Details, cliErr.Context
	}
	return "", err.Error(), "", nil
}

// formatErrorJSON formats errors for JSON output
func formatErrorJSON(err error) string {
	code, message, details, errCtx := extractErrorInfo(err)
	body := map[string]any{
		"error":     message,
		"details":   details,
		"exit_code": ExitCode(err),
	}
	if code != "" {
		body["code"] = code
	}
	if len(errCtx) > 0 {
		body["context"] = errCtx
	}
	raw, mErr := json.Marshal(body)
	if mErr != nil {
		return `{"error": "JSON marshaling failed", "details": ""}`
	}
	return strings.TrimSuffix(string(pretty.Pretty(raw)), "\n")
}

// formatErrorTUI formats errors for TUI output with colors
func formatErrorTUI(err error) string {
	_, message, details, _ := extractErrorInfo(err)
	result := "✗ " + styles.ErrorStyle.Render(message)
	if details != "" {
		result += "\n" + styles.MutedStyle.Render("Details: "+details)
	}
	return result
}

// OutputError writes err to w in the format of mode.
func OutputError(w io.Writer, err error, mode Mode) {
	if err == nil {
		return
	}
	if w == nil {
		w = os.Stderr
	}
	fmt.Fprintln(w, FormatError(err, mode))
}
