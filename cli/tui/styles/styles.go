package styles

import "github.com/charmbracelet/lipgloss"

var (
	ColorSuccess = lipgloss.Color("#22C55E")
	ColorError   = lipgloss.Color("#FF6B6B")
	ColorWarning = lipgloss.Color("#F59E0B")
	ColorInfo    = lipgloss.Color("#38BDF8")
	ColorMuted   = lipgloss.Color("#888888")
	ColorAccent  = lipgloss.Color("#C084FC")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	InfoStyle = lipgloss.NewStyle().
			Foreground(ColorInfo)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Italic(true)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Width(22)

	// GuideStyle frames the final guide text.
	GuideStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorAccent).
			Padding(0, 1)

	Separator = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Render("────────────────────────────────────────────────────────────")
)
