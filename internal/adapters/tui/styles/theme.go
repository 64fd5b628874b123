package styles

import "github.com/charmbracelet/lipgloss"

// Palette. Adaptive colors pick the variant matching the terminal background.
var (
	Primary   = lipgloss.AdaptiveColor{Light: "#0B7A5B", Dark: "#2BC79A"} // jade
	Secondary = lipgloss.AdaptiveColor{Light: "#6D28D9", Dark: "#A78BFA"}
	Muted     = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
	Warning   = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#F59E0B"}
	Error     = lipgloss.AdaptiveColor{Light: "#DC2626", Dark: "#F87171"}
	White     = lipgloss.Color("#FFFFFF")
)

var (
	// Base styles
	App = lipgloss.NewStyle().
		Padding(1, 2)

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Subtitle = lipgloss.NewStyle().
			Foreground(Muted).
			Italic(true)

	Pane = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Muted).
		Padding(0, 1)

	NodeSelected = lipgloss.NewStyle().
			Background(Primary).
			Foreground(White).
			Bold(true)

	// Concept fields
	JSONKey = lipgloss.NewStyle().
		Foreground(Secondary).
		Bold(true)

	JSONString = lipgloss.NewStyle().
			Foreground(Primary)

	JSONLiteral = lipgloss.NewStyle().
			Foreground(Warning)

	// Truncate is used with MaxWidth to cut long lines
	Truncate = lipgloss.NewStyle()

	// Input styles
	InputLabel = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	InputField = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Muted).
			Padding(0, 1)

	InputFocused = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(0, 1)

	// Help styles
	HelpKey = lipgloss.NewStyle().
		Foreground(Primary).
		Bold(true)

	HelpDesc = lipgloss.NewStyle().
			Foreground(Muted)

	HelpSeparator = lipgloss.NewStyle().
			Foreground(Muted).
			SetString(" • ")

	// Message styles
	Success = lipgloss.NewStyle().
		Foreground(Primary).
		Bold(true)

	ErrorMsg = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	MutedText = lipgloss.NewStyle().
			Foreground(Muted)
)
