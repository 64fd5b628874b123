package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"jade/internal/adapters/tui/styles"
)

// HelpKeys closes the help view
var HelpKeys = struct{ Close key.Binding }{
	Close: key.NewBinding(key.WithKeys("esc", "q", "?"), key.WithHelp("esc/q/?", "close")),
}

// HelpModel lists the key bindings of every view
type HelpModel struct {
	ViewState
}

// NewHelpModel creates a new help view model
func NewHelpModel() *HelpModel {
	return &HelpModel{}
}

// Init initializes the help view
func (m *HelpModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the help view
func (m *HelpModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, HelpKeys.Close) {
			return m, func() tea.Msg {
				return SwitchToBrowserMsg{}
			}
		}
	}

	return m, nil
}

type helpSection struct {
	title    string
	bindings []key.Binding
}

func helpSections() []helpSection {
	return []helpSection{
		{"Browser", []key.Binding{
			BrowserKeys.Up, BrowserKeys.Down, BrowserKeys.Top, BrowserKeys.Bottom,
			BrowserKeys.Filter, BrowserKeys.Clear,
		}},
		{"Concepts", []key.Binding{
			BrowserKeys.Copy, BrowserKeys.Edit, BrowserKeys.New, BrowserKeys.Reload,
		}},
		{"New concept form", []key.Binding{
			DefaultFormKeys.Next, DefaultFormKeys.Prev, DefaultFormKeys.Submit, DefaultFormKeys.Cancel,
		}},
		{"General", []key.Binding{BrowserKeys.Help, BrowserKeys.Quit}},
	}
}

// View lists every binding by section
func (m *HelpModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("Jade Help"))
	b.WriteString("\n\n")

	for _, section := range helpSections() {
		b.WriteString(styles.InputLabel.Render(section.title))
		b.WriteString("\n")
		for _, binding := range section.bindings {
			help := binding.Help()
			b.WriteString("  " + styles.HelpKey.Render(padRight(help.Key, 14)) + styles.HelpDesc.Render(help.Desc) + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(styles.MutedText.Render("Concepts changed by other clients appear as they are saved."))
	b.WriteString("\n\n")
	b.WriteString(RenderHelpLine(HelpKeys.Close))

	return styles.App.Render(b.String())
}

func padRight(s string, n int) string {
	if w := lipgloss.Width(s); w < n {
		return s + strings.Repeat(" ", n-w)
	}
	return s
}
