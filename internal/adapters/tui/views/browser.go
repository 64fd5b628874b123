package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"jade/internal/adapters/tui/styles"
	"jade/internal/application/commands"
	"jade/internal/domain"
	"jade/internal/ports"
)

// BrowserKeyMap defines key bindings for the browser view
type BrowserKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding
	Filter key.Binding
	Clear  key.Binding
	Copy   key.Binding
	Edit   key.Binding
	New    key.Binding
	Reload key.Binding
	Help   key.Binding
	Quit   key.Binding
}

var BrowserKeys = BrowserKeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Top: key.NewBinding(
		key.WithKeys("g", "home"),
		key.WithHelp("g", "top"),
	),
	Bottom: key.NewBinding(
		key.WithKeys("G", "end"),
		key.WithHelp("G", "bottom"),
	),
	Filter: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "filter"),
	),
	Clear: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "clear filter"),
	),
	Copy: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "copy JSON"),
	),
	Edit: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "edit"),
	),
	New: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "new"),
	),
	Reload: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reload"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// BrowserModel lists concepts and shows the selected one
type BrowserModel struct {
	ViewState
	db ports.ConceptDatabase

	concepts []domain.Concept // creation order
	visible  []domain.Concept // after filtering
	cursor   int
	offset   int

	filtering bool
	filter    textinput.Model

	copy func(string) error
}

// NewBrowserModel creates a new browser model
func NewBrowserModel(db ports.ConceptDatabase) *BrowserModel {
	filter := textinput.New()
	filter.Placeholder = "filter concepts"
	filter.Prompt = "/ "
	filter.CharLimit = 100

	return &BrowserModel{
		db:     db,
		filter: filter,
		copy:   clipboard.WriteAll,
	}
}

type conceptsLoadedMsg struct {
	concepts []domain.Concept
}

type copiedMsg struct {
	id string
}

// Init initializes the browser
func (m *BrowserModel) Init() tea.Cmd {
	return m.loadConcepts
}

// Reload returns a command that reloads every concept
func (m *BrowserModel) Reload() tea.Cmd {
	return m.loadConcepts
}

func (m *BrowserModel) loadConcepts() tea.Msg {
	concepts, err := commands.NewListConceptsCommand(m.db).Execute(context.Background())
	if err != nil {
		return errMsg{err}
	}
	return conceptsLoadedMsg{concepts}
}

// Update handles messages for the browser
func (m *BrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case conceptsLoadedMsg:
		m.concepts = msg.concepts
		m.refresh()
		return m, nil

	case ConceptChangedMsg:
		m.Upsert(msg.Concept)
		return m, nil

	case ReloadMsg:
		return m, m.loadConcepts

	case copiedMsg:
		m.SetMessage(fmt.Sprintf("Copied %s to clipboard", msg.id), false)
		return m, nil

	case errMsg:
		m.SetMessage(msg.err.Error(), true)
		return m, nil

	case tea.KeyMsg:
		if m.filtering {
			return m, m.updateFilter(msg)
		}
		return m, m.handleKey(msg)
	}

	return m, nil
}

func (m *BrowserModel) updateFilter(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.filtering = false
		m.filter.Blur()
		m.filter.SetValue("")
		m.refresh()
		return nil
	case tea.KeyEnter:
		m.filtering = false
		m.filter.Blur()
		return nil
	case tea.KeyUp, tea.KeyDown:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.refresh()
	return cmd
}

func (m *BrowserModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, BrowserKeys.Quit):
		return tea.Quit

	case key.Matches(msg, BrowserKeys.Up):
		m.moveCursor(-1)

	case key.Matches(msg, BrowserKeys.Down):
		m.moveCursor(1)

	case key.Matches(msg, BrowserKeys.Top):
		m.moveCursor(-len(m.visible))

	case key.Matches(msg, BrowserKeys.Bottom):
		m.moveCursor(len(m.visible))

	case key.Matches(msg, BrowserKeys.Filter):
		m.filtering = true
		m.ClearMessage()
		return m.filter.Focus()

	case key.Matches(msg, BrowserKeys.Clear):
		if m.filter.Value() != "" {
			m.filter.SetValue("")
			m.refresh()
		}

	case key.Matches(msg, BrowserKeys.Copy):
		return m.copySelected()

	case key.Matches(msg, BrowserKeys.Edit):
		if c := m.Selected(); c != nil {
			return func() tea.Msg { return EditConceptMsg{Concept: c} }
		}

	case key.Matches(msg, BrowserKeys.New):
		return func() tea.Msg { return SwitchToCreateMsg{} }

	case key.Matches(msg, BrowserKeys.Reload):
		m.ClearMessage()
		return m.loadConcepts

	case key.Matches(msg, BrowserKeys.Help):
		return func() tea.Msg { return SwitchToHelpMsg{} }
	}

	return nil
}

func (m *BrowserModel) copySelected() tea.Cmd {
	c := m.Selected()
	if c == nil {
		return nil
	}
	text, err := ConceptJSON(c)
	if err != nil {
		m.SetMessage(err.Error(), true)
		return nil
	}

	copyFn, id := m.copy, c.ID()
	return func() tea.Msg {
		if err := copyFn(text); err != nil {
			return errMsg{fmt.Errorf("clipboard: %w", err)}
		}
		return copiedMsg{id}
	}
}

// Upsert replaces the concept with the same id or appends a new one
func (m *BrowserModel) Upsert(c domain.Concept) {
	for i, existing := range m.concepts {
		if existing.ID() == c.ID() {
			m.concepts[i] = c
			m.refresh()
			return
		}
	}
	m.concepts = append(m.concepts, c)
	m.refresh()
}

// Selected returns the concept under the cursor, or nil
func (m *BrowserModel) Selected() domain.Concept {
	if m.cursor < 0 || m.cursor >= len(m.visible) {
		return nil
	}
	return m.visible[m.cursor]
}

// Select moves the cursor to the concept with id when it is visible
func (m *BrowserModel) Select(id string) {
	for i, c := range m.visible {
		if c.ID() == id {
			m.cursor = i
			m.clampOffset()
			return
		}
	}
}

// Visible returns the concepts currently listed
func (m *BrowserModel) Visible() []domain.Concept {
	return m.visible
}

// refresh rebuilds the visible list, keeping the selection where possible
func (m *BrowserModel) refresh() {
	var selectedID string
	if c := m.Selected(); c != nil {
		selectedID = c.ID()
	}

	query := strings.TrimSpace(m.filter.Value())
	if len(query) < 2 {
		m.visible = m.concepts
	} else {
		results := commands.FuzzySort(m.concepts, query)
		m.visible = make([]domain.Concept, len(results))
		for i, r := range results {
			m.visible[i] = r.Concept
		}
	}

	m.cursor = 0
	if selectedID != "" {
		m.Select(selectedID)
	}
	m.clampOffset()
}

func (m *BrowserModel) moveCursor(delta int) {
	m.cursor += delta
	if m.cursor >= len(m.visible) {
		m.cursor = len(m.visible) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.clampOffset()
}

func (m *BrowserModel) listHeight() int {
	return max(m.Height-8, 5)
}

func (m *BrowserModel) clampOffset() {
	h := m.listHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

// View renders the browser
func (m *BrowserModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("Jade"))
	b.WriteString(" ")
	b.WriteString(styles.Subtitle.Render(fmt.Sprintf("%d of %d concepts", len(m.visible), len(m.concepts))))
	b.WriteString("\n")

	if m.filtering || m.filter.Value() != "" {
		b.WriteString(m.filter.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")

	listWidth := max(m.Width/3, 20)
	detailWidth := max(m.Width-listWidth-6, 20)

	list := styles.Pane.Width(listWidth).Render(m.renderList(listWidth))
	detail := styles.Pane.Width(detailWidth).Render(m.renderDetail(detailWidth))
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, list, detail))
	b.WriteString("\n")

	if m.Message != "" {
		b.WriteString(RenderMessage(m.Message, m.MessageErr))
		b.WriteString("\n")
	}

	b.WriteString(RenderHelpLine(
		BrowserKeys.Filter, BrowserKeys.Copy, BrowserKeys.Edit, BrowserKeys.New,
		BrowserKeys.Reload, BrowserKeys.Help, BrowserKeys.Quit,
	))

	return styles.App.Render(b.String())
}

func (m *BrowserModel) renderList(width int) string {
	if len(m.visible) == 0 {
		return styles.MutedText.Render("No concepts")
	}

	end := min(m.offset+m.listHeight(), len(m.visible))
	lines := make([]string, 0, end-m.offset)
	for i := m.offset; i < end; i++ {
		c := m.visible[i]
		line := c.ID()
		if title := ConceptTitle(c); title != "" {
			line += " " + styles.MutedText.Render(title)
		}
		line = truncate(line, width-2)

		if i == m.cursor {
			line = styles.NodeSelected.Render(truncate(c.ID(), width-2))
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m *BrowserModel) renderDetail(width int) string {
	c := m.Selected()
	if c == nil {
		return styles.MutedText.Render("Nothing selected")
	}
	return RenderConcept(c, width-2)
}
