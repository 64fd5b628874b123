package views

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"jade/internal/adapters/tui/styles"
	"jade/internal/application/commands"
	"jade/internal/domain"
	"jade/internal/ports"
)

const (
	createFieldID = iota
	createFieldTitle
	createFieldExtra
)

// CreateModel is the model for the new concept form
type CreateModel struct {
	ViewState
	db   ports.ConceptDatabase
	form *InputForm
}

// NewCreateModel creates a new create view model
func NewCreateModel(db ports.ConceptDatabase) *CreateModel {
	return &CreateModel{
		db: db,
		form: NewInputForm(
			NewInputField("ID", "concept-id", 200, checkConceptID),
			NewInputField("Title", "optional", 200, nil),
			NewInputField("Extra fields", `optional JSON object, e.g. {"tags": ["x"]}`, 2000, checkJSONObject),
		),
	}
}

// Reset clears the form for a new concept
func (m *CreateModel) Reset() {
	m.form.Reset()
	m.ClearMessage()
}

// Init initializes the create view
func (m *CreateModel) Init() tea.Cmd {
	return m.form.Init()
}

// Update handles messages for the create view
func (m *CreateModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.form.Keys.Cancel):
			return m, func() tea.Msg {
				return SwitchToBrowserMsg{}
			}

		case key.Matches(msg, m.form.Keys.Submit):
			if err := m.form.Validate(); err != nil {
				m.SetMessage(err.Error(), true)
				return m, nil
			}
			concept, err := m.Concept()
			if err != nil {
				m.SetMessage(err.Error(), true)
				return m, nil
			}
			return m, m.create(concept)
		}
	}

	return m, m.form.Update(msg)
}

// Concept builds the concept described by the form
func (m *CreateModel) Concept() (domain.Concept, error) {
	concept := domain.Concept{}

	if extra := m.form.Value(createFieldExtra); extra != "" {
		parsed, err := domain.ParseConcept([]byte(extra))
		if err != nil {
			return nil, fmt.Errorf("extra fields: %w", err)
		}
		concept = parsed
	}

	concept["id"] = m.form.Value(createFieldID)
	if title := m.form.Value(createFieldTitle); title != "" {
		concept["title"] = title
	}
	return concept, nil
}

func checkConceptID(v string) error {
	if v == "" {
		return errors.New("required")
	}
	if strings.Contains(v, ports.WildcardChannel) {
		return fmt.Errorf("must not contain %q", ports.WildcardChannel)
	}
	return nil
}

func checkJSONObject(v string) error {
	if v == "" {
		return nil
	}
	if _, err := domain.ParseConcept([]byte(v)); err != nil {
		return errors.New("not a JSON object")
	}
	return nil
}

func (m *CreateModel) create(concept domain.Concept) tea.Cmd {
	db := m.db
	return func() tea.Msg {
		result, err := commands.NewCreateConceptCommand(db, concept).Execute(context.Background())
		if err != nil {
			return CreateErrMsg{Err: err}
		}
		return CreateSuccessMsg{ID: result.ID, Message: result.Message}
	}
}

// View renders the create view
func (m *CreateModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("New concept"))
	b.WriteString("\n\n")

	b.WriteString(m.form.View())

	if m.Message != "" {
		b.WriteString(RenderMessage(m.Message, m.MessageErr))
		b.WriteString("\n\n")
	}

	b.WriteString(m.form.RenderHelp("create"))
	return styles.App.Render(b.String())
}
