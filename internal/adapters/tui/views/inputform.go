package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"jade/internal/adapters/tui/styles"
)

// FormKeyMap holds the bindings shared by every form view
type FormKeyMap struct {
	Submit key.Binding
	Cancel key.Binding
	Next   key.Binding
	Prev   key.Binding
}

// DefaultFormKeys are the form bindings used by the create view
var DefaultFormKeys = FormKeyMap{
	Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
	Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	Next:   key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
	Prev:   key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "previous field")),
}

// FieldCheck validates the trimmed value of a field; nil means valid
type FieldCheck func(value string) error

// InputField is a labelled text input with an optional check
type InputField struct {
	Label string
	Input textinput.Model
	Check FieldCheck
	err   error
}

// NewInputField creates a field. A charLimit of 0 keeps the textinput default.
func NewInputField(label, placeholder string, charLimit int, check FieldCheck) InputField {
	input := textinput.New()
	input.Placeholder = placeholder
	if charLimit > 0 {
		input.CharLimit = charLimit
	}
	return InputField{Label: label, Input: input, Check: check}
}

// InputForm is an ordered set of fields with one focused at a time
type InputForm struct {
	Fields  []InputField
	Keys    FormKeyMap
	focused int
}

// NewInputForm creates a form focused on its first field
func NewInputForm(fields ...InputField) *InputForm {
	f := &InputForm{Fields: fields, Keys: DefaultFormKeys}
	f.focus(0)
	return f
}

// Init starts the cursor blinking
func (f *InputForm) Init() tea.Cmd {
	return textinput.Blink
}

// Focused returns the index of the focused field
func (f *InputForm) Focused() int {
	return f.focused
}

// Update moves focus on next/prev keys and forwards everything else to the
// focused input. Editing a field clears its error.
func (f *InputForm) Update(msg tea.Msg) tea.Cmd {
	if len(f.Fields) == 0 {
		return nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, f.Keys.Next):
			f.focus((f.focused + 1) % len(f.Fields))
			return nil
		case key.Matches(msg, f.Keys.Prev):
			f.focus((f.focused - 1 + len(f.Fields)) % len(f.Fields))
			return nil
		}
		f.Fields[f.focused].err = nil
	}

	var cmd tea.Cmd
	f.Fields[f.focused].Input, cmd = f.Fields[f.focused].Input.Update(msg)
	return cmd
}

// Validate runs every field check and focuses the first failing field
func (f *InputForm) Validate() error {
	var first error
	for i := range f.Fields {
		field := &f.Fields[i]
		field.err = nil
		if field.Check == nil {
			continue
		}
		if err := field.Check(f.Value(i)); err != nil {
			field.err = err
			if first == nil {
				first = fmt.Errorf("%s: %w", strings.ToLower(field.Label), err)
				f.focus(i)
			}
		}
	}
	return first
}

// Value returns the trimmed value of field i
func (f *InputForm) Value(i int) string {
	if i < 0 || i >= len(f.Fields) {
		return ""
	}
	return strings.TrimSpace(f.Fields[i].Input.Value())
}

// SetValue replaces the value of field i
func (f *InputForm) SetValue(i int, value string) {
	if i < 0 || i >= len(f.Fields) {
		return
	}
	f.Fields[i].Input.SetValue(value)
}

// Reset empties every field and focuses the first one
func (f *InputForm) Reset() {
	for i := range f.Fields {
		f.Fields[i].Input.SetValue("")
		f.Fields[i].err = nil
	}
	f.focus(0)
}

func (f *InputForm) focus(i int) {
	if i < 0 || i >= len(f.Fields) {
		return
	}
	for j := range f.Fields {
		f.Fields[j].Input.Blur()
	}
	f.focused = i
	f.Fields[i].Input.Focus()
}

// View renders every field followed by its error, if any
func (f *InputForm) View() string {
	var b strings.Builder
	for i, field := range f.Fields {
		b.WriteString(styles.InputLabel.Render(field.Label))
		b.WriteString("\n")

		style := styles.InputField
		if i == f.focused {
			style = styles.InputFocused
		}
		b.WriteString(style.Render(field.Input.View()))

		if field.err != nil {
			b.WriteString("\n")
			b.WriteString(styles.ErrorMsg.Render(field.err.Error()))
		}
		b.WriteString("\n\n")
	}
	return b.String()
}

// RenderHelp renders the form bindings with a custom submit label
func (f *InputForm) RenderHelp(submit string) string {
	bindings := []key.Binding{}
	if len(f.Fields) > 1 {
		bindings = append(bindings, f.Keys.Next)
	}
	bindings = append(bindings,
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", submit)),
		f.Keys.Cancel,
	)
	return RenderHelpLine(bindings...)
}
