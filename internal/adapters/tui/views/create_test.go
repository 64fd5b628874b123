package views

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateModel_Concept(t *testing.T) {
	m := NewCreateModel(nil)
	m.form.SetValue(createFieldID, " new ")
	m.form.SetValue(createFieldTitle, "New concept")
	m.form.SetValue(createFieldExtra, `{"tags": ["x"], "title": "overridden"}`)

	c, err := m.Concept()
	require.NoError(t, err)
	assert.Equal(t, "new", c.ID())
	assert.Equal(t, "New concept", c["title"])
	assert.Equal(t, []any{"x"}, c["tags"])
}

func TestCreateModel_InvalidExtra(t *testing.T) {
	m := NewCreateModel(nil)
	m.form.SetValue(createFieldID, "new")
	m.form.SetValue(createFieldExtra, `{"tags": `)

	_, err := m.Concept()
	require.Error(t, err)

	m.Update(keyMsg("enter"))
	assert.True(t, m.MessageErr)
	assert.Contains(t, m.Message, "extra fields")
}

func TestCreateModel_RejectsBadID(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want string
	}{
		{"empty", "", "id: required"},
		{"wildcard", "a*b", "id: must not contain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewCreateModel(nil)
			m.form.SetValue(createFieldID, tt.id)
			m.form.SetValue(createFieldExtra, "{")

			m.Update(keyMsg("enter"))
			assert.True(t, m.MessageErr)
			assert.Contains(t, m.Message, tt.want)
			assert.Equal(t, createFieldID, m.form.Focused())
		})
	}
}

func TestInputForm_Focus(t *testing.T) {
	f := NewInputForm(
		NewInputField("A", "", 0, nil),
		NewInputField("B", "", 0, nil),
		NewInputField("C", "", 0, nil),
	)
	assert.Equal(t, 0, f.Focused())

	f.Update(keyMsg("tab"))
	assert.Equal(t, 1, f.Focused())

	f.Update(keyMsg("shift+tab"))
	f.Update(keyMsg("shift+tab"))
	assert.Equal(t, 2, f.Focused())

	f.Update(keyMsg("x"))
	assert.Equal(t, "x", f.Value(2))
	assert.Empty(t, f.Value(0))

	f.Reset()
	assert.Equal(t, 0, f.Focused())
	assert.Empty(t, f.Value(2))
}

func TestInputForm_ValidateShowsFieldError(t *testing.T) {
	f := NewInputForm(
		NewInputField("Name", "", 0, nil),
		NewInputField("Data", "", 0, checkJSONObject),
	)
	f.SetValue(1, "[1]")

	err := f.Validate()
	require.Error(t, err)
	assert.Equal(t, "data: not a JSON object", err.Error())
	assert.Equal(t, 1, f.Focused())
	assert.Contains(t, f.View(), "not a JSON object")

	f.Update(keyMsg("x"))
	assert.NotContains(t, f.View(), "not a JSON object")
}
