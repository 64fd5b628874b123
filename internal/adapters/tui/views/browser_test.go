package views

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jade/internal/adapters/badger"
	"jade/internal/adapters/graphdb"
	"jade/internal/domain"
)

func newLoadedBrowser(t *testing.T, concepts ...domain.Concept) *BrowserModel {
	t.Helper()
	store, err := badger.Open(badger.InMemoryConfig(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	db := graphdb.New(store, nil)
	require.NoError(t, db.Init(context.Background(), nil, concepts))

	m := NewBrowserModel(db)
	m.SetSize(120, 40)
	m.Update(m.Init()())
	return m
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func visibleIDs(m *BrowserModel) []string {
	var ids []string
	for _, c := range m.Visible() {
		ids = append(ids, c.ID())
	}
	return ids
}

func TestBrowser_LoadAndNavigate(t *testing.T) {
	m := newLoadedBrowser(t,
		domain.Concept{"id": "a", "title": "Alpha"},
		domain.Concept{"id": "b"},
		domain.Concept{"id": "c"},
	)

	assert.Equal(t, []string{"a", "b", "c"}, visibleIDs(m))
	assert.Equal(t, "a", m.Selected().ID())

	m.Update(keyMsg("j"))
	assert.Equal(t, "b", m.Selected().ID())

	m.Update(keyMsg("G"))
	assert.Equal(t, "c", m.Selected().ID())

	m.Update(keyMsg("j"))
	assert.Equal(t, "c", m.Selected().ID(), "cursor stops at the last concept")

	m.Update(keyMsg("g"))
	assert.Equal(t, "a", m.Selected().ID())

	view := m.View()
	assert.Contains(t, view, "3 of 3 concepts")
	assert.Contains(t, view, "Alpha")
}

func TestBrowser_Upsert(t *testing.T) {
	m := newLoadedBrowser(t, domain.Concept{"id": "a"}, domain.Concept{"id": "b"})
	m.Select("b")

	m.Update(ConceptChangedMsg{Concept: domain.Concept{"id": "a", "title": "Changed"}})
	m.Update(ConceptChangedMsg{Concept: domain.Concept{"id": "z"}})

	assert.Equal(t, []string{"a", "b", "z"}, visibleIDs(m))
	assert.Equal(t, "Changed", m.Visible()[0]["title"])
	assert.Equal(t, "b", m.Selected().ID(), "selection survives updates")
}

func TestBrowser_Filter(t *testing.T) {
	m := newLoadedBrowser(t,
		domain.Concept{"id": "c1", "title": "Cooking"},
		domain.Concept{"id": "c2", "title": "Theatre Season"},
		domain.Concept{"id": "c3", "title": "My Theatre"},
	)

	m.Update(keyMsg("/"))
	for _, r := range "theatre" {
		m.Update(keyMsg(string(r)))
	}
	assert.Equal(t, []string{"c2", "c3"}, visibleIDs(m))

	m.Update(keyMsg("enter"))
	assert.False(t, m.filtering)
	assert.Equal(t, []string{"c2", "c3"}, visibleIDs(m), "filter stays after enter")

	m.Update(keyMsg("esc"))
	assert.Equal(t, []string{"c1", "c2", "c3"}, visibleIDs(m))
}

func TestBrowser_CopySelected(t *testing.T) {
	m := newLoadedBrowser(t, domain.Concept{"id": "a", "n": 1})

	var copied string
	m.copy = func(s string) error {
		copied = s
		return nil
	}

	_, cmd := m.Update(keyMsg("y"))
	require.NotNil(t, cmd)
	m.Update(cmd())

	assert.True(t, strings.HasPrefix(copied, "{\n"))
	assert.Contains(t, copied, `"id": "a"`)
	assert.Contains(t, copied, `"n": 1`)
	assert.Contains(t, copied, `"relations": []`)
	assert.Equal(t, "Copied a to clipboard", m.Message)
	assert.False(t, m.MessageErr)
}

func TestBrowser_Empty(t *testing.T) {
	m := newLoadedBrowser(t)

	assert.Nil(t, m.Selected())
	_, cmd := m.Update(keyMsg("y"))
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "No concepts")
}

func TestRenderConcept(t *testing.T) {
	out := RenderConcept(domain.Concept{"id": "a", "b": nil, "a": []any{"x"}}, 0)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "id:")
	assert.Contains(t, lines[1], `["x"]`)
	assert.Contains(t, lines[2], "null")
}
