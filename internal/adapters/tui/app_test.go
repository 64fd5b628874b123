package tui

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jade/internal/adapters/badger"
	"jade/internal/adapters/editor"
	"jade/internal/adapters/graphdb"
	"jade/internal/adapters/tui/views"
	"jade/internal/domain"
)

func newApp(t *testing.T) (*App, *graphdb.Database) {
	t.Helper()
	store, err := badger.Open(badger.InMemoryConfig(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	db := graphdb.New(store, nil)
	require.NoError(t, db.Init(context.Background(), nil, []domain.Concept{{"id": "a"}}))
	return NewApp(db, nil, nil), db
}

func TestApp_LiveUpdates(t *testing.T) {
	ctx := context.Background()
	app, db := newApp(t)

	_, wait := app.Update(app.subscribe())
	require.NotNil(t, wait)
	require.NotEmpty(t, app.subscriptionID)

	require.NoError(t, db.CreateConcept(ctx, domain.Concept{"id": "b"}))

	msg := wait()
	changed, ok := msg.(views.ConceptChangedMsg)
	require.True(t, ok, "expected ConceptChangedMsg, got %T", msg)
	assert.Equal(t, "b", changed.Concept.ID())

	require.NoError(t, app.Close(ctx))
	require.NoError(t, db.UpdateConcept(ctx, domain.Concept{"id": "b", "v": "2"}))
	assert.Empty(t, app.changes)
}

func TestApp_OverflowTriggersReload(t *testing.T) {
	app, _ := newApp(t)

	app.dropped.Store(true)
	app.changes <- domain.Concept{"id": "x"}

	_, ok := app.waitForChange().(views.ReloadMsg)
	assert.True(t, ok)
	assert.False(t, app.dropped.Load())
}

func TestApp_SwitchViews(t *testing.T) {
	app, _ := newApp(t)

	app.Update(views.SwitchToHelpMsg{})
	assert.Equal(t, ViewHelp, app.state)
	assert.Contains(t, app.View(), "Jade Help")

	app.Update(views.SwitchToCreateMsg{})
	assert.Equal(t, ViewCreate, app.state)
	assert.Contains(t, app.View(), "New concept")

	app.Update(views.CreateSuccessMsg{ID: "n", Message: "Created concept: n"})
	assert.Equal(t, ViewBrowser, app.state)
}

func TestApp_SaveEdited(t *testing.T) {
	ctx := context.Background()
	app, db := newApp(t)

	file, err := editor.WriteConceptFile(domain.Concept{"id": "a"})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(file.Path, []byte(`{"id": "a", "title": "Edited"}`), 0600))

	cmd := app.saveEdited(editorFinishedMsg{file: file})
	require.NotNil(t, cmd)
	app.Update(cmd())

	c, err := db.GetConcept(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "Edited", c["title"])

	_, err = os.Stat(file.Path)
	assert.True(t, os.IsNotExist(err), "temporary file is removed")
}

func TestApp_EditWithoutEditor(t *testing.T) {
	app, _ := newApp(t)

	cmd := app.openEditor(domain.Concept{"id": "a"})
	assert.Nil(t, cmd)
	assert.Contains(t, app.browser.Message, "No editor")
}
