package tui

import (
	"context"
	"log/slog"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"

	"jade/internal/adapters/editor"
	"jade/internal/adapters/tui/views"
	"jade/internal/application/commands"
	"jade/internal/domain"
	"jade/internal/ports"
)

// changeBuffer bounds the concepts queued between the store and the UI.
// When it overflows the browser reloads everything instead.
const changeBuffer = 128

// ViewState represents the current view
type ViewState int

const (
	ViewBrowser ViewState = iota
	ViewCreate
	ViewHelp
)

// App is the main TUI application model
type App struct {
	db     ports.ConceptDatabase
	editor ports.EditorOpener
	logger *slog.Logger

	state   ViewState
	browser *views.BrowserModel
	create  *views.CreateModel
	help    *views.HelpModel

	changes        chan domain.Concept
	dropped        atomic.Bool
	subscriptionID string

	width  int
	height int
}

// NewApp creates a new TUI application. A nil editor disables editing.
func NewApp(db ports.ConceptDatabase, ed ports.EditorOpener, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	return &App{
		db:      db,
		editor:  ed,
		logger:  logger,
		state:   ViewBrowser,
		browser: views.NewBrowserModel(db),
		create:  views.NewCreateModel(db),
		help:    views.NewHelpModel(),
		changes: make(chan domain.Concept, changeBuffer),
	}
}

type subscribedMsg struct {
	id  string
	err error
}

// Init initializes the application
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.browser.Init(), a.subscribe)
}

// subscribe registers for every concept change. The listener never blocks
// the store: when the buffer is full the change is dropped and a reload
// is scheduled.
func (a *App) subscribe() tea.Msg {
	id, err := a.db.SubscribeConcept(context.Background(), ports.WildcardChannel, func(c domain.Concept) {
		select {
		case a.changes <- c:
		default:
			a.dropped.Store(true)
		}
	})
	return subscribedMsg{id: id, err: err}
}

func (a *App) waitForChange() tea.Msg {
	c, ok := <-a.changes
	if !ok {
		return nil
	}
	if a.dropped.Swap(false) {
		return views.ReloadMsg{}
	}
	return views.ConceptChangedMsg{Concept: c}
}

// Close removes the live subscription
func (a *App) Close(ctx context.Context) error {
	if a.subscriptionID == "" {
		return nil
	}
	return a.db.UnsubscribeConcept(ctx, ports.WildcardChannel, a.subscriptionID)
}

// Update handles messages for the application
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.browser.SetSize(msg.Width, msg.Height)
		a.create.SetSize(msg.Width, msg.Height)
		a.help.SetSize(msg.Width, msg.Height)
		return a, nil

	case subscribedMsg:
		if msg.err != nil {
			a.logger.Warn("live updates unavailable", "error", msg.err)
			a.browser.SetMessage("Live updates unavailable: "+msg.err.Error(), true)
			return a, nil
		}
		a.subscriptionID = msg.id
		return a, a.waitForChange

	// Live updates go to the browser whatever view is active
	case views.ConceptChangedMsg, views.ReloadMsg:
		_, cmd := a.browser.Update(msg)
		return a, tea.Batch(cmd, a.waitForChange)

	// View switching messages
	case views.SwitchToCreateMsg:
		a.state = ViewCreate
		a.create.Reset()
		return a, a.create.Init()

	case views.SwitchToHelpMsg:
		a.state = ViewHelp
		return a, nil

	case views.SwitchToBrowserMsg:
		a.state = ViewBrowser
		return a, nil

	// Create view messages
	case views.CreateSuccessMsg:
		a.state = ViewBrowser
		a.browser.SetMessage(msg.Message, false)
		return a, a.browser.Reload()

	case views.CreateErrMsg:
		a.create.SetMessage(msg.Err.Error(), true)
		return a, nil

	// Editing
	case views.EditConceptMsg:
		return a, a.openEditor(msg.Concept)

	case editorFinishedMsg:
		return a, a.saveEdited(msg)

	case conceptSavedMsg:
		if msg.err != nil {
			a.browser.SetMessage(msg.err.Error(), true)
		} else {
			a.browser.SetMessage(msg.message, false)
		}
		return a, nil
	}

	// Delegate to current view
	var cmd tea.Cmd
	switch a.state {
	case ViewBrowser:
		_, cmd = a.browser.Update(msg)
	case ViewCreate:
		_, cmd = a.create.Update(msg)
	case ViewHelp:
		_, cmd = a.help.Update(msg)
	}

	return a, cmd
}

type editorFinishedMsg struct {
	file *editor.ConceptFile
	err  error
}

type conceptSavedMsg struct {
	message string
	err     error
}

func (a *App) openEditor(c domain.Concept) tea.Cmd {
	if a.editor == nil {
		a.browser.SetMessage("No editor configured", true)
		return nil
	}

	file, err := editor.WriteConceptFile(c)
	if err != nil {
		a.browser.SetMessage(err.Error(), true)
		return nil
	}

	cmd, err := a.editor.Command(file.Path)
	if err != nil {
		file.Remove()
		a.browser.SetMessage(err.Error(), true)
		return nil
	}

	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		return editorFinishedMsg{file: file, err: err}
	})
}

// saveEdited reads the edited file back and updates the concept when it changed
func (a *App) saveEdited(msg editorFinishedMsg) tea.Cmd {
	defer msg.file.Remove()

	if msg.err != nil {
		a.browser.SetMessage("Editor failed: "+msg.err.Error(), true)
		return nil
	}

	c, changed, err := msg.file.Read()
	if err != nil {
		a.browser.SetMessage(err.Error(), true)
		return nil
	}
	if !changed {
		a.browser.SetMessage("No changes", false)
		return nil
	}

	db := a.db
	return func() tea.Msg {
		result, err := commands.NewUpdateConceptCommand(db, c).Execute(context.Background())
		if err != nil {
			return conceptSavedMsg{err: err}
		}
		return conceptSavedMsg{message: result.Message}
	}
}

// View renders the current view
func (a *App) View() string {
	switch a.state {
	case ViewCreate:
		return a.create.View()
	case ViewHelp:
		return a.help.View()
	default:
		return a.browser.View()
	}
}
