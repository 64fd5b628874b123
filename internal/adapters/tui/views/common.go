package views

import "jade/internal/domain"

// ViewState contains common state shared by all view models.
// Embed this struct in view models to get width/height and message handling.
type ViewState struct {
	Width      int
	Height     int
	Message    string
	MessageErr bool
}

// SetSize updates the view dimensions
func (s *ViewState) SetSize(width, height int) {
	s.Width = width
	s.Height = height
}

// SetMessage sets a message to display in the view
func (s *ViewState) SetMessage(msg string, isErr bool) {
	s.Message = msg
	s.MessageErr = isErr
}

// ClearMessage clears the current message
func (s *ViewState) ClearMessage() {
	s.Message = ""
	s.MessageErr = false
}

// Messages exchanged between the views and the app

// ConceptChangedMsg carries a concept that was created or updated elsewhere
type ConceptChangedMsg struct {
	Concept domain.Concept
}

// ReloadMsg asks the browser to reload every concept
type ReloadMsg struct{}

// EditConceptMsg asks the app to open a concept in the external editor
type EditConceptMsg struct {
	Concept domain.Concept
}

type SwitchToCreateMsg struct{}

type SwitchToHelpMsg struct{}

type SwitchToBrowserMsg struct{}

type CreateSuccessMsg struct {
	ID      string
	Message string
}

type CreateErrMsg struct {
	Err error
}

type errMsg struct {
	err error
}
