package ports

import "os/exec"

// EditorOpener opens files in the user's external editor
type EditorOpener interface {
	// OpenFile runs the editor on path and waits for it to exit
	OpenFile(path string) error

	// Command returns the editor process for path without starting it,
	// for callers that hand the terminal over themselves (bubbletea's ExecProcess)
	Command(path string) (*exec.Cmd, error)
}
