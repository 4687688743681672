// Package tui is the interactive settings editor behind `runeditor config edit`.
package tui

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/1broseidon/runeditor/internal/config"
)

// Run opens the settings editor for res, saving to path on confirm.
// status is shown in the top bar.
func Run(res *config.LoadResult, path string, status string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("config edit requires an interactive terminal (stdin/stdout must be TTYs)")
	}
	if res == nil || res.Config == nil {
		return fmt.Errorf("no config loaded")
	}

	p := tea.NewProgram(newModel(res, path, status), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
