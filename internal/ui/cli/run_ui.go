// Package cli hosts the interactive terminal view of watch mode.
package cli

import (
	coreapp "styledetect/internal/core/app"
	"styledetect/internal/core/ports"

	tea "github.com/charmbracelet/bubbletea"
)

// RunUI shows live watch-mode results until the user quits. The watcher must
// already be running.
func RunUI(app *coreapp.App) error {
	m := initialModel(app.Paths.ProjectRoot, app.CurrentReports())
	p := tea.NewProgram(m, tea.WithAltScreen())

	app.SetUpdateHandler(func(update ports.WatchUpdate) {
		p.Send(updateMsg{update: update})
	})
	defer app.SetUpdateHandler(nil)

	_, err := p.Run()
	return err
}
