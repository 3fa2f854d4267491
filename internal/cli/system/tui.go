package system

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/agenda/internal/cli"
	"github.com/julianstephens/agenda/internal/tui"
)

// TuiCmd opens the interactive agenda browser.
type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	// the browser can delete items
	ctx.PerformAutomaticBackup()

	p := tea.NewProgram(tui.New(ctx.Context(), ctx.Service, ctx.Config.AlertDays), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui failed: %w", err)
	}
	return nil
}
