package system

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/stride/internal/cli"
	"github.com/julianstephens/stride/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	ctx.PerformAutomaticBackup()

	userID, err := ctx.User()
	if err != nil {
		return err
	}
	p := tea.NewProgram(tui.NewModel(ctx.Tracker, userID), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
