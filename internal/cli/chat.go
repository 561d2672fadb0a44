package cli

import (
	"fmt"
	"os"

	"github.com/raphaelgruber/parley/internal/controller"
	"github.com/raphaelgruber/parley/internal/tui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Open the interactive chat interface",
	Long: `Open the full-screen chat interface.

Keys:
  enter    send the typed message
  tab      switch between session list and chat pane
  up/down  move within the focused pane
  ctrl+n   new session
  ctrl+d   delete the selected session
  ctrl+x   delete the cursored message
  ctrl+r   roll back to the cursored message
  ctrl+t   cycle display themes
  ctrl+c   quit`,
	RunE: runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("chat needs an interactive terminal; use the one-shot subcommands instead")
	}

	ctrl := controller.New(gwClient,
		controller.WithLogger(logger),
		controller.WithTheme(cfg.Theme),
	)

	return tui.Run(ctrl, logger)
}
