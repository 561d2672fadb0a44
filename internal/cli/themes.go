package cli

import (
	"fmt"

	"github.com/raphaelgruber/parley/internal/themes"
	"github.com/spf13/cobra"
)

var themesCmd = &cobra.Command{
	Use:   "themes",
	Short: "List available display themes",
	Long: `List the built-in display themes for the chat interface.

Select one with the PARLEY_THEME environment variable or the 'theme'
key in the config file; inside 'parley chat', ctrl+t cycles themes.`,
	RunE: runThemes,
}

func runThemes(cmd *cobra.Command, args []string) error {
	current := cfg.Theme

	for _, d := range themes.All() {
		marker := " "
		if d.Key == current {
			marker = "*"
		}
		fmt.Printf("%s %-10s %s (%s)\n", marker, d.Key, d.Label, d.Description)
	}

	return nil
}
