package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/raphaelgruber/parley/internal/models"
	"github.com/spf13/cobra"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List chat sessions",
	Long: `List all sessions the service knows about, newest first.

Examples:
  parley sessions
  parley sessions -v`,
	RunE: runSessions,
}

func runSessions(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	sessions, err := gwClient.ListSessions(ctx)
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}

	if len(sessions) == 0 {
		fmt.Println("No sessions. Create one with 'parley new'.")
		return nil
	}

	now := time.Now()
	fmt.Printf("Sessions (%d):\n\n", len(sessions))
	for _, s := range sessions {
		name := s.Name
		if name == "" {
			name = "(unnamed)"
		}
		fmt.Printf("- %s [%s]\n", models.TruncateTitle(name, 40), s.ID)
		if verbose {
			fmt.Printf("  %d messages, updated %s\n", s.MessageCount, models.FormatRelativeTime(s.UpdatedAt, now))
		}
	}

	return nil
}
