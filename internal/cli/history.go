package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/raphaelgruber/parley/internal/models"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history [session-id]",
	Short: "Print a session's message history",
	Long: `Print the ordered message history of a session.

Without an argument, the most recently updated session is shown.
Message positions printed on the left are the indices 'rollback' and
'delete' address.

Examples:
  parley history
  parley history 1a2b3c4d`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	var sessionID string
	if len(args) == 1 {
		sessionID = args[0]
	} else {
		id, err := firstSessionID(ctx)
		if err != nil {
			return err
		}
		sessionID = id
	}

	messages, err := gwClient.ListMessages(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("list messages: %w", err)
	}

	if len(messages) == 0 {
		fmt.Println("No messages in this session yet.")
		return nil
	}

	now := time.Now()
	for _, m := range messages {
		role := "You"
		if m.Role == models.RoleAssistant {
			role = "AI "
		}
		fmt.Printf("[%2d] %s  %s\n", m.ID, role, m.Content)
		if verbose {
			fmt.Printf("         %s\n", models.FormatRelativeTime(m.CreatedAt, now))
		}
	}

	return nil
}

// firstSessionID resolves the default session: the service's first
// (most recently updated) one.
func firstSessionID(ctx context.Context) (string, error) {
	sessions, err := gwClient.ListSessions(ctx)
	if err != nil {
		return "", fmt.Errorf("list sessions: %w", err)
	}
	if len(sessions) == 0 {
		return "", fmt.Errorf("no sessions exist; create one with 'parley new'")
	}
	return sessions[0].ID, nil
}
