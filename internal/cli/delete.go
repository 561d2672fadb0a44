package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var deleteForce bool

var deleteCmd = &cobra.Command{
	Use:   "delete <session-id> [index]",
	Short: "Delete a session or a single message",
	Long: `Delete a whole session (and all its messages), or just the message
at a zero-based position when an index is given. Deleting a message
shifts every later position down by one.

Requires confirmation unless --force is used.

Examples:
  parley delete 1a2b3c4d
  parley delete 1a2b3c4d 2
  parley delete 1a2b3c4d --force`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "skip confirmation")
}

func runDelete(cmd *cobra.Command, args []string) error {
	sessionID := args[0]
	ctx := context.Background()

	if len(args) == 2 {
		index, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("index must be a number: %w", err)
		}
		if index < 0 {
			return fmt.Errorf("index must not be negative")
		}

		if !deleteForce {
			ok, err := confirm(fmt.Sprintf("Delete message %d from %s?", index, sessionID))
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println("Cancelled.")
				return nil
			}
		}

		messages, err := gwClient.DeleteMessage(ctx, sessionID, index)
		if err != nil {
			return fmt.Errorf("delete message: %w", err)
		}
		fmt.Printf("Deleted; %d messages remain.\n", len(messages))
		return nil
	}

	if !deleteForce {
		ok, err := confirm(fmt.Sprintf("Delete session %s and all its messages?", sessionID))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	if err := gwClient.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	fmt.Printf("Deleted session %s\n", sessionID)
	return nil
}
