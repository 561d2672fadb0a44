package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var rollbackForce bool

var rollbackCmd = &cobra.Command{
	Use:   "rollback <session-id> <index>",
	Short: "Roll a session back to a message position",
	Long: `Delete the message at the given zero-based position and every
message after it. Positions are the indices 'parley history' prints.

Requires confirmation unless --force is used.

Examples:
  parley rollback 1a2b3c4d 4
  parley rollback 1a2b3c4d 0 --force`,
	Args: cobra.ExactArgs(2),
	RunE: runRollback,
}

func init() {
	rollbackCmd.Flags().BoolVarP(&rollbackForce, "force", "f", false, "skip confirmation")
}

func runRollback(cmd *cobra.Command, args []string) error {
	sessionID := args[0]
	index, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("index must be a number: %w", err)
	}
	if index < 0 {
		return fmt.Errorf("index must not be negative")
	}

	if !rollbackForce {
		ok, err := confirm(fmt.Sprintf("Delete message %d and everything after it in %s?", index, sessionID))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	ctx := context.Background()

	messages, err := gwClient.RollbackSession(ctx, sessionID, index)
	if err != nil {
		return fmt.Errorf("rollback session: %w", err)
	}

	fmt.Printf("Rolled back; %d messages remain.\n", len(messages))
	return nil
}
