package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Create an empty chat session",
	Long: `Create an empty session on the service and print its identifier.

The service names the session after the first message you send to it.`,
	RunE: runNew,
}

func runNew(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	session, err := gwClient.CreateSession(ctx)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	fmt.Printf("Created session %s\n", session.ID)
	return nil
}
