package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/raphaelgruber/parley/internal/models"
	"github.com/spf13/cobra"
)

var sendCmd = &cobra.Command{
	Use:   "send <session-id> <text>...",
	Short: "Send a message and print the reply",
	Long: `Send a user message to a session. The service appends it, asks the
underlying model for a reply, and returns the full history; the
assistant's answer is printed.

Examples:
  parley send 1a2b3c4d "What is the capital of France?"`,
	Args: cobra.MinimumNArgs(2),
	RunE: runSend,
}

func runSend(cmd *cobra.Command, args []string) error {
	sessionID := args[0]
	text := strings.TrimSpace(strings.Join(args[1:], " "))
	if text == "" {
		return fmt.Errorf("message text is empty")
	}

	ctx := context.Background()

	messages, err := gwClient.AppendMessage(ctx, sessionID, text)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	// The reply is the last assistant message of the returned history.
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == models.RoleAssistant {
			fmt.Println(messages[i].Content)
			return nil
		}
	}

	fmt.Println("(no assistant reply in response)")
	return nil
}
