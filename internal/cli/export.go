package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/raphaelgruber/parley/internal/models"
	"github.com/spf13/cobra"
)

var exportSession string

var exportCmd = &cobra.Command{
	Use:   "export <path>",
	Short: "Export session transcripts to Markdown files",
	Long: `Export chat transcripts to Markdown files for backup or sharing.

One file per session, named after the session's ID and name.

Examples:
  parley export ./backup
  parley export ./backup --session 1a2b3c4d`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportSession, "session", "", "export only this session")
}

func runExport(cmd *cobra.Command, args []string) error {
	exportPath := args[0]
	ctx := context.Background()

	if err := os.MkdirAll(exportPath, 0755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}

	sessions, err := gwClient.ListSessions(ctx)
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}

	if exportSession != "" {
		filtered := sessions[:0]
		for _, s := range sessions {
			if s.ID == exportSession {
				filtered = append(filtered, s)
			}
		}
		sessions = filtered
	}

	if len(sessions) == 0 {
		fmt.Println("No sessions to export.")
		return nil
	}

	exported := 0
	for _, s := range sessions {
		messages, err := gwClient.ListMessages(ctx, s.ID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: skipping %s: %v\n", s.ID, err)
			continue
		}

		name := fmt.Sprintf("%s.md", s.ID)
		if slug := models.Slugify(s.Name); slug != "" {
			name = fmt.Sprintf("%s-%s.md", s.ID, slug)
		}

		if err := os.WriteFile(filepath.Join(exportPath, name), transcript(s, messages), 0644); err != nil {
			return fmt.Errorf("write transcript: %w", err)
		}
		exported++
	}

	fmt.Printf("Exported %d sessions to %s\n", exported, exportPath)
	return nil
}

// transcript renders one session as Markdown.
func transcript(s models.Session, messages []models.Message) []byte {
	var b strings.Builder

	title := s.Name
	if title == "" {
		title = s.ID
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "Session `%s`, %d messages", s.ID, len(messages))
	if !s.UpdatedAt.IsZero() {
		fmt.Fprintf(&b, ", last updated %s", s.UpdatedAt.Format("2006-01-02 15:04"))
	}
	b.WriteString("\n\n")

	for _, m := range messages {
		speaker := "User"
		if m.Role == models.RoleAssistant {
			speaker = "Assistant"
		}
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", speaker, m.Content)
	}

	return []byte(b.String())
}
