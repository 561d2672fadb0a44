package tui

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"
	"github.com/raphaelgruber/parley/internal/models"
)

const sessionPaneWidth = 28

func (m model) View() tea.View {
	if m.width == 0 {
		v := tea.NewView("loading...")
		v.AltScreen = true
		return v
	}

	chatWidth := max(20, m.width-sessionPaneWidth-4)
	bodyHeight := max(4, m.height-6)

	left := m.paneStyle(focusSessions).
		Width(sessionPaneWidth).
		Height(bodyHeight).
		Render(m.renderSessions(bodyHeight))
	right := m.paneStyle(focusChat).
		Width(chatWidth).
		Height(bodyHeight).
		Render(m.renderMessages(chatWidth, bodyHeight))

	var b strings.Builder
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, right))
	b.WriteString("\n")
	b.WriteString(m.renderInput())
	b.WriteString("\n")
	b.WriteString(m.renderStatus())

	v := tea.NewView(b.String())
	v.AltScreen = true
	return v
}

func (m model) paneStyle(f focus) lipgloss.Style {
	if m.focus == f {
		return m.styles.PaneFocused
	}
	return m.styles.Pane
}

func (m model) renderSessions(height int) string {
	lines := []string{m.styles.Title.Render("Sessions")}

	if len(m.state.Sessions) == 0 {
		lines = append(lines, m.styles.Hint.Render("none yet (ctrl+n)"))
		return strings.Join(lines, "\n")
	}

	// Keep the cursor inside the visible window.
	visible := max(1, height-2)
	start := 0
	if m.sessionCursor >= visible {
		start = m.sessionCursor - visible + 1
	}

	for i := start; i < len(m.state.Sessions) && i < start+visible; i++ {
		s := m.state.Sessions[i]
		name := s.Name
		if name == "" {
			name = s.ID
		}
		name = models.TruncateTitle(name, sessionPaneWidth-6)

		line := "  " + name
		if i == m.sessionCursor && m.focus == focusSessions {
			line = m.styles.Selected.Render("> " + name)
		} else if s.ID == m.state.SelectedID {
			line = m.styles.Selected.Render("* " + name)
		}
		lines = append(lines, line)
	}

	return strings.Join(lines, "\n")
}

func (m model) renderMessages(width, height int) string {
	msgs := m.state.Messages

	if m.state.SelectedID == "" {
		return m.styles.Hint.Render("No session selected.")
	}
	if len(msgs) == 0 {
		return m.styles.Hint.Render("No messages yet. Say something.")
	}

	var lines []string
	for i, msg := range msgs {
		label := m.styles.RoleUser.Render("you")
		if msg.Role == models.RoleAssistant {
			label = m.styles.RoleAssistant.Render("assistant")
		}

		cursor := "  "
		if i == m.msgCursor && m.focus == focusChat {
			cursor = m.styles.Selected.Render("> ")
		}

		header := fmt.Sprintf("%s%s", cursor, label)
		if msg.Pending() {
			header += m.styles.Hint.Render(" (sending)")
		} else if !msg.CreatedAt.IsZero() {
			header += " " + m.styles.Timestamp.Render(msg.CreatedAt.Format("15:04"))
		}
		lines = append(lines, header)

		for _, l := range wrap(msg.Content, max(10, width-6)) {
			lines = append(lines, "    "+l)
		}
		lines = append(lines, "")
	}

	// Show the tail of the conversation, but never scroll the cursored
	// message out of view.
	visible := max(1, height-2)
	if len(lines) <= visible {
		return strings.Join(lines, "\n")
	}
	return strings.Join(lines[len(lines)-visible:], "\n")
}

func (m model) renderInput() string {
	if m.confirm != nil {
		return m.styles.Error.Render(m.confirm.prompt)
	}
	return "  " + m.input.View()
}

func (m model) renderStatus() string {
	if m.state.Err != "" {
		return "  " + m.styles.Error.Render(m.state.Err)
	}
	if m.state.Busy {
		return "  " + m.spin.View() + m.styles.Status.Render(" working...")
	}
	return "  " + m.styles.Hint.Render("tab panes / ctrl+n new / ctrl+t theme / ctrl+c quit")
}

// wrap breaks text into lines no wider than limit, on spaces where
// possible.
func wrap(text string, limit int) []string {
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		if para == "" {
			lines = append(lines, "")
			continue
		}
		line := ""
		for _, word := range strings.Fields(para) {
			switch {
			case line == "":
				line = word
			case len(line)+1+len(word) <= limit:
				line += " " + word
			default:
				lines = append(lines, line)
				line = word
			}
			for len(line) > limit {
				lines = append(lines, line[:limit])
				line = line[limit:]
			}
		}
		lines = append(lines, line)
	}
	return lines
}
