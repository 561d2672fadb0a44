// Package tui is the full-screen chat interface over the controller.
//
// All session and message state lives in the controller; the TUI holds
// only presentation state (focus, cursors, the pending confirmation
// modal) and repaints from controller snapshots.
package tui

import (
	"context"
	"fmt"
	"log/slog"

	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/raphaelgruber/parley/internal/controller"
	"github.com/raphaelgruber/parley/internal/themes"
)

// focus identifies which pane receives movement keys.
type focus int

const (
	focusSessions focus = iota
	focusChat
)

// stateMsg tells the model to re-snapshot the controller.
type stateMsg struct{}

// transitionDoneMsg reports a finished controller transition. Errors
// are already in the controller's error slot; the message only
// triggers a repaint.
type transitionDoneMsg struct{}

// confirmState is a pending destructive-action modal. The action runs
// only on an explicit "y"; any other key declines, which is a no-op.
type confirmState struct {
	prompt string
	action tea.Cmd
}

type model struct {
	ctrl   *controller.Controller
	logger *slog.Logger

	state  controller.Snapshot
	styles themes.Styles

	input textinput.Model
	spin  spinner.Model

	focus         focus
	sessionCursor int
	msgCursor     int
	confirm       *confirmState

	width  int
	height int
}

func newModel(ctrl *controller.Controller, logger *slog.Logger) model {
	input := textinput.New()
	input.Placeholder = "Type a message..."
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	state := ctrl.State()
	return model{
		ctrl:   ctrl,
		logger: logger,
		state:  state,
		styles: themes.ForKey(state.ThemeKey),
		input:  input,
		spin:   spin,
		focus:  focusChat,
	}
}

// Run starts the chat interface and blocks until the user quits.
func Run(ctrl *controller.Controller, logger *slog.Logger) error {
	m := newModel(ctrl, logger)
	p := tea.NewProgram(m)

	// Repaint on every controller mutation, including the optimistic
	// insertion that happens mid-send.
	ctrl.SetOnChange(func() {
		p.Send(stateMsg{})
	})

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run chat ui: %w", err)
	}
	return nil
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		m.spin.Tick,
		m.transition(m.ctrl.RefreshSessions),
	)
}

// transition runs a controller operation off the UI goroutine. Errors
// surface through the controller's error slot, so they are only
// logged here.
func (m model) transition(fn func(context.Context) error) tea.Cmd {
	logger := m.logger
	return func() tea.Msg {
		if err := fn(context.Background()); err != nil {
			logger.Debug("transition failed", "error", err)
		}
		return transitionDoneMsg{}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.SetWidth(max(10, m.width-sessionPaneWidth-8))
		return m, nil

	case stateMsg, transitionDoneMsg:
		m.state = m.ctrl.State()
		m.styles = themes.ForKey(m.state.ThemeKey)
		m.clampCursors()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyPressMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	// A pending confirmation swallows every key.
	if m.confirm != nil {
		pending := m.confirm
		m.confirm = nil
		if msg.String() == "y" {
			return m, pending.action
		}
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "tab":
		if m.focus == focusChat {
			m.focus = focusSessions
			m.input.Blur()
		} else {
			m.focus = focusChat
			m.input.Focus()
		}
		return m, nil

	case "ctrl+n":
		return m, m.transition(m.ctrl.CreateSession)

	case "ctrl+t":
		m.cycleTheme()
		return m, nil

	case "ctrl+d":
		if m.state.SelectedID == "" {
			return m, nil
		}
		id := m.state.SelectedID
		m.confirm = &confirmState{
			prompt: "Delete this session and all its messages? (y/n)",
			action: m.transition(func(ctx context.Context) error {
				return m.ctrl.DeleteSession(ctx, id)
			}),
		}
		return m, nil

	case "ctrl+x":
		if len(m.state.Messages) == 0 {
			return m, nil
		}
		index := m.msgCursor
		m.confirm = &confirmState{
			prompt: fmt.Sprintf("Delete message %d? (y/n)", index),
			action: m.transition(func(ctx context.Context) error {
				return m.ctrl.DeleteMessageAt(ctx, index)
			}),
		}
		return m, nil

	case "ctrl+r":
		if len(m.state.Messages) == 0 {
			return m, nil
		}
		index := m.msgCursor
		m.confirm = &confirmState{
			prompt: fmt.Sprintf("Delete message %d and everything after it? (y/n)", index),
			action: m.transition(func(ctx context.Context) error {
				return m.ctrl.RollbackTo(ctx, index)
			}),
		}
		return m, nil
	}

	if m.focus == focusSessions {
		return m.handleSessionKey(msg)
	}
	return m.handleChatKey(msg)
}

func (m model) handleSessionKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.sessionCursor > 0 {
			m.sessionCursor--
		}
	case "down", "j":
		if m.sessionCursor < len(m.state.Sessions)-1 {
			m.sessionCursor++
		}
	case "enter":
		if m.sessionCursor < len(m.state.Sessions) {
			id := m.state.Sessions[m.sessionCursor].ID
			return m, m.transition(func(ctx context.Context) error {
				return m.ctrl.SelectSession(ctx, id)
			})
		}
	}
	return m, nil
}

func (m model) handleChatKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up":
		if m.msgCursor > 0 {
			m.msgCursor--
		}
		return m, nil
	case "down":
		if m.msgCursor < len(m.state.Messages)-1 {
			m.msgCursor++
		}
		return m, nil
	case "enter":
		text := m.input.Value()
		m.input.SetValue("")
		return m, m.transition(func(ctx context.Context) error {
			return m.ctrl.SendMessage(ctx, text)
		})
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// cycleTheme advances to the next theme in registry order.
func (m *model) cycleTheme() {
	all := themes.All()
	for i, d := range all {
		if d.Key == m.state.ThemeKey {
			m.ctrl.SetTheme(all[(i+1)%len(all)].Key)
			return
		}
	}
	m.ctrl.SetTheme(themes.Default().Key)
}

// clampCursors keeps cursors valid after reconciliation shrank or
// replaced the underlying sequences; positions must not be cached
// across mutations.
func (m *model) clampCursors() {
	if m.sessionCursor >= len(m.state.Sessions) {
		m.sessionCursor = max(0, len(m.state.Sessions)-1)
	}
	if m.msgCursor >= len(m.state.Messages) {
		m.msgCursor = max(0, len(m.state.Messages)-1)
	}
}
