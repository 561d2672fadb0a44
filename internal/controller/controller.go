// Package controller owns the client-side view of the chat service:
// the session list, the selected session, and its message history.
//
// The remote service is the durable source of truth; everything held
// here is a disposable, re-derivable cache. Each user-triggered
// operation runs as a bounded state transition: optimistic local
// mutation (where applicable), gateway call, reconciliation of local
// state with the authoritative response, and an undo of the optimistic
// mutation on failure. Observers never see a partial state survive a
// transition.
package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/raphaelgruber/parley/internal/gateway"
	"github.com/raphaelgruber/parley/internal/models"
	"github.com/raphaelgruber/parley/internal/themes"
)

// DefaultErrorClearDelay is how long a surfaced error stays in the
// error slot before it clears itself.
const DefaultErrorClearDelay = 5 * time.Second

// Gateway is the remote-service surface the controller depends on.
// *gateway.Client satisfies it; tests inject fakes.
type Gateway interface {
	ListSessions(ctx context.Context) ([]models.Session, error)
	CreateSession(ctx context.Context) (*models.Session, error)
	ListMessages(ctx context.Context, sessionID string) ([]models.Message, error)
	AppendMessage(ctx context.Context, sessionID, content string) ([]models.Message, error)
	RollbackSession(ctx context.Context, sessionID string, toIndex int) ([]models.Message, error)
	DeleteMessage(ctx context.Context, sessionID string, index int) ([]models.Message, error)
	DeleteSession(ctx context.Context, sessionID string) error
}

// Snapshot is a consistent copy of the observable state.
type Snapshot struct {
	Sessions   []models.Session
	SelectedID string
	Messages   []models.Message
	Err        string
	ThemeKey   string
	Busy       bool
}

// Controller reconciles local state with the chat service. Construct
// one per view; there is no package-level instance.
type Controller struct {
	gw     Gateway
	logger *slog.Logger
	now    func() time.Time

	errClearDelay time.Duration
	onChange      func()

	// gates serialize transitions per session so a second transition
	// against the same session waits for the first's reconciliation
	// (removes the last-write-wins race on the message sequence).
	gatesMu sync.Mutex
	gates   map[string]*sync.Mutex

	mu         sync.Mutex
	sessions   []models.Session
	selectedID string
	messages   []models.Message
	themeKey   string
	errMsg     string
	errSeq     int
	inflight   int
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithOnChange registers a callback fired after every observable state
// mutation. The callback must not call back into the controller's
// transition methods.
func WithOnChange(fn func()) Option {
	return func(c *Controller) { c.onChange = fn }
}

// WithErrorClearDelay overrides how long errors stay visible.
func WithErrorClearDelay(d time.Duration) Option {
	return func(c *Controller) { c.errClearDelay = d }
}

// WithTheme sets the initial theme key (default fallback applies).
func WithTheme(key string) Option {
	return func(c *Controller) { c.themeKey = themes.Lookup(key).Key }
}

// WithClock overrides the clock used for optimistic timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// New creates a controller over the given gateway.
func New(gw Gateway, opts ...Option) *Controller {
	c := &Controller{
		gw:            gw,
		logger:        slog.Default(),
		now:           time.Now,
		errClearDelay: DefaultErrorClearDelay,
		gates:         map[string]*sync.Mutex{},
		themeKey:      themes.Default().Key,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetOnChange registers the observer callback after construction; the
// TUI needs the running program before it can hand one over. Must be
// called before any transition starts.
func (c *Controller) SetOnChange(fn func()) {
	c.onChange = fn
}

// State returns a copy of the observable state, safe to read from any
// goroutine.
func (c *Controller) State() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Sessions:   append([]models.Session(nil), c.sessions...),
		SelectedID: c.selectedID,
		Messages:   append([]models.Message(nil), c.messages...),
		Err:        c.errMsg,
		ThemeKey:   c.themeKey,
		Busy:       c.inflight > 0,
	}
}

// SetTheme switches the active theme. Unknown or empty keys fall back
// to the built-in default.
func (c *Controller) SetTheme(key string) {
	c.mu.Lock()
	c.themeKey = themes.Lookup(key).Key
	c.mu.Unlock()
	c.notify()
}

// RefreshSessions fetches the session list and replaces the local copy
// verbatim. If the previous selection is gone (or nothing was
// selected) and sessions exist, the first session is selected and its
// messages are loaded as part of the same transition.
func (c *Controller) RefreshSessions(ctx context.Context) error {
	c.beginWork()
	defer c.endWork()

	return c.refreshSessions(ctx)
}

// refreshSessions is the shared list-refresh stage used by several
// transitions. It does not take session gates; callers that need
// serialization hold their own gate around it.
func (c *Controller) refreshSessions(ctx context.Context) error {
	sessions, err := c.gw.ListSessions(ctx)
	if err != nil {
		return c.fail("refresh sessions", err)
	}

	c.mu.Lock()
	c.sessions = sessions
	refreshID := c.ensureSelectionLocked()
	c.mu.Unlock()
	c.notify()

	c.logger.Debug("session list refreshed", "count", len(sessions))

	if refreshID == "" {
		return nil
	}
	return c.loadMessages(ctx, refreshID)
}

// ensureSelectionLocked repairs the selected-session pointer against
// the current session list. It returns the identifier whose messages
// must be (re)loaded, or "" when the selection is unchanged. Callers
// hold c.mu.
func (c *Controller) ensureSelectionLocked() string {
	if c.selectedID != "" {
		for _, s := range c.sessions {
			if s.ID == c.selectedID {
				return ""
			}
		}
	}

	if len(c.sessions) == 0 {
		c.selectedID = ""
		c.messages = nil
		return ""
	}

	c.selectedID = c.sessions[0].ID
	c.messages = nil
	return c.selectedID
}

// loadMessages fetches and replaces the history for id, provided id is
// still the selected session by the time the response arrives.
func (c *Controller) loadMessages(ctx context.Context, id string) error {
	messages, err := c.gw.ListMessages(ctx, id)
	if err != nil {
		return c.fail("load messages", err)
	}

	c.mu.Lock()
	if c.selectedID == id {
		c.messages = messages
	}
	c.mu.Unlock()
	c.notify()
	return nil
}

// SelectSession switches the selected session and loads its history.
// Empty or already-selected identifiers are a no-op. On failure the
// previous selection and history are restored.
func (c *Controller) SelectSession(ctx context.Context, id string) error {
	c.mu.Lock()
	if id == "" || id == c.selectedID {
		c.mu.Unlock()
		return nil
	}
	prevID := c.selectedID
	prevMessages := c.messages
	c.selectedID = id
	c.messages = nil
	c.mu.Unlock()
	c.notify()

	c.beginWork()
	defer c.endWork()

	gate := c.gate(id)
	gate.Lock()
	defer gate.Unlock()

	messages, err := c.gw.ListMessages(ctx, id)
	if err != nil {
		c.mu.Lock()
		if c.selectedID == id {
			c.selectedID = prevID
			c.messages = prevMessages
		}
		c.mu.Unlock()
		c.notify()
		return c.fail("select session", err)
	}

	c.mu.Lock()
	if c.selectedID == id {
		c.messages = messages
	}
	c.mu.Unlock()
	c.notify()
	return nil
}

// CreateSession asks the service for a fresh session, clears the
// displayed history, and re-derives list and selection from a full
// refresh. The service's own ordering decides which session ends up
// selected; it is usually, but not guaranteed to be, the new one.
func (c *Controller) CreateSession(ctx context.Context) error {
	c.beginWork()
	defer c.endWork()

	session, err := c.gw.CreateSession(ctx)
	if err != nil {
		return c.fail("create session", err)
	}
	c.logger.Debug("session created", "id", session.ID)

	c.mu.Lock()
	c.selectedID = ""
	c.messages = nil
	c.mu.Unlock()
	c.notify()

	return c.refreshSessions(ctx)
}

// RefreshMessages re-fetches the selected session's history. No-op
// without a selection.
func (c *Controller) RefreshMessages(ctx context.Context) error {
	c.mu.Lock()
	id := c.selectedID
	c.mu.Unlock()
	if id == "" {
		return nil
	}

	c.beginWork()
	defer c.endWork()

	gate := c.gate(id)
	gate.Lock()
	defer gate.Unlock()

	return c.loadMessages(ctx, id)
}

// SendMessage appends text to the selected session. The trimmed text
// is shown immediately as an optimistic user message; the service's
// response replaces the whole history (superseding the placeholder)
// and the session list is refreshed to pick up count and recency. On
// failure exactly the optimistic entry is removed again.
//
// Empty text or a missing selection is a silent no-op.
func (c *Controller) SendMessage(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)

	c.mu.Lock()
	id := c.selectedID
	c.mu.Unlock()
	if id == "" || text == "" {
		return nil
	}

	c.beginWork()
	defer c.endWork()

	gate := c.gate(id)
	gate.Lock()
	defer gate.Unlock()

	localID := uuid.NewString()
	c.mu.Lock()
	// The selection may have moved while this transition waited on the
	// gate; the placeholder must not land in another session's history.
	if c.selectedID != id {
		c.mu.Unlock()
		return nil
	}
	c.messages = append(c.messages, models.Message{
		ID:        len(c.messages),
		Role:      models.RoleUser,
		Content:   text,
		CreatedAt: c.now(),
		LocalID:   localID,
	})
	c.mu.Unlock()
	c.notify()

	messages, err := c.gw.AppendMessage(ctx, id, text)
	if err != nil {
		c.mu.Lock()
		c.messages = removeLocal(c.messages, localID)
		c.mu.Unlock()
		c.notify()
		return c.fail("send message", err)
	}

	c.mu.Lock()
	if c.selectedID == id {
		c.messages = messages
	}
	c.mu.Unlock()
	c.notify()

	// Second stage of the same transition: pick up the new message
	// count and recency. A failure here cannot corrupt the
	// reconciled history above.
	return c.refreshSessions(ctx)
}

// removeLocal drops the optimistic entry tagged localID, keeping order
// for everything else.
func removeLocal(msgs []models.Message, localID string) []models.Message {
	out := msgs[:0]
	for _, m := range msgs {
		if m.LocalID != localID {
			out = append(out, m)
		}
	}
	return out
}

// RollbackTo truncates the selected session at index: the message at
// that position and every later one are deleted. The service's
// returned sequence is authoritative. No-op without a selection.
func (c *Controller) RollbackTo(ctx context.Context, index int) error {
	return c.mutateHistory(ctx, "rollback", func(ctx context.Context, id string) ([]models.Message, error) {
		return c.gw.RollbackSession(ctx, id, index)
	})
}

// DeleteMessageAt removes the single message at index from the
// selected session; later messages shift down by one. Confirmation of
// this destructive action is the caller's job. No-op without a
// selection.
func (c *Controller) DeleteMessageAt(ctx context.Context, index int) error {
	return c.mutateHistory(ctx, "delete message", func(ctx context.Context, id string) ([]models.Message, error) {
		return c.gw.DeleteMessage(ctx, id, index)
	})
}

// mutateHistory runs a history-mutating gateway call against the
// selected session, replaces the local history with the authoritative
// result, and refreshes the session list. Local state stays untouched
// on failure.
func (c *Controller) mutateHistory(ctx context.Context, op string, call func(context.Context, string) ([]models.Message, error)) error {
	c.mu.Lock()
	id := c.selectedID
	c.mu.Unlock()
	if id == "" {
		return nil
	}

	c.beginWork()
	defer c.endWork()

	gate := c.gate(id)
	gate.Lock()
	defer gate.Unlock()

	messages, err := call(ctx, id)
	if err != nil {
		return c.fail(op, err)
	}

	c.mu.Lock()
	if c.selectedID == id {
		c.messages = messages
	}
	c.mu.Unlock()
	c.notify()

	return c.refreshSessions(ctx)
}

// DeleteSession removes a session (and, by cascade, its messages) on
// the service, then re-derives list and selection. When the deleted
// session was the selected one, the first remaining session takes over
// and its messages are loaded; with no sessions left, pointer and
// history are cleared. Confirmation is the caller's job.
func (c *Controller) DeleteSession(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}

	c.beginWork()
	defer c.endWork()

	gate := c.gate(id)
	gate.Lock()
	defer gate.Unlock()

	if err := c.gw.DeleteSession(ctx, id); err != nil {
		return c.fail("delete session", err)
	}
	c.logger.Debug("session deleted", "id", id)

	c.mu.Lock()
	kept := c.sessions[:0]
	for _, s := range c.sessions {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	c.sessions = kept
	if c.selectedID == id {
		c.selectedID = ""
		c.messages = nil
	}
	c.mu.Unlock()
	c.notify()

	return c.refreshSessions(ctx)
}

// gate returns the per-session transition mutex for id.
func (c *Controller) gate(id string) *sync.Mutex {
	c.gatesMu.Lock()
	defer c.gatesMu.Unlock()
	m, ok := c.gates[id]
	if !ok {
		m = &sync.Mutex{}
		c.gates[id] = m
	}
	return m
}

func (c *Controller) beginWork() {
	c.mu.Lock()
	c.inflight++
	c.mu.Unlock()
	c.notify()
}

func (c *Controller) endWork() {
	c.mu.Lock()
	c.inflight--
	c.mu.Unlock()
	c.notify()
}

func (c *Controller) notify() {
	if c.onChange != nil {
		c.onChange()
	}
}

// fail logs the gateway error, puts its user-facing rendering into the
// error slot, and schedules the slot to clear unless a newer error
// supersedes it.
func (c *Controller) fail(op string, err error) error {
	c.logger.Warn(op+" failed", "error", err)

	c.mu.Lock()
	c.errMsg = userMessage(err)
	c.errSeq++
	seq := c.errSeq
	c.mu.Unlock()
	c.notify()

	time.AfterFunc(c.errClearDelay, func() {
		c.mu.Lock()
		cleared := false
		if c.errSeq == seq && c.errMsg != "" {
			c.errMsg = ""
			cleared = true
		}
		c.mu.Unlock()
		if cleared {
			c.notify()
		}
	})

	return fmt.Errorf("%s: %w", op, err)
}

// userMessage turns a gateway error into one human-readable line.
func userMessage(err error) string {
	var te *gateway.TransportError
	if errors.As(err, &te) {
		return "Cannot reach the chat service. Is it running?"
	}

	var se *gateway.ServiceError
	if errors.As(err, &se) {
		if gateway.IsNotFound(err) {
			return "That session no longer exists on the server."
		}
		if se.Detail != "" {
			return fmt.Sprintf("The service reported an error: %s", se.Detail)
		}
		return fmt.Sprintf("The service reported an error (status %d).", se.Status)
	}

	var de *gateway.DecodeError
	if errors.As(err, &de) {
		return "The service returned an unexpected response."
	}

	return err.Error()
}
