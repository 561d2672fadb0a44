// Package models defines the data structures exchanged with the chat service.
package models

import "time"

// Message roles as reported by the service.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Session summarizes one conversation as returned by the service.
// The ID is assigned by the service and immutable; Name is derived
// server-side from the first user message.
type Session struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	MessageCount int       `json:"message_count"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Message is a single turn within a session.
//
// ID is the message's zero-based position in the session's ordered
// sequence. It is positional, not a stored key: deleting an earlier
// message shifts every later position down by one, so positions must
// not be cached across mutating operations.
type Message struct {
	ID        int       `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`

	// LocalID tags an optimistic, locally synthesized message that the
	// service has not confirmed yet. Empty on every service-returned
	// message; never sent over the wire.
	LocalID string `json:"-"`
}

// Pending reports whether the message is an unconfirmed optimistic
// placeholder.
func (m Message) Pending() bool { return m.LocalID != "" }
