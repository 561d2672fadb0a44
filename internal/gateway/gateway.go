// Package gateway is the typed client for the remote chat service.
//
// It maps each session operation onto the service's JSON/HTTP contract
// and back into typed results or errors. The gateway keeps no state
// beyond the embedded HTTP client, caches nothing, and never retries;
// retry policy, if any, belongs to the caller.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/raphaelgruber/parley/internal/metrics"
	"github.com/raphaelgruber/parley/internal/models"
)

// DefaultServerURL is where the chat service listens when run locally.
// The service mounts its routes under /api.
const DefaultServerURL = "http://localhost:8000/api"

// Client talks to the chat service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	collector  *metrics.Collector
}

// New creates a gateway client.
// If baseURL is empty, uses the PARLEY_SERVER_URL env var or the local
// default. A zero timeout means no client-side timeout; the service is
// expected to answer eventually (AI replies can take a while).
func New(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = os.Getenv("PARLEY_SERVER_URL")
	}
	if baseURL == "" {
		baseURL = DefaultServerURL
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// SetMetrics attaches a collector; every request records its timing
// under the operation name. Nil disables collection.
func (c *Client) SetMetrics(m *metrics.Collector) {
	c.collector = m
}

// sendMessageRequest is the request payload for AppendMessage.
type sendMessageRequest struct {
	Content string `json:"content"`
}

// rollbackRequest is the request payload for RollbackSession.
type rollbackRequest struct {
	ToIndex int `json:"to_index"`
}

// errorBody matches the service's structured error responses.
type errorBody struct {
	Detail  string `json:"detail"`
	Message string `json:"message"`
}

// do executes one request against the service and decodes the response
// into out (unless out is nil). Errors are classified into
// TransportError / ServiceError / DecodeError. Timings are recorded
// under op when a collector is attached.
func (c *Client) do(ctx context.Context, op, method, path string, reqBody, out any) (err error) {
	if c.collector != nil {
		start := time.Now()
		defer func() {
			c.collector.RecordTiming(op, time.Since(start), err != nil)
		}()
	}

	var body io.Reader
	if reqBody != nil {
		buf, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &ServiceError{
			Status: resp.StatusCode,
			Detail: errorDetail(resp.Header.Get("Content-Type"), respBody),
		}
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return &DecodeError{Err: err}
		}
	}

	return nil
}

// errorDetail extracts the service's error text from a non-success
// body: structured bodies are parsed, anything else is opaque text.
func errorDetail(contentType string, body []byte) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err == nil && mediaType == "application/json" {
		var eb errorBody
		if json.Unmarshal(body, &eb) == nil {
			if eb.Detail != "" {
				return eb.Detail
			}
			if eb.Message != "" {
				return eb.Message
			}
		}
	}
	return strings.TrimSpace(string(body))
}

// ListSessions returns all sessions in the service's own ordering
// (most recently updated first); the client never reorders them.
func (c *Client) ListSessions(ctx context.Context) ([]models.Session, error) {
	var sessions []models.Session
	if err := c.do(ctx, "list_sessions", http.MethodGet, "/sessions", nil, &sessions); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

// CreateSession creates an empty session. The returned Session carries
// the service-assigned identifier and a zero message count.
func (c *Client) CreateSession(ctx context.Context) (*models.Session, error) {
	var session models.Session
	if err := c.do(ctx, "create_session", http.MethodPost, "/sessions", nil, &session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return &session, nil
}

// ListMessages returns the ordered message history of a session.
func (c *Client) ListMessages(ctx context.Context, sessionID string) ([]models.Message, error) {
	var messages []models.Message
	path := fmt.Sprintf("/sessions/%s/messages", url.PathEscape(sessionID))
	if err := c.do(ctx, "list_messages", http.MethodGet, path, nil, &messages); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return messages, nil
}

// AppendMessage sends a user message. The service appends it, produces
// the assistant reply synchronously, and returns the full new history.
// Callers must pass content that is non-empty after trimming; the
// gateway does not re-validate.
func (c *Client) AppendMessage(ctx context.Context, sessionID, content string) ([]models.Message, error) {
	var messages []models.Message
	path := fmt.Sprintf("/sessions/%s/messages", url.PathEscape(sessionID))
	if err := c.do(ctx, "send_message", http.MethodPost, path, sendMessageRequest{Content: content}, &messages); err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}
	return messages, nil
}

// RollbackSession deletes the message at toIndex and everything after
// it, returning the resulting history. The service is the final
// arbiter of bounds; out-of-range indices come back as a ServiceError.
func (c *Client) RollbackSession(ctx context.Context, sessionID string, toIndex int) ([]models.Message, error) {
	var messages []models.Message
	path := fmt.Sprintf("/sessions/%s/rollback", url.PathEscape(sessionID))
	if err := c.do(ctx, "rollback_session", http.MethodPost, path, rollbackRequest{ToIndex: toIndex}, &messages); err != nil {
		return nil, fmt.Errorf("rollback session: %w", err)
	}
	return messages, nil
}

// DeleteMessage removes exactly the message at index; later positions
// shift down by one. Returns the resulting history.
func (c *Client) DeleteMessage(ctx context.Context, sessionID string, index int) ([]models.Message, error) {
	var messages []models.Message
	path := fmt.Sprintf("/sessions/%s/messages/%s", url.PathEscape(sessionID), strconv.Itoa(index))
	if err := c.do(ctx, "delete_message", http.MethodDelete, path, nil, &messages); err != nil {
		return nil, fmt.Errorf("delete message: %w", err)
	}
	return messages, nil
}

// deleteSessionResponse is the confirmation body for DeleteSession.
type deleteSessionResponse struct {
	Message string `json:"message"`
}

// DeleteSession removes a session and all its messages.
func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	var confirmation deleteSessionResponse
	path := fmt.Sprintf("/sessions/%s", url.PathEscape(sessionID))
	if err := c.do(ctx, "delete_session", http.MethodDelete, path, nil, &confirmation); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
