package gateway_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/raphaelgruber/parley/internal/gateway"
	"github.com/raphaelgruber/parley/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixtureMessages is a short two-turn history in wire format.
const fixtureMessages = `[
	{"id": 0, "role": "user", "content": "hello", "created_at": "2025-06-01T10:00:00Z"},
	{"id": 1, "role": "assistant", "content": "hi there", "created_at": "2025-06-01T10:00:02Z"}
]`

func newTestClient(handler http.Handler) (*gateway.Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	return gateway.New(srv.URL, 5*time.Second), srv
}

func TestListSessions(t *testing.T) {
	var gotPath, gotMethod string
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotMethod = r.URL.Path, r.Method
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id": "abc123", "name": "first chat", "message_count": 4, "updated_at": "2025-06-01T10:00:00Z"},
			{"id": "def456", "name": "older chat", "message_count": 2, "updated_at": "2025-05-01T10:00:00Z"}
		]`))
	}))
	defer srv.Close()

	sessions, err := client.ListSessions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, gotMethod)
	assert.Equal(t, "/sessions", gotPath)

	// Service ordering must come back verbatim.
	require.Len(t, sessions, 2)
	assert.Equal(t, "abc123", sessions[0].ID)
	assert.Equal(t, "first chat", sessions[0].Name)
	assert.Equal(t, 4, sessions[0].MessageCount)
	assert.Equal(t, "def456", sessions[1].ID)
}

func TestCreateSession(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/sessions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "new1", "name": "", "message_count": 0, "updated_at": "2025-06-01T10:00:00Z"}`))
	}))
	defer srv.Close()

	session, err := client.CreateSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "new1", session.ID)
	assert.Equal(t, 0, session.MessageCount)
}

func TestListMessages(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/sessions/abc123/messages", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(fixtureMessages))
	}))
	defer srv.Close()

	messages, err := client.ListMessages(context.Background(), "abc123")
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, 0, messages[0].ID)
	assert.Equal(t, models.RoleUser, messages[0].Role)
	assert.Equal(t, "hello", messages[0].Content)
	assert.Equal(t, models.RoleAssistant, messages[1].Role)
}

func TestAppendMessage(t *testing.T) {
	var gotBody map[string]any
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/sessions/abc123/messages", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(fixtureMessages))
	}))
	defer srv.Close()

	messages, err := client.AppendMessage(context.Background(), "abc123", "hello")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"content": "hello"}, gotBody)
	assert.Len(t, messages, 2)
}

func TestRollbackSession(t *testing.T) {
	var gotBody map[string]any
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/sessions/abc123/rollback", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id": 0, "role": "user", "content": "hello", "created_at": "2025-06-01T10:00:00Z"}]`))
	}))
	defer srv.Close()

	messages, err := client.RollbackSession(context.Background(), "abc123", 1)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"to_index": float64(1)}, gotBody)
	require.Len(t, messages, 1)
	assert.Equal(t, "hello", messages[0].Content)
}

func TestDeleteMessage(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/sessions/abc123/messages/2", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(fixtureMessages))
	}))
	defer srv.Close()

	messages, err := client.DeleteMessage(context.Background(), "abc123", 2)
	require.NoError(t, err)
	assert.Len(t, messages, 2)
}

func TestDeleteSession(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/sessions/abc123", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message": "Session abc123 deleted"}`))
	}))
	defer srv.Close()

	err := client.DeleteSession(context.Background(), "abc123")
	require.NoError(t, err)
}

func TestSessionIDPathEscaping(t *testing.T) {
	var gotEscaped string
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotEscaped = r.URL.EscapedPath()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	_, err := client.ListMessages(context.Background(), "weird/id?x")
	require.NoError(t, err)
	assert.Equal(t, "/sessions/weird%2Fid%3Fx/messages", gotEscaped)
}

func TestServiceErrorWithJSONDetail(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail": "Session not found"}`))
	}))
	defer srv.Close()

	_, err := client.ListMessages(context.Background(), "missing")
	require.Error(t, err)

	var se *gateway.ServiceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.Status)
	assert.Equal(t, "Session not found", se.Detail)
	assert.True(t, gateway.IsNotFound(err))
}

func TestServiceErrorWithOpaqueBody(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream exploded"))
	}))
	defer srv.Close()

	_, err := client.ListSessions(context.Background())
	var se *gateway.ServiceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadGateway, se.Status)
	assert.Equal(t, "upstream exploded", se.Detail)
	assert.False(t, gateway.IsNotFound(err))
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := gateway.New(srv.URL, time.Second)
	srv.Close() // connection refused from here on

	_, err := client.ListSessions(context.Background())
	require.Error(t, err)

	var te *gateway.TransportError
	assert.ErrorAs(t, err, &te)
}

func TestDecodeError(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"not": "an array"}`))
	}))
	defer srv.Close()

	_, err := client.ListSessions(context.Background())
	require.Error(t, err)

	var de *gateway.DecodeError
	assert.ErrorAs(t, err, &de)
}
