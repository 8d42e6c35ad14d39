package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/raihansyah/sql-agent/internal/dbx"
	dbxsqlite "github.com/raihansyah/sql-agent/internal/dbx/sqlite"
	"github.com/raihansyah/sql-agent/internal/engine"
	"github.com/raihansyah/sql-agent/internal/repository/sqlite"
	"github.com/raihansyah/sql-agent/internal/service"
	"github.com/raihansyah/sql-agent/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEngine replays a fixed event sequence for every turn and records the
// inputs it was given.
type fakeEngine struct {
	events []engine.Event
	inputs []string
}

func (e *fakeEngine) Run(ctx context.Context, threadID, input string) (engine.Stream, error) {
	e.inputs = append(e.inputs, input)
	return &fakeStream{events: e.events}, nil
}

func (e *fakeEngine) Close() error { return nil }

type fakeStream struct {
	events []engine.Event
	pos    int
}

func (s *fakeStream) Next() (engine.Event, error) {
	if s.pos >= len(s.events) {
		return nil, io.EOF
	}
	ev := s.events[s.pos]
	s.pos++
	return ev, nil
}

func (s *fakeStream) Close() error { return nil }

func newQueryService(eng engine.Engine) *service.QueryService {
	registry := session.NewRegistry(func() (engine.Engine, error) {
		return eng, nil
	})
	return service.NewQueryService(registry)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   any             `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestHealthCheck(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	HealthCheck(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)

	var data map[string]string
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "ok", data["status"])
	assert.NotEmpty(t, data["timestamp"])
}

func TestQueryHandler_Execute(t *testing.T) {
	eng := &fakeEngine{events: []engine.Event{
		engine.ToolInvocation{Tool: engine.SQLTool, Args: map[string]any{"query": "SELECT count(*) FROM users"}},
		engine.ToolResult{Tool: engine.SQLTool, Content: "5"},
		engine.Message{Content: "There are 5 users."},
	}}
	h := NewQueryHandler(newQueryService(eng))

	body := bytes.NewBufferString(`{"query": "how many users?", "user_id": "alice"}`)
	req := httptest.NewRequest(http.MethodPost, "/query", body)
	rec := httptest.NewRecorder()

	h.Execute(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	require.True(t, env.Success)

	var data map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "alice", data["user_id"])
	assert.Equal(t, "There are 5 users.", data["summary"])
	assert.Equal(t, "SELECT count(*) FROM users", data["sql_query"])

	// User identity rides along as an input prefix
	require.Len(t, eng.inputs, 1)
	assert.Contains(t, eng.inputs[0], "[User ID: alice]")
}

func TestQueryHandler_Execute_DefaultUser(t *testing.T) {
	eng := &fakeEngine{events: []engine.Event{engine.Message{Content: "hi"}}}
	h := NewQueryHandler(newQueryService(eng))

	body := bytes.NewBufferString(`{"query": "hello"}`)
	req := httptest.NewRequest(http.MethodPost, "/query", body)
	rec := httptest.NewRecorder()

	h.Execute(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, eng.inputs, 1)
	assert.Contains(t, eng.inputs[0], "[User ID: default_user]")
}

func TestQueryHandler_Execute_BadRequests(t *testing.T) {
	h := NewQueryHandler(newQueryService(&fakeEngine{}))

	tests := []struct {
		name string
		body string
	}{
		{"missing query", `{"user_id": "alice"}`},
		{"empty query", `{"query": "", "user_id": "alice"}`},
		{"malformed json", `{"query": `},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/query", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()

			h.Execute(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func newPreferenceHandler(t *testing.T) *PreferenceHandler {
	t.Helper()

	ctx := context.Background()
	db, err := sqlite.NewDB(ctx, filepath.Join(t.TempDir(), "prefs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.EnsureSchema(ctx))

	repo := sqlite.NewPreferenceRepository(db)
	return NewPreferenceHandler(service.NewPreferenceService(repo))
}

func preferenceRouter(h *PreferenceHandler) chi.Router {
	r := chi.NewRouter()
	r.Post("/preferences", h.Save)
	r.Get("/preferences/{userID}", h.Get)
	r.Delete("/preferences/{userID}", h.Delete)
	return r
}

func TestPreferenceHandler_RoundTrip(t *testing.T) {
	r := preferenceRouter(newPreferenceHandler(t))

	// Save
	body := bytes.NewBufferString(`{"user_id": "alice", "priority_key": "currency", "priority_value": "EUR"}`)
	req := httptest.NewRequest(http.MethodPost, "/preferences", body)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	// Get
	req = httptest.NewRequest(http.MethodGet, "/preferences/alice", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	env := decodeEnvelope(t, rec)
	var data struct {
		UserID      string            `json:"user_id"`
		Preferences map[string]string `json:"preferences"`
		Count       int               `json:"count"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "alice", data.UserID)
	assert.Equal(t, map[string]string{"currency": "EUR"}, data.Preferences)
	assert.Equal(t, 1, data.Count)

	// Delete
	req = httptest.NewRequest(http.MethodDelete, "/preferences/alice", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	env = decodeEnvelope(t, rec)
	var del struct {
		DeletedCount int64 `json:"deleted_count"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &del))
	assert.Equal(t, int64(1), del.DeletedCount)
}

func TestPreferenceHandler_Save_Validation(t *testing.T) {
	r := preferenceRouter(newPreferenceHandler(t))

	body := bytes.NewBufferString(`{"user_id": "alice", "priority_key": "currency"}`)
	req := httptest.NewRequest(http.MethodPost, "/preferences", body)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func newSchemaHandler(t *testing.T) *SchemaHandler {
	t.Helper()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "target.db")

	seed, err := sql.Open("sqlite", "file:"+path)
	require.NoError(t, err)
	_, err = seed.ExecContext(ctx, "CREATE TABLE invoices (id INTEGER PRIMARY KEY, total REAL NOT NULL)")
	require.NoError(t, err)
	require.NoError(t, seed.Close())

	a := dbxsqlite.NewAdapter()
	require.NoError(t, a.Connect(ctx, dbx.ConnectionConfig{Database: path}))
	t.Cleanup(func() { a.Close() })

	return NewSchemaHandler(service.NewSchemaService(a, nil))
}

func TestSchemaHandler(t *testing.T) {
	h := newSchemaHandler(t)
	r := chi.NewRouter()
	r.Get("/tables", h.ListTables)
	r.Get("/schema/{tableName}", h.GetTableSchema)

	t.Run("list tables", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/tables", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		env := decodeEnvelope(t, rec)
		var data struct {
			Tables []string `json:"tables"`
			Count  int      `json:"count"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &data))
		assert.Equal(t, []string{"invoices"}, data.Tables)
		assert.Equal(t, 1, data.Count)
	})

	t.Run("table schema", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/schema/invoices", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		env := decodeEnvelope(t, rec)
		var data struct {
			Table  string `json:"table"`
			Schema string `json:"schema"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &data))
		assert.Equal(t, "invoices", data.Table)
		assert.Contains(t, data.Schema, "CREATE TABLE invoices")
	})

	t.Run("missing table", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/schema/missing", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestSessionHandler_Clear(t *testing.T) {
	h := NewSessionHandler(newQueryService(&fakeEngine{}))

	t.Run("echoes given user id", func(t *testing.T) {
		body := bytes.NewBufferString(`{"user_id": "alice"}`)
		req := httptest.NewRequest(http.MethodPost, "/sessions/clear", body)
		rec := httptest.NewRecorder()

		h.Clear(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		env := decodeEnvelope(t, rec)
		var data map[string]string
		require.NoError(t, json.Unmarshal(env.Data, &data))
		assert.Equal(t, "Conversation memory cleared", data["message"])
		assert.Equal(t, "alice", data["new_user_id"])
		assert.NotEmpty(t, data["timestamp"])
	})

	t.Run("mints user id without body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/sessions/clear", bytes.NewBufferString(""))
		rec := httptest.NewRecorder()

		h.Clear(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		env := decodeEnvelope(t, rec)
		var data map[string]string
		require.NoError(t, json.Unmarshal(env.Data, &data))
		assert.NotEmpty(t, data["new_user_id"])
	})
}
