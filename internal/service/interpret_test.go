package service

import (
	"testing"

	"github.com/raihansyah/sql-agent/internal/engine"
	"github.com/stretchr/testify/assert"
)

func TestInterpreter_FullTurn(t *testing.T) {
	interp := newInterpreter()

	interp.observe(engine.ToolInvocation{Tool: "sql_db_list_tables", Args: map[string]any{}})
	interp.observe(engine.ToolResult{Tool: "sql_db_list_tables", Content: "users, orders"})
	interp.observe(engine.ToolInvocation{Tool: engine.SQLTool, Args: map[string]any{"query": "SELECT count(*) FROM users"}})
	interp.observe(engine.ToolResult{Tool: engine.SQLTool, Content: "42"})
	interp.observe(engine.Message{Content: "There are 42 users."})

	out := interp.outcome("u1", "how many users?")
	assert.Equal(t, "u1", out.UserID)
	assert.Equal(t, "how many users?", out.Query)
	assert.Equal(t, "There are 42 users.", out.Summary)
	assert.Equal(t, "SELECT count(*) FROM users", out.SQLQuery)
	assert.Equal(t, "42", out.RawResult)
	assert.False(t, out.Timestamp.IsZero())
}

func TestInterpreter_LastWins(t *testing.T) {
	interp := newInterpreter()

	// First attempt fails, engine retries with a corrected query
	interp.observe(engine.ToolInvocation{Tool: engine.SQLTool, Args: map[string]any{"query": "SELECT * FROM usr"}})
	interp.observe(engine.ToolResult{Tool: engine.SQLTool, Content: "Error: no such table: usr"})
	interp.observe(engine.ToolInvocation{Tool: engine.SQLTool, Args: map[string]any{"query": "SELECT * FROM users"}})
	interp.observe(engine.ToolResult{Tool: engine.SQLTool, Content: "1 | alice"})
	interp.observe(engine.Message{Content: "Working on it"})
	interp.observe(engine.Message{Content: "Found one user: alice."})

	out := interp.outcome("u1", "list users")
	assert.Equal(t, "SELECT * FROM users", out.SQLQuery)
	assert.Equal(t, "1 | alice", out.RawResult)
	assert.Equal(t, "Found one user: alice.", out.Summary)
}

func TestInterpreter_FallbackSummary(t *testing.T) {
	interp := newInterpreter()

	interp.observe(engine.ToolInvocation{Tool: engine.SQLTool, Args: map[string]any{"query": "SELECT 1"}})
	interp.observe(engine.ToolResult{Tool: engine.SQLTool, Content: "1"})

	out := interp.outcome("u1", "ping")
	assert.Equal(t, FallbackSummary, out.Summary)
}

func TestInterpreter_IgnoresOtherTools(t *testing.T) {
	interp := newInterpreter()

	interp.observe(engine.ToolInvocation{Tool: "sql_db_schema", Args: map[string]any{"query": "users"}})
	interp.observe(engine.ToolResult{Tool: "sql_db_schema", Content: "CREATE TABLE users (...)"})
	interp.observe(engine.Message{Content: "Here is the schema."})

	out := interp.outcome("u1", "show schema")
	assert.Empty(t, out.SQLQuery)
	assert.Empty(t, out.RawResult)
	assert.Equal(t, "Here is the schema.", out.Summary)
}

func TestInterpreter_NonStringQueryArg(t *testing.T) {
	interp := newInterpreter()

	interp.observe(engine.ToolInvocation{Tool: engine.SQLTool, Args: map[string]any{"query": 42}})

	out := interp.outcome("u1", "odd args")
	assert.Empty(t, out.SQLQuery)
}
