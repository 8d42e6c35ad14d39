// Package gemini implements the reasoning engine on Gemini function calling.
// Each thread keeps its own chat history; the agent loop executes tool calls
// against the target database and the preference store, surfacing every step
// as a turn event.
package gemini

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/raihansyah/sql-agent/internal/dbx"
	"github.com/raihansyah/sql-agent/internal/domain"
	"github.com/raihansyah/sql-agent/internal/engine"
	"google.golang.org/api/option"
)

const (
	defaultModel = "gemini-2.0-flash"

	// maxToolRounds bounds the tool-call loop for one turn so a confused
	// model cannot spin forever.
	maxToolRounds = 8
)

const systemPrompt = `You are a SQL assistant. Answer questions about the connected
database by inspecting its schema and running read-only SQL queries with the
provided tools. The user message is prefixed with the caller's user id; pass it
to the preference tools when the user states or implies a priority (e.g. cost,
coverage, speed). Consult stored priorities before planning a query when they
could change the answer. Always finish with a short natural language summary of
what you found.`

// Config holds Gemini engine settings
type Config struct {
	APIKey       string
	Model        string
	MaxRows      int
	QueryTimeout time.Duration
}

// Engine is a Gemini-backed reasoning engine. One instance is shared by all
// users for the process lifetime; thread memory lives in the threads map.
type Engine struct {
	client *genai.Client
	model  *genai.GenerativeModel
	db     dbx.Adapter
	prefs  domain.PreferenceRepository
	cfg    Config

	mu      sync.Mutex
	threads map[string][]*genai.Content
}

// New creates the engine and verifies the API client can be constructed
func New(ctx context.Context, cfg Config, db dbx.Adapter, prefs domain.PreferenceRepository) (*Engine, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.MaxRows <= 0 {
		cfg.MaxRows = 1000
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := client.GenerativeModel(cfg.Model)
	var temperature float32 = 0.0
	model.Temperature = &temperature
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemPrompt)},
	}
	model.Tools = toolDeclarations()

	return &Engine{
		client:  client,
		model:   model,
		db:      db,
		prefs:   prefs,
		cfg:     cfg,
		threads: make(map[string][]*genai.Content),
	}, nil
}

// Close releases the API client
func (e *Engine) Close() error {
	return e.client.Close()
}

// Run executes one conversational turn for the thread and returns a lazy
// event stream. The returned stream must be drained or closed.
func (e *Engine) Run(ctx context.Context, threadID, input string) (engine.Stream, error) {
	cs := e.model.StartChat()

	e.mu.Lock()
	cs.History = append([]*genai.Content{}, e.threads[threadID]...)
	e.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	events := make(chan engine.Event)
	errc := make(chan error, 1)

	go func() {
		defer close(events)

		if err := e.runTurn(ctx, cs, events, input); err != nil {
			errc <- err
			return
		}

		e.mu.Lock()
		e.threads[threadID] = cs.History
		e.mu.Unlock()
	}()

	return &stream{events: events, errc: errc, cancel: cancel}, nil
}

// runTurn drives the send/tool-call loop for one turn, emitting events in
// the order they are observed.
func (e *Engine) runTurn(ctx context.Context, cs *genai.ChatSession, events chan<- engine.Event, input string) error {
	resp, err := cs.SendMessage(ctx, genai.Text(input))
	if err != nil {
		return fmt.Errorf("gemini generation error: %w", err)
	}

	for round := 0; round < maxToolRounds; round++ {
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
			return fmt.Errorf("empty response from gemini")
		}

		var replies []genai.Part
		for _, part := range resp.Candidates[0].Content.Parts {
			switch p := part.(type) {
			case genai.Text:
				if strings.TrimSpace(string(p)) == "" {
					continue
				}
				if err := emit(ctx, events, engine.Message{Content: string(p)}); err != nil {
					return err
				}

			case genai.FunctionCall:
				if err := emit(ctx, events, engine.ToolInvocation{Tool: p.Name, Args: p.Args}); err != nil {
					return err
				}

				out := e.callTool(ctx, p.Name, p.Args)
				if err := emit(ctx, events, engine.ToolResult{Tool: p.Name, Content: out}); err != nil {
					return err
				}

				replies = append(replies, genai.FunctionResponse{
					Name:     p.Name,
					Response: map[string]any{"result": out},
				})
			}
		}

		if len(replies) == 0 {
			return nil
		}

		resp, err = cs.SendMessage(ctx, replies...)
		if err != nil {
			return fmt.Errorf("gemini generation error: %w", err)
		}
	}

	return fmt.Errorf("tool call limit exceeded (%d rounds)", maxToolRounds)
}

func emit(ctx context.Context, events chan<- engine.Event, ev engine.Event) error {
	select {
	case events <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// callTool executes one tool call. Failures are returned as tool output text
// so the model can recover or report them.
func (e *Engine) callTool(ctx context.Context, name string, args map[string]any) string {
	switch name {
	case "sql_db_list_tables":
		tables, err := e.db.ListTables(ctx)
		if err != nil {
			return "Error: " + err.Error()
		}
		return strings.Join(tables, ", ")

	case "sql_db_schema":
		var ddls []string
		for _, t := range strings.Split(stringArg(args, "table_names"), ",") {
			t = strings.TrimSpace(t)
			if t == "" {
				continue
			}
			info, err := e.db.DescribeTable(ctx, t)
			if err != nil {
				return "Error: " + err.Error()
			}
			ddls = append(ddls, info.DDL())
		}
		return strings.Join(ddls, "\n\n")

	case engine.SQLTool:
		result, err := e.db.ExecuteQuery(ctx, stringArg(args, "query"), dbx.QueryOptions{
			MaxRows: e.cfg.MaxRows,
			Timeout: e.cfg.QueryTimeout,
		})
		if err != nil {
			return "Error: " + err.Error()
		}
		return result.Text()

	case "get_user_priorities":
		prefs, err := e.prefs.ListForUser(ctx, stringArg(args, "user_id"))
		if err != nil {
			return "Error: " + err.Error()
		}
		if len(prefs) == 0 {
			return "No stored priorities for this user."
		}
		var b strings.Builder
		for k, v := range prefs {
			fmt.Fprintf(&b, "%s: %s\n", k, v)
		}
		return b.String()

	case "update_user_priority":
		pref := &domain.UserPreference{
			UserID:        stringArg(args, "user_id"),
			PriorityKey:   stringArg(args, "priority_key"),
			PriorityValue: stringArg(args, "priority_value"),
			Context:       stringArg(args, "context"),
			FeedbackText:  stringArg(args, "feedback_text"),
			SourceQuery:   stringArg(args, "source_query"),
		}
		if err := e.prefs.Upsert(ctx, pref); err != nil {
			return "Error: " + err.Error()
		}
		return fmt.Sprintf("Saved priority %s=%s for user %s", pref.PriorityKey, pref.PriorityValue, pref.UserID)

	default:
		return fmt.Sprintf("Error: unknown tool %q", name)
	}
}

func stringArg(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return v
}

func toolDeclarations() []*genai.Tool {
	return []*genai.Tool{{
		FunctionDeclarations: []*genai.FunctionDeclaration{
			{
				Name:        "sql_db_list_tables",
				Description: "List the tables available in the database.",
			},
			{
				Name:        "sql_db_schema",
				Description: "Get the schema (CREATE TABLE text) for a comma-separated list of tables.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"table_names": {Type: genai.TypeString, Description: "Comma-separated table names"},
					},
					Required: []string{"table_names"},
				},
			},
			{
				Name:        engine.SQLTool,
				Description: "Execute a read-only SQL query and return the rows.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"query": {Type: genai.TypeString, Description: "The SQL query to execute"},
					},
					Required: []string{"query"},
				},
			},
			{
				Name:        "get_user_priorities",
				Description: "Retrieve the stored priorities for a user as key: value lines.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"user_id": {Type: genai.TypeString},
					},
					Required: []string{"user_id"},
				},
			},
			{
				Name:        "update_user_priority",
				Description: "Save or overwrite one priority for a user, with optional provenance.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"user_id":        {Type: genai.TypeString},
						"priority_key":   {Type: genai.TypeString, Description: "e.g. cost, coverage"},
						"priority_value": {Type: genai.TypeString, Description: "e.g. low, high"},
						"context":        {Type: genai.TypeString},
						"feedback_text":  {Type: genai.TypeString},
						"source_query":   {Type: genai.TypeString},
					},
					Required: []string{"user_id", "priority_key", "priority_value"},
				},
			},
		},
	}}
}

// stream adapts the turn goroutine's channel to engine.Stream
type stream struct {
	events <-chan engine.Event
	errc   <-chan error
	cancel context.CancelFunc
}

func (s *stream) Next() (engine.Event, error) {
	ev, ok := <-s.events
	if !ok {
		select {
		case err := <-s.errc:
			return nil, err
		default:
			return nil, io.EOF
		}
	}
	return ev, nil
}

func (s *stream) Close() error {
	s.cancel()
	return nil
}
