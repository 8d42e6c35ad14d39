package service

import (
	"time"

	"github.com/raihansyah/sql-agent/internal/domain"
	"github.com/raihansyah/sql-agent/internal/engine"
)

// FallbackSummary is substituted when a turn produced no assistant message
const FallbackSummary = "Query processed successfully"

// interpreter folds one turn's event sequence into a QueryOutcome. Each field
// is last-wins: the engine may retry a query or emit partial messages, and
// only the latest of each counts. One interpreter serves exactly one turn.
type interpreter struct {
	summary   string
	sqlQuery  string
	rawResult string
}

func newInterpreter() *interpreter {
	return &interpreter{}
}

func (i *interpreter) observe(ev engine.Event) {
	switch e := ev.(type) {
	case engine.ToolInvocation:
		if e.Tool == engine.SQLTool {
			if q, ok := e.Args["query"].(string); ok {
				i.sqlQuery = q
			}
		}
	case engine.ToolResult:
		if e.Tool == engine.SQLTool {
			i.rawResult = e.Content
		}
	case engine.Message:
		i.summary = e.Content
	}
}

func (i *interpreter) outcome(userID, query string) *domain.QueryOutcome {
	summary := i.summary
	if summary == "" {
		summary = FallbackSummary
	}

	return &domain.QueryOutcome{
		UserID:    userID,
		Query:     query,
		Summary:   summary,
		SQLQuery:  i.sqlQuery,
		RawResult: i.rawResult,
		Timestamp: time.Now(),
	}
}
