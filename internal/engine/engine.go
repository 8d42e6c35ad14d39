// Package engine defines the reasoning engine capability: given a thread
// reference and an utterance, produce a lazy sequence of turn events ending
// in a final answer. The engine's internals (model, tool selection, prompting)
// stay behind this boundary.
package engine

import (
	"context"
	"io"
)

// SQLTool is the designated query-execution tool name. The interpreter treats
// its invocations as "the" SQL step when extracting query text and raw results.
const SQLTool = "sql_db_query"

// Event is one element of a turn's event sequence.
// Exactly one of ToolInvocation, ToolResult, or Message.
type Event interface {
	isEvent()
}

// ToolInvocation is the engine deciding to call a tool.
type ToolInvocation struct {
	Tool string
	Args map[string]any
}

// ToolResult is the content a tool returned to the engine.
type ToolResult struct {
	Tool    string
	Content string
}

// Message is text authored directly by the reasoning step, not by a tool.
// The engine may emit intermediate partials before the final one.
type Message struct {
	Content string
}

func (ToolInvocation) isEvent() {}
func (ToolResult) isEvent()     {}
func (Message) isEvent()        {}

// Stream yields the events of one turn in order. Next returns io.EOF after the
// final event. A stream is restartable per turn (call Run again), never
// mid-turn.
type Stream interface {
	Next() (Event, error)
	Close() error
}

// Engine runs one conversational turn against the thread's accumulated memory.
type Engine interface {
	Run(ctx context.Context, threadID, input string) (Stream, error)
	Close() error
}

// Drain consumes a stream to completion, passing each event to fn. It stops on
// the first error other than io.EOF and always closes the stream.
func Drain(s Stream, fn func(Event) error) error {
	defer s.Close()
	for {
		ev, err := s.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if fn != nil {
			if err := fn(ev); err != nil {
				return err
			}
		}
	}
}
