package engine

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

type sliceStream struct {
	events []Event
	pos    int
	err    error
	closed bool
}

func (s *sliceStream) Next() (Event, error) {
	if s.pos >= len(s.events) {
		if s.err != nil {
			return nil, s.err
		}
		return nil, io.EOF
	}
	ev := s.events[s.pos]
	s.pos++
	return ev, nil
}

func (s *sliceStream) Close() error {
	s.closed = true
	return nil
}

func TestDrain(t *testing.T) {
	s := &sliceStream{events: []Event{
		ToolInvocation{Tool: SQLTool, Args: map[string]any{"query": "SELECT 1"}},
		ToolResult{Tool: SQLTool, Content: "1"},
		Message{Content: "done"},
	}}

	var seen []Event
	err := Drain(s, func(ev Event) error {
		seen = append(seen, ev)
		return nil
	})
	assert.NoError(t, err)
	assert.Len(t, seen, 3)
	assert.True(t, s.closed)
}

func TestDrain_NilCallback(t *testing.T) {
	s := &sliceStream{events: []Event{Message{Content: "x"}}}
	assert.NoError(t, Drain(s, nil))
	assert.True(t, s.closed)
}

func TestDrain_StreamError(t *testing.T) {
	wantErr := errors.New("stream broke")
	s := &sliceStream{events: []Event{Message{Content: "partial"}}, err: wantErr}

	err := Drain(s, nil)
	assert.ErrorIs(t, err, wantErr)
	assert.True(t, s.closed)
}

func TestDrain_CallbackError(t *testing.T) {
	wantErr := errors.New("observer failed")
	s := &sliceStream{events: []Event{Message{Content: "x"}, Message{Content: "y"}}}

	err := Drain(s, func(Event) error { return wantErr })
	assert.ErrorIs(t, err, wantErr)
	assert.True(t, s.closed)
}
