package service

import (
	"context"
	"io"

	"github.com/raihansyah/sql-agent/internal/domain"
	"github.com/raihansyah/sql-agent/internal/engine"
	"github.com/stretchr/testify/mock"
)

// MockEngine mocks engine.Engine
type MockEngine struct {
	mock.Mock
}

func (m *MockEngine) Run(ctx context.Context, threadID, input string) (engine.Stream, error) {
	args := m.Called(ctx, threadID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(engine.Stream), args.Error(1)
}

func (m *MockEngine) Close() error {
	args := m.Called()
	return args.Error(0)
}

// eventStream replays a fixed event slice, then io.EOF.
type eventStream struct {
	events []engine.Event
	pos    int
	closed bool
}

func newEventStream(events ...engine.Event) *eventStream {
	return &eventStream{events: events}
}

func (s *eventStream) Next() (engine.Event, error) {
	if s.pos >= len(s.events) {
		return nil, io.EOF
	}
	ev := s.events[s.pos]
	s.pos++
	return ev, nil
}

func (s *eventStream) Close() error {
	s.closed = true
	return nil
}

// failingStream yields events then an error instead of io.EOF.
type failingStream struct {
	events []engine.Event
	pos    int
	err    error
}

func (s *failingStream) Next() (engine.Event, error) {
	if s.pos >= len(s.events) {
		return nil, s.err
	}
	ev := s.events[s.pos]
	s.pos++
	return ev, nil
}

func (s *failingStream) Close() error { return nil }

// MockPreferenceRepository mocks domain.PreferenceRepository
type MockPreferenceRepository struct {
	mock.Mock
}

func (m *MockPreferenceRepository) Upsert(ctx context.Context, pref *domain.UserPreference) error {
	args := m.Called(ctx, pref)
	return args.Error(0)
}

func (m *MockPreferenceRepository) ListForUser(ctx context.Context, userID string) (map[string]string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

func (m *MockPreferenceRepository) DeleteAll(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}
