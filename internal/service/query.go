package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/raihansyah/sql-agent/internal/domain"
	"github.com/raihansyah/sql-agent/internal/engine"
	"github.com/raihansyah/sql-agent/internal/session"
	"github.com/rs/zerolog/log"
)

// QueryService coordinates one conversational turn: session lookup, engine
// invocation, event interpretation.
type QueryService struct {
	registry *session.Registry
}

// NewQueryService creates a new query service
func NewQueryService(registry *session.Registry) *QueryService {
	return &QueryService{registry: registry}
}

// Execute runs one turn and returns the assembled outcome
func (s *QueryService) Execute(ctx context.Context, userID, query string) (*domain.QueryOutcome, error) {
	return s.ExecuteObserved(ctx, userID, query, nil)
}

// ExecuteObserved runs one turn, passing every engine event to observe as it
// is produced. Engine failures surface as ErrQueryExecution and are not
// retried; repeated invocation is costly and not idempotent in general.
func (s *QueryService) ExecuteObserved(ctx context.Context, userID, query string, observe func(engine.Event)) (*domain.QueryOutcome, error) {
	handle, eng, err := s.registry.SessionFor(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrQueryExecution, err)
	}

	// The engine's input channel is unstructured text, so the user identity
	// rides along as a prefix the model can hand to its tools.
	input := fmt.Sprintf("[User ID: %s]\n%s", userID, query)

	stream, err := eng.Run(ctx, handle.ThreadID, input)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrQueryExecution, err)
	}

	interp := newInterpreter()
	err = engine.Drain(stream, func(ev engine.Event) error {
		interp.observe(ev)
		if observe != nil {
			observe(ev)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrQueryExecution, err)
	}

	outcome := interp.outcome(userID, query)

	log.Debug().
		Str("user_id", userID).
		Bool("has_sql", outcome.SQLQuery != "").
		Msg("turn completed")

	return outcome, nil
}

// ResetSessions clears all engine memory and returns the user id to continue
// with. The reset is global even when a user id is given: the shared engine
// holds every thread's memory in one instance.
func (s *QueryService) ResetSessions(userID string) (string, time.Time) {
	s.registry.ResetAll()

	if userID == "" {
		userID = uuid.New().String()
	}

	log.Info().Str("user_id", userID).Msg("conversation memory cleared")
	return userID, time.Now()
}
