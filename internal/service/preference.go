package service

import (
	"context"
	"fmt"

	"github.com/raihansyah/sql-agent/internal/domain"
)

// PreferenceService wraps the preference store behind the API surface
type PreferenceService struct {
	repo domain.PreferenceRepository
}

// NewPreferenceService creates a new preference service
func NewPreferenceService(repo domain.PreferenceRepository) *PreferenceService {
	return &PreferenceService{repo: repo}
}

// Save creates or overwrites one preference and returns an acknowledgement
// message plus the user's current mapping.
func (s *PreferenceService) Save(ctx context.Context, req domain.PreferenceRequest) (string, map[string]string, error) {
	pref := &domain.UserPreference{
		UserID:        req.UserID,
		PriorityKey:   req.PriorityKey,
		PriorityValue: req.PriorityValue,
		Context:       req.Context,
		FeedbackText:  req.FeedbackText,
		SourceQuery:   req.SourceQuery,
	}

	if err := s.repo.Upsert(ctx, pref); err != nil {
		return "", nil, err
	}

	prefs, err := s.repo.ListForUser(ctx, req.UserID)
	if err != nil {
		return "", nil, err
	}

	msg := fmt.Sprintf("Saved priority %s=%s for user %s", req.PriorityKey, req.PriorityValue, req.UserID)
	return msg, prefs, nil
}

// List returns the key-to-value mapping for a user, empty mapping if none
func (s *PreferenceService) List(ctx context.Context, userID string) (map[string]string, error) {
	return s.repo.ListForUser(ctx, userID)
}

// DeleteAll removes every preference for a user and returns the count removed
func (s *PreferenceService) DeleteAll(ctx context.Context, userID string) (int64, error) {
	return s.repo.DeleteAll(ctx, userID)
}
