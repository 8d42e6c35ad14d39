package domain

import (
	"context"
	"time"
)

// UserPreference is one learned priority for a user, with the provenance that
// produced it. At most one live record exists per (user, priority key) pair.
type UserPreference struct {
	UserID        string    `json:"user_id"`
	PriorityKey   string    `json:"priority_key"`
	PriorityValue string    `json:"priority_value"`
	Context       string    `json:"context,omitempty"`
	FeedbackText  string    `json:"feedback_text,omitempty"`
	SourceQuery   string    `json:"source_query,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// PreferenceRepository persists user preferences. Provenance fields are
// write-side only; ListForUser exposes just the key-to-value mapping.
type PreferenceRepository interface {
	Upsert(ctx context.Context, pref *UserPreference) error
	ListForUser(ctx context.Context, userID string) (map[string]string, error)
	DeleteAll(ctx context.Context, userID string) (int64, error)
}
