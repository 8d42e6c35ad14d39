package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/raihansyah/sql-agent/internal/domain"
)

// PreferenceRepository persists user preferences in SQLite
type PreferenceRepository struct {
	db *DB
}

// NewPreferenceRepository creates a new preference repository
func NewPreferenceRepository(db *DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// Upsert creates or overwrites the record for (user, priority key). The
// primary key constraint guarantees at most one live record per pair.
func (r *PreferenceRepository) Upsert(ctx context.Context, pref *domain.UserPreference) error {
	if strings.TrimSpace(pref.UserID) == "" {
		return fmt.Errorf("%w: user_id is required", domain.ErrInvalidArgument)
	}
	if strings.TrimSpace(pref.PriorityKey) == "" {
		return fmt.Errorf("%w: priority_key is required", domain.ErrInvalidArgument)
	}
	if strings.TrimSpace(pref.PriorityValue) == "" {
		return fmt.Errorf("%w: priority_value is required", domain.ErrInvalidArgument)
	}

	now := time.Now()
	_, err := r.db.db.ExecContext(ctx, `
		INSERT INTO user_preferences (
			user_id, priority_key, priority_value, context, feedback_text, source_query, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, priority_key) DO UPDATE SET
			priority_value = excluded.priority_value,
			context = excluded.context,
			feedback_text = excluded.feedback_text,
			source_query = excluded.source_query,
			updated_at = excluded.updated_at
	`, pref.UserID, pref.PriorityKey, pref.PriorityValue,
		pref.Context, pref.FeedbackText, pref.SourceQuery, now)
	if err != nil {
		return fmt.Errorf("%w: failed to upsert preference: %v", domain.ErrStorage, err)
	}

	pref.UpdatedAt = now
	return nil
}

// ListForUser returns the key-to-value mapping of live preferences for a user.
// Provenance columns are not surfaced here.
func (r *PreferenceRepository) ListForUser(ctx context.Context, userID string) (map[string]string, error) {
	rows, err := r.db.db.QueryContext(ctx, `
		SELECT priority_key, priority_value
		FROM user_preferences
		WHERE user_id = ?
		ORDER BY priority_key
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list preferences: %v", domain.ErrStorage, err)
	}
	defer rows.Close()

	prefs := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("%w: failed to scan preference: %v", domain.ErrStorage, err)
		}
		prefs[key] = value
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: row iteration error: %v", domain.ErrStorage, err)
	}

	return prefs, nil
}

// DeleteAll removes every record for the user and returns the number removed
func (r *PreferenceRepository) DeleteAll(ctx context.Context, userID string) (int64, error) {
	result, err := r.db.db.ExecContext(ctx, `
		DELETE FROM user_preferences WHERE user_id = ?
	`, userID)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to delete preferences: %v", domain.ErrStorage, err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: failed to count deleted rows: %v", domain.ErrStorage, err)
	}

	return count, nil
}
