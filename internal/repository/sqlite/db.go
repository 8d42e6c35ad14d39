package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps the preference store connection
type DB struct {
	db   *sql.DB
	path string
}

// NewDB opens the preference store database file
func NewDB(ctx context.Context, path string) (*DB, error) {
	if path == "" {
		return nil, fmt.Errorf("preference database path is required")
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{db: db, path: path}, nil
}

// EnsureSchema creates the preference table if it does not exist yet. Run at
// startup so a fresh database file works without a separate migrate step.
func (d *DB) EnsureSchema(ctx context.Context) error {
	_, err := d.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS user_preferences (
			user_id        TEXT NOT NULL,
			priority_key   TEXT NOT NULL,
			priority_value TEXT NOT NULL,
			context        TEXT,
			feedback_text  TEXT,
			source_query   TEXT,
			updated_at     TIMESTAMP NOT NULL,
			PRIMARY KEY (user_id, priority_key)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create preferences schema: %w", err)
	}
	return nil
}

// Ping verifies the connection is alive
func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// Close closes the database connection
func (d *DB) Close() error {
	return d.db.Close()
}
