// Package dbx is the narrow capability over the relational database being
// queried: list tables, describe a table, execute a read-only query. One
// target database is configured per process.
package dbx

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// TableInfo contains table metadata
type TableInfo struct {
	Name       string       `json:"name"`
	SchemaName string       `json:"schema_name,omitempty"`
	Columns    []ColumnInfo `json:"columns"`
	RowCount   *int64       `json:"row_count,omitempty"`
}

// ColumnInfo contains column metadata
type ColumnInfo struct {
	Name       string `json:"name"`
	DataType   string `json:"data_type"`
	Nullable   bool   `json:"nullable"`
	PrimaryKey bool   `json:"primary_key"`
}

// DDL renders the table as CREATE TABLE text for display and LLM context.
func (t *TableInfo) DDL() string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE %s (\n", t.Name)
	for i, col := range t.Columns {
		if i > 0 {
			b.WriteString(",\n")
		}
		fmt.Fprintf(&b, "  %s %s", col.Name, col.DataType)
		if !col.Nullable {
			b.WriteString(" NOT NULL")
		}
		if col.PrimaryKey {
			b.WriteString(" PRIMARY KEY")
		}
	}
	b.WriteString("\n);")
	return b.String()
}

// QueryResult contains query execution result
type QueryResult struct {
	Columns   []string `json:"columns"`
	Rows      [][]any  `json:"rows"`
	RowCount  int      `json:"row_count"`
	Truncated bool     `json:"truncated"`
}

// Text renders the result as pipe-separated rows, the form handed back to the
// reasoning engine as tool output.
func (r *QueryResult) Text() string {
	var b strings.Builder
	b.WriteString(strings.Join(r.Columns, " | "))
	b.WriteString("\n")
	for _, row := range r.Rows {
		parts := make([]string, len(row))
		for i, v := range row {
			parts[i] = fmt.Sprint(v)
		}
		b.WriteString(strings.Join(parts, " | "))
		b.WriteString("\n")
	}
	if r.Truncated {
		b.WriteString("(truncated)\n")
	}
	return b.String()
}

// QueryOptions contains query execution options
type QueryOptions struct {
	MaxRows int
	Timeout time.Duration
}

// ConnectionConfig contains target database connection parameters. For
// sqlite, Database holds the file path.
type ConnectionConfig struct {
	Host           string
	Port           int
	Database       string
	Username       string
	Password       string
	SSLMode        string
	MaxRows        int
	TimeoutSeconds int
}

// Adapter defines the interface for target database adapters
type Adapter interface {
	// DatabaseType returns the database type identifier (postgres, mysql, sqlite)
	DatabaseType() string

	// Connect establishes connection to the database
	Connect(ctx context.Context, config ConnectionConfig) error

	// Close closes the connection
	Close() error

	// HealthCheck verifies connection is alive
	HealthCheck(ctx context.Context) error

	// ListTables returns list of table names
	ListTables(ctx context.Context) ([]string, error)

	// DescribeTable returns detailed table schema
	DescribeTable(ctx context.Context, tableName string) (*TableInfo, error)

	// ValidateQuery validates SQL is safe to execute
	ValidateQuery(sql string) error

	// ExecuteQuery executes a read-only SQL query
	ExecuteQuery(ctx context.Context, sql string, opts QueryOptions) (*QueryResult, error)
}
