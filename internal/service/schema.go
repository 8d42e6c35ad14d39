package service

import (
	"context"
	"fmt"

	"github.com/raihansyah/sql-agent/internal/dbx"
	"github.com/raihansyah/sql-agent/internal/domain"
	"github.com/raihansyah/sql-agent/internal/repository/redis"
)

// SchemaService exposes target database introspection, with a Redis cache in
// front of the collaborator.
type SchemaService struct {
	db    dbx.Adapter
	cache *redis.SchemaCache
}

// NewSchemaService creates a new schema service
func NewSchemaService(db dbx.Adapter, cache *redis.SchemaCache) *SchemaService {
	return &SchemaService{db: db, cache: cache}
}

// Tables returns the target database's table names
func (s *SchemaService) Tables(ctx context.Context) ([]string, error) {
	if s.cache != nil {
		if tables, ok := s.cache.GetTables(ctx); ok {
			return tables, nil
		}
	}

	tables, err := s.db.ListTables(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCollaborator, err)
	}

	if s.cache != nil {
		// Best effort; a failed cache write never fails the read
		_ = s.cache.SetTables(ctx, tables)
	}

	return tables, nil
}

// TableDDL returns the CREATE TABLE text for one table
func (s *SchemaService) TableDDL(ctx context.Context, tableName string) (string, error) {
	if s.cache != nil {
		if info, ok := s.cache.GetTable(ctx, tableName); ok {
			return info.DDL(), nil
		}
	}

	info, err := s.db.DescribeTable(ctx, tableName)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrCollaborator, err)
	}

	if s.cache != nil {
		_ = s.cache.SetTable(ctx, info)
	}

	return info.DDL(), nil
}
