package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/raihansyah/sql-agent/internal/dbx"
)

const (
	schemaCachePrefix = "schema:"
	schemaCacheTTL    = 5 * time.Minute
)

// SchemaCache caches target database introspection results in Redis so
// repeated /tables and /schema reads skip the collaborator round trip.
type SchemaCache struct {
	client *Client
}

// NewSchemaCache creates a new schema cache
func NewSchemaCache(client *Client) *SchemaCache {
	return &SchemaCache{client: client}
}

// GetTables retrieves the cached table list
func (c *SchemaCache) GetTables(ctx context.Context) ([]string, bool) {
	data, err := c.client.rdb.Get(ctx, schemaCachePrefix+"tables").Bytes()
	if err != nil {
		return nil, false // cache miss
	}

	var tables []string
	if err := json.Unmarshal(data, &tables); err != nil {
		return nil, false
	}
	return tables, true
}

// SetTables caches the table list
func (c *SchemaCache) SetTables(ctx context.Context, tables []string) error {
	data, err := json.Marshal(tables)
	if err != nil {
		return fmt.Errorf("failed to marshal tables: %w", err)
	}
	return c.client.rdb.Set(ctx, schemaCachePrefix+"tables", data, schemaCacheTTL).Err()
}

// GetTable retrieves cached schema for one table
func (c *SchemaCache) GetTable(ctx context.Context, tableName string) (*dbx.TableInfo, bool) {
	data, err := c.client.rdb.Get(ctx, schemaCachePrefix+"table:"+tableName).Bytes()
	if err != nil {
		return nil, false
	}

	var info dbx.TableInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, false
	}
	return &info, true
}

// SetTable caches schema for one table
func (c *SchemaCache) SetTable(ctx context.Context, info *dbx.TableInfo) error {
	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal schema: %w", err)
	}
	return c.client.rdb.Set(ctx, schemaCachePrefix+"table:"+info.Name, data, schemaCacheTTL).Err()
}

// FlushAll removes all cached schemas
func (c *SchemaCache) FlushAll(ctx context.Context) (int64, error) {
	pattern := schemaCachePrefix + "*"
	var cursor uint64
	var deleted int64

	for {
		keys, nextCursor, err := c.client.rdb.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return deleted, fmt.Errorf("failed to scan keys: %w", err)
		}

		if len(keys) > 0 {
			count, err := c.client.rdb.Del(ctx, keys...).Result()
			if err != nil {
				return deleted, fmt.Errorf("failed to delete keys: %w", err)
			}
			deleted += count
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}

	return deleted, nil
}
