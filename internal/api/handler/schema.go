package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/raihansyah/sql-agent/internal/api/response"
	"github.com/raihansyah/sql-agent/internal/repository/redis"
	"github.com/raihansyah/sql-agent/internal/service"
)

// SchemaHandler handles target database introspection endpoints
type SchemaHandler struct {
	schemaService *service.SchemaService
}

// NewSchemaHandler creates a new schema handler
func NewSchemaHandler(schemaService *service.SchemaService) *SchemaHandler {
	return &SchemaHandler{schemaService: schemaService}
}

// ListTables returns all table names in the target database
func (h *SchemaHandler) ListTables(w http.ResponseWriter, r *http.Request) {
	tables, err := h.schemaService.Tables(r.Context())
	if err != nil {
		response.InternalError(w, "Failed to list tables: "+err.Error())
		return
	}

	response.OK(w, map[string]any{
		"tables": tables,
		"count":  len(tables),
	})
}

// GetTableSchema returns the schema text for one table
func (h *SchemaHandler) GetTableSchema(w http.ResponseWriter, r *http.Request) {
	tableName := chi.URLParam(r, "tableName")

	ddl, err := h.schemaService.TableDDL(r.Context(), tableName)
	if err != nil {
		response.InternalError(w, "Failed to get schema: "+err.Error())
		return
	}

	response.OK(w, map[string]any{
		"table":  tableName,
		"schema": ddl,
	})
}

// FlushCache clears all cached schema entries from Redis
func FlushCache(schemaCache *redis.SchemaCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deleted, err := schemaCache.FlushAll(r.Context())
		if err != nil {
			response.InternalError(w, "failed to flush cache: "+err.Error())
			return
		}

		response.OK(w, map[string]any{
			"message":      "cache flushed successfully",
			"keys_deleted": deleted,
		})
	}
}
