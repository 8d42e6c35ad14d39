package handler

import (
	"net/http"
	"time"

	"github.com/raihansyah/sql-agent/internal/api/response"
	"github.com/raihansyah/sql-agent/internal/dbx"
	"github.com/raihansyah/sql-agent/internal/repository/sqlite"
)

// HealthCheck returns a simple health check response
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// ReadyCheck returns readiness including store and target database connectivity
func ReadyCheck(prefsDB *sqlite.DB, target dbx.Adapter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := prefsDB.Ping(r.Context()); err != nil {
			response.Error(w, http.StatusServiceUnavailable, "preference store not ready")
			return
		}

		if err := target.HealthCheck(r.Context()); err != nil {
			response.Error(w, http.StatusServiceUnavailable, "target database not ready")
			return
		}

		response.OK(w, map[string]string{
			"status": "ready",
		})
	}
}
