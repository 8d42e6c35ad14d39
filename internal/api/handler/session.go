package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/raihansyah/sql-agent/internal/api/response"
	"github.com/raihansyah/sql-agent/internal/service"
)

// SessionHandler handles conversation memory endpoints
type SessionHandler struct {
	queryService *service.QueryService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(queryService *service.QueryService) *SessionHandler {
	return &SessionHandler{queryService: queryService}
}

// Clear drops all conversation memory. The engine keeps every thread in one
// shared instance, so the reset is global even when a user id is supplied;
// the id is echoed back (or minted) for the client to continue with.
func (h *SessionHandler) Clear(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"user_id"`
	}
	// Body is optional
	_ = json.NewDecoder(r.Body).Decode(&req)

	userID, ts := h.queryService.ResetSessions(req.UserID)

	response.OK(w, map[string]any{
		"message":     "Conversation memory cleared",
		"new_user_id": userID,
		"timestamp":   ts.Format(time.RFC3339),
	})
}
