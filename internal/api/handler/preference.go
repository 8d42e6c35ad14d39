package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/raihansyah/sql-agent/internal/api/response"
	"github.com/raihansyah/sql-agent/internal/domain"
	"github.com/raihansyah/sql-agent/internal/service"
)

// PreferenceHandler handles user preference endpoints
type PreferenceHandler struct {
	preferenceService *service.PreferenceService
}

// NewPreferenceHandler creates a new preference handler
func NewPreferenceHandler(preferenceService *service.PreferenceService) *PreferenceHandler {
	return &PreferenceHandler{preferenceService: preferenceService}
}

// Get returns the saved preferences for a user
func (h *PreferenceHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	prefs, err := h.preferenceService.List(r.Context(), userID)
	if err != nil {
		response.InternalError(w, "Failed to retrieve preferences: "+err.Error())
		return
	}

	response.OK(w, map[string]any{
		"user_id":     userID,
		"preferences": prefs,
		"count":       len(prefs),
	})
}

// Save creates or overwrites one preference
func (h *PreferenceHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req domain.PreferenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	msg, prefs, err := h.preferenceService.Save(r.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) {
			response.BadRequest(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to save preference: "+err.Error())
		return
	}

	response.OK(w, map[string]any{
		"message":     msg,
		"user_id":     req.UserID,
		"preferences": prefs,
	})
}

// Delete removes all preferences for a user
func (h *PreferenceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	count, err := h.preferenceService.DeleteAll(r.Context(), userID)
	if err != nil {
		response.InternalError(w, "Failed to delete preferences: "+err.Error())
		return
	}

	response.OK(w, map[string]any{
		"message":       "preferences deleted",
		"user_id":       userID,
		"deleted_count": count,
	})
}
