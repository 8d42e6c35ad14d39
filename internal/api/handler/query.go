package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/raihansyah/sql-agent/internal/api/response"
	"github.com/raihansyah/sql-agent/internal/domain"
	"github.com/raihansyah/sql-agent/internal/service"
)

var validate = validator.New()

// defaultUserID is assumed when a request carries no user identifier
const defaultUserID = "default_user"

// QueryHandler handles natural language query endpoints
type QueryHandler struct {
	queryService *service.QueryService
}

// NewQueryHandler creates a new query handler
func NewQueryHandler(queryService *service.QueryService) *QueryHandler {
	return &QueryHandler{queryService: queryService}
}

// Execute runs one conversational turn against the reasoning engine
func (h *QueryHandler) Execute(w http.ResponseWriter, r *http.Request) {
	var req domain.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if req.UserID == "" {
		req.UserID = defaultUserID
	}

	if err := validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	outcome, err := h.queryService.Execute(r.Context(), req.UserID, req.Query)
	if err != nil {
		response.InternalError(w, "Query execution failed: "+err.Error())
		return
	}

	response.OK(w, outcome)
}
