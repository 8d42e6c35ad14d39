package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/raihansyah/sql-agent/internal/engine"
	"github.com/raihansyah/sql-agent/internal/service"
	"github.com/rs/zerolog/log"
)

// Frame is one outbound message on the streaming channel. Status carries the
// turn lifecycle (processing, completed, error); Type carries the incremental
// events in between (tool_call, raw_result, message).
type Frame struct {
	Status    string         `json:"status,omitempty"`
	Type      string         `json:"type,omitempty"`
	UserID    string         `json:"user_id,omitempty"`
	Query     string         `json:"query,omitempty"`
	Tool      string         `json:"tool,omitempty"`
	Args      map[string]any `json:"args,omitempty"`
	Content   string         `json:"content,omitempty"`
	SQLQuery  string         `json:"sql_query,omitempty"`
	Timestamp string         `json:"timestamp,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// inboundFrame is one client message: a query to run
type inboundFrame struct {
	Query string `json:"query"`
}

// WSHandler streams turn progress over a persistent websocket, one channel
// per connected user.
type WSHandler struct {
	queryService *service.QueryService
	upgrader     websocket.Upgrader
}

// NewWSHandler creates a new websocket handler
func NewWSHandler(queryService *service.QueryService) *WSHandler {
	return &WSHandler{
		queryService: queryService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browser clients connect cross-origin; auth is out of scope
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Serve upgrades the connection and runs the per-channel loop. The loop is
// single-threaded for its own channel: frames go out in the order produced.
// A failed turn emits an error frame and the loop keeps listening; only
// disconnect ends it.
func (h *WSHandler) Serve(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	log.Info().Str("user_id", userID).Msg("websocket connected")

	for {
		var in inboundFrame
		if err := conn.ReadJSON(&in); err != nil {
			log.Info().Str("user_id", userID).Msg("websocket disconnected")
			return
		}

		if strings.TrimSpace(in.Query) == "" {
			h.write(conn, Frame{Error: "Query is required"})
			continue
		}

		h.write(conn, Frame{
			Status: "processing",
			UserID: userID,
			Query:  in.Query,
		})

		h.runTurn(conn, userID, in.Query)
	}
}

// runTurn executes one turn and streams its events. It uses a background
// context on purpose: a disconnect mid-turn aborts only the channel loop,
// not the engine invocation already in flight. That one finishes and its
// result is discarded. Known limitation.
func (h *WSHandler) runTurn(conn *websocket.Conn, userID, query string) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Interface("panic", rec).Msg("turn panicked")
			h.write(conn, Frame{Status: "error", Error: "internal error"})
		}
	}()

	outcome, err := h.queryService.ExecuteObserved(context.Background(), userID, query, func(ev engine.Event) {
		switch e := ev.(type) {
		case engine.ToolInvocation:
			h.write(conn, Frame{Type: "tool_call", Tool: e.Tool, Args: e.Args})
		case engine.ToolResult:
			if e.Tool == engine.SQLTool {
				h.write(conn, Frame{Type: "raw_result", Content: e.Content})
			}
		case engine.Message:
			h.write(conn, Frame{Type: "message", Content: e.Content})
		}
	})
	if err != nil {
		h.write(conn, Frame{Status: "error", Error: err.Error()})
		return
	}

	h.write(conn, Frame{
		Status:    "completed",
		SQLQuery:  outcome.SQLQuery,
		Timestamp: outcome.Timestamp.Format(time.RFC3339),
	})
}

func (h *WSHandler) write(conn *websocket.Conn, f Frame) {
	if err := conn.WriteJSON(f); err != nil {
		log.Debug().Err(err).Msg("websocket write failed")
	}
}
