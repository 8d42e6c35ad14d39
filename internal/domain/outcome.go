package domain

import "time"

// QueryOutcome is the assembled result of one turn. SQL and RawResult are
// empty when no tool was invoked this turn, which is valid for purely
// conversational questions.
type QueryOutcome struct {
	UserID    string    `json:"user_id"`
	Query     string    `json:"query"`
	Summary   string    `json:"summary"`
	SQLQuery  string    `json:"sql_query,omitempty"`
	RawResult string    `json:"raw_result,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// QueryRequest represents a natural language query request
type QueryRequest struct {
	Query  string `json:"query" validate:"required,max=2000"`
	UserID string `json:"user_id"`
}

// PreferenceRequest represents a preference write request
type PreferenceRequest struct {
	UserID        string `json:"user_id" validate:"required"`
	PriorityKey   string `json:"priority_key" validate:"required"`
	PriorityValue string `json:"priority_value" validate:"required"`
	Context       string `json:"context,omitempty"`
	FeedbackText  string `json:"feedback_text,omitempty"`
	SourceQuery   string `json:"source_query,omitempty"`
}
