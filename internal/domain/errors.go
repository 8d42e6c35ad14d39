package domain

import "errors"

// Failure taxonomy. Callers wrap these with fmt.Errorf("%w: ...") and the API
// layer maps them to status codes with errors.Is. None are retried internally.
var (
	// ErrInvalidArgument marks malformed caller input, detected before any
	// I/O or engine call.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrStorage marks a preference store I/O failure.
	ErrStorage = errors.New("storage failure")

	// ErrQueryExecution marks a reasoning engine invocation failure.
	ErrQueryExecution = errors.New("query execution failed")

	// ErrCollaborator marks a target database introspection or execution
	// failure.
	ErrCollaborator = errors.New("database collaborator failure")
)
