// Package engine abstracts the external content-generation service. The rest
// of the system never sees provider wire formats, only structured JSON output
// and typed errors.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
)

// Engine generates a structured JSON document for a prompt
type Engine interface {
	GenerateStructured(ctx context.Context, req Request) (*Response, error)
}

// Request describes one structured generation call
type Request struct {
	// System is the system instruction (the persona template)
	System string
	// Prompt is the user-facing content
	Prompt string
	// Schema is a JSON schema the response must conform to
	Schema json.RawMessage
	// Model overrides the engine's default model when non-empty
	Model string
	// Temperature controls randomness; zero means provider default
	Temperature float64
}

// Response carries the raw structured output
type Response struct {
	Data json.RawMessage
}

// Error codes distinguish engine failures that callers treat differently
const (
	CodeAuthentication = "authentication_error"
	CodeRateLimit      = "rate_limit_exceeded"
	CodeInvalidRequest = "invalid_request"
	CodeServerError    = "server_error"
	CodeTimeout        = "timeout"
	CodeRefusal        = "refusal"
	CodeUnknown        = "unknown_error"
)

// Error is a typed engine failure carrying the upstream status code, so
// callers classify by code instead of matching on message text
type Error struct {
	Code       string
	Message    string
	StatusCode int
	cause      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("engine error (%s): %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// NewError creates a typed engine error
func NewError(code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}
