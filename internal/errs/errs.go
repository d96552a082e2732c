// Package errs defines the error taxonomy shared by every component. Inner
// services return typed *Error values and never log; the orchestrator and the
// HTTP boundary decide how each Kind is surfaced.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a failure for callers and for HTTP status mapping
type Kind string

const (
	// KindConfig means required configuration is absent. The message names
	// every missing item, not just the first.
	KindConfig Kind = "config_error"

	// KindAuthInvalid means the generation engine rejected our credential.
	KindAuthInvalid Kind = "auth_invalid"

	// KindProvider means a payment-provider call failed or the session id
	// is unknown. No processed marker was written, so the caller may retry.
	KindProvider Kind = "provider_error"

	// KindPaymentUnpaid means the session exists but is not settled.
	KindPaymentUnpaid Kind = "payment_unpaid"

	// KindAlreadyProcessed means the session already delivered its one
	// generation. The session, not the payment, is exhausted.
	KindAlreadyProcessed Kind = "already_processed"

	// KindGeneration means the engine call failed or returned a malformed
	// result. The processed marker is left unset so a retry is possible.
	KindGeneration Kind = "generation_error"
)

// Error is a classified failure with an optional wrapped cause
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// New creates a classified error without a cause
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates a classified error with a formatted message
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a classified error that wraps an underlying cause
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

// MissingConfig builds the all-missing-at-once ConfigError
func MissingConfig(names []string) *Error {
	return Newf(KindConfig, "missing required configuration: %s", strings.Join(names, ", "))
}

// KindOf extracts the Kind from an error chain, or "" if unclassified
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
