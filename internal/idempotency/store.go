// Package idempotency enforces at-most-once generation per paid session.
// The marker is claimed before the engine runs and released if the engine
// fails, so a transient upstream failure never locks out a paid user.
package idempotency

import "context"

// Outcome reports whether the caller won the claim on a session
type Outcome int

const (
	// JustMarked means this caller claimed the session
	JustMarked Outcome = iota
	// AlreadyMarked means the session was claimed earlier
	AlreadyMarked
)

// Store persists the processed marker for payment sessions
type Store interface {
	// TryMarkProcessed claims the session. Exactly one caller per session id
	// observes JustMarked when the backend supports atomic writes.
	TryMarkProcessed(ctx context.Context, sessionID string) (Outcome, error)

	// Unmark releases a claim after a failed generation so the paid session
	// stays retryable. Best-effort: callers log but do not fail on error.
	Unmark(ctx context.Context, sessionID string) error
}
