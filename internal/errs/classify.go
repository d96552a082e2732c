package errs

import (
	"errors"

	"github.com/IncDrops/breakup/internal/engine"
	"github.com/IncDrops/breakup/internal/stripeapi"
)

// FromEngine classifies a generation-engine failure. Classification uses the
// engine's structured error codes, never substring matching on message text.
func FromEngine(err error) *Error {
	var e *engine.Error
	if errors.As(err, &e) {
		if e.Code == engine.CodeAuthentication {
			return Wrap(KindAuthInvalid,
				e.Message+" (check the GEMINI_API_KEY credential and restart the process)", err)
		}
		return Wrap(KindGeneration, e.Message, err)
	}
	return Wrap(KindGeneration, err.Error(), err)
}

// FromProvider classifies a payment-provider failure
func FromProvider(err error) *Error {
	var e *stripeapi.APIError
	if errors.As(err, &e) {
		return Wrap(KindProvider, e.Message, err)
	}
	return Wrap(KindProvider, err.Error(), err)
}
