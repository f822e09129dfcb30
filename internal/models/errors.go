package models

import "errors"

// Error taxonomy for the identity/session/audit core. Callers classify
// failures with errors.Is and decide whether to degrade to defaults
// (NotFound, Validation) or propagate (Storage).
var (
	// ErrNotFound covers absent accounts, sessions and open login entries.
	// It resolves to a no-op or empty result, never a crash.
	ErrNotFound = errors.New("not found")

	// ErrValidation covers malformed values from untrusted input. Callers
	// clamp or fall back to defaults rather than reject the request.
	ErrValidation = errors.New("validation failed")

	// ErrStorage covers persistence-layer failures. Audit writes surface it
	// to the caller; losing an audit record is a correctness issue.
	ErrStorage = errors.New("storage failure")
)
