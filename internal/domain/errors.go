package domain

import "errors"

var (
	// ErrNotFound is returned when a referenced bounty, session, or user does
	// not exist. Keeping this sentinel in domain allows adapters to map it
	// consistently to 404/NOT_FOUND.
	ErrNotFound = errors.New("resource not found")
	// ErrConflict signals a lost race for an exclusive transition, most
	// importantly two claims on the same open bounty.
	ErrConflict = errors.New("conflict")
	// ErrInvalidState means the operation is not valid for the entity's
	// current lifecycle state, e.g. finishing a session that is no longer
	// active. The loser of a finish/timeout race observes this and must not
	// apply any further mutation.
	ErrInvalidState = errors.New("invalid lifecycle state")
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInsufficientFunds guards the ledger debit primitive. Unreachable
	// under the credit-only reward flow, but the primitive still refuses to
	// take a balance negative.
	ErrInsufficientFunds = errors.New("insufficient points balance")
	// ErrUnavailable wraps transient collaborator failures (storage, broker,
	// signing) so callers can distinguish retryable conditions.
	ErrUnavailable = errors.New("dependency unavailable")
)
