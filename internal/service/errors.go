package service

import "errors"

// Domain failure sentinels. The HTTP layer maps them to response codes;
// callers inside the module test them with errors.Is.
var (
	// ErrInvalidState means the operation is not valid for the session's
	// current state (e.g. submitting an answer to a FINISHED session).
	ErrInvalidState = errors.New("operation not valid for session state")

	// ErrMalformedAnswer means the submitted answer does not parse for the
	// current question's answer type. The session is left untouched.
	ErrMalformedAnswer = errors.New("malformed answer")

	// ErrExhaustedBank means the question bank has no eligible question for
	// the requested level.
	ErrExhaustedBank = errors.New("question bank exhausted")

	// ErrNotFound means the session or result identifier is unknown.
	ErrNotFound = errors.New("not found")

	// ErrConcurrentModification means a concurrent request already holds the
	// session's submit lock; at most one of the racing submissions applies.
	ErrConcurrentModification = errors.New("concurrent session modification")

	// ErrInvalidPassword means the supplied admin password does not match.
	ErrInvalidPassword = errors.New("invalid admin password")
)
