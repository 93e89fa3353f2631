package service

import "errors"

var (
	// ErrSessionNotFound means the join code resolves to nothing
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExpired means the session exists but has ended or aged out.
	// Kept distinct from ErrSessionNotFound so clients can show "session
	// has ended" instead of a generic error.
	ErrSessionExpired = errors.New("session has ended")

	// ErrForbidden means the caller is not the session's trainer
	ErrForbidden = errors.New("not the session trainer")

	// ErrValidation wraps malformed-input failures
	ErrValidation = errors.New("invalid request")
)
