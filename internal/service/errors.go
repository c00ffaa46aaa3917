package service

import "errors"

// Errors returned by the services. They are wrapped with context, so callers
// should compare with errors.Is. Any other error is an internal failure.
var (
	// ErrNotFound means a referenced id does not resolve.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized means the requester does not own the resource.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrValidation means a required reference or parameter is missing or invalid.
	ErrValidation = errors.New("validation failed")

	// ErrUnauthenticated means login credentials did not match.
	ErrUnauthenticated = errors.New("invalid credentials")
)
