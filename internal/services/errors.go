// Package services defines the business logic of the chat proxy. This file
// centralizes common service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// Translation into user-facing messages or HTTP status codes is performed at
// the handler layer.
package services

import "errors"

var (
	// ErrSessionRequired is returned when the caller supplies an empty
	// session token.
	ErrSessionRequired = errors.New("session id is required")

	// ErrInvalidRole is returned when a submitted turn carries a role other
	// than "user" or "assistant".
	ErrInvalidRole = errors.New("role must be user or assistant")
)
