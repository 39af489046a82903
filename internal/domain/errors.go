package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a uniqueness constraint was violated.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidInput marks request data that failed validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidState marks an entity that cannot serve the request in its current state.
	ErrInvalidState = errors.New("invalid state")
	// ErrGateway marks a payment gateway response that cannot be used.
	ErrGateway = errors.New("payment gateway error")
)
