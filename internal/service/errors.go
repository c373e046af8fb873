package service

import "errors"

// ValidationError indicates missing or malformed caller input. Handlers
// surface it as a 4xx and never retry.
type ValidationError struct {
	Message string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return e.Message
}

// RejectionError wraps an upstream refusal into a message the voice agent
// can read back verbally.
type RejectionError struct {
	Message string
}

// Error implements the error interface.
func (e RejectionError) Error() string {
	return e.Message
}

// ErrContactUnresolved means a booking could not identify or create the
// contact it should attach to.
var ErrContactUnresolved = errors.New("could not identify or create contact")
