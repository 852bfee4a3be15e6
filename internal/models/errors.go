package models

import "errors"

var (
	// ErrInvalidInput is malformed caller input on the creation endpoint.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidRequest is a malformed or unauthenticated webhook callback.
	ErrInvalidRequest = errors.New("invalid request")
	ErrNotFound       = errors.New("emoji not found")
	// ErrDependencyUnavailable marks a transient failure of the blob store,
	// the provider or the database. Callers are expected to retry.
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	// ErrStateConflict is returned by conditional updates when the stored
	// state no longer matches the expected one.
	ErrStateConflict = errors.New("emoji state changed concurrently")
	// ErrOutOfOrder is a stage-2 callback for a record that has no original image yet.
	ErrOutOfOrder = errors.New("callback arrived before its preceding stage")
)
