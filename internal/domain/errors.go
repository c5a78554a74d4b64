package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals an unknown route or resource.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput signals a malformed request payload or parameter.
	ErrInvalidInput = errors.New("invalid input")
	// ErrEmptyInput signals a submit or lookup with blank input.
	ErrEmptyInput = errors.New("empty input")
	// ErrPending signals a submit while a previous commit is still settling.
	ErrPending = errors.New("commit pending")
	// ErrUnknownCategory signals a category name outside the known set.
	ErrUnknownCategory = errors.New("unknown category")
	// ErrUnknownNetwork signals a network name with no configured backend.
	ErrUnknownNetwork = errors.New("unknown network")
	// ErrSessionNotFound signals a missing or expired resolution session.
	ErrSessionNotFound = errors.New("session not found")
	// ErrBackendUnavailable signals a ledger backend failure.
	ErrBackendUnavailable = errors.New("backend unavailable")
)

// ProbeError carries the category whose probe failed.
// Resolvers downgrade it to absence; it only surfaces in logs and metrics.
type ProbeError struct {
	Category string
	Err      error
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("probe %s: %s", e.Category, e.Err.Error())
}

func (e *ProbeError) Unwrap() error { return e.Err }
