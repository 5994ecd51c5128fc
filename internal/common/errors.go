// Package common defines sentinel errors shared by the journal components
// and both front-ends. Callers should use errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Validation errors. Shown inline, no state change.
	ErrValidation       = errors.New("validation error")
	ErrMissingFields    = fmt.Errorf("%w: all fields are required", ErrValidation)
	ErrPasswordMismatch = fmt.Errorf("%w: passwords do not match", ErrValidation)
	ErrPasswordTooShort = fmt.Errorf("%w: password must be at least 6 characters", ErrValidation)
	ErrEmptyTag         = fmt.Errorf("%w: empty tag", ErrValidation)
	ErrDuplicateTag     = fmt.Errorf("%w: duplicate tag", ErrValidation)

	// Auth errors. The session gate keeps its current state.
	ErrNotSetUp           = errors.New("no identity on this device")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAlreadySetUp       = errors.New("identity already exists")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")

	// Repository-level errors.
	ErrNotFound = errors.New("not found")
	ErrStorage  = errors.New("storage error")

	// External service failures; never surfaced as a failure of the primary action.
	ErrService = errors.New("service error")

	// Destructive operation declined by the user.
	ErrNotConfirmed = errors.New("not confirmed")
)
