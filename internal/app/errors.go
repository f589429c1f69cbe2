package app

import (
	"errors"
	"fmt"
)

// Failure taxonomy surfaced to the HTTP layer. Every operation fails with
// one of these (possibly wrapped with detail); the request boundary maps
// them to a flash message and a redirect, nothing is fatal.
var (
	// ErrValidation covers bad or missing input.
	ErrValidation = errors.New("invalid input")
	// ErrNoFile means the upload carried no usable filename. It wraps
	// ErrValidation but is mapped to its own flash message.
	ErrNoFile = fmt.Errorf("%w: no file selected", ErrValidation)
	// ErrConflict is returned when registering an email that already exists.
	ErrConflict = errors.New("email already registered")
	// ErrNotFound is returned for a missing user or file.
	ErrNotFound = errors.New("not found")
	// ErrAuth covers bad credentials and wrong file passwords.
	ErrAuth = errors.New("invalid credentials")
	// ErrPermission is returned on a delete of a missing or foreign file.
	// A missing record and a foreign record are deliberately reported the
	// same way so a non-owner can not probe for existence.
	ErrPermission = errors.New("file not found or permission denied")
	// ErrExpired is returned when accessing a file past its expiry date.
	ErrExpired = errors.New("file expired")

	// ErrCodeExpired means the verification code's window has passed; the
	// user has to register again, the code is never re-issued.
	ErrCodeExpired = errors.New("verification code expired")
	// ErrUnverified means login credentials were correct but the account
	// has not completed verification yet.
	ErrUnverified = errors.New("email not verified")
	// ErrAlreadyVerified means verification was attempted on an account
	// that is already active.
	ErrAlreadyVerified = errors.New("already verified")
)
