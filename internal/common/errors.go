package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Validation errors for user supplied input.
	ErrValidation = errors.New("validation error")

	// Auth errors.
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrWrongPassphrase  = errors.New("wrong passphrase")

	// Remote collaborator errors.
	ErrUnavailable = errors.New("remote service unavailable")

	// Sync errors.
	ErrSyncInProgress      = errors.New("sync already in progress")
	ErrNoValidTransactions = errors.New("no valid transactions")
)
