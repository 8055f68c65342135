package storage

import "errors"

// Common client storage errors
var (
	// ErrAuthNotFound indicates that no authentication data exists
	ErrAuthNotFound = errors.New("authentication data not found")

	// ErrWalletNotFound indicates that no wallet state exists for the account
	ErrWalletNotFound = errors.New("wallet state not found")
)
