package storage

import "errors"

// Common storage errors
var (
	// ErrUserNotFound indicates that user was not found in storage
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists indicates that user with this username already exists
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrTokenNotFound indicates that refresh token was not found
	ErrTokenNotFound = errors.New("refresh token not found")

	// ErrLedgerNotFound indicates that the account has no ledger row
	ErrLedgerNotFound = errors.New("ledger not found")

	// ErrLedgerConflict indicates that a conditional ledger update matched
	// no row: another writer got there first, or the purchase condition
	// (sufficient funds, flag still unset) does not hold. The caller
	// re-reads the row and decides what that means.
	ErrLedgerConflict = errors.New("ledger conflict")
)
