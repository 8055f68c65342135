package storage

import (
	"context"
	"time"

	"github.com/iudanet/stablehand/internal/models"
)

// LedgerStorage defines interface for authoritative balance persistence.
// All mutations are single conditional statements: the reconciliation
// engine never does read-modify-write across two round trips.
type LedgerStorage interface {
	// CreateLedger inserts the ledger row for a new account
	// (zero balances, no upgrades, last update = registration time).
	// Returns ErrUserAlreadyExists if the account already has a ledger.
	CreateLedger(ctx context.Context, ledger *models.Ledger) error

	// GetLedger retrieves the ledger row by account id
	// Returns ErrLedgerNotFound if the row doesn't exist
	GetLedger(ctx context.Context, accountID string) (*models.Ledger, error)

	// ApplyEarnings atomically adds delta to the balances and advances the
	// last update timestamp to now, but only while the stored timestamp
	// still equals seenAt (second precision). Returns the updated row, or
	// ErrLedgerConflict when another writer advanced the row in between —
	// the caller re-reads and recomputes against the fresh timestamp.
	ApplyEarnings(
		ctx context.Context,
		accountID string,
		delta models.Balances,
		seenAt, now time.Time,
	) (*models.Ledger, error)

	// ApplyPurchase atomically debits cost and raises the upgrade flag,
	// but only while every balance stays non-negative and the flag is
	// still unset. A spend is never clamped: on condition failure nothing
	// changes and ErrLedgerConflict comes back; the caller re-reads to
	// distinguish an already-owned upgrade from insufficient funds.
	// Purchases do not touch the last update timestamp, so buying an
	// upgrade never consumes the offline window.
	ApplyPurchase(
		ctx context.Context,
		accountID string,
		cost models.Balances,
		upgrade string,
		now time.Time,
	) (*models.Ledger, error)

	// TopByCarrots returns up to limit accounts ordered by carrot balance
	// descending. Returns empty slice if there are no accounts.
	TopByCarrots(ctx context.Context, limit int) ([]models.LeaderboardRow, error)
}
