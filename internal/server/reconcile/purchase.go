package reconcile

import (
	"context"
	"errors"
	"fmt"

	"github.com/iudanet/stablehand/internal/models"
	"github.com/iudanet/stablehand/internal/rates"
	"github.com/iudanet/stablehand/internal/server/storage"
)

// PurchaseOutcome — результат покупки апгрейда.
type PurchaseOutcome struct {
	Ledger *models.Ledger  // строка после списания
	Cost   models.Balances // сколько списано
}

// Purchase списывает цену апгрейда и взводит его флаг. Списание — один
// условный UPDATE: либо проходит целиком, либо не меняет ничего.
// Неуспех условия классифицируется перечитыванием строки: флаг уже
// взведён — ErrUpgradeOwned, иначе — ErrInsufficientFunds.
func (e *Engine) Purchase(ctx context.Context, accountID, upgrade string) (*PurchaseOutcome, error) {
	cost, ok := rates.UpgradeCost(upgrade)
	if !ok {
		return nil, ErrUnknownUpgrade
	}

	ledger, err := e.ledgers.GetLedger(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	if ledger.Upgrades.Has(upgrade) {
		return nil, ErrUpgradeOwned
	}
	if !canAfford(ledger.Balances, cost) {
		return nil, ErrInsufficientFunds
	}

	updated, err := e.ledgers.ApplyPurchase(ctx, accountID, cost, upgrade, e.now())
	if errors.Is(err, storage.ErrLedgerConflict) {
		// Условие сорвалось под ногами: выясняем, что именно
		fresh, readErr := e.ledgers.GetLedger(ctx, accountID)
		if readErr != nil {
			return nil, fmt.Errorf("read ledger after purchase conflict: %w", readErr)
		}
		if fresh.Upgrades.Has(upgrade) {
			return nil, ErrUpgradeOwned
		}
		return nil, ErrInsufficientFunds
	}
	if err != nil {
		return nil, fmt.Errorf("apply purchase: %w", err)
	}

	e.logger.Info("upgrade purchased",
		"account_id", accountID,
		"upgrade", upgrade,
		"cost_carrots", cost.Carrots,
		"cost_horse_shoes", cost.HorseShoes,
	)

	return &PurchaseOutcome{Ledger: updated, Cost: cost}, nil
}

func canAfford(balances, cost models.Balances) bool {
	return !balances.Sub(cost).HasNegative()
}
