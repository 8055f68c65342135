package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/iudanet/stablehand/internal/client/wallet"
	"github.com/iudanet/stablehand/internal/models"
	"github.com/iudanet/stablehand/internal/rates"
	pkgapi "github.com/iudanet/stablehand/pkg/api"
)

// runSpend покупает апгрейд. Списание сначала резервируется в локальном
// кошельке, затем подтверждается сервером; отказ сервера откатывает
// локальное списание.
func (c *Cli) runSpend(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: stablehand spend <upgrade>\navailable upgrades: %s, %s, %s",
			models.UpgradeProductionBoost, models.UpgradeHorseShoes, models.UpgradeGoldenCarrots)
	}
	upgrade := args[0]

	cost, ok := rates.UpgradeCost(upgrade)
	if !ok {
		return fmt.Errorf("unknown upgrade: %s", upgrade)
	}

	walletService, authData, err := c.openWallet(ctx)
	if err != nil {
		return err
	}

	snap := walletService.Snapshot()
	if snap.Upgrades.Has(upgrade) {
		return fmt.Errorf("upgrade %s is already owned", upgrade)
	}

	c.io.Printf("Buying %s for %s...\n", upgrade, formatCost(cost))

	// Локальная проверка средств до похода на сервер
	if err := walletService.Debit(ctx, cost); err != nil {
		if errors.Is(err, wallet.ErrInsufficientFunds) {
			return fmt.Errorf("not enough funds: %s costs %s, you have %s",
				upgrade, formatCost(cost), formatBalances(snap.Balances))
		}
		return fmt.Errorf("failed to debit wallet: %w", err)
	}

	var resp *pkgapi.UpgradeResponse
	err = c.withAuthRetry(ctx, authData.AccessToken, func(token string) error {
		var callErr error
		resp, callErr = c.apiClient.Upgrade(ctx, token, pkgapi.UpgradeRequest{Upgrade: upgrade})
		return callErr
	})
	if err != nil {
		// Сервер отказал: возвращаем зарезервированное
		if rollbackErr := walletService.CreditReconciled(ctx, cost); rollbackErr != nil {
			c.io.Printf("⚠️  Failed to roll back local debit: %v\n", rollbackErr)
			c.io.Println("   Run 'stablehand sync' to restore server totals.")
		}
		return fmt.Errorf("purchase failed: %w", err)
	}

	// Флаги берём у сервера; локальные балансы уже уменьшены на цену
	if err := walletService.ApplyUpgrades(ctx, upgradesFromFlags(resp.Upgrades)); err != nil {
		return fmt.Errorf("purchase succeeded on server, but saving it locally failed, run 'stablehand sync': %w", err)
	}

	c.io.Println()
	c.io.Println("✓ Upgrade purchased!")
	c.io.Printf("Spent:   %s\n", formatCost(balancesFromSet(resp.Cost)))
	c.io.Printf("Balance: %s\n", formatBalances(walletService.Snapshot().Balances))

	return nil
}
