package cli

import (
	"context"
	"fmt"

	"github.com/iudanet/stablehand/internal/models"
	"github.com/iudanet/stablehand/internal/rates"
)

// runBalance показывает локальные балансы и купленные апгрейды
func (c *Cli) runBalance(ctx context.Context) error {
	walletService, _, err := c.openWallet(ctx)
	if err != nil {
		return err
	}

	snap := walletService.Snapshot()

	c.io.Println("=== Balance ===")
	c.io.Println()
	c.io.Printf("Carrots:        %d\n", snap.Balances.Carrots)
	c.io.Printf("Horse shoes:    %d\n", snap.Balances.HorseShoes)
	c.io.Printf("Golden carrots: %d\n", snap.Balances.GoldenCarrots)

	c.io.Println()
	c.io.Println("Upgrades:")
	c.printUpgrade(models.UpgradeProductionBoost, snap.Upgrades)
	c.printUpgrade(models.UpgradeHorseShoes, snap.Upgrades)
	c.printUpgrade(models.UpgradeGoldenCarrots, snap.Upgrades)

	if snap.Dirty {
		c.io.Println()
		c.io.Println("⚠️  Includes session earnings not yet confirmed by the server.")
	}

	return nil
}

// printUpgrade выводит строку каталога: куплен апгрейд или его цена
func (c *Cli) printUpgrade(upgrade string, owned models.Upgrades) {
	cost, ok := rates.UpgradeCost(upgrade)
	if !ok {
		return
	}

	if owned.Has(upgrade) {
		c.io.Printf("  ✓ %-24s owned\n", upgrade)
		return
	}
	c.io.Printf("    %-24s costs %s\n", upgrade, formatCost(cost))
}

// formatCost выводит цену апгрейда, пропуская нулевые валюты
func formatCost(cost models.Balances) string {
	switch {
	case cost.Carrots > 0:
		return fmt.Sprintf("%d carrots", cost.Carrots)
	case cost.HorseShoes > 0:
		return fmt.Sprintf("%d horse shoes", cost.HorseShoes)
	case cost.GoldenCarrots > 0:
		return fmt.Sprintf("%d golden carrots", cost.GoldenCarrots)
	default:
		return "free"
	}
}
