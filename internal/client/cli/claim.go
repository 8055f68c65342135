package cli

import (
	"context"
	"fmt"

	pkgapi "github.com/iudanet/stablehand/pkg/api"
)

// runClaim начисляет накопленные офлайн-награды. Флаг --ad удваивает
// награду; клейм сжигает окно, повторный вызов вернёт нули.
func (c *Cli) runClaim(ctx context.Context, args []string) error {
	watchedAd := false
	for _, arg := range args {
		if arg == "--ad" {
			watchedAd = true
		}
	}

	c.io.Println("=== Claim Offline Earnings ===")
	c.io.Println()

	walletService, authData, err := c.openWallet(ctx)
	if err != nil {
		return err
	}

	if watchedAd {
		c.io.Println("Ad bonus active: the reward will be doubled.")
	}

	var resp *pkgapi.ClaimOfflineResponse
	err = c.withAuthRetry(ctx, authData.AccessToken, func(token string) error {
		var callErr error
		resp, callErr = c.apiClient.ClaimOffline(ctx, token, pkgapi.ClaimOfflineRequest{WatchedAd: watchedAd})
		return callErr
	})
	if err != nil {
		return fmt.Errorf("claim failed: %w", err)
	}

	total := balancesFromSet(resp.TotalClaimed)
	if total.IsZero() {
		c.io.Println("Nothing to claim: you have not been away long enough.")
		return nil
	}

	// Сервер уже зачислил награду; отражаем её в локальном кошельке
	// мимо сессионных накопителей, чтобы не сдать её повторно синком
	if err := walletService.CreditReconciled(ctx, total); err != nil {
		return fmt.Errorf("claimed on server, but updating the local wallet failed, run 'stablehand sync': %w", err)
	}

	c.io.Println()
	c.io.Println("✓ Offline earnings claimed!")
	c.io.Printf("Base:    %s\n", formatBalances(balancesFromSet(resp.BaseEarnings)))
	if watchedAd {
		c.io.Printf("Ad bonus: %s\n", formatBalances(balancesFromSet(resp.AdBonus)))
	}
	c.io.Printf("Total:   %s\n", formatBalances(total))
	c.io.Printf("Balance: %s\n", formatBalances(walletService.Snapshot().Balances))

	return nil
}
