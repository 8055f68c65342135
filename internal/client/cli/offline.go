package cli

import (
	"context"
	"fmt"
	"time"

	pkgapi "github.com/iudanet/stablehand/pkg/api"
)

// runOffline показывает превью офлайн-наград без их начисления
func (c *Cli) runOffline(ctx context.Context) error {
	c.io.Println("=== Offline Earnings ===")
	c.io.Println()

	authData, err := c.currentAuth(ctx)
	if err != nil {
		return err
	}

	var resp *pkgapi.OfflineEarningsResponse
	err = c.withAuthRetry(ctx, authData.AccessToken, func(token string) error {
		var callErr error
		resp, callErr = c.apiClient.OfflineEarnings(ctx, token)
		return callErr
	})
	if err != nil {
		return fmt.Errorf("failed to fetch offline earnings: %w", err)
	}

	if !resp.HasOfflineEarnings {
		c.io.Println("No offline earnings yet.")
		c.io.Println("Come back after being away for at least 5 minutes.")
		return nil
	}

	away := time.Duration(resp.AwaySeconds) * time.Second
	window := time.Duration(resp.OfflineSeconds) * time.Second

	c.io.Printf("Time away:      %s\n", away.Round(time.Second))
	if resp.OfflineSeconds < resp.AwaySeconds {
		c.io.Printf("Counted window: %s (capped at 24h)\n", window.Round(time.Second))
	}
	c.io.Printf("Efficiency:     %.0f%%\n", resp.EfficiencyPercent)
	c.io.Printf("Earnings:       %s\n", formatBalances(balancesFromSet(resp.Earnings)))

	c.io.Println()
	c.io.Printf("Idle production: %.0f carrots/h, %.0f horse shoes/h, %.0f golden carrots/h\n",
		resp.Rates.IdlePerHour.Carrots, resp.Rates.IdlePerHour.HorseShoes, resp.Rates.IdlePerHour.GoldenCarrots)

	c.io.Println()
	c.io.Println("Run 'stablehand claim' to collect (add '--ad' to double).")

	return nil
}
