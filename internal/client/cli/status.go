package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/iudanet/stablehand/internal/client/wallet"
)

// runStatus показывает состояние сессии и локального кошелька
func (c *Cli) runStatus(ctx context.Context) error {
	c.io.Println("=== Account Status ===")
	c.io.Println()

	isAuth, err := c.authService.IsAuthenticated(ctx)
	if err != nil {
		return fmt.Errorf("failed to check authentication: %w", err)
	}

	if !isAuth {
		c.io.Println("Status: Not authenticated")
		c.io.Println()
		c.io.Println("Run 'stablehand login' to authenticate.")
		return nil
	}

	authData, err := c.authService.CurrentAuth(ctx)
	if err != nil {
		return fmt.Errorf("failed to read auth data: %w", err)
	}

	c.io.Println("Status: Authenticated")
	c.io.Printf("Username: %s\n", authData.Username)

	expiresAt := time.Unix(authData.ExpiresAt, 0)
	if remaining := time.Until(expiresAt); remaining > 0 {
		c.io.Printf("Token expires: %s (in %s)\n",
			expiresAt.Format("2006-01-02 15:04:05"), remaining.Round(time.Second))
	} else {
		c.io.Println("⚠️  Access token has expired; it is refreshed automatically on the next request.")
	}

	walletService, err := wallet.NewService(ctx, c.walletStorage, authData.UserID)
	if err != nil {
		return fmt.Errorf("failed to open wallet: %w", err)
	}

	snap := walletService.Snapshot()

	c.io.Println()
	c.io.Printf("Balance: %s\n", formatBalances(snap.Balances))

	if snap.LastSyncAt > 0 {
		c.io.Printf("Last sync: %s\n", time.Unix(snap.LastSyncAt, 0).Format("2006-01-02 15:04:05"))
	} else {
		c.io.Println("Last sync: never")
	}

	if snap.Dirty {
		c.io.Println()
		c.io.Printf("⚠️  Pending sync: %s earned, %d taps over %s of play\n",
			formatBalances(snap.Session.Earned),
			snap.Session.ClickCount,
			time.Duration(snap.Session.SessionSeconds)*time.Second)
		c.io.Println("Run 'stablehand sync' to reconcile with the server.")
	} else {
		c.io.Println("✓ All progress is synchronized with the server.")
	}

	return nil
}
