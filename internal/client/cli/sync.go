package cli

import (
	"context"
	"fmt"

	"github.com/iudanet/stablehand/internal/client/iocli"
	clientsync "github.com/iudanet/stablehand/internal/client/sync"
)

// runSync сверяет локальный прогресс с сервером
func (c *Cli) runSync(ctx context.Context) error {
	c.io.Println("=== Synchronization ===")
	c.io.Println()

	walletService, _, err := c.openWallet(ctx)
	if err != nil {
		return err
	}

	c.io.Println("Syncing with server...")

	result, err := c.newSyncService(walletService).Sync(ctx)
	if err != nil {
		return fmt.Errorf("synchronization failed: %w", err)
	}

	c.io.Println()
	c.io.Println("✓ Synchronization completed!")
	c.io.Println()
	printSyncResult(c.io, result)

	return nil
}

// printSyncResult выводит разбивку результата синка; используется
// командами sync и play.
func printSyncResult(out iocli.IO, result *clientsync.SyncResult) {
	if !result.OfflineEarnings.IsZero() {
		out.Printf("Offline earnings:  %s\n", formatBalances(result.OfflineEarnings))
		out.Printf("Offline efficiency: %.0f%%\n", result.OfflineEfficiency*100)
	}
	out.Printf("Session validated: %s\n", formatBalances(result.ValidatedEarnings))
	out.Printf("Total credited:    %s\n", formatBalances(result.TotalCredited))
	out.Printf("New balance:       %s\n", formatBalances(result.NewTotals))

	if result.Clamped {
		out.Println()
		out.Println("⚠️  The server clamped part of the reported session earnings.")
	}
}
