package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/iudanet/stablehand/internal/client/storage"
	"github.com/iudanet/stablehand/internal/client/wallet"
)

// runLogout завершает сессию: досинхронизирует несданный прогресс,
// отзывает refresh token на сервере и чистит локальные токены.
// Кошелёк при этом остаётся на диске и доживёт до следующего входа.
func (c *Cli) runLogout(ctx context.Context) error {
	c.io.Println("=== Logout ===")
	c.io.Println()

	authData, err := c.authService.CurrentAuth(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrAuthNotFound) {
			c.io.Println("Not logged in, nothing to do.")
			return nil
		}
		return fmt.Errorf("failed to read auth data: %w", err)
	}

	walletService, err := wallet.NewService(ctx, c.walletStorage, authData.UserID)
	if err != nil {
		return fmt.Errorf("failed to open wallet: %w", err)
	}

	// Несданный прогресс сдаём до отзыва токенов; если сервер
	// недоступен, прогресс переживёт логаут в локальной базе
	if walletService.Snapshot().Dirty {
		c.io.Println("Syncing pending progress...")
		if _, err := c.newSyncService(walletService).Sync(ctx); err != nil {
			c.io.Println("⚠️  Sync failed, progress is kept locally.")
			c.io.Println("   It will be reported after your next login.")
		} else {
			c.io.Println("✓ Progress synced.")
		}
		c.io.Println()
	}

	if err := c.authService.Logout(ctx); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}

	c.io.Println("✓ Logged out.")
	return nil
}
