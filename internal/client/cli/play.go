package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"golang.org/x/sync/errgroup"

	clientsync "github.com/iudanet/stablehand/internal/client/sync"
)

// accrualChunk — шаг начисления пассивного производства во время игры.
// Базовые ставки целые на секунду, так что шаг начисляется без потерь.
const accrualChunk = 10 * time.Second

// runPlay запускает интерактивную сессию: Enter — тап, раз в accrualChunk
// капает пассивное производство, фоновый планировщик раз в минуту сдаёт
// прогресс серверу. Выход по 'q' или EOF завершается финальным синком.
func (c *Cli) runPlay(ctx context.Context) error {
	walletService, _, err := c.openWallet(ctx)
	if err != nil {
		return err
	}

	syncService := c.newSyncService(walletService)
	scheduler := clientsync.NewScheduler(syncService, walletService, c.logger, time.Minute)

	playCtx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(playCtx)
	g.Go(func() error {
		return scheduler.Run(gctx)
	})
	stopBackground := func() {
		cancel()
		_ = g.Wait() // Run по отмене контекста возвращает nil
	}
	defer stopBackground()

	c.io.Println("=== Play ===")
	c.io.Println()
	c.io.Printf("Balance: %s\n", formatBalances(walletService.Snapshot().Balances))
	c.io.Println()
	c.io.Println("Press Enter to tap. Type 'q' and Enter to finish the session.")
	c.io.Println()

	// Чтение stdin блокирует, поэтому живёт в отдельной горутине
	inputs := make(chan string)
	readErrs := make(chan error, 1)
	go func() {
		for {
			line, readErr := c.io.ReadInput("")
			if readErr != nil {
				readErrs <- readErr
				return
			}
			select {
			case inputs <- line:
			case <-playCtx.Done():
				return
			}
		}
	}()

	ticker := time.NewTicker(accrualChunk)
	defer ticker.Stop()

	start := time.Now()
	lastAccrual := start
	taps := int64(0)

loop:
	for {
		select {
		case <-ctx.Done():
			break loop

		case readErr := <-readErrs:
			if errors.Is(readErr, io.EOF) {
				break loop
			}
			return fmt.Errorf("input error: %w", readErr)

		case line := <-inputs:
			if line == "q" || line == "quit" {
				break loop
			}
			earned, tapErr := walletService.RegisterClicks(playCtx, 1)
			if tapErr != nil {
				return fmt.Errorf("failed to record tap: %w", tapErr)
			}
			taps++
			c.io.Printf("Tap! +%d carrots (session taps: %d, carrots: %d)\n",
				earned, taps, walletService.Snapshot().Balances.Carrots)

		case now := <-ticker.C:
			seconds := int64(now.Sub(lastAccrual).Seconds())
			if seconds <= 0 {
				continue
			}
			produced, accrueErr := walletService.AccrueActive(playCtx, seconds)
			if accrueErr != nil {
				return fmt.Errorf("failed to accrue production: %w", accrueErr)
			}
			lastAccrual = now
			if !produced.IsZero() {
				c.io.Printf("The stable produced %s while you play.\n", formatBalances(produced))
			}
		}
	}

	// Добираем хвост активного времени до секунды
	if tail := int64(time.Since(lastAccrual).Seconds()); tail > 0 {
		if _, accrueErr := walletService.AccrueActive(playCtx, tail); accrueErr != nil {
			return fmt.Errorf("failed to accrue production: %w", accrueErr)
		}
	}

	stopBackground()

	c.io.Println()
	c.io.Printf("Session finished: %s of play, %d taps.\n",
		time.Since(start).Round(time.Second), taps)
	c.io.Println("Syncing with server...")

	result, err := syncService.Sync(ctx)
	if err != nil {
		c.io.Println()
		c.io.Println("⚠️  Final sync failed, progress is kept locally.")
		c.io.Printf("   Run 'stablehand sync' later: %v\n", err)
		return nil
	}

	c.io.Println()
	c.io.Println("✓ Session synced!")
	printSyncResult(c.io, result)

	return nil
}
