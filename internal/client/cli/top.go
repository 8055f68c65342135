package cli

import (
	"context"
	"fmt"
	"time"
)

// runTop показывает таблицу лидеров по морковкам.
// Эндпоинт публичный, логин не требуется.
func (c *Cli) runTop(ctx context.Context) error {
	resp, err := c.apiClient.Leaderboard(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch leaderboard: %w", err)
	}

	c.io.Println("=== Leaderboard ===")
	c.io.Println()

	if len(resp.Entries) == 0 {
		c.io.Println("The leaderboard is empty. Be the first to earn some carrots!")
		return nil
	}

	c.io.Printf("%-4s %-32s %s\n", "#", "PLAYER", "CARROTS")
	for _, entry := range resp.Entries {
		c.io.Printf("%-4d %-32s %d\n", entry.Rank, entry.Username, entry.Carrots)
	}

	c.io.Println()
	c.io.Printf("Snapshot from %s\n", time.Unix(resp.GeneratedAt, 0).Format("2006-01-02 15:04:05"))

	return nil
}
