package cli

import (
	"context"
	"fmt"
	"time"
)

// runLogin аутентифицирует игрока и сохраняет токены локально.
// После входа сразу показывает превью офлайн-наград, если они
// успели накопиться.
func (c *Cli) runLogin(ctx context.Context) error {
	c.io.Println("=== Login ===")
	c.io.Println()

	username, err := c.io.ReadInput("Username: ")
	if err != nil {
		return fmt.Errorf("failed to read username: %w", err)
	}

	password, err := c.io.ReadPassword("Password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	c.io.Println()
	c.io.Println("Authenticating...")

	result, err := c.authService.Login(ctx, username, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	c.io.Println()
	c.io.Println("✓ Login successful!")
	c.io.Printf("Username: %s\n", result.Username)
	c.io.Printf("Session expires in %s\n", time.Duration(result.ExpiresIn)*time.Second)

	// Превью офлайн-наград строго best-effort: вход уже состоялся
	preview, err := c.apiClient.OfflineEarnings(ctx, result.AccessToken)
	if err == nil && preview.HasOfflineEarnings {
		c.io.Println()
		c.io.Printf("While you were away your stable earned %s.\n",
			formatBalances(balancesFromSet(preview.Earnings)))
		c.io.Println("Run 'stablehand claim' to collect (add '--ad' to double).")
	}

	return nil
}
