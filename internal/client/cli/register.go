package cli

import (
	"context"
	"fmt"
)

// runRegister создает новый аккаунт игрока
func (c *Cli) runRegister(ctx context.Context) error {
	c.io.Println("=== Registration ===")
	c.io.Println()

	username, err := c.io.ReadInput("Username (3-32 chars, letters/digits/underscore): ")
	if err != nil {
		return fmt.Errorf("failed to read username: %w", err)
	}

	password, err := c.io.ReadPassword("Password (min 8 chars): ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	confirm, err := c.io.ReadPassword("Confirm password: ")
	if err != nil {
		return fmt.Errorf("failed to read password confirmation: %w", err)
	}

	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}

	c.io.Println()
	c.io.Println("Creating account...")

	result, err := c.authService.Register(ctx, username, password)
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	c.io.Println()
	c.io.Println("✓ Registration successful!")
	c.io.Printf("User ID:  %s\n", result.UserID)
	c.io.Printf("Username: %s\n", result.Username)
	c.io.Println()
	c.io.Println("Run 'stablehand login' to start playing.")

	return nil
}
