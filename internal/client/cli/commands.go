package cli

import (
	"context"
	"fmt"
)

// Run выполняет команду CLI. Ошибку печатает вызывающая сторона,
// команды пишут только свой обычный вывод.
func (c *Cli) Run(ctx context.Context, command string, args []string) error {
	switch command {
	case "register":
		return c.runRegister(ctx)
	case "login":
		return c.runLogin(ctx)
	case "logout":
		return c.runLogout(ctx)
	case "status":
		return c.runStatus(ctx)
	case "play":
		return c.runPlay(ctx)
	case "balance":
		return c.runBalance(ctx)
	case "spend":
		return c.runSpend(ctx, args)
	case "sync":
		return c.runSync(ctx)
	case "offline":
		return c.runOffline(ctx)
	case "claim":
		return c.runClaim(ctx, args)
	case "top":
		return c.runTop(ctx)
	default:
		PrintUsage()
		return fmt.Errorf("unknown command: %s", command)
	}
}
