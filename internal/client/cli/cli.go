// Package cli реализует команды терминального клиента Stablehand.
// Каждая команда живёт в своём файле; весь ввод-вывод идёт через
// iocli.IO, чтобы команды можно было тестировать со скриптованным
// вводом.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/iudanet/stablehand/internal/client/api"
	"github.com/iudanet/stablehand/internal/client/auth"
	"github.com/iudanet/stablehand/internal/client/iocli"
	"github.com/iudanet/stablehand/internal/client/storage"
	clientsync "github.com/iudanet/stablehand/internal/client/sync"
	"github.com/iudanet/stablehand/internal/client/wallet"
	"github.com/iudanet/stablehand/internal/models"
	pkgapi "github.com/iudanet/stablehand/pkg/api"
)

// Cli связывает команды клиента с сервисами и хранилищем
type Cli struct {
	io            iocli.IO
	apiClient     *api.Client
	authService   auth.Service
	walletStorage storage.WalletStorage
	logger        *slog.Logger
}

// New создает новый CLI
func New(
	io iocli.IO,
	apiClient *api.Client,
	authService auth.Service,
	walletStorage storage.WalletStorage,
	logger *slog.Logger,
) *Cli {
	return &Cli{
		io:            io,
		apiClient:     apiClient,
		authService:   authService,
		walletStorage: walletStorage,
		logger:        logger,
	}
}

// currentAuth возвращает данные активной сессии или понятную ошибку,
// если игрок не залогинен.
func (c *Cli) currentAuth(ctx context.Context) (*storage.AuthData, error) {
	authData, err := c.authService.CurrentAuth(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrAuthNotFound) {
			return nil, fmt.Errorf("not authenticated. Please run 'stablehand login' first")
		}
		return nil, fmt.Errorf("failed to read auth data: %w", err)
	}
	return authData, nil
}

// openWallet открывает локальный кошелёк текущего аккаунта.
// Кошелёк в bolt лежит по ключу account id: несколько аккаунтов на
// одной машине не затирают прогресс друг друга.
func (c *Cli) openWallet(ctx context.Context) (wallet.Service, *storage.AuthData, error) {
	authData, err := c.currentAuth(ctx)
	if err != nil {
		return nil, nil, err
	}

	walletService, err := wallet.NewService(ctx, c.walletStorage, authData.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open wallet: %w", err)
	}

	return walletService, authData, nil
}

// newSyncService собирает сервис синхронизации вокруг открытого кошелька
func (c *Cli) newSyncService(walletService wallet.Service) clientsync.Service {
	return clientsync.NewService(c.apiClient, c.authService, walletService, c.logger)
}

// withAuthRetry выполняет запрос с access token-ом; на 401 обновляет
// пару токенов и повторяет запрос один раз.
func (c *Cli) withAuthRetry(ctx context.Context, accessToken string, call func(token string) error) error {
	err := call(accessToken)
	if err == nil || !errors.Is(err, api.ErrUnauthorized) {
		return err
	}

	refreshed, refreshErr := c.authService.Refresh(ctx)
	if refreshErr != nil {
		return fmt.Errorf("session expired, please run 'stablehand login' again: %w", err)
	}

	return call(refreshed.AccessToken)
}

// formatBalances выводит три валюты одной строкой
func formatBalances(b models.Balances) string {
	return fmt.Sprintf("%d carrots, %d horse shoes, %d golden carrots",
		b.Carrots, b.HorseShoes, b.GoldenCarrots)
}

// balancesFromSet переводит wire-формат балансов в доменный
func balancesFromSet(s pkgapi.BalanceSet) models.Balances {
	return models.Balances{
		Carrots:       s.Carrots,
		HorseShoes:    s.HorseShoes,
		GoldenCarrots: s.GoldenCarrots,
	}
}

// upgradesFromFlags переводит wire-формат флагов апгрейдов в доменный
func upgradesFromFlags(f pkgapi.UpgradeFlags) models.Upgrades {
	return models.Upgrades{
		ProductionBoost:       f.ProductionBoost,
		HorseShoesUnlocked:    f.HorseShoesUnlocked,
		GoldenCarrotsUnlocked: f.GoldenCarrotsUnlocked,
	}
}

// PrintUsage выводит справку по использованию
func PrintUsage() {
	fmt.Println("Stablehand - idle horse stable game client")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  stablehand [flags] <command> [args]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  register          Create a new player account")
	fmt.Println("  login             Authenticate and open the local wallet")
	fmt.Println("  logout            Sync pending progress and end the session")
	fmt.Println("  status            Show session and wallet state")
	fmt.Println("  play              Interactive tap session")
	fmt.Println("  balance           Show local balances and upgrades")
	fmt.Println("  spend <upgrade>   Buy an upgrade from the catalog")
	fmt.Println("  sync              Reconcile local progress with the server")
	fmt.Println("  offline           Preview pending offline earnings")
	fmt.Println("  claim [--ad]      Collect offline earnings (--ad doubles them)")
	fmt.Println("  top               Show the carrot leaderboard")
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Println("  -server <url>     Server address (default: http://localhost:8080)")
	fmt.Println("  -db <path>        Local database file (default: stablehand-client.db)")
	fmt.Println("  -version          Show version information")
}
