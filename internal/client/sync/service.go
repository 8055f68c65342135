// Package sync отправляет накопленный сессионный заработок на сервер
// и применяет его авторитетный вердикт к локальному кошельку.
package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	httpClient "github.com/iudanet/stablehand/internal/client/api"
	"github.com/iudanet/stablehand/internal/client/auth"
	"github.com/iudanet/stablehand/internal/client/wallet"
	"github.com/iudanet/stablehand/internal/models"
	"github.com/iudanet/stablehand/pkg/api"
)

//go:generate moq -out service_mock.go . Service

// APIClient описывает методы HTTP клиента, нужные синхронизации
type APIClient interface {
	Sync(ctx context.Context, accessToken string, req api.SyncRequest) (*api.SyncResponse, error)
}

// Service определяет интерфейс для sync.Service
type Service interface {
	// Sync выполняет сверку текущей сессии с сервером.
	// После успеха локальный кошелёк замещён серверным снапшотом.
	Sync(ctx context.Context) (*SyncResult, error)
}

type service struct {
	apiClient APIClient
	auth      auth.Service
	wallet    wallet.Service
	logger    *slog.Logger
}

// NewService creates a new sync service
func NewService(
	apiClient APIClient,
	authService auth.Service,
	walletService wallet.Service,
	logger *slog.Logger,
) Service {
	return &service{
		apiClient: apiClient,
		auth:      authService,
		wallet:    walletService,
		logger:    logger,
	}
}

// SyncResult contains sync operation results
type SyncResult struct {
	OfflineEarnings   models.Balances // начислено сервером за время отсутствия
	ValidatedEarnings models.Balances // сессионный заработок после валидации
	TotalCredited     models.Balances // всего зачислено этим синком
	NewTotals         models.Balances // авторитетные балансы после сверки
	Clamped           bool            // сервер срезал заявку до потолка
	Extreme           bool            // заявка была запредельной
	OfflineEfficiency float64         // КПД офлайн-окна, применённый сервером
}

// Sync performs session reconciliation with the server
// 1. Собирает отчёт о сессии из локального кошелька
// 2. Отправляет на сервер; на 401 пробует обновить токены и повторяет
// 3. Применяет авторитетный ответ к кошельку
func (s *service) Sync(ctx context.Context) (*SyncResult, error) {
	snap := s.wallet.Snapshot()

	req := api.SyncRequest{
		SessionData:       toBalanceSet(snap.Session.Earned),
		ClickCount:        snap.Session.ClickCount,
		SessionDuration:   snap.Session.SessionSeconds,
		IsReturningPlayer: snap.LastSyncAt > 0,
	}

	s.logger.Info("Starting synchronization",
		"session_carrots", req.SessionData.Carrots,
		"click_count", req.ClickCount,
		"session_duration", req.SessionDuration)

	resp, err := s.doSync(ctx, req)
	if err != nil {
		return nil, err
	}

	// Применяем вердикт сервера; обнулённая сессия гарантирует,
	// что этот заработок не уедет на сервер второй раз
	if err := s.wallet.ApplyServer(
		ctx,
		fromBalanceSet(resp.NewTotals),
		fromUpgradeFlags(resp.Upgrades),
		time.Now().Unix(),
	); err != nil {
		return nil, fmt.Errorf("failed to apply server state: %w", err)
	}

	result := &SyncResult{
		OfflineEarnings:   fromBalanceSet(resp.OfflineEarnings),
		ValidatedEarnings: fromBalanceSet(resp.ValidatedActiveEarnings),
		TotalCredited:     fromBalanceSet(resp.TotalCredited),
		NewTotals:         fromBalanceSet(resp.NewTotals),
		Clamped:           resp.Diagnostics.Clamped.Carrots || resp.Diagnostics.Clamped.HorseShoes || resp.Diagnostics.Clamped.GoldenCarrots,
		Extreme:           resp.Diagnostics.Extreme,
		OfflineEfficiency: resp.Diagnostics.OfflineEfficiency,
	}

	if result.Clamped {
		s.logger.Warn("Server clamped session earnings",
			"claimed_carrots", req.SessionData.Carrots,
			"validated_carrots", resp.ValidatedActiveEarnings.Carrots)
	}

	s.logger.Info("Synchronization completed",
		"total_credited_carrots", result.TotalCredited.Carrots,
		"new_total_carrots", result.NewTotals.Carrots,
		"clamped", result.Clamped)

	return result, nil
}

// doSync отправляет запрос, при протухшем access token делает refresh
// и повторяет один раз
func (s *service) doSync(ctx context.Context, req api.SyncRequest) (*api.SyncResponse, error) {
	authData, err := s.auth.CurrentAuth(ctx)
	if err != nil {
		return nil, fmt.Errorf("not logged in: %w", err)
	}

	resp, err := s.apiClient.Sync(ctx, authData.AccessToken, req)
	if err == nil {
		return resp, nil
	}
	if !errors.Is(err, httpClient.ErrUnauthorized) {
		return nil, fmt.Errorf("sync request failed: %w", err)
	}

	s.logger.Info("Access token expired, refreshing")

	refreshed, refreshErr := s.auth.Refresh(ctx)
	if refreshErr != nil {
		return nil, fmt.Errorf("token refresh failed, login again: %w", refreshErr)
	}

	resp, err = s.apiClient.Sync(ctx, refreshed.AccessToken, req)
	if err != nil {
		return nil, fmt.Errorf("sync request failed after token refresh: %w", err)
	}

	return resp, nil
}

func toBalanceSet(b models.Balances) api.BalanceSet {
	return api.BalanceSet{
		Carrots:       b.Carrots,
		HorseShoes:    b.HorseShoes,
		GoldenCarrots: b.GoldenCarrots,
	}
}

func fromBalanceSet(b api.BalanceSet) models.Balances {
	return models.Balances{
		Carrots:       b.Carrots,
		HorseShoes:    b.HorseShoes,
		GoldenCarrots: b.GoldenCarrots,
	}
}

func fromUpgradeFlags(f api.UpgradeFlags) models.Upgrades {
	return models.Upgrades{
		ProductionBoost:       f.ProductionBoost,
		HorseShoesUnlocked:    f.HorseShoesUnlocked,
		GoldenCarrotsUnlocked: f.GoldenCarrotsUnlocked,
	}
}
