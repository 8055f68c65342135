package reconcile

import (
	"context"
	"errors"
	"fmt"

	"github.com/iudanet/stablehand/internal/models"
	"github.com/iudanet/stablehand/internal/rates"
	"github.com/iudanet/stablehand/internal/server/storage"
)

// SyncInput — нормализованное содержимое запроса синхронизации.
// Значения приходят от недоверенного клиента и до расчётов проходят
// через зануление отрицательных величин.
type SyncInput struct {
	SessionEarned   models.Balances // заявленный заработок активной сессии
	ClickCount      int64           // заявленное число тапов за сессию
	SessionSeconds  int64           // длительность сессии в секундах
	ReturningPlayer bool            // false на свежей установке: офлайн не начисляется
}

// SyncOutcome — результат применённой синхронизации.
type SyncOutcome struct {
	Ledger         *models.Ledger  // обновлённая авторитетная строка
	Offline        models.Balances // серверное офлайн-начисление
	Validated      models.Balances // принятая часть заявки сессии
	Credited       models.Balances // Offline + Validated
	Overage        models.Balances // отброшенный перебор заявки
	Clamped        Flags           // какие валюты были обрезаны
	Extreme        bool            // перебор больше десятикратного потолка
	Suspicious     bool            // был хоть какой-то перебор
	Efficiency     float64         // применённая офлайн-эффективность
	AdjustedClicks int64           // число кликов после потолка
	ClickRate      float64         // клики в секунду после потолка
	WindowSeconds  int64           // учтённое офлайн-окно
}

// Sync применяет одну синхронизацию: считает офлайн-начисление от
// last_update ledger-а, обрезает заявку сессии потолком правдоподобия и
// прибавляет итог условным UPDATE. Проигрыш гонки за строку приводит к
// перечитыванию и пересчёту: у победителя окно уже потреблено, поэтому
// двойного начисления не бывает.
func (e *Engine) Sync(ctx context.Context, accountID string, in SyncInput) (*SyncOutcome, error) {
	claimed := clampNonNegative(in.SessionEarned)
	clicks := in.ClickCount
	if clicks < 0 {
		clicks = 0
	}
	sessionSeconds := in.SessionSeconds
	if sessionSeconds < 0 {
		sessionSeconds = 0
	}

	for attempt := 1; attempt <= maxApplyAttempts; attempt++ {
		ledger, err := e.ledgers.GetLedger(ctx, accountID)
		if err != nil {
			return nil, fmt.Errorf("read ledger: %w", err)
		}

		now := e.now()

		// Офлайн-окно: только для вернувшегося игрока, с полом и потолком
		var window int64
		if in.ReturningPlayer {
			window = rates.OfflineWindow(now.Sub(ledger.LastUpdate))
		}
		offline := rates.OfflineEarnings(ledger.Upgrades, window)
		efficiency := rates.OfflineEfficiency(window)

		// Потолок правдоподобия активной сессии: производство за
		// sessionSeconds плюс морковки за физически возможные клики
		adjustedClicks := rates.AdjustClickCount(clicks, sessionSeconds)
		bound := rates.ActiveEarnings(ledger.Upgrades, sessionSeconds)
		bound.Carrots += rates.ClickEarnings(ledger.Upgrades, adjustedClicks)

		validated, overage, clamped := clampToBound(claimed, bound)

		outcome := &SyncOutcome{
			Offline:        offline,
			Validated:      validated,
			Credited:       offline.Add(validated),
			Overage:        overage,
			Clamped:        clamped,
			Suspicious:     clamped.Any(),
			Extreme:        isExtreme(overage, bound),
			Efficiency:     efficiencyFloat(efficiency),
			AdjustedClicks: adjustedClicks,
			ClickRate:      clickRate(adjustedClicks, sessionSeconds),
			WindowSeconds:  window,
		}

		updated, err := e.ledgers.ApplyEarnings(ctx, accountID, outcome.Credited, ledger.LastUpdate, now)
		if errors.Is(err, storage.ErrLedgerConflict) {
			// Кто-то успел продвинуть last_update: перечитываем и пересчитываем
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("apply earnings: %w", err)
		}
		outcome.Ledger = updated

		e.logSync(accountID, outcome)

		return outcome, nil
	}

	return nil, fmt.Errorf("sync not applied after %d attempts: %w", maxApplyAttempts, storage.ErrLedgerConflict)
}

func (e *Engine) logSync(accountID string, out *SyncOutcome) {
	if !out.Suspicious {
		e.logger.Info("sync applied",
			"account_id", accountID,
			"offline_window_s", out.WindowSeconds,
			"credited_carrots", out.Credited.Carrots,
		)
		return
	}

	// Неправдоподобная заявка: начислили обрезанное, перебор — в лог
	e.logger.Warn("session claim clamped",
		"account_id", accountID,
		"overage_carrots", out.Overage.Carrots,
		"overage_horse_shoes", out.Overage.HorseShoes,
		"overage_golden_carrots", out.Overage.GoldenCarrots,
		"adjusted_clicks", out.AdjustedClicks,
		"click_rate", out.ClickRate,
		"extreme", out.Extreme,
	)
}

func clickRate(clicks, sessionSeconds int64) float64 {
	if sessionSeconds <= 0 {
		return 0
	}
	return float64(clicks) / float64(sessionSeconds)
}
