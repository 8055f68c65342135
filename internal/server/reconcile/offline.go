package reconcile

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/iudanet/stablehand/internal/models"
	"github.com/iudanet/stablehand/internal/rates"
	"github.com/iudanet/stablehand/internal/server/storage"
)

// PreviewOutcome — проекция офлайн-заработка без изменения ledger.
type PreviewOutcome struct {
	Ledger        *models.Ledger
	AwaySeconds   int64           // сырое время с last_update
	WindowSeconds int64           // учтённое окно после пола и потолка
	HasEarnings   bool            // false: окно короче минимального
	Earnings      models.Balances // что начислится при claim без рекламы
	Efficiency    decimal.Decimal // эффективность для этого окна
	IdlePerSecond rates.Table     // пассивные ставки аккаунта
}

// PreviewOffline считает, что накапало за время отсутствия. Строго
// read-only: сколько ни дёргай предпросмотр, окно не потребляется и
// цифры не меняются (кроме роста самого окна со временем).
func (e *Engine) PreviewOffline(ctx context.Context, accountID string) (*PreviewOutcome, error) {
	ledger, err := e.ledgers.GetLedger(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}

	now := e.now()
	away := int64(now.Sub(ledger.LastUpdate).Seconds())
	if away < 0 {
		away = 0
	}
	window := rates.OfflineWindow(now.Sub(ledger.LastUpdate))

	return &PreviewOutcome{
		Ledger:        ledger,
		AwaySeconds:   away,
		WindowSeconds: window,
		HasEarnings:   window > 0,
		Earnings:      rates.OfflineEarnings(ledger.Upgrades, window),
		Efficiency:    rates.OfflineEfficiency(window),
		IdlePerSecond: rates.IdleRates(ledger.Upgrades),
	}, nil
}

// ClaimOutcome — результат востребования офлайн-заработка.
type ClaimOutcome struct {
	Ledger *models.Ledger  // строка после начисления (или текущая при пустом окне)
	Base   models.Balances // базовое начисление за окно
	Bonus  models.Balances // добавка за просмотр рекламы
	Total  models.Balances // Base + Bonus, то, что реально зачислено
}

// ClaimOffline начисляет офлайн-заработок и потребляет окно тем же
// условным UPDATE, что и синхронизация: параллельный sync и claim не
// могут засчитать одно окно дважды. Окно короче минимального — не
// ошибка: нулевое начисление, ledger не трогается, окно не сгорает.
func (e *Engine) ClaimOffline(ctx context.Context, accountID string, watchedAd bool) (*ClaimOutcome, error) {
	for attempt := 1; attempt <= maxApplyAttempts; attempt++ {
		ledger, err := e.ledgers.GetLedger(ctx, accountID)
		if err != nil {
			return nil, fmt.Errorf("read ledger: %w", err)
		}

		now := e.now()
		window := rates.OfflineWindow(now.Sub(ledger.LastUpdate))
		if window == 0 {
			return &ClaimOutcome{Ledger: ledger}, nil
		}

		base := rates.OfflineEarnings(ledger.Upgrades, window)
		total := base
		var bonus models.Balances
		if watchedAd {
			// Реклама удваивает всё начисление целиком
			total = base.Double()
			bonus = total.Sub(base)
		}

		updated, err := e.ledgers.ApplyEarnings(ctx, accountID, total, ledger.LastUpdate, now)
		if errors.Is(err, storage.ErrLedgerConflict) {
			// Окно успел потребить параллельный sync или claim:
			// перечитываем, окно пересчитается от нового timestamp
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("apply claim: %w", err)
		}

		e.logger.Info("offline earnings claimed",
			"account_id", accountID,
			"window_s", window,
			"carrots", total.Carrots,
			"watched_ad", watchedAd,
		)

		return &ClaimOutcome{
			Ledger: updated,
			Base:   base,
			Bonus:  bonus,
			Total:  total,
		}, nil
	}

	return nil, fmt.Errorf("claim not applied after %d attempts: %w", maxApplyAttempts, storage.ErrLedgerConflict)
}
