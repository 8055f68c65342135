package sync

import (
	"context"
	"log/slog"
	"time"

	"github.com/iudanet/stablehand/internal/client/wallet"
)

// Scheduler периодически выталкивает несинхронизированный заработок
// на сервер. Фоновые синки идут только по грязному кошельку, чтобы
// не гонять пустые запросы.
type Scheduler struct {
	syncService Service
	wallet      wallet.Service
	logger      *slog.Logger
	interval    time.Duration
	inFlight    chan struct{} // семафор: не больше одного синка одновременно
}

// NewScheduler создает новый планировщик фоновой синхронизации
func NewScheduler(
	syncService Service,
	walletService wallet.Service,
	logger *slog.Logger,
	interval time.Duration,
) *Scheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Scheduler{
		syncService: syncService,
		wallet:      walletService,
		logger:      logger,
		interval:    interval,
		inFlight:    make(chan struct{}, 1),
	}
}

// Run крутит тикер до отмены контекста
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("sync scheduler stopped")
			return nil
		case <-ticker.C:
			s.trySync(ctx)
		}
	}
}

// OnBackground вызывается при сворачивании игры: тот же ленивый синк,
// что и по тику, без ожидания ближайшего интервала
func (s *Scheduler) OnBackground(ctx context.Context) {
	s.trySync(ctx)
}

// ForceSync синхронизируется немедленно, даже с чистым кошельком:
// сверка всё равно принесёт офлайн-начисления и авторитетные балансы.
// Если другой синк уже в полёте, ждёт его завершения.
func (s *Scheduler) ForceSync(ctx context.Context) (*SyncResult, error) {
	select {
	case s.inFlight <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-s.inFlight }()

	return s.syncService.Sync(ctx)
}

// trySync запускает синк, если есть что отправлять и семафор свободен
func (s *Scheduler) trySync(ctx context.Context) {
	if !s.wallet.Snapshot().Dirty {
		return
	}

	select {
	case s.inFlight <- struct{}{}:
	default:
		s.logger.Debug("sync already in flight, skipping tick")
		return
	}
	defer func() { <-s.inFlight }()

	if _, err := s.syncService.Sync(ctx); err != nil {
		// Ошибка не фатальна: заработок остаётся в кошельке
		// и уедет со следующим синком
		s.logger.Warn("background sync failed", "error", err)
	}
}
