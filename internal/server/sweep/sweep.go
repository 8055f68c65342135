// Package sweep периодически удаляет протухшие refresh-токены.
// Logout чистит токены пользователя сразу, но брошенные сессии
// (пользователь просто закрыл клиент) копятся в хранилище до истечения TTL.
package sweep

import (
	"context"
	"log/slog"
	"time"
)

// TokenStorage defines the storage operations needed by the sweeper.
type TokenStorage interface {
	DeleteExpiredTokens(ctx context.Context) (int, error)
}

// Sweeper runs periodic cleanup of expired refresh tokens.
type Sweeper struct {
	logger   *slog.Logger
	tokens   TokenStorage
	interval time.Duration
}

// New creates a token sweeper. Нулевой интервал заменяется часом.
func New(logger *slog.Logger, tokens TokenStorage, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = time.Hour
	}

	return &Sweeper{
		logger:   logger,
		tokens:   tokens,
		interval: interval,
	}
}

// Run blocks until the context is canceled, sweeping on each tick.
// Возвращает nil при штатной остановке, чтобы не ронять errgroup при shutdown.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.InfoContext(ctx, "token sweeper started",
		slog.String("interval", s.interval.String()))

	for {
		select {
		case <-ticker.C:
			s.sweep(ctx)
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "token sweeper stopped")
			return nil
		}
	}
}

// sweep deletes expired tokens once. Ошибка логируется, но не останавливает цикл:
// следующая итерация может пройти успешно после восстановления базы.
func (s *Sweeper) sweep(ctx context.Context) {
	deleted, err := s.tokens.DeleteExpiredTokens(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to sweep expired tokens", slog.Any("error", err))
		return
	}

	if deleted > 0 {
		s.logger.InfoContext(ctx, "swept expired refresh tokens",
			slog.Int("tokens_deleted", deleted))
	}
}
