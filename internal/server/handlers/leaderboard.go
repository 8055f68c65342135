package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/iudanet/stablehand/internal/models"
	"github.com/iudanet/stablehand/internal/server/cache"
	"github.com/iudanet/stablehand/pkg/api"
)

// leaderboardCacheKey — ключ снапшота топа в кэше.
const leaderboardCacheKey = "leaderboard:carrots"

// LedgerReader — read-only доступ к ledger-ам для таблицы лидеров
type LedgerReader interface {
	TopByCarrots(ctx context.Context, limit int) ([]models.LeaderboardRow, error)
}

// LeaderboardHandler обрабатывает запросы таблицы лидеров.
// Выборка топа — единственный запрос, который сканирует все ledger-ы,
// поэтому готовый JSON-снапшот живёт в кэше свой TTL.
type LeaderboardHandler struct {
	logger  *slog.Logger
	ledgers LedgerReader
	cache   cache.Cache
	ttl     time.Duration
	limit   int
}

// NewLeaderboardHandler создает новый handler таблицы лидеров
func NewLeaderboardHandler(
	logger *slog.Logger,
	ledgers LedgerReader,
	c cache.Cache,
	ttl time.Duration,
	limit int,
) *LeaderboardHandler {
	return &LeaderboardHandler{
		logger:  logger,
		ledgers: ledgers,
		cache:   c,
		ttl:     ttl,
		limit:   limit,
	}
}

// Top обрабатывает GET /api/v1/leaderboard
// Топ аккаунтов по морковкам, снапшот кэшируется целиком
func (h *LeaderboardHandler) Top(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	payload, err := h.cache.GetOrSet(ctx, leaderboardCacheKey, h.ttl, func() ([]byte, error) {
		return h.buildSnapshot(ctx)
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to build leaderboard", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(payload); err != nil {
		h.logger.ErrorContext(ctx, "failed to write leaderboard response", slog.Any("error", err))
	}
}

// buildSnapshot собирает готовый JSON ответа: кэшируем именно байты,
// чтобы попадание в кэш не тратилось на повторный marshal.
func (h *LeaderboardHandler) buildSnapshot(ctx context.Context) ([]byte, error) {
	rows, err := h.ledgers.TopByCarrots(ctx, h.limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top ledgers: %w", err)
	}

	resp := api.LeaderboardResponse{
		Entries:     make([]api.LeaderboardEntry, 0, len(rows)),
		GeneratedAt: time.Now().Unix(),
	}
	for i, row := range rows {
		resp.Entries = append(resp.Entries, api.LeaderboardEntry{
			Rank:     i + 1,
			Username: row.Username,
			Carrots:  row.Carrots,
		})
	}

	payload, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal leaderboard: %w", err)
	}

	return payload, nil
}
