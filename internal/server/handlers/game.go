package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/iudanet/stablehand/internal/models"
	"github.com/iudanet/stablehand/internal/rates"
	"github.com/iudanet/stablehand/internal/server/reconcile"
	"github.com/iudanet/stablehand/internal/server/storage"
	"github.com/iudanet/stablehand/pkg/api"
)

// Reconciler — интерфейс движка реконсиляции для game handler-а
type Reconciler interface {
	Sync(ctx context.Context, accountID string, in reconcile.SyncInput) (*reconcile.SyncOutcome, error)
	PreviewOffline(ctx context.Context, accountID string) (*reconcile.PreviewOutcome, error)
	ClaimOffline(ctx context.Context, accountID string, watchedAd bool) (*reconcile.ClaimOutcome, error)
	Purchase(ctx context.Context, accountID, upgrade string) (*reconcile.PurchaseOutcome, error)
}

// GameHandler обрабатывает игровые запросы: синк сессии, офлайн-награды,
// покупку апгрейдов. Вся математика живёт в движке, handler только
// переводит wire-формат в типы движка и обратно.
type GameHandler struct {
	logger *slog.Logger
	engine Reconciler
}

// NewGameHandler создает новый game handler
func NewGameHandler(logger *slog.Logger, engine Reconciler) *GameHandler {
	return &GameHandler{
		logger: logger,
		engine: engine,
	}
}

// Sync обрабатывает POST /api/v1/user/sync
// Реконсиляция заявки клиента с авторитетным ledger-ом.
// Неправдоподобная заявка не отклоняется, а обрезается до потолка.
func (h *GameHandler) Sync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		sendError(h.logger, w, "user not authenticated", http.StatusUnauthorized)
		return
	}

	var req api.SyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode sync request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	outcome, err := h.engine.Sync(ctx, userID, reconcile.SyncInput{
		SessionEarned: models.Balances{
			Carrots:       req.SessionData.Carrots,
			HorseShoes:    req.SessionData.HorseShoes,
			GoldenCarrots: req.SessionData.GoldenCarrots,
		},
		ClickCount:      req.ClickCount,
		SessionSeconds:  req.SessionDuration,
		ReturningPlayer: req.IsReturningPlayer,
	})
	if err != nil {
		h.gameError(ctx, w, "sync", err)
		return
	}

	resp := api.SyncResponse{
		OfflineEarnings:         toBalanceSet(outcome.Offline),
		ValidatedActiveEarnings: toBalanceSet(outcome.Validated),
		TotalCredited:           toBalanceSet(outcome.Credited),
		NewTotals:               toBalanceSet(outcome.Ledger.Balances),
		Upgrades:                toUpgradeFlags(outcome.Ledger.Upgrades),
		Diagnostics: api.SyncDiagnostics{
			Clamped:           toClampFlags(outcome.Clamped),
			Extreme:           outcome.Extreme,
			OfflineEfficiency: outcome.Efficiency,
			ClickRate:         outcome.ClickRate,
		},
	}

	sendJSON(h.logger, w, resp, http.StatusOK)
}

// OfflineEarnings обрабатывает GET /api/v1/user/offline-earnings
// Предпросмотр офлайн-наград. Read-only: окно не потребляется
func (h *GameHandler) OfflineEarnings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		sendError(h.logger, w, "user not authenticated", http.StatusUnauthorized)
		return
	}

	preview, err := h.engine.PreviewOffline(ctx, userID)
	if err != nil {
		h.gameError(ctx, w, "offline preview", err)
		return
	}

	resp := api.OfflineEarningsResponse{
		HasOfflineEarnings: preview.HasEarnings,
		AwaySeconds:        preview.AwaySeconds,
		OfflineSeconds:     preview.WindowSeconds,
		EfficiencyPercent:  preview.Efficiency.Mul(decimal.NewFromInt(100)).InexactFloat64(),
		Earnings:           toBalanceSet(preview.Earnings),
		Rates: api.RateTable{
			IdlePerSecond: toBalanceRates(preview.IdlePerSecond),
			IdlePerHour:   toBalanceRates(preview.IdlePerSecond.PerHour()),
		},
	}

	sendJSON(h.logger, w, resp, http.StatusOK)
}

// ClaimOffline обрабатывает POST /api/v1/user/claim-offline
// Начисление офлайн-наград с потреблением окна
func (h *GameHandler) ClaimOffline(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		sendError(h.logger, w, "user not authenticated", http.StatusUnauthorized)
		return
	}

	var req api.ClaimOfflineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode claim request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	claim, err := h.engine.ClaimOffline(ctx, userID, req.WatchedAd)
	if err != nil {
		h.gameError(ctx, w, "offline claim", err)
		return
	}

	resp := api.ClaimOfflineResponse{
		BaseEarnings: toBalanceSet(claim.Base),
		AdBonus:      toBalanceSet(claim.Bonus),
		TotalClaimed: toBalanceSet(claim.Total),
		NewTotals:    toBalanceSet(claim.Ledger.Balances),
	}

	sendJSON(h.logger, w, resp, http.StatusOK)
}

// Upgrade обрабатывает POST /api/v1/user/upgrade
// Покупка апгрейда: атомарное списание цены плюс взвод флага
func (h *GameHandler) Upgrade(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		sendError(h.logger, w, "user not authenticated", http.StatusUnauthorized)
		return
	}

	var req api.UpgradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode upgrade request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	purchase, err := h.engine.Purchase(ctx, userID, req.Upgrade)
	if err != nil {
		switch {
		case errors.Is(err, reconcile.ErrUnknownUpgrade):
			sendError(h.logger, w, "unknown upgrade", http.StatusBadRequest)
		case errors.Is(err, reconcile.ErrUpgradeOwned):
			sendError(h.logger, w, "upgrade already owned", http.StatusConflict)
		case errors.Is(err, reconcile.ErrInsufficientFunds):
			sendError(h.logger, w, "insufficient funds", http.StatusPaymentRequired)
		default:
			h.gameError(ctx, w, "upgrade purchase", err)
		}
		return
	}

	resp := api.UpgradeResponse{
		Upgrade:   req.Upgrade,
		Cost:      toBalanceSet(purchase.Cost),
		NewTotals: toBalanceSet(purchase.Ledger.Balances),
		Upgrades:  toUpgradeFlags(purchase.Ledger.Upgrades),
	}

	sendJSON(h.logger, w, resp, http.StatusOK)
}

// gameError переводит ошибки движка в HTTP статусы, общие для всех
// игровых endpoint-ов. Отсутствие ledger у аутентифицированного
// пользователя — целостность данных сломана, логируем как ошибку.
func (h *GameHandler) gameError(ctx context.Context, w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, storage.ErrLedgerNotFound):
		h.logger.ErrorContext(ctx, "ledger missing for authenticated user",
			slog.String("op", op), slog.Any("error", err))
		sendError(h.logger, w, "account ledger not found", http.StatusNotFound)
	case errors.Is(err, storage.ErrLedgerConflict):
		// Ретраи движка исчерпаны: слишком плотная гонка за строку
		h.logger.WarnContext(ctx, "ledger update contention",
			slog.String("op", op), slog.Any("error", err))
		sendError(h.logger, w, "concurrent balance update, try again", http.StatusConflict)
	default:
		h.logger.ErrorContext(ctx, "game operation failed",
			slog.String("op", op), slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
	}
}

func toBalanceSet(b models.Balances) api.BalanceSet {
	return api.BalanceSet{
		Carrots:       b.Carrots,
		HorseShoes:    b.HorseShoes,
		GoldenCarrots: b.GoldenCarrots,
	}
}

func toUpgradeFlags(u models.Upgrades) api.UpgradeFlags {
	return api.UpgradeFlags{
		ProductionBoost:       u.ProductionBoost,
		HorseShoesUnlocked:    u.HorseShoesUnlocked,
		GoldenCarrotsUnlocked: u.GoldenCarrotsUnlocked,
	}
}

func toClampFlags(f reconcile.Flags) api.ClampFlags {
	return api.ClampFlags{
		Carrots:       f.Carrots,
		HorseShoes:    f.HorseShoes,
		GoldenCarrots: f.GoldenCarrots,
	}
}

func toBalanceRates(t rates.Table) api.BalanceRates {
	return api.BalanceRates{
		Carrots:       t.Carrots.InexactFloat64(),
		HorseShoes:    t.HorseShoes.InexactFloat64(),
		GoldenCarrots: t.GoldenCarrots.InexactFloat64(),
	}
}
