package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/stablehand/internal/models"
	"github.com/iudanet/stablehand/internal/rates"
	"github.com/iudanet/stablehand/internal/server/reconcile"
	"github.com/iudanet/stablehand/internal/server/storage"
	"github.com/iudanet/stablehand/pkg/api"
)

// mockReconciler is a mock implementation of Reconciler for testing
type mockReconciler struct {
	syncFn     func(ctx context.Context, accountID string, in reconcile.SyncInput) (*reconcile.SyncOutcome, error)
	previewFn  func(ctx context.Context, accountID string) (*reconcile.PreviewOutcome, error)
	claimFn    func(ctx context.Context, accountID string, watchedAd bool) (*reconcile.ClaimOutcome, error)
	purchaseFn func(ctx context.Context, accountID, upgrade string) (*reconcile.PurchaseOutcome, error)
}

func (m *mockReconciler) Sync(
	ctx context.Context, accountID string, in reconcile.SyncInput,
) (*reconcile.SyncOutcome, error) {
	return m.syncFn(ctx, accountID, in)
}

func (m *mockReconciler) PreviewOffline(ctx context.Context, accountID string) (*reconcile.PreviewOutcome, error) {
	return m.previewFn(ctx, accountID)
}

func (m *mockReconciler) ClaimOffline(
	ctx context.Context, accountID string, watchedAd bool,
) (*reconcile.ClaimOutcome, error) {
	return m.claimFn(ctx, accountID, watchedAd)
}

func (m *mockReconciler) Purchase(
	ctx context.Context, accountID, upgrade string,
) (*reconcile.PurchaseOutcome, error) {
	return m.purchaseFn(ctx, accountID, upgrade)
}

// authedRequest собирает запрос с user_id в контексте, как после auth middleware
func authedRequest(method, target string, body []byte) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	req.Header.Set("Content-Type", "application/json")
	ctx := context.WithValue(req.Context(), UserIDKey, "user123")
	return req.WithContext(ctx)
}

func TestGameHandler_Sync_Success(t *testing.T) {
	logger := setupTestLogger()

	ledger := &models.Ledger{
		AccountID:  "user123",
		Balances:   models.Balances{Carrots: 15060, HorseShoes: 42, GoldenCarrots: 7},
		Upgrades:   models.Upgrades{ProductionBoost: true},
		LastUpdate: time.Now(),
	}

	var gotAccountID string
	var gotInput reconcile.SyncInput
	engine := &mockReconciler{
		syncFn: func(ctx context.Context, accountID string, in reconcile.SyncInput) (*reconcile.SyncOutcome, error) {
			gotAccountID = accountID
			gotInput = in
			return &reconcile.SyncOutcome{
				Ledger:         ledger,
				Offline:        models.Balances{Carrots: 5040},
				Validated:      models.Balances{Carrots: 20},
				Credited:       models.Balances{Carrots: 5060},
				Overage:        models.Balances{Carrots: 49980},
				Clamped:        reconcile.Flags{Carrots: true},
				Suspicious:     true,
				Extreme:        true,
				Efficiency:     0.7,
				AdjustedClicks: 100,
				ClickRate:      10.0,
				WindowSeconds:  14400,
			}, nil
		},
	}

	handler := NewGameHandler(logger, engine)

	reqBody := api.SyncRequest{
		SessionData:       api.BalanceSet{Carrots: 50000},
		ClickCount:        5000,
		SessionDuration:   10,
		IsReturningPlayer: true,
	}
	body, err := json.Marshal(reqBody)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	handler.Sync(w, authedRequest(http.MethodPost, "/api/v1/user/sync", body))

	assert.Equal(t, http.StatusOK, w.Code)

	// Запрос дошел до движка в правильном виде
	assert.Equal(t, "user123", gotAccountID)
	assert.Equal(t, int64(50000), gotInput.SessionEarned.Carrots)
	assert.Equal(t, int64(5000), gotInput.ClickCount)
	assert.Equal(t, int64(10), gotInput.SessionSeconds)
	assert.True(t, gotInput.ReturningPlayer)

	var resp api.SyncResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))

	assert.Equal(t, int64(5040), resp.OfflineEarnings.Carrots)
	assert.Equal(t, int64(20), resp.ValidatedActiveEarnings.Carrots)
	assert.Equal(t, int64(5060), resp.TotalCredited.Carrots)
	assert.Equal(t, int64(15060), resp.NewTotals.Carrots)
	assert.Equal(t, int64(42), resp.NewTotals.HorseShoes)
	assert.True(t, resp.Upgrades.ProductionBoost)
	assert.True(t, resp.Diagnostics.Clamped.Carrots)
	assert.False(t, resp.Diagnostics.Clamped.HorseShoes)
	assert.True(t, resp.Diagnostics.Extreme)
	assert.InDelta(t, 0.7, resp.Diagnostics.OfflineEfficiency, 1e-9)
	assert.InDelta(t, 10.0, resp.Diagnostics.ClickRate, 1e-9)
}

func TestGameHandler_Sync_Unauthorized(t *testing.T) {
	logger := setupTestLogger()
	handler := NewGameHandler(logger, &mockReconciler{})

	// Запрос без user_id в контексте
	req := httptest.NewRequest(http.MethodPost, "/api/v1/user/sync", bytes.NewReader([]byte("{}")))

	w := httptest.NewRecorder()
	handler.Sync(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGameHandler_Sync_InvalidJSON(t *testing.T) {
	logger := setupTestLogger()
	handler := NewGameHandler(logger, &mockReconciler{})

	w := httptest.NewRecorder()
	handler.Sync(w, authedRequest(http.MethodPost, "/api/v1/user/sync", []byte("not json")))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGameHandler_Sync_LedgerMissing(t *testing.T) {
	logger := setupTestLogger()
	engine := &mockReconciler{
		syncFn: func(ctx context.Context, accountID string, in reconcile.SyncInput) (*reconcile.SyncOutcome, error) {
			return nil, fmt.Errorf("read ledger: %w", storage.ErrLedgerNotFound)
		},
	}

	handler := NewGameHandler(logger, engine)

	w := httptest.NewRecorder()
	handler.Sync(w, authedRequest(http.MethodPost, "/api/v1/user/sync", []byte("{}")))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGameHandler_Sync_Contention(t *testing.T) {
	logger := setupTestLogger()
	engine := &mockReconciler{
		syncFn: func(ctx context.Context, accountID string, in reconcile.SyncInput) (*reconcile.SyncOutcome, error) {
			return nil, fmt.Errorf("sync not applied after 3 attempts: %w", storage.ErrLedgerConflict)
		},
	}

	handler := NewGameHandler(logger, engine)

	w := httptest.NewRecorder()
	handler.Sync(w, authedRequest(http.MethodPost, "/api/v1/user/sync", []byte("{}")))

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestGameHandler_Sync_InternalError(t *testing.T) {
	logger := setupTestLogger()
	engine := &mockReconciler{
		syncFn: func(ctx context.Context, accountID string, in reconcile.SyncInput) (*reconcile.SyncOutcome, error) {
			return nil, errors.New("database down")
		},
	}

	handler := NewGameHandler(logger, engine)

	w := httptest.NewRecorder()
	handler.Sync(w, authedRequest(http.MethodPost, "/api/v1/user/sync", []byte("{}")))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestGameHandler_OfflineEarnings_Success(t *testing.T) {
	logger := setupTestLogger()

	ledger := &models.Ledger{
		AccountID: "user123",
		Balances:  models.Balances{Carrots: 1000},
	}

	engine := &mockReconciler{
		previewFn: func(ctx context.Context, accountID string) (*reconcile.PreviewOutcome, error) {
			assert.Equal(t, "user123", accountID)
			return &reconcile.PreviewOutcome{
				Ledger:        ledger,
				AwaySeconds:   15000,
				WindowSeconds: 14400,
				HasEarnings:   true,
				Earnings:      models.Balances{Carrots: 5040},
				Efficiency:    decimal.RequireFromString("0.7"),
				IdlePerSecond: rates.IdleRates(models.Upgrades{}),
			}, nil
		},
	}

	handler := NewGameHandler(logger, engine)

	w := httptest.NewRecorder()
	handler.OfflineEarnings(w, authedRequest(http.MethodGet, "/api/v1/user/offline-earnings", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var resp api.OfflineEarningsResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))

	assert.True(t, resp.HasOfflineEarnings)
	assert.Equal(t, int64(15000), resp.AwaySeconds)
	assert.Equal(t, int64(14400), resp.OfflineSeconds)
	assert.InDelta(t, 70.0, resp.EfficiencyPercent, 1e-9)
	assert.Equal(t, int64(5040), resp.Earnings.Carrots)
	assert.InDelta(t, 0.5, resp.Rates.IdlePerSecond.Carrots, 1e-9)
	assert.InDelta(t, 1800.0, resp.Rates.IdlePerHour.Carrots, 1e-9)
	// Подковы не анлокнуты: ставка нулевая
	assert.InDelta(t, 0.0, resp.Rates.IdlePerSecond.HorseShoes, 1e-9)
}

func TestGameHandler_OfflineEarnings_ShortWindow(t *testing.T) {
	logger := setupTestLogger()

	engine := &mockReconciler{
		previewFn: func(ctx context.Context, accountID string) (*reconcile.PreviewOutcome, error) {
			return &reconcile.PreviewOutcome{
				Ledger:        &models.Ledger{AccountID: "user123"},
				AwaySeconds:   120,
				WindowSeconds: 0,
				HasEarnings:   false,
				Efficiency:    decimal.NewFromInt(1),
				IdlePerSecond: rates.IdleRates(models.Upgrades{}),
			}, nil
		},
	}

	handler := NewGameHandler(logger, engine)

	w := httptest.NewRecorder()
	handler.OfflineEarnings(w, authedRequest(http.MethodGet, "/api/v1/user/offline-earnings", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var resp api.OfflineEarningsResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))

	assert.False(t, resp.HasOfflineEarnings)
	assert.Equal(t, int64(120), resp.AwaySeconds)
	assert.Equal(t, int64(0), resp.OfflineSeconds)
	assert.Equal(t, int64(0), resp.Earnings.Carrots)
}

func TestGameHandler_OfflineEarnings_Unauthorized(t *testing.T) {
	logger := setupTestLogger()
	handler := NewGameHandler(logger, &mockReconciler{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/user/offline-earnings", nil)

	w := httptest.NewRecorder()
	handler.OfflineEarnings(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGameHandler_ClaimOffline_Success(t *testing.T) {
	logger := setupTestLogger()

	ledger := &models.Ledger{
		AccountID: "user123",
		Balances:  models.Balances{Carrots: 11080, HorseShoes: 10},
	}

	var gotWatchedAd bool
	engine := &mockReconciler{
		claimFn: func(ctx context.Context, accountID string, watchedAd bool) (*reconcile.ClaimOutcome, error) {
			gotWatchedAd = watchedAd
			return &reconcile.ClaimOutcome{
				Ledger: ledger,
				Base:   models.Balances{Carrots: 5040},
				Bonus:  models.Balances{Carrots: 5040},
				Total:  models.Balances{Carrots: 10080},
			}, nil
		},
	}

	handler := NewGameHandler(logger, engine)

	body, err := json.Marshal(api.ClaimOfflineRequest{WatchedAd: true})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	handler.ClaimOffline(w, authedRequest(http.MethodPost, "/api/v1/user/claim-offline", body))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, gotWatchedAd)

	var resp api.ClaimOfflineResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))

	assert.Equal(t, int64(5040), resp.BaseEarnings.Carrots)
	assert.Equal(t, int64(5040), resp.AdBonus.Carrots)
	assert.Equal(t, int64(10080), resp.TotalClaimed.Carrots)
	assert.Equal(t, int64(11080), resp.NewTotals.Carrots)
}

func TestGameHandler_ClaimOffline_InvalidJSON(t *testing.T) {
	logger := setupTestLogger()
	handler := NewGameHandler(logger, &mockReconciler{})

	w := httptest.NewRecorder()
	handler.ClaimOffline(w, authedRequest(http.MethodPost, "/api/v1/user/claim-offline", []byte("not json")))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGameHandler_ClaimOffline_Contention(t *testing.T) {
	logger := setupTestLogger()
	engine := &mockReconciler{
		claimFn: func(ctx context.Context, accountID string, watchedAd bool) (*reconcile.ClaimOutcome, error) {
			return nil, fmt.Errorf("claim not applied after 3 attempts: %w", storage.ErrLedgerConflict)
		},
	}

	handler := NewGameHandler(logger, engine)

	w := httptest.NewRecorder()
	handler.ClaimOffline(w, authedRequest(http.MethodPost, "/api/v1/user/claim-offline", []byte("{}")))

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestGameHandler_Upgrade_Success(t *testing.T) {
	logger := setupTestLogger()

	ledger := &models.Ledger{
		AccountID: "user123",
		Balances:  models.Balances{Carrots: 500},
		Upgrades:  models.Upgrades{HorseShoesUnlocked: true},
	}

	var gotUpgrade string
	engine := &mockReconciler{
		purchaseFn: func(ctx context.Context, accountID, upgrade string) (*reconcile.PurchaseOutcome, error) {
			gotUpgrade = upgrade
			return &reconcile.PurchaseOutcome{
				Ledger: ledger,
				Cost:   models.Balances{Carrots: 1500},
			}, nil
		},
	}

	handler := NewGameHandler(logger, engine)

	body, err := json.Marshal(api.UpgradeRequest{Upgrade: models.UpgradeHorseShoes})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	handler.Upgrade(w, authedRequest(http.MethodPost, "/api/v1/user/upgrade", body))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.UpgradeHorseShoes, gotUpgrade)

	var resp api.UpgradeResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))

	assert.Equal(t, models.UpgradeHorseShoes, resp.Upgrade)
	assert.Equal(t, int64(1500), resp.Cost.Carrots)
	assert.Equal(t, int64(500), resp.NewTotals.Carrots)
	assert.True(t, resp.Upgrades.HorseShoesUnlocked)
}

func TestGameHandler_Upgrade_Errors(t *testing.T) {
	logger := setupTestLogger()

	tests := []struct {
		name       string
		engineErr  error
		wantStatus int
	}{
		{
			name:       "unknown upgrade",
			engineErr:  reconcile.ErrUnknownUpgrade,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "already owned",
			engineErr:  reconcile.ErrUpgradeOwned,
			wantStatus: http.StatusConflict,
		},
		{
			name:       "insufficient funds",
			engineErr:  reconcile.ErrInsufficientFunds,
			wantStatus: http.StatusPaymentRequired,
		},
		{
			name:       "storage failure",
			engineErr:  errors.New("database down"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &mockReconciler{
				purchaseFn: func(ctx context.Context, accountID, upgrade string) (*reconcile.PurchaseOutcome, error) {
					return nil, tt.engineErr
				},
			}

			handler := NewGameHandler(logger, engine)

			body, err := json.Marshal(api.UpgradeRequest{Upgrade: models.UpgradeProductionBoost})
			require.NoError(t, err)

			w := httptest.NewRecorder()
			handler.Upgrade(w, authedRequest(http.MethodPost, "/api/v1/user/upgrade", body))

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestGameHandler_Upgrade_Unauthorized(t *testing.T) {
	logger := setupTestLogger()
	handler := NewGameHandler(logger, &mockReconciler{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/user/upgrade", bytes.NewReader([]byte("{}")))

	w := httptest.NewRecorder()
	handler.Upgrade(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
