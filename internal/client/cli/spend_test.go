package cli

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/stablehand/internal/client/storage"
	"github.com/iudanet/stablehand/internal/models"
	pkgapi "github.com/iudanet/stablehand/pkg/api"
)

func TestRunSpend(t *testing.T) {
	var gotReq pkgapi.UpgradeRequest
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/user/upgrade", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		writeJSON(t, w, http.StatusOK, pkgapi.UpgradeResponse{
			Upgrade:   gotReq.Upgrade,
			Cost:      pkgapi.BalanceSet{Carrots: 5000},
			NewTotals: pkgapi.BalanceSet{Carrots: 1000},
			Upgrades:  pkgapi.UpgradeFlags{ProductionBoost: true},
		})
	})

	c, term, store := newTestCli(t, mux)
	seedAuth(t, store)
	seedWallet(t, store,
		&storage.WalletState{Balances: models.Balances{Carrots: 6000}, LastSyncAt: 1700000000},
		&storage.SessionState{},
	)

	err := c.Run(context.Background(), "spend", []string{"production_boost"})

	require.NoError(t, err)
	assert.Equal(t, "production_boost", gotReq.Upgrade)
	assert.Contains(t, term.text(), "Upgrade purchased")

	// Цена списана локально, флаг взят у сервера
	wallet, err := store.GetWallet(context.Background(), "acc-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), wallet.Balances.Carrots)
	assert.True(t, wallet.Upgrades.ProductionBoost)
}

func TestRunSpend_MissingArgument(t *testing.T) {
	c, _, _ := newTestCli(t, nil)

	err := c.Run(context.Background(), "spend", nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "usage: stablehand spend")
}

func TestRunSpend_UnknownUpgrade(t *testing.T) {
	c, _, _ := newTestCli(t, nil)

	err := c.Run(context.Background(), "spend", []string{"rocket_fuel"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown upgrade: rocket_fuel")
}

func TestRunSpend_AlreadyOwned(t *testing.T) {
	serverCalled := false
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		serverCalled = true
	})

	c, _, store := newTestCli(t, mux)
	seedAuth(t, store)
	seedWallet(t, store,
		&storage.WalletState{
			Balances: models.Balances{Carrots: 10000},
			Upgrades: models.Upgrades{ProductionBoost: true},
		},
		&storage.SessionState{},
	)

	err := c.Run(context.Background(), "spend", []string{"production_boost"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "already owned")
	assert.False(t, serverCalled)
}

func TestRunSpend_InsufficientFunds(t *testing.T) {
	serverCalled := false
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		serverCalled = true
	})

	c, _, store := newTestCli(t, mux)
	seedAuth(t, store)
	seedWallet(t, store,
		&storage.WalletState{Balances: models.Balances{Carrots: 100}},
		&storage.SessionState{},
	)

	err := c.Run(context.Background(), "spend", []string{"production_boost"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not enough funds")
	// Локальной проверки достаточно, на сервер не ходим
	assert.False(t, serverCalled)

	wallet, err := store.GetWallet(context.Background(), "acc-1")
	require.NoError(t, err)
	assert.Equal(t, int64(100), wallet.Balances.Carrots)
}

func TestRunSpend_ServerRefuses(t *testing.T) {
	// Локально денег хватает, но авторитетный ledger беднее
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/user/upgrade", func(w http.ResponseWriter, r *http.Request) {
		writeAPIError(t, w, http.StatusPaymentRequired, "insufficient funds")
	})

	c, _, store := newTestCli(t, mux)
	seedAuth(t, store)
	seedWallet(t, store,
		&storage.WalletState{Balances: models.Balances{Carrots: 6000}},
		&storage.SessionState{},
	)

	err := c.Run(context.Background(), "spend", []string{"production_boost"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "purchase failed")

	// Локальное списание откачено, флаг не взведён
	wallet, err := store.GetWallet(context.Background(), "acc-1")
	require.NoError(t, err)
	assert.Equal(t, int64(6000), wallet.Balances.Carrots)
	assert.False(t, wallet.Upgrades.ProductionBoost)
}

func TestRunSpend_RefreshesExpiredToken(t *testing.T) {
	var upgradeTokens []string
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/user/upgrade", func(w http.ResponseWriter, r *http.Request) {
		upgradeTokens = append(upgradeTokens, r.Header.Get("Authorization"))
		if len(upgradeTokens) == 1 {
			writeAPIError(t, w, http.StatusUnauthorized, "token expired")
			return
		}
		writeJSON(t, w, http.StatusOK, pkgapi.UpgradeResponse{
			Upgrade:   "production_boost",
			Cost:      pkgapi.BalanceSet{Carrots: 5000},
			NewTotals: pkgapi.BalanceSet{Carrots: 1000},
			Upgrades:  pkgapi.UpgradeFlags{ProductionBoost: true},
		})
	})
	mux.HandleFunc("POST /api/v1/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer refresh_token", r.Header.Get("Authorization"))
		writeJSON(t, w, http.StatusOK, pkgapi.TokenResponse{
			UserID:       "acc-1",
			AccessToken:  "rotated_access",
			RefreshToken: "rotated_refresh",
			ExpiresIn:    900,
		})
	})

	c, _, store := newTestCli(t, mux)
	seedAuth(t, store)
	seedWallet(t, store,
		&storage.WalletState{Balances: models.Balances{Carrots: 6000}},
		&storage.SessionState{},
	)

	err := c.Run(context.Background(), "spend", []string{"production_boost"})

	require.NoError(t, err)
	require.Equal(t, []string{"Bearer access_token", "Bearer rotated_access"}, upgradeTokens)

	wallet, err := store.GetWallet(context.Background(), "acc-1")
	require.NoError(t, err)
	assert.True(t, wallet.Upgrades.ProductionBoost)
}
