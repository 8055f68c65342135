package sqldb

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/stablehand/internal/models"
	"github.com/iudanet/stablehand/internal/server/storage"
)

func createTestLedger(t *testing.T, ctx context.Context, s *Storage, at time.Time) string {
	accountID := createTestUser(t, ctx, s)
	require.NoError(t, s.CreateLedger(ctx, &models.Ledger{
		AccountID:  accountID,
		LastUpdate: at,
		CreatedAt:  at,
		UpdatedAt:  at,
	}))
	return accountID
}

func TestLedgerStorage_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	accountID := createTestUser(t, ctx, s)
	at := time.Unix(1700000000, 0).UTC()

	ledger := &models.Ledger{
		AccountID: accountID,
		Balances:  models.Balances{Carrots: 100, HorseShoes: 10, GoldenCarrots: 1},
		Upgrades: models.Upgrades{
			ProductionBoost:    true,
			HorseShoesUnlocked: true,
		},
		LastUpdate: at,
		CreatedAt:  at,
		UpdatedAt:  at,
	}
	require.NoError(t, s.CreateLedger(ctx, ledger))

	retrieved, err := s.GetLedger(ctx, accountID)
	require.NoError(t, err)
	assert.Equal(t, ledger.AccountID, retrieved.AccountID)
	assert.Equal(t, ledger.Balances, retrieved.Balances)
	assert.Equal(t, ledger.Upgrades, retrieved.Upgrades)
	assert.Equal(t, at, retrieved.LastUpdate)
	assert.Equal(t, at, retrieved.CreatedAt)
	assert.Equal(t, at, retrieved.UpdatedAt)
}

func TestLedgerStorage_CreateDuplicate(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	at := time.Unix(1700000000, 0).UTC()
	accountID := createTestLedger(t, ctx, s, at)

	err := s.CreateLedger(ctx, &models.Ledger{
		AccountID:  accountID,
		LastUpdate: at,
		CreatedAt:  at,
		UpdatedAt:  at,
	})
	assert.ErrorIs(t, err, storage.ErrUserAlreadyExists)
}

func TestLedgerStorage_GetNotFound(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	_, err := s.GetLedger(ctx, uuid.New().String())
	assert.ErrorIs(t, err, storage.ErrLedgerNotFound)
}

func TestLedgerStorage_ApplyEarnings(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	seenAt := time.Unix(1700000000, 0).UTC()
	now := time.Unix(1700014400, 0).UTC() // +4 часа
	accountID := createTestLedger(t, ctx, s, seenAt)

	delta := models.Balances{Carrots: 5040, HorseShoes: 12, GoldenCarrots: 3}
	updated, err := s.ApplyEarnings(ctx, accountID, delta, seenAt, now)
	require.NoError(t, err)

	assert.Equal(t, delta, updated.Balances)
	assert.Equal(t, now, updated.LastUpdate)
	assert.Equal(t, now, updated.UpdatedAt)

	// Строка в БД совпадает с возвращённой
	stored, err := s.GetLedger(ctx, accountID)
	require.NoError(t, err)
	assert.Equal(t, updated, stored)
}

func TestLedgerStorage_ApplyEarnings_StaleTimestamp(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	seenAt := time.Unix(1700000000, 0).UTC()
	accountID := createTestLedger(t, ctx, s, seenAt)

	// Первый писатель продвигает timestamp
	firstNow := time.Unix(1700000600, 0).UTC()
	_, err := s.ApplyEarnings(ctx, accountID, models.Balances{Carrots: 10}, seenAt, firstNow)
	require.NoError(t, err)

	// Второй писатель видел старый timestamp — конфликт, строка не меняется
	_, err = s.ApplyEarnings(ctx, accountID, models.Balances{Carrots: 999}, seenAt, time.Unix(1700000700, 0).UTC())
	assert.ErrorIs(t, err, storage.ErrLedgerConflict)

	stored, err := s.GetLedger(ctx, accountID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), stored.Balances.Carrots)
	assert.Equal(t, firstNow, stored.LastUpdate)

	// С актуальным timestamp всё проходит
	updated, err := s.ApplyEarnings(ctx, accountID, models.Balances{Carrots: 5}, firstNow, time.Unix(1700000800, 0).UTC())
	require.NoError(t, err)
	assert.Equal(t, int64(15), updated.Balances.Carrots)
}

func TestLedgerStorage_ApplyEarnings_ZeroDeltaAdvancesWindow(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	seenAt := time.Unix(1700000000, 0).UTC()
	now := time.Unix(1700000100, 0).UTC()
	accountID := createTestLedger(t, ctx, s, seenAt)

	// Нулевая дельта всё равно продвигает last_update: окно потреблено
	updated, err := s.ApplyEarnings(ctx, accountID, models.Balances{}, seenAt, now)
	require.NoError(t, err)
	assert.True(t, updated.Balances.IsZero())
	assert.Equal(t, now, updated.LastUpdate)
}

func TestLedgerStorage_ApplyEarnings_MissingAccount(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	_, err := s.ApplyEarnings(ctx, uuid.New().String(), models.Balances{Carrots: 1},
		time.Unix(1700000000, 0).UTC(), time.Unix(1700000100, 0).UTC())
	// Отсутствующая строка неотличима от конфликта на уровне UPDATE;
	// вызывающий перечитывает и получает ErrLedgerNotFound
	assert.ErrorIs(t, err, storage.ErrLedgerConflict)
}

func TestLedgerStorage_ApplyPurchase(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	at := time.Unix(1700000000, 0).UTC()
	accountID := createTestLedger(t, ctx, s, at)

	// Начисляем стартовый капитал
	_, err := s.ApplyEarnings(ctx, accountID, models.Balances{Carrots: 2000}, at, at.Add(time.Hour))
	require.NoError(t, err)

	purchasedAt := time.Unix(1700010000, 0).UTC()
	updated, err := s.ApplyPurchase(ctx, accountID,
		models.Balances{Carrots: 1500}, models.UpgradeHorseShoes, purchasedAt)
	require.NoError(t, err)

	assert.Equal(t, int64(500), updated.Balances.Carrots)
	assert.True(t, updated.Upgrades.HorseShoesUnlocked)
	assert.False(t, updated.Upgrades.ProductionBoost)
	// Покупка не трогает офлайн-окно
	assert.Equal(t, at.Add(time.Hour), updated.LastUpdate)
	assert.Equal(t, purchasedAt, updated.UpdatedAt)
}

func TestLedgerStorage_ApplyPurchase_InsufficientFunds(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	at := time.Unix(1700000000, 0).UTC()
	accountID := createTestLedger(t, ctx, s, at)

	_, err := s.ApplyEarnings(ctx, accountID, models.Balances{Carrots: 100}, at, at.Add(time.Minute))
	require.NoError(t, err)

	// Не хватает морковок: трата не обрезается до остатка, строка не меняется
	_, err = s.ApplyPurchase(ctx, accountID,
		models.Balances{Carrots: 1500}, models.UpgradeHorseShoes, at.Add(time.Hour))
	assert.ErrorIs(t, err, storage.ErrLedgerConflict)

	stored, err := s.GetLedger(ctx, accountID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), stored.Balances.Carrots)
	assert.False(t, stored.Upgrades.HorseShoesUnlocked)
}

func TestLedgerStorage_ApplyPurchase_AlreadyOwned(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	at := time.Unix(1700000000, 0).UTC()
	accountID := createTestLedger(t, ctx, s, at)

	_, err := s.ApplyEarnings(ctx, accountID, models.Balances{Carrots: 10000}, at, at.Add(time.Minute))
	require.NoError(t, err)

	_, err = s.ApplyPurchase(ctx, accountID,
		models.Balances{Carrots: 1500}, models.UpgradeHorseShoes, at.Add(time.Hour))
	require.NoError(t, err)

	// Повторная покупка не списывает деньги второй раз
	_, err = s.ApplyPurchase(ctx, accountID,
		models.Balances{Carrots: 1500}, models.UpgradeHorseShoes, at.Add(2*time.Hour))
	assert.ErrorIs(t, err, storage.ErrLedgerConflict)

	stored, err := s.GetLedger(ctx, accountID)
	require.NoError(t, err)
	assert.Equal(t, int64(8500), stored.Balances.Carrots)
}

func TestLedgerStorage_ApplyPurchase_UnknownUpgrade(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	at := time.Unix(1700000000, 0).UTC()
	accountID := createTestLedger(t, ctx, s, at)

	_, err := s.ApplyPurchase(ctx, accountID, models.Balances{Carrots: 1}, "warp_drive", at)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown upgrade")
}

func TestLedgerStorage_TopByCarrots(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	at := time.Unix(1700000000, 0).UTC()

	// Три аккаунта с разными балансами
	balances := []int64{500, 1500, 1000}
	for _, carrots := range balances {
		accountID := createTestLedger(t, ctx, s, at)
		_, err := s.ApplyEarnings(ctx, accountID, models.Balances{Carrots: carrots}, at, at.Add(time.Minute))
		require.NoError(t, err)
	}

	top, err := s.TopByCarrots(ctx, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, int64(1500), top[0].Carrots)
	assert.Equal(t, int64(1000), top[1].Carrots)
	assert.NotEmpty(t, top[0].Username)
}

func TestLedgerStorage_TopByCarrots_Empty(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	top, err := s.TopByCarrots(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, top)
}
