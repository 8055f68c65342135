package sync

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/stablehand/internal/client/wallet"
	"github.com/iudanet/stablehand/internal/models"
)

// mockSyncService implements Service for scheduler tests
type mockSyncService struct {
	calls  atomic.Int64
	result *SyncResult
	err    error
}

func (m *mockSyncService) Sync(_ context.Context) (*SyncResult, error) {
	m.calls.Add(1)
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func TestNewScheduler_DefaultInterval(t *testing.T) {
	tests := []struct {
		name     string
		interval time.Duration
		want     time.Duration
	}{
		{name: "zero falls back to a minute", interval: 0, want: time.Minute},
		{name: "negative falls back to a minute", interval: -time.Second, want: time.Minute},
		{name: "explicit interval kept", interval: 30 * time.Second, want: 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScheduler(&mockSyncService{}, &mockWalletService{}, testLogger(), tt.interval)
			assert.Equal(t, tt.want, s.interval)
		})
	}
}

func TestScheduler_Run_SyncsDirtyWallet(t *testing.T) {
	syncMock := &mockSyncService{result: &SyncResult{}}
	walletMock := &mockWalletService{snap: wallet.Snapshot{Dirty: true}}

	s := NewScheduler(syncMock, walletMock, testLogger(), 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(60 * time.Millisecond)
	cancel()

	require.NoError(t, <-done)
	assert.GreaterOrEqual(t, syncMock.calls.Load(), int64(2))
}

func TestScheduler_Run_SkipsCleanWallet(t *testing.T) {
	syncMock := &mockSyncService{result: &SyncResult{}}
	walletMock := &mockWalletService{snap: wallet.Snapshot{Dirty: false}}

	s := NewScheduler(syncMock, walletMock, testLogger(), 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	require.NoError(t, <-done)
	assert.Equal(t, int64(0), syncMock.calls.Load())
}

func TestScheduler_Run_ContinuesAfterSyncError(t *testing.T) {
	syncMock := &mockSyncService{err: errors.New("server unavailable")}
	walletMock := &mockWalletService{snap: wallet.Snapshot{Dirty: true}}

	s := NewScheduler(syncMock, walletMock, testLogger(), 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(60 * time.Millisecond)
	cancel()

	require.NoError(t, <-done)
	// Ошибки не останавливают планировщик
	assert.GreaterOrEqual(t, syncMock.calls.Load(), int64(2))
}

func TestScheduler_OnBackground(t *testing.T) {
	t.Run("dirty wallet syncs", func(t *testing.T) {
		syncMock := &mockSyncService{result: &SyncResult{}}
		walletMock := &mockWalletService{snap: wallet.Snapshot{Dirty: true}}
		s := NewScheduler(syncMock, walletMock, testLogger(), time.Minute)

		s.OnBackground(context.Background())

		assert.Equal(t, int64(1), syncMock.calls.Load())
	})

	t.Run("clean wallet does nothing", func(t *testing.T) {
		syncMock := &mockSyncService{result: &SyncResult{}}
		walletMock := &mockWalletService{snap: wallet.Snapshot{Dirty: false}}
		s := NewScheduler(syncMock, walletMock, testLogger(), time.Minute)

		s.OnBackground(context.Background())

		assert.Equal(t, int64(0), syncMock.calls.Load())
	})
}

func TestScheduler_ForceSync_BypassesDirtyGate(t *testing.T) {
	syncMock := &mockSyncService{
		result: &SyncResult{NewTotals: models.Balances{Carrots: 5040}},
	}
	// чистый кошелёк: фоновый синк пропустил бы, принудительный нет
	walletMock := &mockWalletService{snap: wallet.Snapshot{Dirty: false}}

	s := NewScheduler(syncMock, walletMock, testLogger(), time.Minute)

	result, err := s.ForceSync(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(5040), result.NewTotals.Carrots)
	assert.Equal(t, int64(1), syncMock.calls.Load())
}

func TestScheduler_ForceSync_WaitsForInFlight(t *testing.T) {
	syncMock := &mockSyncService{result: &SyncResult{}}
	s := NewScheduler(syncMock, &mockWalletService{}, testLogger(), time.Minute)

	// Занимаем семафор, как будто фоновый синк в полёте
	s.inFlight <- struct{}{}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	result, err := s.ForceSync(ctx)

	require.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, int64(0), syncMock.calls.Load())

	// Семафор освободился — принудительный синк проходит
	<-s.inFlight
	result, err = s.ForceSync(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, result)
}
