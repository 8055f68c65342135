package storage

import (
	"context"

	"github.com/iudanet/stablehand/internal/models"
)

// WalletState — локальный кэш балансов и апгрейдов одного аккаунта.
// Сервер всегда прав: ответ синка перезаписывает это состояние целиком.
type WalletState struct {
	Balances   models.Balances `json:"balances"`
	Upgrades   models.Upgrades `json:"upgrades"`
	Dirty      bool            `json:"dirty"`        // есть несинхронизированные локальные изменения
	LastSyncAt int64           `json:"last_sync_at"` // unix seconds последнего применённого синка, 0 на свежей установке
}

// SessionState — накопители текущей активной сессии: что клиент заявит
// серверу следующим синком. Переживает рестарты и неудавшиеся синки.
type SessionState struct {
	ClickCount     int64           `json:"click_count"`
	SessionSeconds int64           `json:"session_seconds"`
	Earned         models.Balances `json:"earned"`
}

// WalletStorage defines interface for wallet persistence on client.
// Состояние хранится по account id: на одной машине можно играть
// несколькими аккаунтами, не затирая чужой несинхронизированный прогресс.
type WalletStorage interface {
	// GetWallet retrieves wallet state for the account
	// Returns ErrWalletNotFound if no state exists yet
	GetWallet(ctx context.Context, accountID string) (*WalletState, error)

	// GetSession retrieves the pending session record for the account
	// Returns an empty session if none exists yet
	GetSession(ctx context.Context, accountID string) (*SessionState, error)

	// SaveState stores wallet and session atomically.
	// Одна транзакция: после рестарта не должно быть видно состояние,
	// где синк применён к кошельку, но сессия ещё не сброшена.
	SaveState(ctx context.Context, accountID string, wallet *WalletState, session *SessionState) error
}
