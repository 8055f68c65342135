package boltdb

import (
	"context"

	"go.etcd.io/bbolt"

	"github.com/iudanet/stablehand/internal/client/storage"
)

// GetWallet возвращает кошелек аккаунта или storage.ErrWalletNotFound.
func (s *Storage) GetWallet(ctx context.Context, accountID string) (*storage.WalletState, error) {
	var wallet storage.WalletState

	err := s.db.View(func(tx *bbolt.Tx) error {
		found, err := getJSON(tx, bucketWallet, []byte(accountID), &wallet)
		if err != nil {
			return err
		}
		if !found {
			return storage.ErrWalletNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &wallet, nil
}

// GetSession возвращает несинхронизированный остаток сессии.
// Отсутствие записи не ошибка: свежий аккаунт начинает с пустой сессии.
func (s *Storage) GetSession(ctx context.Context, accountID string) (*storage.SessionState, error) {
	session := &storage.SessionState{}

	err := s.db.View(func(tx *bbolt.Tx) error {
		_, err := getJSON(tx, bucketSession, []byte(accountID), session)
		return err
	})
	if err != nil {
		return nil, err
	}

	return session, nil
}

// SaveState пишет кошелек и сессию одной транзакцией. Они меняются вместе
// (начисление, синк), и видеть после рестарта половину апдейта нельзя.
func (s *Storage) SaveState(
	ctx context.Context,
	accountID string,
	wallet *storage.WalletState,
	session *storage.SessionState,
) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := putJSON(tx, bucketWallet, []byte(accountID), wallet); err != nil {
			return err
		}
		return putJSON(tx, bucketSession, []byte(accountID), session)
	})
}
