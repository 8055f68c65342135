package boltdb

import (
	"context"
	"errors"

	"go.etcd.io/bbolt"

	"github.com/iudanet/stablehand/internal/client/storage"
)

// Сессия на клиенте одна, ключ фиксированный.
var authKey = []byte("current")

// SaveAuth перезаписывает сохраненную сессию.
func (s *Storage) SaveAuth(ctx context.Context, auth *storage.AuthData) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return putJSON(tx, bucketAuth, authKey, auth)
	})
}

// GetAuth возвращает сохраненную сессию или storage.ErrAuthNotFound.
func (s *Storage) GetAuth(ctx context.Context) (*storage.AuthData, error) {
	var auth storage.AuthData

	err := s.db.View(func(tx *bbolt.Tx) error {
		found, err := getJSON(tx, bucketAuth, authKey, &auth)
		if err != nil {
			return err
		}
		if !found {
			return storage.ErrAuthNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &auth, nil
}

// DeleteAuth удаляет сессию (logout).
func (s *Storage) DeleteAuth(ctx context.Context) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketAuth)
		if bucket.Get(authKey) == nil {
			return storage.ErrAuthNotFound
		}
		return bucket.Delete(authKey)
	})
}

// IsAuthenticated сообщает, есть ли сохраненная сессия. Срок access-токена
// здесь не проверяется: просроченный токен обновится по refresh при первом
// же запросе к серверу.
func (s *Storage) IsAuthenticated(ctx context.Context) (bool, error) {
	_, err := s.GetAuth(ctx)
	if errors.Is(err, storage.ErrAuthNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
