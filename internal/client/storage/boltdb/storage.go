// Package boltdb хранит клиентское состояние в локальном bbolt-файле:
// auth-данные, кошелек и накопители сессии.
package boltdb

import (
	"context"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"
)

var (
	bucketAuth    = []byte("auth")
	bucketWallet  = []byte("wallet")
	bucketSession = []byte("session")
)

// Storage — клиентское bbolt-хранилище. Файл создается с правами 0600,
// внутри лежат токены.
type Storage struct {
	db *bbolt.DB
}

// New открывает (или создает) файл БД и готовит buckets.
func New(ctx context.Context, dbPath string) (*Storage, error) {
	db, err := bbolt.Open(dbPath, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("open boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketAuth, bucketWallet, bucketSession} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("create bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Storage{db: db}, nil
}

// Close closes the database connection. Повторный вызов безопасен.
func (s *Storage) Close() error {
	if s.db == nil {
		return nil
	}

	err := s.db.Close()
	s.db = nil
	return err
}

// putJSON сериализует значение под ключ. Bucket существует после New.
func putJSON(tx *bbolt.Tx, bucket, key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s/%s: %w", bucket, key, err)
	}
	if err := tx.Bucket(bucket).Put(key, data); err != nil {
		return fmt.Errorf("put %s/%s: %w", bucket, key, err)
	}
	return nil
}

// getJSON читает значение по ключу. false — ключа нет.
func getJSON(tx *bbolt.Tx, bucket, key []byte, dest any) (bool, error) {
	data := tx.Bucket(bucket).Get(key)
	if data == nil {
		return false, nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("unmarshal %s/%s: %w", bucket, key, err)
	}
	return true, nil
}
