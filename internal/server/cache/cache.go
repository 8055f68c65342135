// Package cache — кэш для дорогих read-only ответов (таблица лидеров).
// Интерфейс позволяет менять in-memory реализацию (разработка, один
// инстанс) на Redis (продакшн) без изменения handler-ов.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss возвращается когда ключа нет в кэше
var ErrCacheMiss = errors.New("cache miss")

// Cache определяет операции кэша
type Cache interface {
	// Get возвращает значение по ключу. ErrCacheMiss если ключа нет.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set сохраняет значение с заданным TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete удаляет значение по ключу.
	Delete(ctx context.Context, key string) error

	// GetOrSet возвращает значение или вычисляет и сохраняет его при промахе.
	GetOrSet(ctx context.Context, key string, ttl time.Duration, fn func() ([]byte, error)) ([]byte, error)

	// Close освобождает ресурсы кэша.
	Close() error
}
