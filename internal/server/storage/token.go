package storage

import (
	"context"

	"github.com/iudanet/stablehand/internal/models"
)

// TokenStorage — хранилище refresh-токенов. Сами токены непрозрачные
// случайные строки, их единственный источник правды — эта таблица:
// удаление строки мгновенно отзывает токен.
type TokenStorage interface {
	// SaveRefreshToken сохраняет токен; существующий с тем же
	// значением перезаписывается
	SaveRefreshToken(ctx context.Context, token *models.RefreshToken) error

	// GetRefreshToken ищет токен по значению.
	// ErrTokenNotFound — токен не выдавался или уже отозван.
	GetRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error)

	// GetUserTokens перечисляет живые токены пользователя
	// (все его устройства). Пустой срез — токенов нет.
	GetUserTokens(ctx context.Context, userID string) ([]*models.RefreshToken, error)

	// DeleteRefreshToken отзывает один токен (ротация при refresh).
	// ErrTokenNotFound — токена уже нет.
	DeleteRefreshToken(ctx context.Context, token string) error

	// DeleteUserTokens отзывает все токены пользователя (logout).
	// Возвращает число удаленных.
	DeleteUserTokens(ctx context.Context, userID string) (int, error)

	// DeleteExpiredTokens удаляет протухшие токены (фоновый sweeper).
	// Возвращает число удаленных.
	DeleteExpiredTokens(ctx context.Context) (int, error)
}
