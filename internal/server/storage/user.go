package storage

import (
	"context"
	"time"

	"github.com/iudanet/stablehand/internal/models"
)

// UserStorage — хранилище аккаунтов. Пароли сюда попадают только
// bcrypt-хешами, открытый текст дальше handler-а не живет.
type UserStorage interface {
	// CreateUser заводит пользователя.
	// ErrUserAlreadyExists — username занят.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByUsername ищет пользователя по имени (логин).
	// ErrUserNotFound — такого имени нет.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	// GetUserByID ищет пользователя по id (refresh, claims).
	// ErrUserNotFound — id неизвестен.
	GetUserByID(ctx context.Context, userID string) (*models.User, error)

	// UpdateLastLogin отмечает момент успешного логина.
	// ErrUserNotFound — id неизвестен.
	UpdateLastLogin(ctx context.Context, userID string, lastLogin time.Time) error

	// DeleteUser удаляет пользователя; нужен откату регистрации,
	// когда ledger завести не удалось.
	// ErrUserNotFound — id неизвестен.
	DeleteUser(ctx context.Context, userID string) error
}
