package storage

import (
	"context"
)

// AuthStorage defines interface for storing authentication data on client
type AuthStorage interface {
	// SaveAuth stores authentication data
	SaveAuth(ctx context.Context, auth *AuthData) error

	// GetAuth retrieves stored authentication data
	// Returns ErrAuthNotFound if no auth data exists
	GetAuth(ctx context.Context) (*AuthData, error)

	// DeleteAuth removes stored authentication data (logout)
	DeleteAuth(ctx context.Context) error

	// IsAuthenticated reports whether a stored session exists.
	// Просроченный access token сессией быть не перестает: его
	// обновит refresh при первом запросе.
	IsAuthenticated(ctx context.Context) (bool, error)
}

// AuthData represents authentication information in storage.
// Токены лежат в локальной базе как есть; файл открывается с правами 0600.
type AuthData struct {
	Username     string `json:"username"`
	UserID       string `json:"user_id"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"` // unix seconds истечения access token
}
