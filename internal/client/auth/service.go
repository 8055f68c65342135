// Package auth управляет сессией игрока на клиенте: логин, обновление
// токенов и локальное хранение авторизационных данных.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/iudanet/stablehand/internal/client/api"
	"github.com/iudanet/stablehand/internal/client/storage"
	"github.com/iudanet/stablehand/internal/validation"
	pkgapi "github.com/iudanet/stablehand/pkg/api"
)

//go:generate moq -out service_mock.go . Service

// Service defines the interface for authentication operations
type Service interface {
	// Register регистрирует нового игрока на сервере.
	// Локальную сессию не открывает: за этим следует Login
	Register(ctx context.Context, username, password string) (*RegisterResult, error)

	// Login выполняет аутентификацию и сохраняет токены локально
	Login(ctx context.Context, username, password string) (*LoginResult, error)

	// Refresh обменивает сохранённый refresh token на новую пару
	// и перезаписывает локальные данные
	Refresh(ctx context.Context) (*storage.AuthData, error)

	// CurrentAuth возвращает сохранённые авторизационные данные
	CurrentAuth(ctx context.Context) (*storage.AuthData, error)

	// IsAuthenticated проверяет наличие сохранённой сессии
	IsAuthenticated(ctx context.Context) (bool, error)

	// Logout отзывает токены на сервере (best effort) и всегда
	// удаляет локальную сессию
	Logout(ctx context.Context) error
}

// RegisterResult содержит результат регистрации
type RegisterResult struct {
	UserID   string // UUID аккаунта
	Username string
}

// LoginResult содержит результат авторизации
type LoginResult struct {
	UserID      string // UUID аккаунта, ключ локального хранилища
	Username    string
	AccessToken string
	ExpiresIn   int64 // время жизни access token в секундах
}

type service struct {
	apiClient *api.Client
	authStore storage.AuthStorage
}

// NewService создает новый сервис авторизации
func NewService(apiClient *api.Client, authStore storage.AuthStorage) Service {
	return &service{
		apiClient: apiClient,
		authStore: authStore,
	}
}

// Register регистрирует нового игрока
func (s *service) Register(ctx context.Context, username, password string) (*RegisterResult, error) {
	// Валидация входных данных до похода на сервер
	if err := validation.ValidateUsername(username); err != nil {
		return nil, fmt.Errorf("invalid username: %w", err)
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, fmt.Errorf("invalid password: %w", err)
	}

	resp, err := s.apiClient.Register(ctx, pkgapi.RegisterRequest{
		Username: username,
		Password: password,
	})
	if err != nil {
		return nil, fmt.Errorf("registration failed: %w", err)
	}

	return &RegisterResult{
		UserID:   resp.UserID,
		Username: username,
	}, nil
}

// Login выполняет аутентификацию пользователя.
// Токены сразу сохраняются в локальное хранилище.
func (s *service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if err := validation.ValidateUsername(username); err != nil {
		return nil, fmt.Errorf("invalid username: %w", err)
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, fmt.Errorf("invalid password: %w", err)
	}

	resp, err := s.apiClient.Login(ctx, pkgapi.LoginRequest{
		Username: username,
		Password: password,
	})
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	auth := &storage.AuthData{
		Username:     username,
		UserID:       resp.UserID,
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    time.Now().Unix() + resp.ExpiresIn,
	}

	if err := s.authStore.SaveAuth(ctx, auth); err != nil {
		return nil, fmt.Errorf("failed to save auth data: %w", err)
	}

	return &LoginResult{
		UserID:      resp.UserID,
		Username:    username,
		AccessToken: resp.AccessToken,
		ExpiresIn:   resp.ExpiresIn,
	}, nil
}

// Refresh обновляет пару токенов по сохранённому refresh token.
// Сервер ротирует refresh token, поэтому новая пара сразу пишется в хранилище.
func (s *service) Refresh(ctx context.Context) (*storage.AuthData, error) {
	auth, err := s.authStore.GetAuth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get auth data: %w", err)
	}

	resp, err := s.apiClient.Refresh(ctx, auth.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("token refresh failed: %w", err)
	}

	updated := &storage.AuthData{
		Username:     auth.Username,
		UserID:       auth.UserID,
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    time.Now().Unix() + resp.ExpiresIn,
	}

	if err := s.authStore.SaveAuth(ctx, updated); err != nil {
		return nil, fmt.Errorf("failed to save refreshed auth data: %w", err)
	}

	return updated, nil
}

// CurrentAuth возвращает сохранённые авторизационные данные
func (s *service) CurrentAuth(ctx context.Context) (*storage.AuthData, error) {
	return s.authStore.GetAuth(ctx)
}

// IsAuthenticated проверяет наличие сохранённой сессии
func (s *service) IsAuthenticated(ctx context.Context) (bool, error) {
	return s.authStore.IsAuthenticated(ctx)
}

// Logout отзывает токены на сервере и удаляет локальную сессию.
// Недоступный сервер выходу не мешает: локальная сессия удаляется
// всегда, а серверный refresh token добьёт sweeper по сроку.
func (s *service) Logout(ctx context.Context) error {
	authData, err := s.authStore.GetAuth(ctx)
	if err != nil {
		slog.Debug("no auth data found during logout", "error", err)
	} else if logoutErr := s.apiClient.Logout(ctx, authData.AccessToken); logoutErr != nil {
		slog.Warn("failed to logout on server", "error", logoutErr)
	}

	if err := s.authStore.DeleteAuth(ctx); err != nil {
		return fmt.Errorf("failed to delete local auth data: %w", err)
	}

	return nil
}
