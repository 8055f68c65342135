package models

import "time"

// User представляет игровой аккаунт
type User struct {
	ID           string     `json:"id"`            // UUID аккаунта
	Username     string     `json:"username"`      // уникальный username
	PasswordHash string     `json:"-"`             // bcrypt хеш пароля, наружу не отдаём
	CreatedAt    time.Time  `json:"created_at"`    // время создания
	LastLogin    *time.Time `json:"last_login,omitempty"` // время последнего входа
}

// RefreshToken представляет refresh token аккаунта
type RefreshToken struct {
	Token     string    `json:"token"`      // значение токена (random, base64)
	UserID    string    `json:"user_id"`    // ID аккаунта
	ExpiresAt time.Time `json:"expires_at"` // время истечения
	CreatedAt time.Time `json:"created_at"` // время создания
}
