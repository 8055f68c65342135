// Package validation содержит общие для клиента и сервера правила
// проверки учётных данных. Клиент отсеивает заведомо плохой ввод до
// похода по сети, сервер проверяет ещё раз на своей стороне.
package validation

import "fmt"

// Ограничения на учётные данные.
const (
	MinUsernameLen = 3
	MaxUsernameLen = 32

	MinPasswordLen = 8
	// Bcrypt использует только первые 72 байта, более длинный пароль
	// молча терял бы хвост.
	MaxPasswordLen = 72
)

// ValidateUsername проверяет имя аккаунта: латинские буквы, цифры и
// подчёркивание, от 3 до 32 символов.
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("username cannot be empty")
	}
	if len(username) < MinUsernameLen {
		return fmt.Errorf("username must be at least %d characters long", MinUsernameLen)
	}
	if len(username) > MaxUsernameLen {
		return fmt.Errorf("username must not exceed %d characters", MaxUsernameLen)
	}

	for _, r := range username {
		if !usernameRune(r) {
			return fmt.Errorf(
				"username can only contain letters (a-z, A-Z), numbers (0-9), and underscores (_), got %q", r)
		}
	}

	return nil
}

func usernameRune(r rune) bool {
	return r >= 'a' && r <= 'z' ||
		r >= 'A' && r <= 'Z' ||
		r >= '0' && r <= '9' ||
		r == '_'
}

// ValidatePassword проверяет длину пароля. Состав символов не
// ограничивается, длина считается в байтах (как её видит bcrypt).
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("password cannot be empty")
	}
	if len(password) < MinPasswordLen {
		return fmt.Errorf("password must be at least %d characters long", MinPasswordLen)
	}
	if len(password) > MaxPasswordLen {
		return fmt.Errorf("password must not exceed %d characters", MaxPasswordLen)
	}

	return nil
}
