package api

// RegisterRequest представляет запрос на регистрацию нового аккаунта
type RegisterRequest struct {
	Username string `json:"username"` // username аккаунта
	Password string `json:"password"` // пароль (хешируется сервером, bcrypt)
}

// RegisterResponse представляет ответ на успешную регистрацию
type RegisterResponse struct {
	UserID  string `json:"user_id"` // UUID аккаунта
	Message string `json:"message"` // сообщение об успешной регистрации
}

// LoginRequest представляет запрос на аутентификацию
type LoginRequest struct {
	Username string `json:"username"` // username аккаунта
	Password string `json:"password"` // пароль
}

// TokenResponse представляет ответ с токенами доступа.
// UserID нужен клиенту как ключ локального хранилища.
type TokenResponse struct {
	UserID       string `json:"user_id"`       // UUID аккаунта
	AccessToken  string `json:"access_token"`  // JWT access token
	RefreshToken string `json:"refresh_token"` // refresh token
	ExpiresIn    int64  `json:"expires_in"`    // время жизни access token в секундах
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`             // описание ошибки
	Message string `json:"message,omitempty"` // дополнительное сообщение
}
