package handlers

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenIssuer попадает в iss каждого access-токена и проверяется при валидации
const tokenIssuer = "stablehand"

// AccessClaims — полезная нагрузка access-токена
type AccessClaims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// JWTConfig содержит конфигурацию для JWT
type JWTConfig struct {
	Secret          []byte
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// GenerateAccessToken выпускает подписанный HS256 access-токен.
// Второй результат — срок жизни в секундах для поля expires_in ответа.
func GenerateAccessToken(cfg JWTConfig, userID, username string) (string, int64, error) {
	now := time.Now()

	claims := AccessClaims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.AccessTokenTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(cfg.Secret)
	if err != nil {
		return "", 0, fmt.Errorf("sign access token: %w", err)
	}

	return signed, int64(cfg.AccessTokenTTL.Seconds()), nil
}

// ValidateAccessToken проверяет подпись, срок и издателя access-токена.
func ValidateAccessToken(cfg JWTConfig, tokenString string) (*AccessClaims, error) {
	var claims AccessClaims

	_, err := jwt.ParseWithClaims(tokenString, &claims,
		func(*jwt.Token) (interface{}, error) { return cfg.Secret, nil },
		// Белый список алгоритмов закрывает подмену alg в заголовке токена
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("parse access token: %w", err)
	}

	return &claims, nil
}

// GenerateRefreshToken выпускает непрозрачный refresh-токен: 32 случайных
// байта в base64. Он живет только в БД, подпись ему не нужна.
func GenerateRefreshToken(cfg JWTConfig) (string, time.Time, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", time.Time{}, fmt.Errorf("generate refresh token: %w", err)
	}

	return base64.URLEncoding.EncodeToString(raw), time.Now().Add(cfg.RefreshTokenTTL), nil
}
