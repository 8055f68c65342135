package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/iudanet/stablehand/internal/server/handlers"
)

// AuthMiddleware пускает дальше только запросы с валидным access-токеном.
// user_id и username из claims кладутся в контекст для игровых handler-ов.
func AuthMiddleware(logger *slog.Logger, jwtConfig handlers.JWTConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerFrom(r.Header.Get("Authorization"))
			if !ok {
				logger.Warn("missing or malformed Authorization header", "path", r.URL.Path)
				errorJSON(w, http.StatusUnauthorized, "missing or malformed token")
				return
			}

			claims, err := handlers.ValidateAccessToken(jwtConfig, token)
			if err != nil {
				logger.Warn("invalid access token", "error", err)
				errorJSON(w, http.StatusUnauthorized, "invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), handlers.UserIDKey, claims.UserID)
			ctx = context.WithValue(ctx, handlers.UsernameKey, claims.Username)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerFrom выделяет токен из "Bearer <token>". Регистр схемы не важен.
func bearerFrom(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}
	return token, true
}
