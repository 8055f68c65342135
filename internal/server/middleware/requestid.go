package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// contextKey — свой тип ключей контекста, чтобы не пересекаться с чужими
type contextKey string

// requestIDKey — ключ request id в контексте запроса
const requestIDKey contextKey = "request_id"

// RequestID присваивает каждому запросу идентификатор и возвращает его
// клиенту в заголовке X-Request-ID. Пришедший от доверенного прокси
// идентификатор сохраняется, по нему склеиваются логи двух систем.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		w.Header().Set("X-Request-ID", requestID)

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID достает request id из контекста. Пустая строка — запрос
// прошел мимо RequestID middleware.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}
