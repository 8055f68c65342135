package middleware

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RateLimiter — пер-клиентский token bucket с непрерывным пополнением.
// Бакет вмещает limit токенов и наполняется с темпом limit за window:
// короткий всплеск до limit запросов проходит целиком, устойчивый поток
// выравнивается к limit/window.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor

	burst  float64
	refill float64 // токенов в секунду
	window time.Duration
	logger *slog.Logger
	done   chan struct{}
}

// visitor — состояние бакета одного клиента (ключ — IP)
type visitor struct {
	tokens   float64
	lastSeen time.Time
}

// NewRateLimiter создает limiter на limit запросов за window и запускает
// фоновое выселение простаивающих клиентов.
func NewRateLimiter(limit int, window time.Duration, logger *slog.Logger) *RateLimiter {
	rl := &RateLimiter{
		visitors: make(map[string]*visitor),
		burst:    float64(limit),
		refill:   float64(limit) / window.Seconds(),
		window:   window,
		logger:   logger,
		done:     make(chan struct{}),
	}

	go rl.evictLoop()

	return rl
}

// Allow списывает один токен для ключа. false — лимит исчерпан.
func (rl *RateLimiter) Allow(key string) bool {
	allowed, _ := rl.take(key)
	return allowed
}

// take списывает токен; при отказе возвращает время до следующего.
func (rl *RateLimiter) take(key string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()

	v, ok := rl.visitors[key]
	if !ok {
		// Новый клиент начинает с полным бакетом
		v = &visitor{tokens: rl.burst}
		rl.visitors[key] = v
	} else {
		v.tokens = math.Min(rl.burst, v.tokens+now.Sub(v.lastSeen).Seconds()*rl.refill)
	}
	v.lastSeen = now

	if v.tokens >= 1 {
		v.tokens--
		return true, 0
	}

	wait := time.Duration((1 - v.tokens) / rl.refill * float64(time.Second))
	return false, wait
}

// evictLoop раз в окно выбрасывает клиентов, молчащих дольше трех окон.
// Выселенный клиент при возврате получает свежий полный бакет, для
// лимитов длиной в минуты это допустимая щедрость.
func (rl *RateLimiter) evictLoop() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.evictIdle()
		case <-rl.done:
			return
		}
	}
}

func (rl *RateLimiter) evictIdle() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-3 * rl.window)
	for key, v := range rl.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(rl.visitors, key)
		}
	}
}

// Stop останавливает фоновое выселение.
func (rl *RateLimiter) Stop() {
	close(rl.done)
}

// RateLimitMiddleware ограничивает частоту запросов по IP клиента.
// На auth-роуты вешается строгий лимит (bcrypt дорогой, перебор паролей
// дешевым быть не должен), на игровые — просторный: штатный клиент
// синкается раз в минуту, под лимит попадает только флудящий.
func RateLimitMiddleware(limit int, window time.Duration, logger *slog.Logger) func(http.Handler) http.Handler {
	limiter := NewRateLimiter(limit, window, logger)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientIP(r)

			allowed, retryAfter := limiter.take(key)
			if !allowed {
				logger.Warn("rate limit exceeded",
					"ip", key,
					"method", r.Method,
					"path", r.URL.Path,
				)

				// Retry-After подсказывает клиентскому scheduler-у, когда вернуться
				seconds := int(math.Ceil(retryAfter.Seconds()))
				if seconds < 1 {
					seconds = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(seconds))
				errorJSON(w, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP определяет адрес клиента с учетом обратного прокси.
func clientIP(r *http.Request) string {
	// Первый адрес в X-Forwarded-For — исходный клиент
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	// В RemoteAddr порт лишний: с ним каждое соединение
	// получало бы собственный бакет
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
