package middleware

import (
	"context"
	"net"
	"net/http"

	"github.com/dvasko/SBP-AppointmentService/internal/api/handlers"
)

const msgRateLimited = "слишком много запросов, попробуйте позже"

// RateLimiter интерфейс лимитера запросов
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RateLimit ограничивает частоту запросов по IP клиента.
// Применяется к публичным маршрутам, работающим без аутентификации.
// При недоступности лимитера запрос пропускается: деградация лимитера
// не должна ронять публичную запись.
type RateLimit struct {
	limiter RateLimiter
	logger  Logger
}

// NewRateLimit создает новый экземпляр middleware лимитера
func NewRateLimit(limiter RateLimiter, logger Logger) *RateLimit {
	return &RateLimit{
		limiter: limiter,
		logger:  logger,
	}
}

// Middleware возвращает http middleware лимитера
func (rl *RateLimit) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, err := rl.limiter.Allow(r.Context(), clientIP(r))
		if err != nil {
			rl.logger.Error("RateLimit: limiter unavailable: %v", err)
			next.ServeHTTP(w, r)
			return
		}

		if !allowed {
			rl.logger.Warn("RateLimit: rejected request from %s", clientIP(r))
			handlers.RespondTooManyRequests(w, msgRateLimited)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// clientIP извлекает IP клиента с учетом прокси
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
