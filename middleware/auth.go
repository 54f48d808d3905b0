package middleware

import (
	"context"
	"creditbank/models"
	"creditbank/services"
	"creditbank/utils"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

type contextKey string

const (
	claimsContextKey contextKey = "claims"

	// RequestIDHeader - заголовок с идентификатором запроса
	RequestIDHeader = "X-Request-ID"
)

// RevocationChecker сообщает, отозван ли токен с данным jti
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// UserFinder ищет владельца токена. Токен удаленного пользователя не принимается.
type UserFinder interface {
	FindByID(ctx context.Context, id uint) (*models.User, error)
}

type LoggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *LoggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

// LoggingMiddleware логирует информацию о запросе и ответе и учитывает его в метриках
func LoggingMiddleware(metrics *utils.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, requestID)

			// Создаем обертку для ResponseWriter
			lrw := &LoggingResponseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			// Обрабатываем запрос
			next.ServeHTTP(lrw, r)

			duration := time.Since(start)
			metrics.RecordRequest(duration, lrw.statusCode)
			utils.LogInfo(
				"Request %s: %s %s - Status: %d - Duration: %v",
				requestID,
				r.Method,
				r.URL.Path,
				lrw.statusCode,
				duration,
			)
		})
	}
}

// AuthMiddleware проверяет JWT токен из заголовка Authorization и кладет claims в контекст
func AuthMiddleware(secret string, revoked RevocationChecker, users UserFinder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Получаем токен из заголовка
			tokenString := r.Header.Get("Authorization")
			if tokenString == "" {
				http.Error(w, "Authorization header is required", http.StatusUnauthorized)
				return
			}

			// Убираем префикс "Bearer " если он есть
			tokenString = strings.TrimPrefix(tokenString, "Bearer ")

			claims, err := authenticate(r.Context(), secret, revoked, users, tokenString)
			if err != nil {
				if !errors.Is(err, errTokenRejected) {
					utils.LogError("Ошибка проверки токена: %v", err)
					http.Error(w, "Internal server error", http.StatusInternalServerError)
					return
				}
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

var errTokenRejected = errors.New("token rejected")

// authenticate разбирает токен и проверяет, что он не отозван и его владелец существует.
// Недействительный токен дает errTokenRejected, сбой хранилища - другую ошибку.
func authenticate(ctx context.Context, secret string, revoked RevocationChecker, users UserFinder, tokenString string) (*utils.Claims, error) {
	claims, err := utils.ParseToken(secret, tokenString)
	if err != nil {
		return nil, errTokenRejected
	}
	if revoked != nil {
		isRevoked, err := revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, err
		}
		if isRevoked {
			return nil, errTokenRejected
		}
	}
	if users != nil {
		if _, err := users.FindByID(ctx, claims.UserID); err != nil {
			if errors.Is(err, services.ErrUserNotFound) {
				return nil, errTokenRejected
			}
			return nil, err
		}
	}
	return claims, nil
}

// RateLimitMiddleware ограничивает частоту запросов с одного IP
func RateLimitMiddleware(limiter *utils.RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := ClientIP(r)
			if !limiter.Allow(ip) {
				w.Header().Set("Retry-After", "1")
				http.Error(w, "Too many requests", http.StatusTooManyRequests)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limiter.Burst()))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(limiter.GetRemaining(ip)))

			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP возвращает IP клиента, по которому считается лимит запросов
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// WithClaims добавляет данные токена в контекст
func WithClaims(ctx context.Context, claims *utils.Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// ClaimsFromContext возвращает данные токена из контекста
func ClaimsFromContext(ctx context.Context) (*utils.Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*utils.Claims)
	return claims, ok && claims != nil
}

// GetUserFromContext получает информацию о пользователе из контекста
func GetUserFromContext(r *http.Request) (uint, string, error) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		return 0, "", errors.New("user not found in context")
	}
	return claims.UserID, claims.Username, nil
}
