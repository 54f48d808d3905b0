package middleware

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"creditbank/utils"

	"github.com/gin-gonic/gin"
)

const (
	// SessionCookieName - cookie с токеном сессии веб-интерфейса
	SessionCookieName = "sessionid"

	claimsKey = "claims"
)

// RateLimit middleware для ограничения частоты запросов
func RateLimit(limiter *utils.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Получаем IP-адрес клиента
		clientIP := c.ClientIP()

		// Проверяем лимит
		if !limiter.Allow(clientIP) {
			c.Header("Retry-After", "1")
			c.String(http.StatusTooManyRequests, "Слишком много запросов, попробуйте позже.")
			c.Abort()
			return
		}

		// Добавляем заголовки с информацией о лимитах
		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.Burst()))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(limiter.GetRemaining(clientIP)))

		c.Next()
	}
}

// Logger middleware для логирования запросов
func Logger(metrics *utils.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Начало запроса
		startTime := time.Now()

		// Обработка запроса
		c.Next()

		// Время выполнения
		duration := time.Since(startTime)
		metrics.RecordRequest(duration, c.Writer.Status())

		// Логируем информацию о запросе
		utils.LogInfo("Request: %s %s - Status: %d - Duration: %v",
			c.Request.Method,
			c.Request.URL.Path,
			c.Writer.Status(),
			duration,
		)

		// Логируем ошибки
		for _, e := range c.Errors {
			utils.LogError("Error: %v", e)
		}
	}
}

// Recovery middleware для обработки паник
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, err any) {
		// Логируем панику
		utils.LogError("Panic recovered: %v", err)
		utils.GetMetrics().RecordError(errors.New("panic"))

		c.String(http.StatusInternalServerError, "Внутренняя ошибка сервера")
		c.Abort()
	})
}

// SessionAuth читает токен из cookie сессии. Запрос без сессии или с
// недействительной сессией продолжается как анонимный.
func SessionAuth(secret string, revoked RevocationChecker, users UserFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := c.Cookie(SessionCookieName)
		if err != nil || tokenString == "" {
			c.Next()
			return
		}

		claims, err := authenticate(c.Request.Context(), secret, revoked, users, tokenString)
		if err != nil {
			if !errors.Is(err, errTokenRejected) {
				utils.LogError("Ошибка проверки сессии: %v", err)
			}
			ClearSessionCookie(c)
			c.Next()
			return
		}

		c.Set(claimsKey, claims)
		c.Request = c.Request.WithContext(WithClaims(c.Request.Context(), claims))
		c.Next()
	}
}

// LoginRequired перенаправляет анонимного пользователя на страницу входа
func LoginRequired(loginURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); ok {
			c.Next()
			return
		}
		c.Redirect(http.StatusFound, loginURL+"?next="+url.QueryEscape(c.Request.URL.RequestURI()))
		c.Abort()
	}
}

// CurrentUser возвращает данные сессии вошедшего пользователя
func CurrentUser(c *gin.Context) (*utils.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*utils.Claims)
	return claims, ok
}

// SetSessionCookie сохраняет токен в cookie сессии
func SetSessionCookie(c *gin.Context, token string, ttl time.Duration) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, token, int(ttl.Seconds()), "/", "", false, true)
}

// ClearSessionCookie удаляет cookie сессии
func ClearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, "", -1, "/", "", false, true)
}
