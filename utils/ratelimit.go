package utils

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter ограничивает частоту запросов по ключу (token bucket).
// Неиспользуемые ключи удаляются после idleTTL.
type RateLimiter struct {
	mu          sync.Mutex
	limiters    map[string]*limiterEntry
	limit       rate.Limit
	burst       int
	idleTTL     time.Duration
	lastCleanup time.Time
}

type limiterEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter создает новый RateLimiter: rps запросов в секунду, всплеск до burst
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiters:    make(map[string]*limiterEntry),
		limit:       rate.Limit(rps),
		burst:       burst,
		idleTTL:     15 * time.Minute,
		lastCleanup: time.Now(),
	}
}

// Allow проверяет, разрешен ли запрос
func (rl *RateLimiter) Allow(key string) bool {
	return rl.get(key).Allow()
}

// Reset сбрасывает счетчик для ключа
func (rl *RateLimiter) Reset(key string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.limiters, key)
}

// GetRemaining возвращает количество оставшихся запросов
func (rl *RateLimiter) GetRemaining(key string) int {
	tokens := rl.get(key).Tokens()
	if tokens < 0 {
		return 0
	}
	return int(tokens)
}

// Burst возвращает размер всплеска
func (rl *RateLimiter) Burst() int {
	return rl.burst
}

func (rl *RateLimiter) get(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if now.Sub(rl.lastCleanup) > rl.idleTTL {
		// Очищаем давно неактивные ключи
		for k, e := range rl.limiters {
			if now.Sub(e.lastSeen) > rl.idleTTL {
				delete(rl.limiters, k)
			}
		}
		rl.lastCleanup = now
	}

	if e, ok := rl.limiters[key]; ok {
		e.lastSeen = now
		return e.lim
	}

	lim := rate.NewLimiter(rl.limit, rl.burst)
	rl.limiters[key] = &limiterEntry{lim: lim, lastSeen: now}
	return lim
}
