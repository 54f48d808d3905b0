package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenBlacklist хранит отозванные токены (по jti) до истечения их срока
type TokenBlacklist interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// RedisTokenBlacklist хранит отозванные токены в Redis с TTL
type RedisTokenBlacklist struct {
	client *redis.Client
}

func NewRedisTokenBlacklist(client *redis.Client) *RedisTokenBlacklist {
	return &RedisTokenBlacklist{client: client}
}

func blacklistKey(jti string) string {
	return "blacklist:" + jti
}

func (b *RedisTokenBlacklist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		// Токен уже истек
		return nil
	}
	if err := b.client.Set(ctx, blacklistKey(jti), 1, ttl).Err(); err != nil {
		return fmt.Errorf("ошибка отзыва токена: %w", err)
	}
	return nil
}

func (b *RedisTokenBlacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := b.client.Exists(ctx, blacklistKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("ошибка проверки токена: %w", err)
	}
	return n > 0, nil
}

// MemoryTokenBlacklist - черный список в памяти процесса, когда Redis не настроен
type MemoryTokenBlacklist struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

func NewMemoryTokenBlacklist() *MemoryTokenBlacklist {
	return &MemoryTokenBlacklist{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (b *MemoryTokenBlacklist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	for k, exp := range b.entries {
		if !now.Before(exp) {
			delete(b.entries, k)
		}
	}
	b.entries[jti] = now.Add(ttl)
	return nil
}

func (b *MemoryTokenBlacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	exp, ok := b.entries[jti]
	if !ok {
		return false, nil
	}
	if !b.now().Before(exp) {
		delete(b.entries, jti)
		return false, nil
	}
	return true, nil
}
