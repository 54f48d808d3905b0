package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterBurst(t *testing.T) {
	rl := NewRateLimiter(0.001, 3)

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("10.0.0.1"), "request %d", i)
	}
	assert.False(t, rl.Allow("10.0.0.1"))
	assert.Equal(t, 0, rl.GetRemaining("10.0.0.1"))

	// Другой ключ не затронут
	assert.True(t, rl.Allow("10.0.0.2"))
	assert.Equal(t, 2, rl.GetRemaining("10.0.0.2"))
}

func TestRateLimiterReset(t *testing.T) {
	rl := NewRateLimiter(0.001, 1)

	assert.True(t, rl.Allow("k"))
	assert.False(t, rl.Allow("k"))
	rl.Reset("k")
	assert.True(t, rl.Allow("k"))
}
