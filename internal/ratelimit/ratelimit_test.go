package ratelimit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllowPerKey(t *testing.T) {
	krl := New(1, 2)

	// Burst of 2 for one key.
	assert.True(t, krl.Allow("user-a"))
	assert.True(t, krl.Allow("user-a"))
	assert.False(t, krl.Allow("user-a"))

	// Independent bucket for another key.
	assert.True(t, krl.Allow("user-b"))
}

func TestPerMinute(t *testing.T) {
	krl := PerMinute(3)

	for i := 0; i < 3; i++ {
		assert.True(t, krl.Allow("user-a"), "request %d", i)
	}
	assert.False(t, krl.Allow("user-a"))
}
