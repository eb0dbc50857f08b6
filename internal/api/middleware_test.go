package api

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIPRateLimiterLimitsPerClient(t *testing.T) {
	l := newIPRateLimiter(1, 2)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	assert.True(t, l.allow("10.0.0.1"))
	assert.True(t, l.allow("10.0.0.1"))
	assert.False(t, l.allow("10.0.0.1"))
	assert.True(t, l.allow("10.0.0.2"))

	now = now.Add(time.Second)
	assert.True(t, l.allow("10.0.0.1"))
}

func TestIPRateLimiterEvictsIdleClients(t *testing.T) {
	l := newIPRateLimiter(10, 5)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	for i := 0; i < 100; i++ {
		l.allow(fmt.Sprintf("10.0.1.%d", i))
	}
	assert.Equal(t, 100, l.size())

	now = now.Add(2 * time.Minute)
	l.allow("10.0.2.1")
	assert.Equal(t, 101, l.size(), "clients seen two minutes ago are kept")

	now = now.Add(2 * time.Minute)
	l.allow("10.0.2.2")
	assert.Equal(t, 2, l.size())
}

func TestIPRateLimiterSweepsAtMostOncePerMinute(t *testing.T) {
	l := newIPRateLimiter(10, 5)
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	now := start
	l.now = func() time.Time { return now }

	l.allow("a")
	now = start.Add(30 * time.Second)
	l.allow("b")

	now = start.Add(3*time.Minute + 15*time.Second)
	l.allow("c")
	assert.Equal(t, 2, l.size(), "a is evicted, b is not idle long enough")

	now = start.Add(3*time.Minute + 45*time.Second)
	l.allow("d")
	assert.Equal(t, 3, l.size(), "b is idle but no sweep is due")

	now = start.Add(4*time.Minute + 15*time.Second)
	l.allow("e")
	assert.Equal(t, 3, l.size())
}
