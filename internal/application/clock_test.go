package application

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type stepClock struct{ now time.Time }

func (c stepClock) Now() time.Time { return c.now }

func TestElapsedMS(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	c := stepClock{now: start.Add(1500*time.Millisecond + 400*time.Microsecond)}

	assert.Equal(t, int64(1500), ElapsedMS(c, start))
	assert.Equal(t, int64(0), ElapsedMS(stepClock{now: start}, start))
}

func TestSystemClock(t *testing.T) {
	before := time.Now()
	assert.False(t, SystemClock{}.Now().Before(before))
}
