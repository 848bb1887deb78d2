package session

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCountdownRemaining(t *testing.T) {
	c := NewCountdown(10 * time.Second)
	remaining := c.Remaining()
	assert.GreaterOrEqual(t, remaining, 9)
	assert.LessOrEqual(t, remaining, 10)

	expired := NewCountdown(-time.Second)
	assert.Equal(t, 0, expired.Remaining())
}

func TestCountdownRun_ExpiresOnce(t *testing.T) {
	c := &Countdown{
		deadline: time.Now().Add(30 * time.Millisecond),
		interval: 10 * time.Millisecond,
	}

	var ticks, expires atomic.Int32
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.Run(context.Background(),
			func(int) { ticks.Add(1) },
			func() { expires.Add(1) })
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("countdown did not expire")
	}

	assert.Equal(t, int32(1), expires.Load())
	assert.GreaterOrEqual(t, ticks.Load(), int32(1))
}

func TestCountdownRun_Cancellation(t *testing.T) {
	c := &Countdown{
		deadline: time.Now().Add(time.Hour),
		interval: 10 * time.Millisecond,
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	var expires atomic.Int32
	go func() {
		defer close(done)
		c.Run(ctx, nil, func() { expires.Add(1) })
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("countdown did not stop on cancellation")
	}
	assert.Equal(t, int32(0), expires.Load())
}
