package session

import (
	"context"
	"time"
)

// Countdown drives a session's TimeRemaining from a fixed deadline
// computed once at start, instead of decrementing a counter. Comparing
// against the wall clock keeps the timer honest across scheduler
// stalls and suspended tabs on the client side.
type Countdown struct {
	deadline time.Time
	interval time.Duration
}

func NewCountdown(duration time.Duration) *Countdown {
	return &Countdown{
		deadline: time.Now().Add(duration),
		interval: time.Second,
	}
}

// Remaining reports whole seconds left, never negative.
func (c *Countdown) Remaining() int {
	remaining := int(time.Until(c.deadline).Seconds())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Run ticks once a second, pushing the remaining time into tick, and
// calls onExpire exactly once when the deadline passes. It returns on
// expiry or context cancellation. Whether expiry force-completes the
// session is onExpire's decision, not this driver's.
func (c *Countdown) Run(ctx context.Context, tick func(remaining int), onExpire func()) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			remaining := c.Remaining()
			if tick != nil {
				tick(remaining)
			}
			if remaining == 0 {
				if onExpire != nil {
					onExpire()
				}
				return
			}
		}
	}
}
