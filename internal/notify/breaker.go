package notify

import (
	"fmt"
	"sync"
	"time"
)

// breaker stops deliveries after repeated failures. Once the cooldown has
// passed a single trial request is let through; its outcome closes or re-opens it.
type breaker struct {
	threshold int
	cooldown  time.Duration
	now       func() time.Time

	mu       sync.Mutex
	failures int
	openedAt time.Time
	lastErr  error
	trial    bool
}

func newBreaker(threshold int, cooldown time.Duration) *breaker {
	return &breaker{threshold: threshold, cooldown: cooldown, now: time.Now}
}

func (b *breaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.openedAt.IsZero() {
		return nil
	}
	if b.cooldown > 0 && !b.trial && b.now().Sub(b.openedAt) >= b.cooldown {
		b.trial = true
		return nil
	}
	return fmt.Errorf("circuit breaker open: %v", b.lastErr)
}

func (b *breaker) succeeded() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
	b.openedAt = time.Time{}
	b.trial = false
}

// failed records a failure and reports whether the breaker just opened
func (b *breaker) failed(err error) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures++
	b.lastErr = err
	if b.threshold <= 0 || b.failures < b.threshold {
		return false
	}
	wasOpen := !b.openedAt.IsZero() && !b.trial
	b.openedAt = b.now()
	b.trial = false
	return !wasOpen
}
