package throttle

import (
	"context"
	"math"
	"sync"
	"time"
)

// Limit is a rate in bytes per second. Use Inf for no limit.
type Limit float64

// Inf is the infinite rate limit; it never delays.
var Inf = Limit(math.Inf(1))

// Clock provides the current time. It can be mocked for testing.
type Clock interface {
	Now() time.Time
}

// SystemClock implements Clock using the system time.
type SystemClock struct{}

// Now returns the current system time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// bucket is a token bucket counting bytes. Tokens may go negative: a
// caller that takes more than is available is told how long to wait for
// the balance to return to zero.
type bucket struct {
	mu         sync.Mutex
	limit      Limit
	burst      int
	tokens     float64
	lastUpdate time.Time
	clock      Clock
	sleep      func(ctx context.Context, d time.Duration) error
}

func newBucket(limit Limit, burst int, clock Clock) *bucket {
	return &bucket{
		limit:      limit,
		burst:      burst,
		tokens:     float64(burst),
		lastUpdate: clock.Now(),
		clock:      clock,
		sleep:      sleepContext,
	}
}

// take removes n tokens and returns how long the caller must wait before
// acting on them.
func (b *bucket) take(n int) time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	if n <= 0 || b.limit == Inf {
		return 0
	}

	now := b.clock.Now()
	b.refill(now)
	b.tokens -= float64(n)
	if b.tokens >= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) * -b.tokens / float64(b.limit))
}

// wait takes n tokens and sleeps for the resulting delay.
func (b *bucket) wait(ctx context.Context, n int) error {
	d := b.take(n)
	if d <= 0 {
		return ctx.Err()
	}
	return b.sleep(ctx, d)
}

// refill adds tokens for the time elapsed since the last update.
func (b *bucket) refill(now time.Time) {
	elapsed := now.Sub(b.lastUpdate)
	if elapsed <= 0 {
		return
	}
	b.tokens = math.Min(b.tokens+elapsed.Seconds()*float64(b.limit), float64(b.burst))
	b.lastUpdate = now
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
