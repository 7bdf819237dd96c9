package testutils

import (
	"sync"
	"testing"
	"time"

	"github.com/aretw0/espalier/pkg/domain"
)

// ManualClock is a Clock whose time only moves when the test says so.
// Safe for concurrent use.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewManualClock returns a clock frozen at a fixed, arbitrary instant.
func NewManualClock() *ManualClock {
	return &ManualClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

// Now implements node.Clock.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// TickN ticks every ticker n times, advancing the clock by step before each
// round, the way a scheduler running at step would.
func TickN(t *testing.T, clock *ManualClock, step time.Duration, n int, tickers ...domain.Ticker) {
	t.Helper()
	for i := 0; i < n; i++ {
		if clock != nil {
			clock.Advance(step)
		}
		for _, tk := range tickers {
			tk.Tick()
		}
	}
}

// Settable is a thread-safe numeric source for tests.
type Settable struct {
	mu     sync.Mutex
	value  float64
	bounds domain.Range
}

// NewSettable returns a source starting at v with the given bounds.
func NewSettable(v, lower, upper float64) *Settable {
	return &Settable{value: v, bounds: domain.Range{Lower: lower, Upper: upper}}
}

// Set changes the value.
func (s *Settable) Set(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = v
}

// CurrentValue implements node.InputSource.
func (s *Settable) CurrentValue() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Bounds implements node.InputSource.
func (s *Settable) Bounds() domain.Range { return s.bounds }
