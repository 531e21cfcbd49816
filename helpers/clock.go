package helpers

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Clock is the source of time for code that waits.
// Tests use MockClock to avoid wall clock delays.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
	Sleep(d time.Duration)
}

func RealClock() Clock { return clock.New() }

// MockClock never blocks. After and Sleep advance current time by requested duration
// and record it.
type MockClock struct {
	*clock.Mock
	mu    sync.Mutex
	waits []time.Duration
}

func NewMockClock(now time.Time) *MockClock {
	m := clock.NewMock()
	m.Set(now)
	return &MockClock{Mock: m}
}

func (c *MockClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	c.waits = append(c.waits, d)
	c.mu.Unlock()
	c.Mock.Add(d)
	ch := make(chan time.Time, 1)
	ch <- c.Mock.Now()
	return ch
}

func (c *MockClock) Sleep(d time.Duration) { <-c.After(d) }

// Waits returns all durations passed to After/Sleep.
func (c *MockClock) Waits() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.waits...)
}
