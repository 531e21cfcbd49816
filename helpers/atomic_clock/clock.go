// Package atomic_clock keeps one wall clock instant in atomic int64.
// Zero value means never set. Monotonic reading and zone are not kept.
package atomic_clock

import (
	"sync/atomic"
	"time"
)

type Clock struct{ v int64 }

func (c *Clock) get() int64 { return atomic.LoadInt64(&c.v) }

func (c *Clock) IsZero() bool { return c.get() == 0 }
func (c *Clock) Reset()       { atomic.StoreInt64(&c.v, 0) }

// Set zero time is same as Reset.
func (c *Clock) Set(t time.Time) {
	var v int64
	if !t.IsZero() {
		v = t.UnixNano()
	}
	atomic.StoreInt64(&c.v, v)
}

func (c *Clock) UnixNano() int64 { return c.get() }

func (c *Clock) Time() time.Time {
	v := c.get()
	if v == 0 {
		return time.Time{}
	}
	return time.Unix(0, v)
}

// Since returns 0 for never set clock.
func (c *Clock) Since(now time.Time) time.Duration {
	v := c.get()
	if v == 0 {
		return 0
	}
	return time.Duration(now.UnixNano() - v)
}

func New(t time.Time) *Clock {
	c := &Clock{}
	c.Set(t)
	return c
}
