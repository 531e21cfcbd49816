package atomic_clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClock(t *testing.T) {
	t.Parallel()

	var c Clock
	assert.True(t, c.IsZero())
	assert.True(t, c.Time().IsZero())
	assert.Equal(t, time.Duration(0), c.Since(time.Now()))

	tim := time.Date(2024, 2, 25, 10, 0, 0, 123, time.UTC)
	c.Set(tim)
	assert.False(t, c.IsZero())
	assert.Equal(t, tim.UnixNano(), c.UnixNano())
	assert.True(t, tim.Equal(c.Time()))
	assert.Equal(t, 42*time.Minute, c.Since(tim.Add(42*time.Minute)))

	c.Set(time.Time{})
	assert.True(t, c.IsZero())
	assert.False(t, New(tim).IsZero())
	New(tim).Reset()
}
