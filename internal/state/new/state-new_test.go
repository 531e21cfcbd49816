package state_new

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/temoto/spotlcd/hardware/i2c"
	"github.com/temoto/spotlcd/hardware/lcd"
	"github.com/temoto/spotlcd/helpers"
)

const twoPoints = `{"error":false,"series":[
	{"startDate":"2024-02-25T10:00","value":7.53,"unit":"c/kWh"},
	{"startDate":"2024-02-25T11:00","value":4.1,"unit":"c/kWh"}]}`

// lcdData concatenates characters written to LCD.
func lcdData(bus *i2c.MockBus) string {
	var b []byte
	for _, tx := range bus.TxsTo(lcd.AddrLCD) {
		if len(tx.W) == 2 && tx.W[0] == 0x40 {
			b = append(b, tx.W[1])
		}
	}
	return string(b)
}

func TestScheduledUpdate(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 2, 25, 10, 17, 30, 0, time.UTC)
	ctx, g, bus, _ := NewTestContext(t, now, `location = "UTC"`)
	m := &helpers.MockHTTP{Body: []byte(twoPoints)}
	g.HTTP = m.Client()
	s, err := g.Scheduler()
	require.NoError(t, err)
	bus.Reset()

	delay, err := s.Step(ctx)
	require.NoError(t, err)
	assert.Equal(t, 43*time.Minute, delay)
	assert.Equal(t, "10:00: 7.53 c11:00: 4.10 c", lcdData(bus))
	assert.Contains(t, bus.String(), "62:0400 62:0300 62:0208")
	require.Len(t, m.Requests(), 1)
	assert.Equal(t, "2024-02-25T00:00:00Z", m.Requests()[0].URL.Query().Get("from"))
}

func TestScheduledUpdateError(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 2, 25, 10, 0, 0, 0, time.UTC)
	ctx, g, bus, _ := NewTestContext(t, now, `location = "UTC"`)
	g.HTTP = (&helpers.MockHTTP{Header: []byte("HTTP/1.0 503 Service Unavailable\r\n\r\n")}).Client()
	s, err := g.Scheduler()
	require.NoError(t, err)
	bus.Reset()

	delay, err := s.Step(ctx)
	require.Error(t, err)
	assert.Equal(t, time.Minute, delay)
	assert.Equal(t, 1, s.Failures())
	assert.Equal(t, "ERROR!", lcdData(bus))
	assert.Contains(t, bus.String(), "62:0410 62:0300 62:0200")
}

func TestScheduledUpdateUnavailableHidden(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 2, 25, 10, 0, 0, 0, time.UTC)
	ctx, g, bus, _ := NewTestContext(t, now, `location = "UTC"
display { hide_errors = true }`)
	g.HTTP = (&helpers.MockHTTP{Header: []byte("HTTP/1.0 503 Service Unavailable\r\n\r\n")}).Client()
	s, err := g.Scheduler()
	require.NoError(t, err)
	bus.Reset()

	delay, err := s.Step(ctx)
	require.Error(t, err)
	assert.Equal(t, time.Minute, delay)
	assert.Equal(t, 1, s.Failures())
	// power state is reapplied as is, no text or color written
	assert.Equal(t, "3e:800c", bus.String())
	assert.Equal(t, "", lcdData(bus))
	assert.Empty(t, bus.TxsTo(lcd.AddrRGB))
}

func TestScheduledUpdateQuiet(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 2, 25, 4, 0, 0, 0, time.UTC)
	ctx, g, bus, _ := NewTestContext(t, now, `location = "UTC"`)
	g.HTTP = (&helpers.MockHTTP{Body: []byte(twoPoints)}).Client()
	s, err := g.Scheduler()
	require.NoError(t, err)
	bus.Reset()

	_, err = s.Step(ctx)
	require.NoError(t, err)
	assert.Equal(t, "3e:8008", bus.String())
}

func TestRunStop(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 2, 25, 10, 0, 0, 0, time.UTC)
	_, g, bus, _ := NewTestContext(t, now, `location = "UTC"`)
	requests := int32(0)
	g.HTTP = (&helpers.MockHTTP{Fun: func(*http.Request) (*http.Response, error) {
		atomic.AddInt32(&requests, 1)
		g.Stop()
		return nil, fmt.Errorf("offline")
	}}).Client()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- g.Run(ctx) }()
	<-g.Alive.StopChan()
	assert.True(t, g.StopWait(5*time.Second))
	require.NoError(t, <-done)
	assert.True(t, bus.Closed())
	assert.GreaterOrEqual(t, int(atomic.LoadInt32(&requests)), 1)
}
