// Sorry, workaround to import cycles.
package state_new

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/temoto/alive/v2"
	"github.com/temoto/spotlcd/hardware/i2c"
	"github.com/temoto/spotlcd/helpers"
	"github.com/temoto/spotlcd/internal/state"
	"github.com/temoto/spotlcd/internal/tele"
	"github.com/temoto/spotlcd/log2"
)

func NewContext(log *log2.Log, teler tele.Teler) (context.Context, *state.Global) {
	if log == nil {
		panic("code error NewContext() log=nil")
	}

	g := &state.Global{
		Alive: alive.NewAlive(),
		Clock: helpers.RealClock(),
		Log:   log,
		Tele:  teler,
	}
	ctx := context.Background()
	ctx = context.WithValue(ctx, log2.ContextKey, log)
	ctx = context.WithValue(ctx, state.ContextKey, g)

	return ctx, g
}

// NewTestContext runs Global with mock display bus, mock clock and no telemetry.
func NewTestContext(t testing.TB, now time.Time, confString string) (context.Context, *state.Global, *i2c.MockBus, *helpers.MockClock) {
	fs := state.NewMockFullReader(map[string]string{
		"test-inline": confString,
	})

	var log *log2.Log
	if os.Getenv("spotlcd_test_log_stderr") == "1" {
		log = log2.NewStderr(log2.LDebug) // useful with panics
	} else {
		log = log2.NewTest(t, log2.LDebug)
	}
	log.SetFlags(log2.LTestFlags)
	ctx, g := NewContext(log, tele.Noop{})
	clock := helpers.NewMockClock(now)
	g.Clock = clock
	bus := i2c.NewMockBus()
	g.Hardware.Bus = bus
	g.MustInit(ctx, state.MustReadConfig(log, fs, "test-inline"))

	return ctx, g, bus, clock
}
