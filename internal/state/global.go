package state

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/juju/errors"
	"github.com/temoto/alive/v2"
	"github.com/temoto/spotlcd/helpers"
	"github.com/temoto/spotlcd/internal/engine"
	"github.com/temoto/spotlcd/internal/price"
	"github.com/temoto/spotlcd/internal/tele"
	"github.com/temoto/spotlcd/internal/ui"
	"github.com/temoto/spotlcd/log2"
)

type Global struct {
	Alive    *alive.Alive
	Clock    helpers.Clock
	Config   *Config
	Hardware hardware     // hardware.go
	HTTP     *http.Client // nil is default client with price timeout
	Log      *log2.Log
	Tele     tele.Teler

	scheduler *engine.Scheduler

	_copy_guard sync.Mutex //nolint:unused
}

const ContextKey = "run/state-global"

func GetGlobal(ctx context.Context) *Global {
	v := ctx.Value(ContextKey)
	if v == nil {
		panic(fmt.Sprintf("context['%s'] is nil", ContextKey))
	}
	if g, ok := v.(*Global); ok {
		return g
	}
	panic(fmt.Sprintf("context['%s'] expected type *Global actual=%#v", ContextKey, v))
}

// Init connects telemetry. Display is opened lazily, see Display().
func (g *Global) Init(ctx context.Context, cfg *Config) error {
	g.Config = cfg
	if g.Clock == nil {
		g.Clock = helpers.RealClock()
	}
	g.Log.Debugf("config: %s", cfg.String())

	if g.Tele == nil {
		tl, err := tele.New(ctx, g.Log.Clone(log2.LInfo), cfg.Tele)
		if err != nil {
			// telemetry is optional, prices still go to display
			g.Error(errors.Annotate(err, "tele init"))
			tl = tele.Noop{}
		}
		g.Tele = tl
	}
	return nil
}

func (g *Global) MustInit(ctx context.Context, cfg *Config) {
	if err := g.Init(ctx, cfg); err != nil {
		g.Fatal(err)
	}
}

func (g *Global) Error(err error, args ...interface{}) {
	if err == nil {
		return
	}
	if len(args) != 0 {
		msg := args[0].(string)
		args = args[1:]
		err = errors.Annotatef(err, msg, args...)
	}
	g.Log.Error(errors.ErrorStack(err))
}

func (g *Global) Fatal(err error, args ...interface{}) {
	if err != nil {
		g.Error(err, args...)
		g.StopWait(5 * time.Second)
		g.Log.Fatal(err)
	}
}

func (g *Global) PriceClient() (*price.Client, error) {
	pc := g.Config.Price
	source, err := price.FixedZone(pc.SourceOffset)
	if err != nil {
		return nil, errors.Annotate(err, "price.source_offset")
	}
	return price.NewClient(
		price.WithBaseURL(pc.BaseURL),
		price.WithPath(pc.Path),
		price.WithPriceListKey(pc.PriceListKey),
		price.WithTimeout(helpers.IntSecondDefault(pc.TimeoutSec, price.DefaultTimeout)),
		price.WithLocation(g.Config.Loc()),
		price.WithSourceOffset(source),
		price.WithHTTPClient(g.HTTP),
		price.WithNow(g.Clock.Now),
		price.WithLog(g.Log),
	), nil
}

func (g *Global) UIConfig() ui.Config {
	dc := g.Config.Display
	return ui.Config{
		QuietFrom:  dc.QuietFrom,
		QuietTo:    dc.QuietTo,
		Brightness: dc.Brightness,
		ShowErrors: !dc.HideErrors,
		DaysOffset: g.Config.Price.DaysOffset,
		MaxCount:   g.Config.Price.MaxCount,
		Location:   g.Config.Loc(),
	}
}

// Scheduler builds price job with display (nil on other hosts) and wraps it
// in hourly scheduler. Missing display on configured host is error.
func (g *Global) Scheduler() (*engine.Scheduler, error) {
	if g.scheduler != nil {
		return g.scheduler, nil
	}
	client, err := g.PriceClient()
	if err != nil {
		return nil, err
	}
	d, err := g.Display()
	if err != nil {
		return nil, err
	}
	var displayer ui.Displayer
	if d != nil {
		displayer = d
	}
	job := ui.NewJob(g.UIConfig(), displayer, client, g.Tele, g.Clock, g.Log)
	s, err := engine.NewScheduler(g.Config.Schedule, job.Update, g.Clock, g.Log)
	if err != nil {
		return nil, err
	}
	job.Failures = s.Failures
	g.scheduler = s
	return s, nil
}

// Run blocks until ctx is done or Stop.
func (g *Global) Run(ctx context.Context) error {
	s, err := g.Scheduler()
	if err != nil {
		return err
	}
	if !g.Alive.Add(1) {
		return nil
	}
	defer g.Alive.Done()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-g.Alive.StopChan():
			cancel()
		case <-ctx.Done():
		}
	}()
	return s.Run(ctx)
}

func (g *Global) Stop() {
	g.Alive.Stop()
}

// StopWait stops, waits for running job, then releases display and telemetry.
func (g *Global) StopWait(timeout time.Duration) bool {
	g.Alive.Stop()
	ok := true
	select {
	case <-g.Alive.WaitChan():
	case <-time.After(timeout):
		ok = false
	}
	g.closeDisplay()
	if g.Tele != nil {
		g.Tele.Close()
	}
	return ok
}
