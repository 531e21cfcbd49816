package ui

import (
	"context"
	"time"

	"github.com/juju/errors"
	"github.com/temoto/spotlcd/helpers"
	"github.com/temoto/spotlcd/internal/price"
	"github.com/temoto/spotlcd/internal/tele"
	"github.com/temoto/spotlcd/log2"
)

// Displayer is subset of lcd.Display used by the price job.
type Displayer interface {
	On() error
	Off() error
	SetRGB(r, g, b int) error
	SetText(text string) error
}

type Fetcher interface {
	Fetch(ctx context.Context, daysOffset, maxCount int) (price.Series, error)
}

type Config struct {
	// display is disabled for local hours in [QuietFrom, QuietTo]
	QuietFrom  int
	QuietTo    int
	Brightness int
	ShowErrors bool
	DaysOffset int
	MaxCount   int
	Location   *time.Location
}

var DefaultConfig = Config{
	QuietFrom:  3,
	QuietTo:    8,
	Brightness: DefaultBrightness,
	ShowErrors: true,
	MaxCount:   price.DefaultMaxCount,
}

func (c *Config) DisplayEnabled(hour int) bool { return hour < c.QuietFrom || hour > c.QuietTo }

// Job fetches prices and renders current and next on display.
// Nil display means fetch only mode.
type Job struct {
	Failures func() int // optional, goes into tele report

	config  Config
	display Displayer
	fetcher Fetcher
	tele    tele.Teler
	clock   helpers.Clock
	log     *log2.Log
}

func NewJob(c Config, d Displayer, f Fetcher, t tele.Teler, clock helpers.Clock, log *log2.Log) *Job {
	if c.Location == nil {
		c.Location = time.Local
	}
	if t == nil {
		t = tele.Noop{}
	}
	if clock == nil {
		clock = helpers.RealClock()
	}
	return &Job{config: c, display: d, fetcher: f, tele: t, clock: clock, log: log}
}

// Update is one cycle: display power by quiet hours, fetch, render.
// Returns error for scheduler to retry sooner. Empty series is success without render.
func (self *Job) Update(ctx context.Context) error {
	now := self.clock.Now().In(self.config.Location)
	enabled := self.config.DisplayEnabled(now.Hour())
	if err := self.power(enabled); err != nil {
		return errors.Annotatef(err, "display enabled=%t", enabled)
	}

	series, err := self.fetcher.Fetch(ctx, self.config.DaysOffset, self.config.MaxCount)
	if err != nil {
		err = errors.Annotate(err, "fetch prices")
		self.log.Error(err)
		if enabled && self.config.ShowErrors {
			if derr := self.render(ErrorColor(self.config.Brightness), TextError); derr != nil {
				self.log.Errorf("display error message: %v", derr)
			}
		}
		return err
	}

	sum := Summarize(series)
	if sum == nil {
		self.log.Infof("no price data")
		return nil
	}
	text := sum.Text(self.config.Location)
	color := ColorWith(sum.Value, self.config.Brightness)
	self.log.Infof("price now=%s next=%s color=%s display=%t", sum.Now, sum.Next, color, enabled && self.display != nil)
	if enabled {
		if err := self.render(color, text); err != nil {
			return errors.Annotate(err, "display render")
		}
	}

	r := tele.Report{
		Time:    now,
		Start:   sum.Start,
		Now:     sum.Now,
		Next:    sum.Next,
		Value:   sum.Value,
		Unit:    sum.Unit,
		Display: enabled && self.display != nil,
	}
	if self.Failures != nil {
		r.Failures = self.Failures()
	}
	if err := self.tele.Report(ctx, r); err != nil {
		self.log.Errorf("tele report: %v", err)
	}
	return nil
}

func (self *Job) power(enabled bool) error {
	if self.display == nil {
		return nil
	}
	if enabled {
		return self.display.On()
	}
	return self.display.Off()
}

func (self *Job) render(c Color, text string) error {
	if self.display == nil {
		return nil
	}
	if err := self.display.SetRGB(c.R, c.G, c.B); err != nil {
		return err
	}
	return self.display.SetText(text)
}
