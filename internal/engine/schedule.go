package engine

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/juju/errors"
	"github.com/robfig/cron/v3"
	"github.com/temoto/spotlcd/helpers"
	"github.com/temoto/spotlcd/helpers/atomic_clock"
	"github.com/temoto/spotlcd/log2"
)

const (
	DefaultCron  = "0 * * * *"
	DefaultRetry = time.Minute
)

type Config struct {
	Cron     string `hcl:"cron"`
	RetrySec int    `hcl:"retry_sec"`
}

type Job func(ctx context.Context) error

type Stat struct {
	Runs        uint32
	Failures    int32 // consecutive
	LastSuccess time.Time
	LastFailure time.Time
}

// Scheduler runs job at schedule boundaries, one at a time.
// Failed job is retried after fixed delay instead.
// Next boundary is computed from wake time, not from previous target.
type Scheduler struct {
	job      Job
	schedule cron.Schedule
	retry    time.Duration
	clock    helpers.Clock
	log      *log2.Log

	runs        uint32
	failures    int32
	lastSuccess atomic_clock.Clock
	lastFailure atomic_clock.Clock
}

func NewScheduler(c Config, job Job, clock helpers.Clock, log *log2.Log) (*Scheduler, error) {
	spec := c.Cron
	if spec == "" {
		spec = DefaultCron
	}
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, errors.Annotatef(err, "schedule cron=%q", spec)
	}
	if clock == nil {
		clock = helpers.RealClock()
	}
	return &Scheduler{
		job:      job,
		schedule: sched,
		retry:    helpers.IntSecondDefault(c.RetrySec, DefaultRetry),
		clock:    clock,
		log:      log,
	}, nil
}

// NextDelay has minute resolution: seconds of `now` are kept in wake time.
func (self *Scheduler) NextDelay(now time.Time) time.Duration {
	base := now.Truncate(time.Minute)
	return self.schedule.Next(base).Sub(base)
}

// Step runs job once and returns delay before next Step.
func (self *Scheduler) Step(ctx context.Context) (time.Duration, error) {
	now := self.clock.Now()
	delay := self.NextDelay(now)
	atomic.AddUint32(&self.runs, 1)
	self.log.Infof("%s calling job, next run in %d minutes", now.Format(time.RFC3339), delay/time.Minute)

	if err := self.call(ctx); err != nil {
		n := atomic.AddInt32(&self.failures, 1)
		now = self.clock.Now()
		self.lastFailure.Set(now)
		self.log.Errorf("job failed (%d) retry in %s since_success=%s err=%s",
			n, self.retry, self.lastSuccess.Since(now), errors.ErrorStack(err))
		return self.retry, err
	}
	atomic.StoreInt32(&self.failures, 0)
	self.lastSuccess.Set(self.clock.Now())
	return delay, nil
}

func (self *Scheduler) call(ctx context.Context) (err error) {
	defer func() {
		if x := recover(); x != nil {
			err = errors.New(fmt.Sprintf("job panic: %v", x))
		}
	}()
	return self.job(ctx)
}

// Run blocks until ctx is done. Running job is never interrupted by Run,
// cancellation is observed between steps.
func (self *Scheduler) Run(ctx context.Context) error {
	for ctx.Err() == nil {
		delay, _ := self.Step(ctx)
		select {
		case <-ctx.Done():
		case <-self.clock.After(delay):
		}
	}
	self.log.Debugf("scheduler stop runs=%d", atomic.LoadUint32(&self.runs))
	return nil
}

func (self *Scheduler) Failures() int { return int(atomic.LoadInt32(&self.failures)) }

func (self *Scheduler) Stat() Stat {
	return Stat{
		Runs:        atomic.LoadUint32(&self.runs),
		Failures:    atomic.LoadInt32(&self.failures),
		LastSuccess: self.lastSuccess.Time(),
		LastFailure: self.lastFailure.Time(),
	}
}
