package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/daemon"
	"github.com/juju/errors"
	"github.com/mattn/go-isatty"
	"github.com/temoto/spotlcd/hardware/lcd"
	"github.com/temoto/spotlcd/internal/state"
	state_new "github.com/temoto/spotlcd/internal/state/new"
	"github.com/temoto/spotlcd/log2"
	"golang.org/x/sync/errgroup"
)

const stopTimeout = 10 * time.Second

var log = log2.NewStderr(log2.LDebug)

func main() {
	flagConfig := flag.String("config", state.DefaultConfigName, "")
	flagDebug := flag.Bool("debug", false, "debug log")
	flagOnce := flag.Bool("once", false, "update display once and exit")
	flag.Parse()

	if sdnotify("start") {
		// we're under systemd, assume systemd journal logging, remove timestamp
		log.SetFlags(log2.LServiceFlags)
	} else if isatty.IsTerminal(os.Stderr.Fd()) {
		log.SetFlags(log2.LInteractiveFlags)
	} else {
		log.SetFlags(log2.LStdFlags)
	}
	if !*flagDebug {
		log.SetLevel(log2.LInfo)
	}
	log.Infof("spotlcd start config=%s", *flagConfig)

	config := state.MustReadConfig(log, state.NewOsFullReader(), *flagConfig)
	ctx, g := state_new.NewContext(log, nil)
	g.MustInit(ctx, config)

	s, err := g.Scheduler()
	if err != nil {
		if lcd.IsDeviceError(err) {
			err = errors.Annotate(err, "display not found or not responding")
		}
		g.Fatal(err)
	}

	if *flagOnce {
		_, err = s.Step(ctx)
		g.StopWait(stopTimeout)
		if err != nil {
			os.Exit(1)
		}
		return
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error { return g.Run(ctx) })
	eg.Go(func() error { return watchSignals(ctx, g) })
	eg.Go(func() error { return watchdog(ctx, g) })
	sdnotify(daemon.SdNotifyReady)
	log.Infof("running schedule=%q", config.Schedule.Cron)

	if err := eg.Wait(); err != nil {
		g.Error(err)
	}
	if !g.StopWait(stopTimeout) {
		log.Errorf("stop timeout=%s", stopTimeout)
	}
	log.Infof("spotlcd stop")
}

func watchSignals(ctx context.Context, g *state.Global) error {
	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigch)
	select {
	case sig := <-sigch:
		log.Infof("signal=%v, finishing current update", sig)
		sdnotify(daemon.SdNotifyStopping)
		g.Stop()
	case <-g.Alive.StopChan():
	case <-ctx.Done():
	}
	return nil
}

// watchdog pings systemd at half of WatchdogSec while scheduler is alive.
func watchdog(ctx context.Context, g *state.Global) error {
	interval, err := daemon.SdWatchdogEnabled(false)
	if err != nil {
		return errors.Annotate(err, "sd watchdog")
	}
	if interval <= 0 {
		return nil
	}
	tick := time.NewTicker(interval / 2)
	defer tick.Stop()
	for {
		select {
		case <-tick.C:
			sdnotify(daemon.SdNotifyWatchdog)
		case <-g.Alive.StopChan():
			return nil
		case <-ctx.Done():
			return nil
		}
	}
}

func sdnotify(s string) bool {
	ok, err := daemon.SdNotify(false, s)
	if err != nil {
		log.Fatal("sdnotify: ", errors.ErrorStack(err))
	}
	return ok
}
