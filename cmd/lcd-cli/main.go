package main

import (
	"flag"
	"time"

	"github.com/juju/errors"
	"github.com/temoto/spotlcd/hardware/i2c"
	"github.com/temoto/spotlcd/hardware/lcd"
	"github.com/temoto/spotlcd/helpers"
	"github.com/temoto/spotlcd/helpers/cli"
	"github.com/temoto/spotlcd/log2"
)

func main() {
	flagBus := flag.Int("bus", -1, "i2c bus number, <0 probe /dev/i2c-{0,1,2}")
	flagDriver := flag.String("driver", i2c.DriverPeriph, "periph|devfs")
	flagCodepage := flag.String("codepage", "", "")
	flag.Parse()

	log := log2.NewStderr(log2.LDebug)
	log.SetFlags(log2.LInteractiveFlags)

	opt := lcd.DefaultOptions
	opt.Codepage = *flagCodepage
	opt.Log = log
	opt.Clock = helpers.RealClock()
	bc := lcd.BusConfig{Driver: *flagDriver, BusNo: *flagBus}
	d, err := lcd.Open(bc, opt)
	if err != nil {
		log.Fatal(errors.ErrorStack(err))
	}
	defer d.Close()

	exec := func(line string) {
		p, err := parseLine(line, opt.Clock)
		if err != nil {
			log.Error(errors.ErrorStack(err))
			return
		}
		if p.help {
			log.Info(usage)
		}
		tbegin := time.Now()
		if err := p.Run(d); err != nil {
			log.Error(errors.ErrorStack(err))
		}
		log.Debugf("duration=%v", time.Since(tbegin))
	}
	if err := cli.MainLoop("lcd-cli", exec, newCompleter(), func() { _ = d.Close() }); err != nil {
		log.Fatal(errors.ErrorStack(err))
	}
}
