package state

import (
	"sync"

	"github.com/juju/errors"
	"github.com/temoto/spotlcd/hardware/i2c"
	"github.com/temoto/spotlcd/hardware/lcd"
	"github.com/temoto/spotlcd/helpers"
	"github.com/temoto/spotlcd/log2"
)

type hardware struct {
	// Bus overrides device lookup, tests put i2c.MockBus here.
	Bus i2c.Bus

	display struct {
		once sync.Once
		d    *lcd.Display
		err  error
	}
}

// Display returns nil,nil when this host is not configured for display.
// On configured host absent or broken device is lcd.DeviceError.
func (g *Global) Display() (*lcd.Display, error) {
	x := &g.Hardware.display
	x.once.Do(func() {
		x.d, x.err = g.openDisplay()
	})
	return x.d, x.err
}

func (g *Global) openDisplay() (*lcd.Display, error) {
	dc := &g.Config.Display
	hostname, err := g.Config.Hostname()
	if err != nil {
		return nil, err
	}
	if g.Hardware.Bus == nil && !g.Config.DisplayHost(hostname) {
		g.Log.Infof("display disabled hostname=%s hosts=%v, fetch only", hostname, dc.Hosts)
		return nil, nil
	}

	opt := lcd.DefaultOptions
	opt.Codepage = dc.Codepage
	opt.SettleDelay = helpers.IntMillisecondDefault(dc.SettleMs, lcd.DefaultSettleDelay)
	opt.Clock = g.Clock
	opt.Log = g.Log
	if !dc.LogDebug {
		opt.Log = g.Log.Clone(log2.LInfo)
	}

	var d *lcd.Display
	if g.Hardware.Bus != nil {
		d, err = lcd.NewDisplay(g.Hardware.Bus, opt)
	} else {
		d, err = lcd.Open(lcd.BusConfig{Driver: dc.BusDriver, BusNo: dc.Bus, Candidates: dc.Candidates}, opt)
	}
	if err != nil {
		return nil, errors.Annotatef(err, "display hostname=%s", hostname)
	}
	g.Log.Debugf("display init complete")
	return d, nil
}

func (g *Global) closeDisplay() {
	d := g.Hardware.display.d
	if d == nil {
		return
	}
	if err := d.Off(); err != nil {
		g.Error(err, "display off")
	}
	if err := d.Close(); err != nil {
		g.Error(err, "display close")
	}
}
