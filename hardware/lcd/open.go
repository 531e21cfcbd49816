package lcd

import (
	"github.com/juju/errors"
	"github.com/temoto/spotlcd/hardware/i2c"
)

type BusConfig struct {
	Driver     string   // i2c.DriverPeriph or i2c.DriverDevfs
	BusNo      int      // <0 means probe Candidates
	Candidates []string // default i2c.DefaultCandidates
}

// Open finds bus device and initializes display on it.
// Missing device and init failure are DeviceError.
func Open(bc BusConfig, opt Options) (*Display, error) {
	busNo := bc.BusNo
	if busNo < 0 {
		n, path, err := i2c.FindBus(bc.Candidates, nil)
		if err != nil {
			return nil, newDeviceError("find bus", 0, err)
		}
		opt.Log.Debugf("lcd found bus %s", path)
		busNo = n
	}
	bus, err := i2c.Open(bc.Driver, busNo)
	if err != nil {
		return nil, newDeviceError("open bus", 0, err)
	}
	d, err := NewDisplay(bus, opt)
	if err != nil {
		_ = bus.Close()
		return nil, errors.Annotatef(err, "bus=%d driver=%s", busNo, bc.Driver)
	}
	return d, nil
}
