package i2c

import (
	"strconv"
	"sync"

	"github.com/juju/errors"
	"periph.io/x/periph/conn/i2c"
	"periph.io/x/periph/conn/i2c/i2creg"
	"periph.io/x/periph/host"
)

var hostInitOnce sync.Once
var hostInitErr error

type periphBus struct {
	bus i2c.BusCloser
}

// OpenPeriph opens bus number via periph.io registry.
func OpenPeriph(busNo int) (Bus, error) {
	hostInitOnce.Do(func() {
		_, hostInitErr = host.Init()
	})
	if hostInitErr != nil {
		return nil, errors.Annotate(hostInitErr, "periph/init")
	}
	b, err := i2creg.Open(strconv.Itoa(busNo))
	if err != nil {
		return nil, errors.Annotatef(err, "periph i2c open bus=%d", busNo)
	}
	return &periphBus{bus: b}, nil
}

func (p *periphBus) Tx(addr uint16, w, r []byte) error {
	if err := p.bus.Tx(addr, w, r); err != nil {
		return errors.Annotatef(err, "i2c %s addr=%02x", p.bus.String(), addr)
	}
	return nil
}

func (p *periphBus) Close() error { return p.bus.Close() }

func (p *periphBus) String() string { return p.bus.String() }

const (
	DriverPeriph = "periph"
	DriverDevfs  = "devfs"
)

// Open picks implementation by driver name, empty means periph.
func Open(driver string, busNo int) (Bus, error) {
	switch driver {
	case "", DriverPeriph:
		return OpenPeriph(busNo)
	case DriverDevfs:
		return NewDevfsBus(busNo), nil
	default:
		return nil, errors.NotValidf("i2c driver=%s valid: %s, %s", driver, DriverPeriph, DriverDevfs)
	}
}
