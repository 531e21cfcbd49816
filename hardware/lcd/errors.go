package lcd

import (
	"fmt"

	"github.com/juju/errors"
)

// DeviceError is bus write failure or missing bus device.
type DeviceError struct {
	Op   string
	Addr uint16
	Err  error
}

func newDeviceError(op string, addr uint16, err error) error {
	return errors.Trace(&DeviceError{Op: op, Addr: addr, Err: err})
}

func (e *DeviceError) Error() string {
	if e.Addr == 0 {
		return fmt.Sprintf("lcd: device %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("lcd: device %s addr=%02x: %v", e.Op, e.Addr, e.Err)
}

func (e *DeviceError) Unwrap() error { return e.Err }

func IsDeviceError(err error) bool {
	_, ok := errors.Cause(err).(*DeviceError)
	return ok
}
