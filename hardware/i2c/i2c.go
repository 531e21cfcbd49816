package i2c

// Thanks to
// https://github.com/kidoman/embd and https://bitbucket.org/gmcbay/i2c

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"unsafe"

	"github.com/juju/errors"
	"golang.org/x/sys/unix"
)

const (
	// as defined in /usr/include/linux/i2c-dev.h
	I2C_RDWR = 0x0707 /* Combined R/W transfer (one STOP only) */

	// i2c_msg flags
	// as defined in /usr/include/linux/i2c.h
	I2C_M_RD = 0x0001 /* read data, from slave to master */
)

// Candidate device paths probed when bus number is not configured.
var DefaultCandidates = []string{"/dev/i2c-0", "/dev/i2c-1", "/dev/i2c-2"}

// Bus is shared between devices at different addresses.
// Tx writes `w` (if not nil) then reads into `r` (if not nil) in one transaction.
type Bus interface {
	Tx(addr uint16, w, r []byte) error
	Close() error
}

type i2c_msg struct {
	addr  uint16
	flags uint16
	len   uint16
	buf   uintptr
}

type i2c_rdwr_ioctl_data struct {
	msgs uintptr
	nmsg uint32
}

type devfsBus struct {
	busNo       int
	file        *os.File
	lk          sync.Mutex
	initialized bool
}

// NewDevfsBus talks to /dev/i2c-N directly with I2C_RDWR ioctl.
// Device file is opened on first Tx.
func NewDevfsBus(busNo int) Bus {
	return &devfsBus{busNo: busNo}
}

func (b *devfsBus) String() string { return fmt.Sprintf("/dev/i2c-%d", b.busNo) }

func (b *devfsBus) init() error {
	if b.initialized {
		return nil
	}

	var err error
	if b.file, err = os.OpenFile(b.String(), os.O_RDWR, os.ModeExclusive); err != nil {
		return errors.Annotatef(err, "i2c open %s", b.String())
	}
	b.initialized = true

	return nil
}

func (b *devfsBus) Tx(addr uint16, w, r []byte) error {
	b.lk.Lock()
	defer b.lk.Unlock()

	if err := b.init(); err != nil {
		return err
	}

	nmsg := uint32(0)
	msgs := [2]i2c_msg{}
	if len(w) != 0 {
		msgs[nmsg] = i2c_msg{
			addr: addr, flags: 0,
			buf: uintptr(unsafe.Pointer(&w[0])), len: uint16(len(w)),
		}
		nmsg++
	}
	if len(r) != 0 {
		msgs[nmsg] = i2c_msg{
			addr: addr, flags: I2C_M_RD,
			buf: uintptr(unsafe.Pointer(&r[0])), len: uint16(len(r)),
		}
		nmsg++
	}
	if nmsg == 0 {
		return errors.Errorf("i2c Tx both w=r=empty nothing to do")
	}

	rdwr_data := i2c_rdwr_ioctl_data{
		msgs: uintptr(unsafe.Pointer(&msgs[0])),
		nmsg: nmsg,
	}
	_, _, errno := unix.Syscall(unix.SYS_IOCTL,
		b.file.Fd(), uintptr(I2C_RDWR), uintptr(unsafe.Pointer(&rdwr_data)))
	if errno != 0 {
		return errors.Annotatef(errno, "i2c %s addr=%02x", b.String(), addr)
	}
	return nil
}

func (b *devfsBus) Close() error {
	b.lk.Lock()
	defer b.lk.Unlock()

	if !b.initialized {
		return nil
	}
	b.initialized = false
	return b.file.Close()
}

// FindBus returns bus number of first existing candidate path.
// `exists` is os.Stat based when nil.
func FindBus(candidates []string, exists func(string) bool) (int, string, error) {
	if exists == nil {
		exists = fileExists
	}
	if len(candidates) == 0 {
		candidates = DefaultCandidates
	}
	for _, path := range candidates {
		if !exists(path) {
			continue
		}
		n, err := BusNumber(path)
		if err != nil {
			return 0, "", err
		}
		return n, path, nil
	}
	return 0, "", errors.NotFoundf("i2c device candidates=%s", strings.Join(candidates, ","))
}

// BusNumber parses N from /dev/i2c-N
func BusNumber(path string) (int, error) {
	idx := strings.LastIndexByte(path, '-')
	if idx < 0 || idx == len(path)-1 {
		return 0, errors.NotValidf("i2c device path=%s", path)
	}
	n, err := strconv.Atoi(path[idx+1:])
	if err != nil || n < 0 {
		return 0, errors.NotValidf("i2c device path=%s", path)
	}
	return n, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
