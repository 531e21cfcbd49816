package lcd

import (
	"github.com/temoto/spotlcd/hardware/i2c"
)

// HD44780 compatible character controller behind I2C (AiP31068/JHD1313).
// Every transaction is two bytes: control byte then command or data.
const (
	AddrLCD uint16 = 0x3e

	prefixCommand byte = 0x80
	prefixData    byte = 0x40
)

type Command byte

const (
	CommandClear       Command = 0x01
	CommandReturn      Command = 0x02
	CommandEntryMode   Command = 0x04
	CommandControl     Command = 0x08
	CommandShift       Command = 0x10
	CommandFunction    Command = 0x20
	CommandCGRAM       Command = 0x40
	CommandAddress     Command = 0x80
	CommandAddressRow2 Command = 0xc0
)

// Display on/off control flags.
type Control byte

const (
	ControlOn         Control = 0x04
	ControlUnderscore Control = 0x02
	ControlBlink      Control = 0x01
)

// Entry mode flags.
type EntryMode byte

const (
	EntryLeft           EntryMode = 0x02
	EntryShiftIncrement EntryMode = 0x01
)

// Cursor/display shift flags.
const (
	shiftDisplay byte = 0x08
	shiftRight   byte = 0x04
)

// Function set flags.
const (
	FunctionTwoLines byte = 0x08
	FunctionFont5x10 byte = 0x04
)

const Width = 16

// LCD keeps last written control and entry mode bytes, device is write-only.
type LCD struct {
	bus     i2c.Bus
	addr    uint16
	control Control
	mode    EntryMode
}

func NewLCD(bus i2c.Bus, addr uint16) *LCD {
	return &LCD{bus: bus, addr: addr}
}

func (self *LCD) tx(prefix, b byte, op string) error {
	if err := self.bus.Tx(self.addr, []byte{prefix, b}, nil); err != nil {
		return newDeviceError(op, self.addr, err)
	}
	return nil
}

func (self *LCD) Command(c Command) error { return self.tx(prefixCommand, byte(c), "command") }
func (self *LCD) Data(b byte) error       { return self.tx(prefixData, b, "data") }

// Write sends bytes one at a time at current cursor position.
func (self *LCD) Write(bs []byte) error {
	for _, b := range bs {
		if err := self.Data(b); err != nil {
			return err
		}
	}
	return nil
}

func (self *LCD) Clear() error  { return self.Command(CommandClear) }
func (self *LCD) Return() error { return self.Command(CommandReturn) }

func (self *LCD) SetFunction(flags byte) error {
	return self.Command(CommandFunction | Command(flags))
}

func (self *LCD) Control() Control { return self.control }

// SetControl stores and sends new control flags, returns previous.
func (self *LCD) SetControl(new Control) (Control, error) {
	old := self.control
	self.control = new
	return old, self.Command(CommandControl | Command(new))
}

func (self *LCD) setControlFlag(flag Control, on bool) error {
	c := self.control
	if on {
		c |= flag
	} else {
		c &^= flag
	}
	_, err := self.SetControl(c)
	return err
}

// Off keeps cursor and blink flags in cache but sends all-off control.
func (self *LCD) Off() error {
	self.control &^= ControlOn
	return self.Command(CommandControl)
}

func (self *LCD) EntryMode() EntryMode { return self.mode }

func (self *LCD) SetEntryMode(new EntryMode) error {
	self.mode = new
	return self.Command(CommandEntryMode | Command(new))
}

func (self *LCD) setEntryFlag(flag EntryMode, on bool) error {
	m := self.mode
	if on {
		m |= flag
	} else {
		m &^= flag
	}
	return self.SetEntryMode(m)
}

func (self *LCD) Shift(display, right bool) error {
	var b byte
	if display {
		b |= shiftDisplay
	}
	if right {
		b |= shiftRight
	}
	return self.Command(CommandShift | Command(b))
}

// CursorColRow does not check bounds, values are truncated to byte.
func (self *LCD) CursorColRow(col, row int) error {
	base := CommandAddressRow2
	if row == 0 {
		base = CommandAddress
	}
	return self.Command(base | Command(byte(col)))
}

// CreateChar writes 5x8 glyph into one of 8 CGRAM slots.
func (self *LCD) CreateChar(slot int, bitmap [8]byte) error {
	if err := self.Command(CommandCGRAM | Command((byte(slot)&0x07)<<3)); err != nil {
		return err
	}
	buf := make([]byte, 0, 1+len(bitmap))
	buf = append(buf, prefixData)
	buf = append(buf, bitmap[:]...)
	if err := self.bus.Tx(self.addr, buf, nil); err != nil {
		return newDeviceError("cgram", self.addr, err)
	}
	return nil
}
