package lcd

import (
	"time"

	"github.com/juju/errors"
	"github.com/temoto/spotlcd/hardware/i2c"
	"github.com/temoto/spotlcd/helpers"
	"github.com/temoto/spotlcd/log2"
)

// Clear command needs time before controller accepts next write.
const DefaultSettleDelay = 5 * time.Millisecond

type Options struct {
	AddrLCD     uint16
	AddrRGB     uint16
	Lines       byte // FunctionTwoLines or 0
	Font        byte // FunctionFont5x10 or 0
	Codepage    string
	SettleDelay time.Duration
	Clock       helpers.Clock
	Log         *log2.Log
}

var DefaultOptions = Options{
	AddrLCD:     AddrLCD,
	AddrRGB:     AddrRGB,
	Lines:       FunctionTwoLines,
	SettleDelay: DefaultSettleDelay,
}

// Display is Grove LCD RGB Backlight: character LCD and RGB LED driver on one bus.
// Not safe for concurrent use.
type Display struct {
	lcd    *LCD
	rgb    *Backlight
	bus    i2c.Bus
	tr     *Translator
	settle time.Duration
	clock  helpers.Clock
	log    *log2.Log
}

// NewDisplay runs initialization sequence, any bus error aborts it.
func NewDisplay(bus i2c.Bus, opt Options) (*Display, error) {
	if opt.AddrLCD == 0 {
		opt.AddrLCD = AddrLCD
	}
	if opt.AddrRGB == 0 {
		opt.AddrRGB = AddrRGB
	}
	if opt.SettleDelay == 0 {
		opt.SettleDelay = DefaultSettleDelay
	}
	if opt.Clock == nil {
		opt.Clock = helpers.RealClock()
	}
	tr, err := NewTranslator(opt.Codepage)
	if err != nil {
		return nil, err
	}
	self := &Display{
		lcd:    NewLCD(bus, opt.AddrLCD),
		rgb:    NewBacklight(bus, opt.AddrRGB),
		bus:    bus,
		tr:     tr,
		settle: opt.SettleDelay,
		clock:  opt.Clock,
		log:    opt.Log,
	}
	if err := self.init(opt.Lines | opt.Font); err != nil {
		return nil, errors.Annotate(err, "lcd init")
	}
	return self, nil
}

func (self *Display) init(function byte) error {
	if err := self.lcd.SetFunction(function); err != nil {
		return err
	}
	// display on, no cursor, no blink
	if _, err := self.lcd.SetControl(ControlOn); err != nil {
		return err
	}
	if err := self.lcd.Clear(); err != nil {
		return err
	}
	if err := self.rgb.BlinkOff(); err != nil {
		return err
	}
	if err := self.lcd.SetEntryMode(EntryLeft); err != nil {
		return err
	}
	if err := self.rgb.Init(); err != nil {
		return err
	}
	return self.rgb.SetRGB(0xff, 0xff, 0xff)
}

func (self *Display) Close() error { return self.bus.Close() }

func (self *Display) Control() Control     { return self.lcd.Control() }
func (self *Display) EntryMode() EntryMode { return self.lcd.EntryMode() }

func (self *Display) On() error {
	return self.lcd.setControlFlag(ControlOn, true)
}
func (self *Display) Off() error { return self.lcd.Off() }

func (self *Display) Clear() error { return self.lcd.Clear() }
func (self *Display) Home() error  { return self.lcd.Return() }

func (self *Display) SetCursor(col, row int) error { return self.lcd.CursorColRow(col, row) }

func (self *Display) BlinkOn() error   { return self.lcd.setControlFlag(ControlBlink, true) }
func (self *Display) BlinkOff() error  { return self.lcd.setControlFlag(ControlBlink, false) }
func (self *Display) CursorOn() error  { return self.lcd.setControlFlag(ControlUnderscore, true) }
func (self *Display) CursorOff() error { return self.lcd.setControlFlag(ControlUnderscore, false) }

func (self *Display) CursorLeft() error  { return self.lcd.Shift(false, false) }
func (self *Display) CursorRight() error { return self.lcd.Shift(false, true) }
func (self *Display) ScrollLeft() error  { return self.lcd.Shift(true, false) }
func (self *Display) ScrollRight() error { return self.lcd.Shift(true, true) }

// Autoscroll right justifies text from the cursor.
func (self *Display) AutoscrollOn() error  { return self.lcd.setEntryFlag(EntryShiftIncrement, true) }
func (self *Display) AutoscrollOff() error { return self.lcd.setEntryFlag(EntryShiftIncrement, false) }
func (self *Display) LeftToRight() error   { return self.lcd.setEntryFlag(EntryLeft, true) }
func (self *Display) RightToLeft() error   { return self.lcd.setEntryFlag(EntryLeft, false) }

func (self *Display) SetRGB(r, g, b int) error            { return self.rgb.SetRGB(r, g, b) }
func (self *Display) SetPWM(ch Channel, value byte) error { return self.rgb.SetPWM(ch, value) }
func (self *Display) BlinkLEDOn(ratio byte) error         { return self.rgb.BlinkOn(ratio) }
func (self *Display) BlinkLEDOff() error                  { return self.rgb.BlinkOff() }

// Tx is raw bus write for debugging, bypasses cached control and entry mode.
func (self *Display) Tx(addr uint16, w []byte) error {
	if err := self.bus.Tx(addr, w, nil); err != nil {
		return newDeviceError("raw", addr, err)
	}
	return nil
}

func (self *Display) CreateChar(slot int, bitmap [8]byte) error {
	return self.lcd.CreateChar(slot, bitmap)
}

// SetTextRaw writes at cursor without any formatting.
func (self *Display) SetTextRaw(text string) error {
	b, err := self.tr.Translate(text)
	if err != nil {
		return err
	}
	return self.lcd.Write(b)
}

// SetText clears display, waits settle delay, then writes first chunk at row 0
// and second chunk, if any, at row 1. See Chunks.
func (self *Display) SetText(text string) error {
	if err := self.lcd.Clear(); err != nil {
		return err
	}
	self.clock.Sleep(self.settle)

	chunks := Chunks(text, Width)
	self.log.Debugf("lcd text=%q chunks=%q", text, chunks)
	if len(chunks) == 0 {
		return nil
	}
	if err := self.SetTextRaw(chunks[0]); err != nil {
		return err
	}
	if len(chunks) > 1 && chunks[1] != "" {
		if err := self.SetCursor(0, 1); err != nil {
			return err
		}
		return self.SetTextRaw(chunks[1])
	}
	return nil
}
