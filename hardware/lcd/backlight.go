package lcd

import (
	"github.com/temoto/spotlcd/hardware/i2c"
)

// PCA9633 style RGB LED driver, one PWM register per channel.
const (
	AddrRGB uint16 = 0x62

	regMode1  byte = 0x00
	regMode2  byte = 0x01
	regRatio  byte = 0x06
	regPeriod byte = 0x07
	regOutput byte = 0x08
)

type Channel byte

const (
	ChannelBlue  Channel = 0x02
	ChannelGreen Channel = 0x03
	ChannelRed   Channel = 0x04
)

const DefaultBlinkRatio = 0x7f

type Backlight struct {
	bus  i2c.Bus
	addr uint16
}

func NewBacklight(bus i2c.Bus, addr uint16) *Backlight {
	return &Backlight{bus: bus, addr: addr}
}

func (self *Backlight) SetReg(reg, value byte) error {
	if err := self.bus.Tx(self.addr, []byte{reg, value}, nil); err != nil {
		return newDeviceError("rgb", self.addr, err)
	}
	return nil
}

// Init enables oscillator, full PWM output on all channels and group blink mode.
func (self *Backlight) Init() error {
	if err := self.SetReg(regMode1, 0x00); err != nil {
		return err
	}
	if err := self.SetReg(regOutput, 0xff); err != nil {
		return err
	}
	return self.SetReg(regMode2, 0x20)
}

func (self *Backlight) SetPWM(ch Channel, value byte) error {
	return self.SetReg(byte(ch), value)
}

// SetRGB does not clamp, values are truncated to byte.
func (self *Backlight) SetRGB(r, g, b int) error {
	if err := self.SetPWM(ChannelRed, byte(r)); err != nil {
		return err
	}
	if err := self.SetPWM(ChannelGreen, byte(g)); err != nil {
		return err
	}
	return self.SetPWM(ChannelBlue, byte(b))
}

// BlinkOn makes backlight blink once per second, ratio/256 of period lit.
func (self *Backlight) BlinkOn(ratio byte) error {
	// period seconds = (reg+1)/24
	if err := self.SetReg(regPeriod, 0x17); err != nil {
		return err
	}
	return self.SetReg(regRatio, ratio)
}

func (self *Backlight) BlinkOff() error {
	if err := self.SetReg(regPeriod, 0x00); err != nil {
		return err
	}
	return self.SetReg(regRatio, 0xff)
}
