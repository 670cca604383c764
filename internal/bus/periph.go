package bus

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/pin/pinreg"
	"periph.io/x/host/v3"

	"github.com/bartgrantham/fmrds/si4703"
)

func openPeriph(o Options) (*Handle, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("couldn't initialize peripherals: %w", err)
	}
	b, err := i2creg.Open(o.Bus)
	if err != nil {
		return nil, fmt.Errorf("couldn't open i2c bus %q: %w", o.Bus, err)
	}
	h := &Handle{closers: []func() error{b.Close}}

	if p, ok := b.(i2c.Pins); ok {
		_, scl := pinreg.Position(p.SCL())
		_, sda := pinreg.Position(p.SDA())
		o.Log("bus: using i2c %q, %s: pin %d, %s: pin %d", b, p.SCL(), scl, p.SDA(), sda)
	}
	dev := &i2c.Dev{Bus: b, Addr: o.Addr}
	h.Bus = si4703.NewI2CBus(dev)

	if o.ResetPin != "" {
		rst, sdio, err := periphPins(o.ResetPin, o.SDIOPin)
		if err != nil {
			h.Close()
			return nil, err
		}
		h.Reset = periphReset(rst, sdio, o.Pulse, time.Sleep)
	}
	return h, nil
}

func periphPins(rstName, sdioName string) (gpio.PinOut, gpio.PinIO, error) {
	rst := gpioreg.ByName(rstName)
	if rst == nil {
		return nil, nil, fmt.Errorf("failed to find reset pin %q", rstName)
	}
	var sdio gpio.PinIO
	if sdioName != "" {
		if sdio = gpioreg.ByName(sdioName); sdio == nil {
			return nil, nil, fmt.Errorf("failed to find sdio pin %q", sdioName)
		}
	}
	return rst, sdio, nil
}

// periphReset pulses rst, holding sdio low around it when given.
func periphReset(rst gpio.PinOut, sdio gpio.PinIO, wait time.Duration, sleep func(time.Duration)) func() error {
	out := func(p gpio.PinOut) level {
		return func(high bool) error { return p.Out(gpio.Level(high)) }
	}
	return func() error {
		if sdio == nil {
			return pulse(out(rst), nil, nil, wait, sleep)
		}
		release := func() error { return sdio.In(gpio.PullUp, gpio.NoEdge) }
		return pulse(out(rst), out(sdio), release, wait, sleep)
	}
}
