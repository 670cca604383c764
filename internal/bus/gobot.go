package bus

import (
	"fmt"
	"strconv"
	"time"

	"gobot.io/x/gobot/drivers/gpio"
	"gobot.io/x/gobot/drivers/i2c"
	"gobot.io/x/gobot/platforms/raspi"
)

const (
	low  = 0x0
	high = 0x1
)

// gobotBus speaks the Si4703 framing over a gobot connection. The chip has
// no register pointer, so the SMBus "register" of a block write is simply
// the first data byte.
type gobotBus struct {
	conn i2c.Connection
}

func (b *gobotBus) Write(first byte, rest []byte) error {
	return b.conn.WriteBlockData(first, rest)
}

// Read writes cmd, which the chip latches into the high byte of POWERCFG,
// then reads n bytes starting at STATUSRSSI.
func (b *gobotBus) Read(cmd byte, n int) ([]byte, error) {
	if _, err := b.conn.Write([]byte{cmd}); err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	got, err := b.conn.Read(buf)
	if err != nil {
		return nil, err
	}
	return buf[:got], nil
}

func openGobot(o Options) (*Handle, error) {
	a := raspi.NewAdaptor()
	if err := a.Connect(); err != nil {
		return nil, fmt.Errorf("raspi adaptor: %w", err)
	}
	h := &Handle{closers: []func() error{a.Finalize}}

	bus := a.GetDefaultBus()
	if o.Bus != "" {
		n, err := strconv.Atoi(o.Bus)
		if err != nil {
			h.Close()
			return nil, fmt.Errorf("gobot bus %q: %w", o.Bus, err)
		}
		bus = n
	}
	conn, err := a.GetConnection(int(o.Addr), bus)
	if err != nil {
		h.Close()
		return nil, err
	}
	o.Log("bus: using gobot %s bus %d address %#x", a.Name(), bus, o.Addr)
	h.Bus = &gobotBus{conn: conn}

	if o.ResetPin != "" {
		h.Reset = gobotReset(a, o.ResetPin, o.SDIOPin, o.Pulse, time.Sleep)
	}
	return h, nil
}

// gobotReset pulses the reset pin through any gobot digital writer.
func gobotReset(dw gpio.DigitalWriter, rstPin, sdioPin string, wait time.Duration, sleep func(time.Duration)) func() error {
	out := func(pin string) level {
		return func(on bool) error {
			v := byte(low)
			if on {
				v = high
			}
			return dw.DigitalWrite(pin, v)
		}
	}
	return func() error {
		if sdioPin == "" {
			return pulse(out(rstPin), nil, nil, wait, sleep)
		}
		release := func() error { return out(sdioPin)(true) }
		return pulse(out(rstPin), out(sdioPin), release, wait, sleep)
	}
}
