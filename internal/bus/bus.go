// Package bus opens the I2C transport and reset line of a real Si4703.
//
// Two backends are available: periph, talking to /dev/i2c-* and the GPIO
// registry directly, and gobot, going through the Raspberry Pi adaptor.
package bus

import (
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/bartgrantham/fmrds/si4703"
)

const (
	Periph = "periph"
	Gobot  = "gobot"
)

// Options selects the transport. Pin names follow the backend: periph takes
// GPIO names ("GPIO23"), gobot takes header pin numbers ("16").
type Options struct {
	Backend string
	// Bus is the periph bus name ("I2C1", empty for the first one) or the
	// gobot bus number ("1", empty for the adaptor default).
	Bus  string
	Addr uint16
	// ResetPin drives RST. Empty skips the reset pulse.
	ResetPin string
	// SDIOPin, if set, is held low across the reset pulse so the chip comes
	// up in 2-wire mode. Only needed when SDIO is not pulled low by the board.
	SDIOPin string
	Pulse   time.Duration // each reset phase, 100 ms when zero

	Log func(format string, v ...interface{})
}

// DefaultOptions returns the usual Raspberry Pi wiring: periph on
// I2C1, RST on GPIO23 (header pin 16).
func DefaultOptions() Options {
	return Options{
		Backend:  Periph,
		Bus:      "I2C1",
		Addr:     si4703.Address,
		ResetPin: "GPIO23",
	}
}

func (o *Options) validate() error {
	if o.Backend == "" {
		o.Backend = Periph
	}
	if o.Addr == 0 {
		o.Addr = si4703.Address
	}
	if o.Pulse == 0 {
		o.Pulse = 100 * time.Millisecond
	}
	if o.Log == nil {
		o.Log = func(string, ...interface{}) {}
	}
	switch o.Backend {
	case Periph, Gobot:
		return nil
	}
	return fmt.Errorf("bus: unknown backend %q", o.Backend)
}

// Handle is an open transport. Reset is nil when no reset pin was given.
type Handle struct {
	Bus   si4703.Bus
	Reset func() error

	closers []func() error
}

// Close releases everything Open acquired, in reverse order.
func (h *Handle) Close() error {
	var result error
	for i := len(h.closers) - 1; i >= 0; i-- {
		if err := h.closers[i](); err != nil {
			result = multierror.Append(result, err)
		}
	}
	h.closers = nil
	return result
}

// Open opens the transport described by o.
func Open(o Options) (*Handle, error) {
	if err := o.validate(); err != nil {
		return nil, err
	}
	if o.Backend == Gobot {
		return openGobot(o)
	}
	return openPeriph(o)
}

// level sets one output line.
type level func(high bool) error

/*
Reset pulse from AN230: with SEN high, SDIO must be low on the rising edge
of RST for the chip to select the 2-wire interface.

	SDIO low (optional)
	RST low, wait
	RST high, wait
	SDIO released (optional)
*/
func pulse(rst, sdio level, release func() error, wait time.Duration, sleep func(time.Duration)) error {
	if sdio != nil {
		if err := sdio(false); err != nil {
			return fmt.Errorf("sdio low: %w", err)
		}
		sleep(wait)
	}
	if err := rst(false); err != nil {
		return fmt.Errorf("reset low: %w", err)
	}
	sleep(wait)
	if err := rst(true); err != nil {
		return fmt.Errorf("reset high: %w", err)
	}
	sleep(wait)
	if release != nil {
		if err := release(); err != nil {
			return fmt.Errorf("sdio release: %w", err)
		}
	}
	return nil
}
