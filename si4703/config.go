package si4703

import (
	"fmt"
	"time"
)

// Clock is the time source for every poll loop in the driver.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type realClock struct{}

func (realClock) Now() time.Time        { return time.Now() }
func (realClock) Sleep(d time.Duration) { time.Sleep(d) }

// Config holds the settings applied at power up and the poll timings.
// Zero values are replaced by Validate.
type Config struct {
	Band             Band
	DefaultFrequency Freq // tuned at the end of PowerUp
	Deemphasis75     bool // USA; 50 µs otherwise
	Volume           int  // 1..15, zero picks the lowest
	SeekThreshold    uint8
	SeekSNR          uint8
	SeekCount        uint8
	SeekWrap         bool // wrap at the band limits instead of stopping
	RDSVerbose       bool // report block errors for B, C and D

	OscillatorSettle time.Duration // after XOSCEN, datasheet says 500 ms
	PowerUpDelay     time.Duration // max power up time, 110 ms
	SeekTimeout      time.Duration
	SeekPoll         time.Duration
	TunePolls        int
	TunePoll         time.Duration
	RDSTimeout       time.Duration
	RDSPoll          time.Duration

	// Reset, if set, pulses the chip's reset line before power up.
	Reset func() error
	Clock Clock
	Logf  func(format string, v ...interface{})
}

// DefaultConfig is the configuration of the stock receiver: SR P4 on
// 103.8 MHz, European de-emphasis, lowest volume.
func DefaultConfig() Config {
	c := Config{}
	c.Validate()
	return c
}

// Validate fills in defaults and rejects settings the chip can't hold.
func (c *Config) Validate() error {
	if c.Band.First == 0 {
		c.Band = BandEurope
	}
	if c.DefaultFrequency == 0 {
		c.DefaultFrequency = 1038
	}
	if !c.Band.Contains(c.DefaultFrequency) {
		return fmt.Errorf("%w: default %s not in %s", ErrInvalidFreq, c.DefaultFrequency, c.Band)
	}
	if c.Volume < 0 || c.Volume > int(VOLUME.Max()) {
		return fmt.Errorf("volume %d not in 0..%d", c.Volume, VOLUME.Max())
	}
	if c.Volume == 0 {
		c.Volume = 1
	}
	if c.SeekSNR == 0 {
		c.SeekSNR = 4
	}
	if c.SeekCount == 0 {
		c.SeekCount = 8
	}
	if c.SeekSNR > uint8(SKSNR.Max()) || c.SeekCount > uint8(SKCNT.Max()) {
		return fmt.Errorf("seek SNR %d / count %d out of range", c.SeekSNR, c.SeekCount)
	}
	if c.OscillatorSettle == 0 {
		c.OscillatorSettle = 500 * time.Millisecond
	}
	if c.PowerUpDelay == 0 {
		c.PowerUpDelay = 110 * time.Millisecond
	}
	if c.SeekTimeout == 0 {
		c.SeekTimeout = 60 * time.Second
	}
	if c.SeekPoll == 0 {
		c.SeekPoll = 100 * time.Millisecond
	}
	if c.TunePolls == 0 {
		c.TunePolls = 10
	}
	if c.TunePoll == 0 {
		c.TunePoll = time.Second
	}
	if c.RDSTimeout == 0 {
		c.RDSTimeout = time.Second
	}
	if c.RDSPoll == 0 {
		c.RDSPoll = 50 * time.Millisecond
	}
	if c.Clock == nil {
		c.Clock = realClock{}
	}
	if c.Logf == nil {
		c.Logf = func(string, ...interface{}) {}
	}
	return nil
}
