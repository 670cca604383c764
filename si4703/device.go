package si4703

import (
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
)

var ErrNotPowered = errors.New("tuner not powered up")

// State is where the device is in its power/tune cycle.
type State int

const (
	PoweredDown State = iota
	PoweringUp
	Ready
	Seeking
	Tuning
	PoweringDown
)

var stateNames = [...]string{
	PoweredDown:  "powered down",
	PoweringUp:   "powering up",
	Ready:        "ready",
	Seeking:      "seeking",
	Tuning:       "tuning",
	PoweringDown: "powering down",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// Direction of a seek.
type Direction int

const (
	Down Direction = iota
	Up
)

func (d Direction) String() string {
	if d == Up {
		return "up"
	}
	return "down"
}

// Result is the outcome of a seek or tune, as the chip reported it just
// before the trigger bit was cleared.
type Result struct {
	Freq      Freq
	Complete  bool // STC
	BandLimit bool // SF/BL
	RSSI      uint8
	Stereo    bool
}

// Found reports whether a seek stopped on a station rather than at the end of
// the band.
func (r Result) Found() bool {
	return r.Complete && !r.BandLimit
}

func (r Result) String() string {
	switch {
	case r.Found():
		return fmt.Sprintf("%s rssi %d", r.Freq, r.RSSI)
	case r.Complete:
		return fmt.Sprintf("%s band limit", r.Freq)
	}
	return fmt.Sprintf("%s incomplete", r.Freq)
}

// Group is one set of RDS blocks and the chip's error estimate for each of
// them: 0 none, 1 1-2 bits, 2 3-5 bits, 3 uncorrectable. Outside RDS verbose
// mode only Errors[0] is meaningful.
type Group struct {
	Blocks [4]uint16
	Errors [4]uint8
}

// Device is one Si4703 behind a Bus. It is not safe for concurrent use;
// callers serialize access themselves.
type Device struct {
	*Shadow
	cfg   Config
	state State
}

// New returns a device on bus. Nothing is sent to the chip until PowerUp or
// one of the status accessors is called.
func New(bus Bus, cfg Config) (*Device, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Device{Shadow: NewShadow(bus), cfg: cfg}, nil
}

// Config returns the validated configuration.
func (d *Device) Config() Config { return d.cfg }

// Band returns the configured band.
func (d *Device) Band() Band { return d.cfg.Band }

// State returns the current state.
func (d *Device) State() State { return d.state }

// Clock returns the clock the device sleeps on.
func (d *Device) Clock() Clock { return d.cfg.Clock }

/*
Powerup sequence, AN230 section 2.1.1 and the datasheet:

1. set XOSCEN (and the undocumented bit 8) in TEST1
2. wait for the oscillator to settle, 500 ms
3. set DMUTE and ENABLE, RDS, DE, band, spacing, seek defaults
4. wait the max powerup time, 110 ms
5. tune the default frequency

Once ENABLE is written the chip is running, so a failed initial tune leaves
the device Ready for the caller to retry the tune or power it down.
*/
func (d *Device) PowerUp() (err error) {
	d.state = PoweringUp
	enabled := false
	defer func() {
		if err != nil && !enabled {
			d.state = PoweredDown
		}
	}()

	if d.cfg.Reset != nil {
		if err = d.cfg.Reset(); err != nil {
			return fmt.Errorf("reset: %w", err)
		}
	}
	if err = d.Read(); err != nil {
		return err
	}
	d.Reg[TEST1] = 0x8100
	if err = d.Write(); err != nil {
		return err
	}
	d.cfg.Clock.Sleep(d.cfg.OscillatorSettle)

	if err = d.Read(); err != nil {
		return err
	}
	d.Reg[POWERCFG] = DMUTE.Mask | ENABLE.Mask
	d.flag(POWERCFG, RDSM, d.cfg.RDSVerbose)
	d.flag(SYSCONFIG1, RDS, true)
	d.flag(SYSCONFIG1, DE, !d.cfg.Deemphasis75)
	d.update(SYSCONFIG2, SEEKTH, uint16(d.cfg.SeekThreshold))
	d.update(SYSCONFIG2, BAND, uint16(d.cfg.Band.Select))
	d.update(SYSCONFIG2, SPACE, 1) // 100 kHz
	d.update(SYSCONFIG2, VOLUME, uint16(d.cfg.Volume))
	d.update(SYSCONFIG3, SKSNR, uint16(d.cfg.SeekSNR))
	d.update(SYSCONFIG3, SKCNT, uint16(d.cfg.SeekCount))
	if err = d.Write(); err != nil {
		return err
	}
	enabled = true
	d.cfg.Clock.Sleep(d.cfg.PowerUpDelay)
	d.state = Ready
	d.cfg.Logf("si4703: powered up, %s", d.cfg.Band)

	res, err := d.Tune(d.cfg.DefaultFrequency)
	if err != nil {
		return fmt.Errorf("initial tune: %w", err)
	}
	d.cfg.Logf("si4703: tuned %s", res)
	return nil
}

/*
Powerdown, AN230 section 2.1.2. The errata wants ENABLE and DISABLE both set
together; the chip clears ENABLE itself once it has shut down.
*/
func (d *Device) PowerDown() error {
	d.state = PoweringDown
	if err := d.Read(); err != nil {
		return err
	}
	d.flag(TEST1, AHIZEN, true)
	d.Reg[SYSCONFIG1] &^= GPIO3.Mask | GPIO2.Mask | GPIO1.Mask
	d.flag(POWERCFG, DMUTE, false)
	d.flag(POWERCFG, ENABLE, true)
	d.flag(POWERCFG, DISABLE, true)
	if err := d.Write(); err != nil {
		return err
	}
	d.cfg.Clock.Sleep(d.cfg.PowerUpDelay)
	d.state = PoweredDown
	d.cfg.Logf("si4703: powered down")
	return nil
}

// Powered reads the chip and reports whether it is enabled. A chip left
// running by an earlier process moves the device to Ready.
func (d *Device) Powered() (bool, error) {
	if err := d.Read(); err != nil {
		return false, err
	}
	on := ENABLE.Bool(d.Reg[POWERCFG]) && !DISABLE.Bool(d.Reg[POWERCFG])
	switch {
	case on && d.state == PoweredDown:
		d.state = Ready
	case !on && d.state == Ready:
		d.state = PoweredDown
	}
	return on, nil
}

func (d *Device) ready() error {
	if d.state != Ready {
		return fmt.Errorf("%w: %s", ErrNotPowered, d.state)
	}
	return nil
}

// Seek starts a hardware seek and waits for STC, at most SeekTimeout. A
// seek that ends at the band limit is not an error; check Result.Found.
func (d *Device) Seek(dir Direction) (Result, error) {
	if err := d.ready(); err != nil {
		return Result{}, err
	}
	d.state = Seeking
	defer func() { d.state = Ready }()

	if err := d.Read(); err != nil {
		return Result{}, err
	}
	d.flag(POWERCFG, SKMODE, !d.cfg.SeekWrap)
	d.flag(POWERCFG, SEEKUP, dir == Up)
	d.flag(POWERCFG, SEEK, true)
	if err := d.Write(); err != nil {
		return Result{}, err
	}

	var res Result
	var err error
	start := d.cfg.Clock.Now()
	for {
		if d.cfg.Clock.Now().Sub(start) > d.cfg.SeekTimeout {
			err = fmt.Errorf("seek %s: %w", dir, ErrTimeout)
			break
		}
		if err = d.Read(); err != nil {
			break
		}
		res = d.result()
		if res.Complete {
			break
		}
		d.cfg.Clock.Sleep(d.cfg.SeekPoll)
	}
	return res, d.release(POWERCFG, SEEK, err)
}

// Tune sets the channel and waits for STC or SF/BL, at most TunePolls polls
// TunePoll apart. Frequencies outside the band are clamped to it.
func (d *Device) Tune(f Freq) (Result, error) {
	if err := d.ready(); err != nil {
		return Result{}, err
	}
	if !d.cfg.Band.Contains(f) {
		d.cfg.Logf("si4703: %s outside %s, clamped", f, d.cfg.Band)
	}
	d.state = Tuning
	defer func() { d.state = Ready }()

	if err := d.Read(); err != nil {
		return Result{}, err
	}
	d.flag(CHANNEL, TUNE, true)
	d.update(CHANNEL, CHAN, d.cfg.Band.Channel(f))
	if err := d.Write(); err != nil {
		return Result{}, err
	}

	var res Result
	var err error
	for polls := 0; ; polls++ {
		if err = d.Read(); err != nil {
			break
		}
		res = d.result()
		if res.Complete || res.BandLimit {
			break
		}
		if polls >= d.cfg.TunePolls {
			err = fmt.Errorf("tune %s: %w", f, ErrTimeout)
			break
		}
		d.cfg.Clock.Sleep(d.cfg.TunePoll)
	}
	return res, d.release(CHANNEL, TUNE, err)
}

// release clears a seek or tune trigger whatever the poll loop ended with.
// The chip drops STC only once the trigger is clear.
func (d *Device) release(reg int, trigger Field, err error) error {
	cerr := d.Read()
	if cerr == nil {
		d.flag(reg, trigger, false)
		cerr = d.Write()
	}
	if cerr == nil {
		return err
	}
	if err == nil {
		return cerr
	}
	return multierror.Append(err, cerr)
}

func (d *Device) result() Result {
	st := DecodeStatus(d.Reg[STATUSRSSI])
	rc := DecodeReadChannel(d.Reg[READCHAN])
	return Result{
		Freq:      d.cfg.Band.Freq(rc.Channel),
		Complete:  st.Complete,
		BandLimit: st.BandLimit,
		RSSI:      st.RSSI,
		Stereo:    st.Stereo,
	}
}

// Status reads the chip and decodes STATUSRSSI.
func (d *Device) Status() (Status, error) {
	if err := d.Read(); err != nil {
		return Status{}, err
	}
	return DecodeStatus(d.Reg[STATUSRSSI]), nil
}

// RSSI reads the chip and returns the received signal strength in dBµV.
func (d *Device) RSSI() (uint8, error) {
	st, err := d.Status()
	return st.RSSI, err
}

// Channel reads the chip and returns the frequency it is tuned to.
func (d *Device) Channel() (Freq, error) {
	if err := d.Read(); err != nil {
		return 0, err
	}
	return d.cfg.Band.Freq(READCH.Get(d.Reg[READCHAN])), nil
}

// Volume reads the chip and returns the VOLUME field.
func (d *Device) Volume() (int, error) {
	if err := d.Read(); err != nil {
		return 0, err
	}
	return int(VOLUME.Get(d.Reg[SYSCONFIG2])), nil
}

// SetVolume sets VOLUME, clamped to 0..15, and returns what was written.
func (d *Device) SetVolume(v int) (int, error) {
	if v < 0 {
		v = 0
	} else if v > int(VOLUME.Max()) {
		v = int(VOLUME.Max())
	}
	if err := d.Read(); err != nil {
		return 0, err
	}
	d.update(SYSCONFIG2, VOLUME, uint16(v))
	return v, d.Write()
}

// ReadRegisters reads the chip and returns all 16 registers.
func (d *Device) ReadRegisters() ([NumRegisters]uint16, error) {
	err := d.Read()
	return d.Registers(), err
}

/*
From AN230:
> When using the polling method, it is best not to poll continuously.
> The data will appear in intervals of ~88 ms and the RDSR indicator will be
> available for at least 40 ms, so a polling rate of 40 ms or less should be sufficient.
*/

// ReadGroup polls for RDSR every RDSPoll until timeout (RDSTimeout when
// zero). ok is false when no group arrived in time.
func (d *Device) ReadGroup(timeout time.Duration) (g Group, ok bool, err error) {
	if timeout <= 0 {
		timeout = d.cfg.RDSTimeout
	}
	start := d.cfg.Clock.Now()
	for {
		if err = d.Read(); err != nil {
			return g, false, err
		}
		if RDSR.Bool(d.Reg[STATUSRSSI]) {
			break
		}
		if d.cfg.Clock.Now().Sub(start) > timeout {
			return g, false, nil
		}
		d.cfg.Clock.Sleep(d.cfg.RDSPoll)
	}
	return d.group(), true, nil
}

// Poll reads the chip once. ok reports whether it held an RDS group.
func (d *Device) Poll() (st Status, g Group, ok bool, err error) {
	if err = d.Read(); err != nil {
		return st, g, false, err
	}
	st = DecodeStatus(d.Reg[STATUSRSSI])
	if st.RDSReady {
		g, ok = d.group(), true
	}
	return st, g, ok, nil
}

func (d *Device) group() Group {
	var g Group
	copy(g.Blocks[:], d.Reg[RDSA:RDSD+1])
	rc := DecodeReadChannel(d.Reg[READCHAN])
	g.Errors = [4]uint8{
		uint8(BLERA.Get(d.Reg[STATUSRSSI])),
		rc.BlockBErrors,
		rc.BlockCErrors,
		rc.BlockDErrors,
	}
	return g
}
