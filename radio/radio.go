// Package radio ties an Si4703 tuner to an RDS decoder.
//
// The Radio owns both: every completed seek or tune clears whatever RDS
// state was accumulated for the previous station, so a Snapshot never mixes
// two programmes.
package radio

import (
	"fmt"
	"io"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/bartgrantham/fmrds/rds"
	"github.com/bartgrantham/fmrds/si4703"
)

// Config configures a Radio.
type Config struct {
	Device si4703.Config

	// ClockSink receives every valid clock-time group.
	ClockSink rds.ClockSink

	// DropUncorrectable discards groups the chip could not correct in any
	// block. Only block A is checked unless Device.RDSVerbose is set.
	DropUncorrectable bool

	// ProgramService waits up to PSWait, polling every PSPoll, when the
	// channel has at least PSMinRSSI.
	PSWait    time.Duration
	PSPoll    time.Duration
	PSMinRSSI uint8

	// Closer, if set, is closed by Close after the tuner is powered down.
	Closer io.Closer

	Log func(format string, v ...interface{})
}

// Validate fills in defaults, including those of Device.
func (c *Config) Validate() error {
	if c.Log == nil {
		c.Log = func(string, ...interface{}) {}
	}
	if c.Device.Logf == nil {
		c.Device.Logf = c.Log
	}
	if c.PSWait == 0 {
		c.PSWait = 5 * time.Second
	}
	if c.PSPoll == 0 {
		c.PSPoll = 50 * time.Millisecond
	}
	if c.PSMinRSSI == 0 {
		c.PSMinRSSI = 35
	}
	if err := c.Device.Validate(); err != nil {
		return fmt.Errorf("device: %w", err)
	}
	return nil
}

// Radio is a tuner and the RDS state of the station it is on. Like
// si4703.Device it is not safe for concurrent use, except for Snapshot.
type Radio struct {
	dev *si4703.Device
	dec *rds.Decoder
	cfg Config
}

// New returns a radio on bus.
func New(bus si4703.Bus, cfg Config) (*Radio, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	dev, err := si4703.New(bus, cfg.Device)
	if err != nil {
		return nil, err
	}
	dec := rds.NewDecoder(cfg.ClockSink)
	dec.SetLogf(cfg.Log)
	return &Radio{dev: dev, dec: dec, cfg: cfg}, nil
}

// Device returns the tuner.
func (r *Radio) Device() *si4703.Device { return r.dev }

// Decoder returns the RDS decoder.
func (r *Radio) Decoder() *rds.Decoder { return r.dec }

// Snapshot returns the RDS state of the current station.
func (r *Radio) Snapshot() rds.State { return r.dec.Snapshot() }

// PowerUp powers the tuner up on the default frequency.
func (r *Radio) PowerUp() error {
	defer r.dec.Reset()
	return r.dev.PowerUp()
}

// PowerDown powers the tuner down.
func (r *Radio) PowerDown() error {
	return r.dev.PowerDown()
}

// Powered reports whether the chip is running.
func (r *Radio) Powered() (bool, error) {
	return r.dev.Powered()
}

// Seek moves to the next station in dir. RDS state is reset however the
// seek ends.
func (r *Radio) Seek(dir si4703.Direction) (si4703.Result, error) {
	defer r.dec.Reset()
	return r.dev.Seek(dir)
}

// Tune moves to f. RDS state is reset however the tune ends.
func (r *Radio) Tune(f si4703.Freq) (si4703.Result, error) {
	defer r.dec.Reset()
	return r.dev.Tune(f)
}

// FetchGroup waits up to the RDS timeout for one group and decodes it. ok
// is false when nothing usable arrived.
func (r *Radio) FetchGroup() (g rds.Group, ok bool, err error) {
	raw, ok, err := r.dev.ReadGroup(0)
	if err != nil || !ok {
		return g, false, err
	}
	g, ok = r.decode(raw)
	return g, ok, nil
}

// Poll reads the chip once without waiting and decodes the group it held,
// if there was one.
func (r *Radio) Poll() (st si4703.Status, g rds.Group, ok bool, err error) {
	st, raw, ok, err := r.dev.Poll()
	if err != nil || !ok {
		return st, g, false, err
	}
	g, ok = r.decode(raw)
	return st, g, ok, nil
}

func (r *Radio) decode(raw si4703.Group) (rds.Group, bool) {
	if r.cfg.DropUncorrectable && uncorrectable(raw) {
		return rds.Group{}, false
	}
	b := rds.Blocks{A: raw.Blocks[0], B: raw.Blocks[1], C: raw.Blocks[2], D: raw.Blocks[3]}
	return r.dec.Decode(b), true
}

func uncorrectable(g si4703.Group) bool {
	for _, e := range g.Errors {
		if e >= 3 {
			return true
		}
	}
	return false
}

// Capture configures a batch capture.
type Capture struct {
	Duration time.Duration // 5 s when zero
	Interval time.Duration // pause between fetches, 50 ms when zero
	Filter   []rds.GroupType
	// FindNew reports only group types the decoder does not interpret.
	FindNew bool
}

func (c Capture) match(t rds.GroupType) bool {
	if c.FindNew && t.Implemented() {
		return false
	}
	if len(c.Filter) == 0 {
		return true
	}
	for _, f := range c.Filter {
		if f == t {
			return true
		}
	}
	return false
}

// Capture fetches groups until c.Duration has passed and hands each one
// that passes the filter to fn. Every group is decoded whether it is
// reported or not. It returns the number of groups reported.
func (r *Radio) Capture(c Capture, fn func(rds.Group)) (int, error) {
	if c.Duration <= 0 {
		c.Duration = 5 * time.Second
	}
	if c.Interval <= 0 {
		c.Interval = 50 * time.Millisecond
	}
	clock := r.dev.Clock()
	start := clock.Now()
	n := 0
	for clock.Now().Sub(start) <= c.Duration {
		clock.Sleep(c.Interval)
		g, ok, err := r.FetchGroup()
		if err != nil {
			return n, err
		}
		if ok && c.match(g.Type) {
			n++
			if fn != nil {
				fn(g)
			}
		}
	}
	return n, nil
}

// ProgramService returns the programme service name for display. When the
// name is incomplete and the channel is usable it first listens for up to
// PSWait.
func (r *Radio) ProgramService() (string, error) {
	ps := r.dec.Snapshot().PS
	if ps.Complete(rds.A) {
		return ps.Display(rds.A), nil
	}
	st, err := r.dev.Status()
	if err != nil {
		return "", err
	}
	if !st.BandLimit && st.RSSI >= r.cfg.PSMinRSSI {
		clock := r.dev.Clock()
		start := clock.Now()
		for clock.Now().Sub(start) <= r.cfg.PSWait {
			if _, _, err := r.FetchGroup(); err != nil {
				return "", err
			}
			ps = r.dec.Snapshot().PS
			if ps.Complete(rds.A) {
				break
			}
			clock.Sleep(r.cfg.PSPoll)
		}
	}
	return ps.Display(rds.A), nil
}

// Station is one stop of a band scan.
type Station struct {
	Freq   si4703.Freq
	RSSI   uint8
	Stereo bool
}

func (s Station) String() string {
	return fmt.Sprintf("%9s - RSSI: %d", s.Freq, s.RSSI)
}

// Scan tunes to the bottom of the band and seeks up until the seek fails,
// reaches the top of the band or comes back around. It then returns to the
// last station found, or to the bottom of the band.
func (r *Radio) Scan() ([]Station, error) {
	band := r.dev.Band()
	if _, err := r.Tune(band.First); err != nil {
		return nil, err
	}
	var found []Station
	last := band.First
	for {
		res, err := r.Seek(si4703.Up)
		if err != nil {
			return found, err
		}
		if !res.Found() || res.Freq <= last {
			break
		}
		r.cfg.Log("radio: found %s", res)
		found = append(found, Station{Freq: res.Freq, RSSI: res.RSSI, Stereo: res.Stereo})
		last = res.Freq
		if res.Freq >= band.Last {
			break
		}
	}
	if _, err := r.Tune(last); err != nil {
		return found, err
	}
	return found, nil
}

// Close powers the tuner down if it is running and closes Config.Closer.
func (r *Radio) Close() error {
	var result error
	if r.dev.State() != si4703.PoweredDown {
		if err := r.dev.PowerDown(); err != nil {
			result = multierror.Append(result, fmt.Errorf("power down: %w", err))
		}
	}
	if r.cfg.Closer != nil {
		if err := r.cfg.Closer.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result
}
