// Package si4703test has a simulated Si4703 and a fake clock for driving
// si4703.Device in tests without hardware or real sleeps.
package si4703test

import (
	"fmt"
	"sort"
	"sync"

	"github.com/bartgrantham/fmrds/si4703"
)

type op int

const (
	idle op = iota
	tuning
	seeking
)

// Chip is a register-level model of the Si4703: reads stream in device
// order, writes land on POWERCFG..TEST1, and TUNE/SEEK complete after a
// configurable number of reads.
type Chip struct {
	mu sync.Mutex

	Reg [si4703.NumRegisters]uint16
	// Band decodes CHAN and READCHAN.
	Band si4703.Band
	// Stations are the frequencies a seek stops on.
	Stations []si4703.Freq
	// StationRSSI is reported on a station, NoiseRSSI everywhere else.
	StationRSSI uint8
	NoiseRSSI   uint8
	// CompleteAfter is how many reads after the trigger STC appears on;
	// negative never completes.
	CompleteAfter int

	// ReadErr and WriteErr, when set, fail every transfer.
	ReadErr  error
	WriteErr error

	// Writes holds every write payload, first byte included.
	Writes [][]byte
	// Reads counts reads since the chip was made.
	Reads int

	groups  [][4]uint16
	op      op
	pending int
}

// NewChip returns a powered-down chip on the European band that completes
// tunes and seeks on the third poll.
func NewChip() *Chip {
	c := &Chip{
		Band:          si4703.BandEurope,
		StationRSSI:   45,
		NoiseRSSI:     8,
		CompleteAfter: 3,
	}
	c.Reg[si4703.DEVICEID] = 0x1242
	c.Reg[si4703.CHIPID] = 0x1253
	c.Reg[si4703.TEST1] = 0x0100
	return c
}

// Send queues RDS groups; each read hands out the next one with RDSR set.
func (c *Chip) Send(groups ...[4]uint16) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.groups = append(c.groups, groups...)
}

// Pending returns the number of queued RDS groups.
func (c *Chip) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.groups)
}

// Register returns the current value of reg.
func (c *Chip) Register(reg int) uint16 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Reg[reg]
}

// SetFreq parks the chip on f as if a tune had finished and been released.
func (c *Chip) SetFreq(f si4703.Freq) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.land(f, false)
	c.Reg[si4703.STATUSRSSI] = si4703.STC.Set(c.Reg[si4703.STATUSRSSI], 0)
}

func (c *Chip) powered() bool {
	p := c.Reg[si4703.POWERCFG]
	return si4703.ENABLE.Bool(p) && !si4703.DISABLE.Bool(p)
}

func (c *Chip) Write(first byte, rest []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.WriteErr != nil {
		return c.WriteErr
	}
	buf := append([]byte{first}, rest...)
	c.Writes = append(c.Writes, buf)
	if len(buf)%2 != 0 || len(buf) > 12 {
		return fmt.Errorf("si4703test: write of %d bytes", len(buf))
	}
	for i := 0; i < len(buf)/2; i++ {
		c.Reg[si4703.POWERCFG+i] = uint16(buf[i*2])<<8 | uint16(buf[i*2+1])
	}
	c.react()
	return nil
}

func (c *Chip) react() {
	p := c.Reg[si4703.POWERCFG]
	if si4703.ENABLE.Bool(p) && si4703.DISABLE.Bool(p) {
		// powerdown done, the chip drops ENABLE itself
		c.Reg[si4703.POWERCFG] = si4703.ENABLE.Set(p, 0)
		c.op = idle
		return
	}
	tune := si4703.TUNE.Bool(c.Reg[si4703.CHANNEL])
	seek := si4703.SEEK.Bool(p)
	switch {
	case !tune && !seek:
		c.op = idle
		st := c.Reg[si4703.STATUSRSSI]
		st = si4703.STC.Set(st, 0)
		c.Reg[si4703.STATUSRSSI] = si4703.SFBL.Set(st, 0)
	case c.op != idle:
	case tune:
		c.op, c.pending = tuning, c.CompleteAfter
	case seek:
		c.op, c.pending = seeking, c.CompleteAfter
	}
}

func (c *Chip) Read(cmd byte, n int) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ReadErr != nil {
		return nil, c.ReadErr
	}
	c.Reads++
	if c.op != idle && c.pending > 0 {
		c.pending--
		if c.pending == 0 {
			c.complete()
		}
	}
	st := c.Reg[si4703.STATUSRSSI]
	if c.powered() && len(c.groups) > 0 {
		g := c.groups[0]
		c.groups = c.groups[1:]
		copy(c.Reg[si4703.RDSA:], g[:])
		st = si4703.RDSR.Set(st, 1)
	} else {
		st = si4703.RDSR.Set(st, 0)
	}
	c.Reg[si4703.STATUSRSSI] = st

	buf := make([]byte, n)
	for i := 0; i < n/2 && i < si4703.NumRegisters; i++ {
		v := c.Reg[(i+si4703.STATUSRSSI)%si4703.NumRegisters]
		buf[i*2] = byte(v >> 8)
		buf[i*2+1] = byte(v)
	}
	return buf, nil
}

func (c *Chip) current() si4703.Freq {
	return c.Band.Freq(si4703.READCH.Get(c.Reg[si4703.READCHAN]))
}

func (c *Chip) complete() {
	switch c.op {
	case tuning:
		c.land(c.Band.Freq(si4703.CHAN.Get(c.Reg[si4703.CHANNEL])), false)
	case seeking:
		f, ok := c.next()
		c.land(f, !ok)
	}
}

// next finds where a seek from the current channel stops.
func (c *Chip) next() (si4703.Freq, bool) {
	p := c.Reg[si4703.POWERCFG]
	up := si4703.SEEKUP.Bool(p)
	wrap := !si4703.SKMODE.Bool(p)
	cur := c.current()

	st := append([]si4703.Freq(nil), c.Stations...)
	sort.Slice(st, func(i, j int) bool { return st[i] < st[j] })
	if up {
		for _, f := range st {
			if f > cur && c.Band.Contains(f) {
				return f, true
			}
		}
		if wrap {
			for _, f := range st {
				if f < cur && c.Band.Contains(f) {
					return f, true
				}
			}
			return cur, false
		}
		return c.Band.Last, false
	}
	for i := len(st) - 1; i >= 0; i-- {
		if st[i] < cur && c.Band.Contains(st[i]) {
			return st[i], true
		}
	}
	if wrap {
		for i := len(st) - 1; i >= 0; i-- {
			if st[i] > cur && c.Band.Contains(st[i]) {
				return st[i], true
			}
		}
		return cur, false
	}
	return c.Band.First, false
}

func (c *Chip) land(f si4703.Freq, limit bool) {
	c.Reg[si4703.READCHAN] = si4703.READCH.Set(c.Reg[si4703.READCHAN], c.Band.Channel(f))
	rssi := c.NoiseRSSI
	for _, s := range c.Stations {
		if s == f && !limit {
			rssi = c.StationRSSI
		}
	}
	st := c.Reg[si4703.STATUSRSSI]
	st = si4703.STC.Set(st, 1)
	if limit {
		st = si4703.SFBL.Set(st, 1)
	}
	st = si4703.ST.Set(st, 1)
	c.Reg[si4703.STATUSRSSI] = si4703.RSSI.Set(st, uint16(rssi))
}
