package si4703

import (
	"errors"
	"fmt"
)

var ErrInvalidReg = errors.New("invalid register")
var ErrInvalidFreq = errors.New("invalid frequency")
var ErrTimeout = errors.New("timeout")
var ErrShortRead = errors.New("short read")

// Shadow is the in-memory copy of the chip's 16 registers. Field accessors
// only ever look at the shadow; Read and Write are the only points where it
// meets the bus.
type Shadow struct {
	bus Bus
	Reg [NumRegisters]uint16
}

// NewShadow returns an all-zero shadow on bus.
func NewShadow(bus Bus) *Shadow {
	return &Shadow{bus: bus}
}

// Read replaces the whole shadow with a fresh copy of the device registers.
func (s *Shadow) Read() error {
	// the command byte lands in the high byte of POWERCFG on some
	// transports, so send what is already there
	buf, err := s.bus.Read(byte(s.Reg[POWERCFG]>>8), readLen)
	if err != nil {
		return fmt.Errorf("read registers: %w", err)
	}
	return s.load(buf)
}

// load un-rotates a raw device-order stream (0a, 0b, .. 0f, 00, .. 09).
func (s *Shadow) load(buf []byte) error {
	if len(buf) < readLen {
		return fmt.Errorf("read registers: %w: %d of %d bytes", ErrShortRead, len(buf), readLen)
	}
	var reg [NumRegisters]uint16
	for i := 0; i < NumRegisters; i++ {
		// (i+10) % 16 == 10, 11, 12, 13, 14, 15, 0, 1....
		reg[(i+readStart)%NumRegisters] = uint16(buf[i*2])<<8 | uint16(buf[i*2+1])
	}
	s.Reg = reg
	return nil
}

// Write sends POWERCFG through TEST1 to the device. TEST2 and BOOTCONFIG are
// never written.
func (s *Shadow) Write() error {
	buf := make([]byte, writeLen)
	for i := 0; i < writeLen/2; i++ {
		// big-endian: high byte comes first
		v := s.Reg[firstWritable+i]
		buf[i*2] = byte(v >> 8)
		buf[i*2+1] = byte(v & 0xff)
	}
	if err := s.bus.Write(buf[0], buf[1:]); err != nil {
		return fmt.Errorf("write registers: %w", err)
	}
	return nil
}

// Get returns the shadow value of reg.
func (s *Shadow) Get(reg int) (uint16, error) {
	if reg < 0 || reg >= NumRegisters {
		return 0, ErrInvalidReg
	}
	return s.Reg[reg], nil
}

// Set changes the shadow value of a writable register. Nothing reaches the
// device until Write.
func (s *Shadow) Set(reg int, val uint16) error {
	if reg < firstWritable || reg > lastWritable {
		return ErrInvalidReg
	}
	s.Reg[reg] = val
	return nil
}

// update replaces one field of a register in the shadow.
func (s *Shadow) update(reg int, f Field, x uint16) {
	s.Reg[reg] = f.Set(s.Reg[reg], x)
}

func (s *Shadow) flag(reg int, f Field, on bool) {
	s.Reg[reg] = f.put(s.Reg[reg], on)
}

// Registers returns a copy of the shadow.
func (s *Shadow) Registers() [NumRegisters]uint16 {
	return s.Reg
}
