package si4703

import (
	"periph.io/x/conn/v3"
)

// Bus moves raw register bytes to and from the chip.
//
// The Si4703 has no register pointer: a write always starts at the high byte
// of POWERCFG, and a read always starts at the high byte of STATUSRSSI and
// wraps from RDSD to DEVICEID.
type Bus interface {
	// Write sends first followed by rest in one transaction.
	Write(first byte, rest []byte) error
	// Read sends cmd and then reads n bytes.
	Read(cmd byte, n int) ([]byte, error)
}

// i2cBus adapts a periph connection, usually an *i2c.Dev at Address.
type i2cBus struct {
	c conn.Conn
}

// NewI2CBus returns a Bus on top of a periph connection.
func NewI2CBus(c conn.Conn) Bus {
	return &i2cBus{c: c}
}

func (b *i2cBus) Write(first byte, rest []byte) error {
	buf := make([]byte, 0, len(rest)+1)
	buf = append(buf, first)
	buf = append(buf, rest...)
	return b.c.Tx(buf, nil)
}

func (b *i2cBus) Read(cmd byte, n int) ([]byte, error) {
	buf := make([]byte, n)
	if err := b.c.Tx([]byte{cmd}, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func (b *i2cBus) String() string {
	return b.c.String()
}
