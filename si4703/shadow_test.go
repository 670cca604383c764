package si4703

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2ctest"
)

// deviceOrder lays regs out the way the chip streams them: 0a..0f, 00..09.
func deviceOrder(regs [NumRegisters]uint16) []byte {
	buf := make([]byte, 0, readLen)
	for i := 0; i < NumRegisters; i++ {
		v := regs[(i+10)%NumRegisters]
		buf = append(buf, byte(v>>8), byte(v))
	}
	return buf
}

func numbered() [NumRegisters]uint16 {
	var regs [NumRegisters]uint16
	for i := range regs {
		regs[i] = 0xA000 | uint16(i)<<4 | uint16(i)
	}
	return regs
}

func TestShadowUnrotates(t *testing.T) {
	regs := numbered()
	raw := deviceOrder(regs)
	// first word on the wire is STATUSRSSI
	require.Equal(t, []byte{0xA0, 0xAA}, raw[:2])

	pb := &i2ctest.Playback{Ops: []i2ctest.IO{
		{Addr: Address, W: []byte{0x00}, R: raw},
	}}
	s := NewShadow(NewI2CBus(&i2c.Dev{Bus: pb, Addr: Address}))
	require.NoError(t, s.Read())
	for i := 0; i < NumRegisters; i++ {
		assert.Equal(t, regs[i], s.Reg[i], "register %02x", i)
	}
	require.NoError(t, pb.Close())
}

func TestShadowReadSendsPowercfgHigh(t *testing.T) {
	regs := numbered()
	pb := &i2ctest.Playback{Ops: []i2ctest.IO{
		{Addr: Address, W: []byte{0x00}, R: deviceOrder(regs)},
		{Addr: Address, W: []byte{byte(regs[POWERCFG] >> 8)}, R: deviceOrder(regs)},
	}}
	s := NewShadow(NewI2CBus(&i2c.Dev{Bus: pb, Addr: Address}))
	require.NoError(t, s.Read())
	require.NoError(t, s.Read())
	require.NoError(t, pb.Close())
}

func TestShadowWrite(t *testing.T) {
	pb := &i2ctest.Playback{Ops: []i2ctest.IO{
		{Addr: Address, W: []byte{
			0x40, 0x01, // POWERCFG
			0x80, 0xA3, // CHANNEL
			0x18, 0x00, // SYSCONFIG1
			0x00, 0x11, // SYSCONFIG2
			0x00, 0x48, // SYSCONFIG3
			0x81, 0x00, // TEST1
		}},
	}}
	s := NewShadow(NewI2CBus(&i2c.Dev{Bus: pb, Addr: Address}))
	// reserved and read-only registers never go out
	s.Reg[DEVICEID] = 0x1242
	s.Reg[TEST2] = 0xFFFF
	s.Reg[BOOTCONFIG] = 0xFFFF
	s.Reg[STATUSRSSI] = 0xFFFF
	for reg, v := range map[int]uint16{
		POWERCFG: 0x4001, CHANNEL: 0x80A3, SYSCONFIG1: 0x1800,
		SYSCONFIG2: 0x0011, SYSCONFIG3: 0x0048, TEST1: 0x8100,
	} {
		require.NoError(t, s.Set(reg, v))
	}
	require.NoError(t, s.Write())
	require.NoError(t, pb.Close())
}

func TestShadowSetGetBounds(t *testing.T) {
	s := NewShadow(nil)
	for _, reg := range []int{-1, DEVICEID, CHIPID, TEST2, BOOTCONFIG, STATUSRSSI, RDSD, NumRegisters} {
		assert.True(t, errors.Is(s.Set(reg, 1), ErrInvalidReg), "set %d", reg)
	}
	_, err := s.Get(NumRegisters)
	assert.True(t, errors.Is(err, ErrInvalidReg))
	_, err = s.Get(-1)
	assert.True(t, errors.Is(err, ErrInvalidReg))

	require.NoError(t, s.Set(SYSCONFIG2, 0x1234))
	v, err := s.Get(SYSCONFIG2)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1234), v)
}

type shortBus struct{}

func (shortBus) Write(byte, []byte) error            { return nil }
func (shortBus) Read(cmd byte, n int) ([]byte, error) { return make([]byte, n-2), nil }

type brokenBus struct{ err error }

func (b brokenBus) Write(byte, []byte) error        { return b.err }
func (b brokenBus) Read(byte, int) ([]byte, error) { return nil, b.err }

func TestShadowErrors(t *testing.T) {
	s := NewShadow(shortBus{})
	s.Reg[RDSA] = 0x1111
	err := s.Read()
	assert.True(t, errors.Is(err, ErrShortRead))
	// a failed read leaves the shadow alone
	assert.Equal(t, uint16(0x1111), s.Reg[RDSA])

	boom := errors.New("nack")
	s = NewShadow(brokenBus{boom})
	assert.True(t, errors.Is(s.Read(), boom))
	assert.True(t, errors.Is(s.Write(), boom))
}

func TestDump(t *testing.T) {
	var regs [NumRegisters]uint16
	regs[POWERCFG] = 0x4001
	var sb strings.Builder
	require.NoError(t, Dump(&sb, regs))
	assert.Contains(t, sb.String(), "02 POWERCFG   4001 0100000000000001\n")
	assert.Contains(t, sb.String(), "0F RDSD       0000 0000000000000000\n")
}
