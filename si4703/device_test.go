package si4703_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bartgrantham/fmrds/si4703"
	"github.com/bartgrantham/fmrds/si4703/si4703test"
)

func newDevice(t *testing.T, bus si4703.Bus, mod func(*si4703.Config)) (*si4703.Device, *si4703test.Clock) {
	t.Helper()
	clock := si4703test.NewClock(time.Date(2024, 12, 24, 12, 0, 0, 0, time.UTC))
	cfg := si4703.Config{Clock: clock, Logf: t.Logf}
	if mod != nil {
		mod(&cfg)
	}
	d, err := si4703.New(bus, cfg)
	require.NoError(t, err)
	return d, clock
}

func poweredDevice(t *testing.T, chip *si4703test.Chip) (*si4703.Device, *si4703test.Clock) {
	t.Helper()
	d, clock := newDevice(t, chip, nil)
	require.NoError(t, d.PowerUp())
	clock.Reset()
	return d, clock
}

func TestPowerUp(t *testing.T) {
	chip := si4703test.NewChip()
	resets := 0
	d, clock := newDevice(t, chip, func(c *si4703.Config) {
		c.Reset = func() error { resets++; return nil }
	})
	assert.Equal(t, si4703.PoweredDown, d.State())

	require.NoError(t, d.PowerUp())
	assert.Equal(t, 1, resets)
	assert.Equal(t, si4703.Ready, d.State())

	// oscillator first, then the configuration
	require.GreaterOrEqual(t, len(chip.Writes), 2)
	assert.Equal(t, []byte{0x81, 0x00}, chip.Writes[0][10:12])
	cfg := chip.Writes[1]
	assert.Equal(t, []byte{0x40, 0x01}, cfg[0:2], "POWERCFG")
	assert.Equal(t, []byte{0x18, 0x00}, cfg[4:6], "SYSCONFIG1")
	assert.Equal(t, []byte{0x00, 0x11}, cfg[6:8], "SYSCONFIG2")
	assert.Equal(t, []byte{0x00, 0x48}, cfg[8:10], "SYSCONFIG3")

	sleeps := clock.Sleeps()
	require.GreaterOrEqual(t, len(sleeps), 2)
	assert.Equal(t, 500*time.Millisecond, sleeps[0])
	assert.Equal(t, 110*time.Millisecond, sleeps[1])

	// initial tune to 103.8 and released
	f, err := d.Channel()
	require.NoError(t, err)
	assert.Equal(t, si4703.Freq(1038), f)
	assert.False(t, si4703.TUNE.Bool(chip.Register(si4703.CHANNEL)))

	on, err := d.Powered()
	require.NoError(t, err)
	assert.True(t, on)
}

func TestPowerUpResetFails(t *testing.T) {
	boom := errors.New("no gpio")
	d, _ := newDevice(t, si4703test.NewChip(), func(c *si4703.Config) {
		c.Reset = func() error { return boom }
	})
	assert.True(t, errors.Is(d.PowerUp(), boom))
	assert.Equal(t, si4703.PoweredDown, d.State())
}

func TestPowerUpInitialTuneTimesOut(t *testing.T) {
	chip := si4703test.NewChip()
	chip.CompleteAfter = -1
	d, _ := newDevice(t, chip, nil)

	err := d.PowerUp()
	assert.True(t, errors.Is(err, si4703.ErrTimeout))
	assert.Equal(t, si4703.Ready, d.State(), "chip is enabled, device stays usable")
	assert.True(t, si4703.ENABLE.Bool(chip.Register(si4703.POWERCFG)))
	assert.False(t, si4703.TUNE.Bool(chip.Register(si4703.CHANNEL)))

	// the timeout is recoverable
	chip.CompleteAfter = 3
	res, err := d.Tune(1038)
	require.NoError(t, err)
	assert.True(t, res.Complete)

	require.NoError(t, d.PowerDown())
	assert.True(t, si4703.DISABLE.Bool(chip.Register(si4703.POWERCFG)))
	assert.Equal(t, si4703.PoweredDown, d.State())
}

func TestPowerDown(t *testing.T) {
	chip := si4703test.NewChip()
	d, clock := poweredDevice(t, chip)
	chip.Reg[si4703.SYSCONFIG1] |= 0x003F

	require.NoError(t, d.PowerDown())
	assert.Equal(t, si4703.PoweredDown, d.State())
	assert.Equal(t, []time.Duration{110 * time.Millisecond}, clock.Sleeps())

	w := chip.Writes[len(chip.Writes)-1]
	pc := si4703.DecodePowerConfig(uint16(w[0])<<8 | uint16(w[1]))
	assert.True(t, pc.Enable)
	assert.True(t, pc.Disable)
	assert.False(t, pc.MuteDisable)
	assert.Equal(t, uint16(0), (uint16(w[4])<<8|uint16(w[5]))&0x003F, "GPIO cleared")
	assert.True(t, si4703.DecodeTest1(uint16(w[10])<<8|uint16(w[11])).AudioHighZ)

	on, err := d.Powered()
	require.NoError(t, err)
	assert.False(t, on)

	_, err = d.Seek(si4703.Up)
	assert.True(t, errors.Is(err, si4703.ErrNotPowered))
	_, err = d.Tune(1000)
	assert.True(t, errors.Is(err, si4703.ErrNotPowered))
}

func TestPoweredAdoptsRunningChip(t *testing.T) {
	chip := si4703test.NewChip()
	chip.Reg[si4703.POWERCFG] = 0x4001
	d, _ := newDevice(t, chip, nil)
	on, err := d.Powered()
	require.NoError(t, err)
	assert.True(t, on)
	assert.Equal(t, si4703.Ready, d.State())
}

func TestSeekCompletesWithinPolls(t *testing.T) {
	for _, n := range []int{1, 3, 7} {
		chip := si4703test.NewChip()
		chip.Stations = []si4703.Freq{915, 1038, 1062}
		d, clock := poweredDevice(t, chip)
		chip.CompleteAfter = n
		reads := chip.Reads

		res, err := d.Seek(si4703.Up)
		require.NoError(t, err)
		assert.True(t, res.Found())
		assert.Equal(t, si4703.Freq(1062), res.Freq)
		assert.Equal(t, uint8(45), res.RSSI)

		// one read to prepare, n polls, one read to release
		assert.Equal(t, n+2, chip.Reads-reads, "n=%d", n)
		assert.Equal(t, n-1, clock.Count(100*time.Millisecond))
		assert.False(t, si4703.SEEK.Bool(chip.Register(si4703.POWERCFG)), "SEEK cleared")
		assert.False(t, si4703.STC.Bool(chip.Register(si4703.STATUSRSSI)), "STC dropped")
		assert.Equal(t, si4703.Ready, d.State())
	}
}

func TestSeekDirectionAndBandLimit(t *testing.T) {
	chip := si4703test.NewChip()
	chip.Stations = []si4703.Freq{915, 1038}
	d, _ := poweredDevice(t, chip)

	res, err := d.Seek(si4703.Down)
	require.NoError(t, err)
	assert.Equal(t, si4703.Freq(915), res.Freq)
	w := chip.Writes[len(chip.Writes)-2]
	assert.False(t, si4703.SEEKUP.Bool(uint16(w[0])<<8|uint16(w[1])))

	res, err = d.Seek(si4703.Down)
	require.NoError(t, err, "band limit is not an error")
	assert.True(t, res.Complete)
	assert.True(t, res.BandLimit)
	assert.False(t, res.Found())
	assert.Equal(t, si4703.Freq(875), res.Freq)
}

func TestSeekWraps(t *testing.T) {
	chip := si4703test.NewChip()
	chip.Stations = []si4703.Freq{915}
	d, clock := newDevice(t, chip, func(c *si4703.Config) { c.SeekWrap = true })
	require.NoError(t, d.PowerUp())
	clock.Reset()

	res, err := d.Seek(si4703.Up)
	require.NoError(t, err)
	assert.True(t, res.Found())
	assert.Equal(t, si4703.Freq(915), res.Freq)
}

func TestSeekTimesOut(t *testing.T) {
	chip := si4703test.NewChip()
	d, clock := poweredDevice(t, chip)
	chip.CompleteAfter = -1
	start := clock.Now()

	res, err := d.Seek(si4703.Up)
	assert.True(t, errors.Is(err, si4703.ErrTimeout))
	assert.False(t, res.Complete)
	elapsed := clock.Now().Sub(start)
	assert.GreaterOrEqual(t, elapsed, 60*time.Second)
	assert.Less(t, elapsed, 61*time.Second)
	assert.False(t, si4703.SEEK.Bool(chip.Register(si4703.POWERCFG)), "SEEK cleared after timeout")
	assert.Equal(t, si4703.Ready, d.State())
}

func TestTune(t *testing.T) {
	chip := si4703test.NewChip()
	chip.Stations = []si4703.Freq{1000}
	d, clock := poweredDevice(t, chip)

	res, err := d.Tune(1000)
	require.NoError(t, err)
	assert.True(t, res.Found())
	assert.Equal(t, si4703.Freq(1000), res.Freq)
	assert.Equal(t, 2, clock.Count(time.Second))
	assert.False(t, si4703.TUNE.Bool(chip.Register(si4703.CHANNEL)))

	// clamped to the band
	res, err = d.Tune(1200)
	require.NoError(t, err)
	assert.Equal(t, si4703.Freq(1080), res.Freq)
}

func TestTuneTimesOut(t *testing.T) {
	chip := si4703test.NewChip()
	d, clock := poweredDevice(t, chip)
	chip.CompleteAfter = -1

	_, err := d.Tune(990)
	assert.True(t, errors.Is(err, si4703.ErrTimeout))
	assert.Equal(t, 10, clock.Count(time.Second))
	assert.False(t, si4703.TUNE.Bool(chip.Register(si4703.CHANNEL)), "TUNE cleared after timeout")
}

func TestTuneReleaseFailure(t *testing.T) {
	chip := si4703test.NewChip()
	bus := &flakyBus{Chip: chip}
	d, _ := newDevice(t, bus, nil)
	require.NoError(t, d.PowerUp())
	chip.CompleteAfter = -1

	// the trigger write goes out, the release write fails
	boom := errors.New("bus gone")
	bus.failAfter, bus.err = 1, boom
	res, err := d.Tune(990)
	assert.False(t, res.Complete)
	assert.True(t, errors.Is(err, si4703.ErrTimeout))
	assert.True(t, errors.Is(err, boom))
}

type flakyBus struct {
	*si4703test.Chip
	failAfter int
	err       error
}

func (b *flakyBus) Write(first byte, rest []byte) error {
	if b.err != nil {
		if b.failAfter == 0 {
			return b.err
		}
		b.failAfter--
	}
	return b.Chip.Write(first, rest)
}

func TestVolume(t *testing.T) {
	chip := si4703test.NewChip()
	d, _ := poweredDevice(t, chip)

	v, err := d.Volume()
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	for in, want := range map[int]int{7: 7, -3: 0, 99: 15} {
		got, err := d.SetVolume(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		v, err = d.Volume()
		require.NoError(t, err)
		assert.Equal(t, want, v)
	}
}

func TestReadGroup(t *testing.T) {
	chip := si4703test.NewChip()
	d, clock := poweredDevice(t, chip)

	chip.Send([4]uint16{0xD314, 0x0408, 0xE0CD, 0x5352})
	g, ok, err := d.ReadGroup(0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, [4]uint16{0xD314, 0x0408, 0xE0CD, 0x5352}, g.Blocks)
	assert.Empty(t, clock.Sleeps())

	// nothing queued: gives up after a second of 50 ms polls
	start := clock.Now()
	_, ok, err = d.ReadGroup(0)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.InDelta(t, float64(time.Second), float64(clock.Now().Sub(start)), float64(50*time.Millisecond))
}

func TestPoll(t *testing.T) {
	chip := si4703test.NewChip()
	chip.Stations = []si4703.Freq{1038}
	d, clock := poweredDevice(t, chip)

	st, _, ok, err := d.Poll()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, uint8(45), st.RSSI)
	assert.True(t, st.Stereo)

	chip.Reg[si4703.READCHAN] = si4703.BLERB.Set(chip.Reg[si4703.READCHAN], 2)
	chip.Send([4]uint16{0xD314, 0x0408, 0xE0CD, 0x5352})
	st, g, ok, err := d.Poll()
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, st.RDSReady)
	assert.Equal(t, uint16(0x0408), g.Blocks[1])
	assert.Equal(t, uint8(2), g.Errors[1])
	assert.Empty(t, clock.Sleeps())
	assert.Equal(t, 0, chip.Pending())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "seeking", si4703.Seeking.String())
	assert.Equal(t, "State(42)", si4703.State(42).String())
	assert.Equal(t, "up", si4703.Up.String())
}

func TestConfigValidate(t *testing.T) {
	c := si4703.DefaultConfig()
	assert.Equal(t, si4703.BandEurope, c.Band)
	assert.Equal(t, si4703.Freq(1038), c.DefaultFrequency)
	assert.Equal(t, 60*time.Second, c.SeekTimeout)
	assert.Equal(t, 10, c.TunePolls)

	bad := si4703.Config{Band: si4703.BandJapan, DefaultFrequency: 1038}
	assert.True(t, errors.Is(bad.Validate(), si4703.ErrInvalidFreq))
	bad = si4703.Config{Volume: 16}
	assert.Error(t, bad.Validate())
	bad = si4703.Config{SeekSNR: 16}
	assert.Error(t, bad.Validate())
}
