package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bartgrantham/fmrds/si4703"
)

const sample = `
bus:
  backend: gobot
  name: "1"
  address: 0x10
  reset_pin: "16"
tuner:
  band: Wide
  frequency: 88.5
  deemphasis_75us: true
  volume: 7
  seek_wrap: true
timing:
  seek_timeout: 30s
  tune_poll: 500ms
rds:
  rbds: true
  ps_wait: 2s
`

func TestParse(t *testing.T) {
	c, err := Parse([]byte(sample))
	require.NoError(t, err)

	o := c.BusOptions()
	assert.Equal(t, "gobot", o.Backend)
	assert.Equal(t, "1", o.Bus)
	assert.Equal(t, uint16(0x10), o.Addr)
	assert.Equal(t, "16", o.ResetPin)

	assert.True(t, c.RDS.RBDS)
	rc, err := c.Radio()
	require.NoError(t, err)
	assert.Equal(t, si4703.BandWide, rc.Device.Band)
	assert.Equal(t, si4703.Freq(885), rc.Device.DefaultFrequency)
	assert.True(t, rc.Device.Deemphasis75)
	assert.Equal(t, 7, rc.Device.Volume)
	assert.True(t, rc.Device.SeekWrap)
	assert.Equal(t, 30*time.Second, rc.Device.SeekTimeout)
	assert.Equal(t, 500*time.Millisecond, rc.Device.TunePoll)
	assert.Equal(t, 2*time.Second, rc.PSWait)

	// not filled in
	assert.Nil(t, rc.Log)
	assert.Nil(t, rc.Device.Clock)
}

func TestParseEmptyKeepsDefaults(t *testing.T) {
	c, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), c)

	rc, err := c.Radio()
	require.NoError(t, err)
	assert.Equal(t, si4703.BandEurope, rc.Device.Band)
	assert.Equal(t, si4703.Freq(1038), rc.Device.DefaultFrequency)
	assert.Equal(t, "GPIO23", c.BusOptions().ResetPin)
}

func TestParseErrors(t *testing.T) {
	for name, doc := range map[string]string{
		"unknown key":   "tuner:\n  colour: red\n",
		"bad band":      "tuner:\n  band: mars\n",
		"bad frequency": "tuner:\n  frequency: loud\n",
		"bad duration":  "timing:\n  seek_poll: soon\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestRadioRejectsFrequencyOutsideBand(t *testing.T) {
	c, err := Parse([]byte("tuner:\n  band: japan\n"))
	require.NoError(t, err)
	_, err = c.Radio()
	assert.ErrorIs(t, err, si4703.ErrInvalidFreq)

	c.Tuner.Frequency = 800
	_, err = c.Radio()
	assert.NoError(t, err)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fmrds.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))
	c, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, Freq(885), c.Tuner.Frequency)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWriteReadsBack(t *testing.T) {
	c, err := Parse([]byte(sample))
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, c.Write(&buf))
	assert.Contains(t, buf.String(), "seek_timeout: 30s")

	back, err := Parse(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, c, back)
}
