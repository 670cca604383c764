package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bartgrantham/fmrds/radio"
	"github.com/bartgrantham/fmrds/si4703"
	"github.com/bartgrantham/fmrds/si4703/si4703test"
)

const pi = 0xE0CD

func psGroups(name string) [][4]uint16 {
	var gs [][4]uint16
	for i := 0; i < 4; i++ {
		chars := uint16(name[i*2])<<8 | uint16(name[i*2+1])
		gs = append(gs, [4]uint16{pi, 0x0408 | uint16(i), 0xE0CD, chars})
	}
	return gs
}

func testRadio(t *testing.T, chip *si4703test.Chip, mod func(*radio.Config)) *radio.Radio {
	t.Helper()
	cfg := radio.Config{Log: t.Logf}
	cfg.Device.Clock = si4703test.NewClock(time.Date(2024, 12, 24, 12, 0, 0, 0, time.UTC))
	if mod != nil {
		mod(&cfg)
	}
	r, err := radio.New(chip, cfg)
	require.NoError(t, err)
	return r
}

func TestMenuPowerCycle(t *testing.T) {
	chip := si4703test.NewChip()
	chip.Stations = []si4703.Freq{1038}
	r := testRadio(t, chip, nil)

	var out bytes.Buffer
	require.NoError(t, runMenu(r, false, strings.NewReader("2\npu\npd\n"), &out))

	s := out.String()
	assert.Equal(t, 3, strings.Count(s, "Status - Power Down"))
	assert.Contains(t, s, "Write pu + ENTER for start si4703-chip")
	assert.Contains(t, s, "103.8 MHz - RSSI: 45 Vol: 1")
	assert.NotContains(t, s, "error")
	assert.Equal(t, si4703.PoweredDown, r.Device().State())
}

func TestMenuCommands(t *testing.T) {
	chip := si4703test.NewChip()
	chip.Stations = []si4703.Freq{1038}
	r := testRadio(t, chip, nil)
	require.NoError(t, r.PowerUp())
	for i := 0; i < 3; i++ {
		chip.Send(psGroups("SR P4   ")...)
	}

	var out bytes.Buffer
	require.NoError(t, runMenu(r, false, strings.NewReader("8\n+\nxyz\n\nq\nnever\n"), &out))

	s := out.String()
	assert.Contains(t, s, "103.8 MHz - RSSI: 45 Vol: 1 SR P4   ")
	assert.Contains(t, s, "103.8 MHz - RSSI: 45 Vol: 2 SR P4   ")
	assert.Contains(t, s, "0x1242, 0x1253, ")
	assert.Contains(t, s, `error: unknown command "XYZ"`)
	assert.Contains(t, s, "q  - Quit")
	assert.NotContains(t, s, "NEVER")
}

func TestMenuCaptureGroupType(t *testing.T) {
	chip := si4703test.NewChip()
	r := testRadio(t, chip, nil)
	require.NoError(t, r.PowerUp())
	chip.Send(psGroups("SR P4   ")[0], [4]uint16{pi, 0x2400, 0x4E6F, 0x7720})

	var out bytes.Buffer
	require.NoError(t, menuCommand(r, false, "2A", &out))

	s := out.String()
	assert.Contains(t, s, "2A Radio Text only")
	assert.Contains(t, s, `RT flag: A, index: 0 "Now "`)
	assert.NotContains(t, s, "\n0A ")
	assert.True(t, strings.HasSuffix(s, "\n1 groups\n"))
}

func TestMenuSeek(t *testing.T) {
	chip := si4703test.NewChip()
	chip.Stations = []si4703.Freq{900, 1038}
	r := testRadio(t, chip, nil)
	require.NoError(t, r.PowerUp())

	var out bytes.Buffer
	require.NoError(t, menuCommand(r, false, "1", &out))
	f, err := r.Device().Channel()
	require.NoError(t, err)
	assert.Equal(t, si4703.Freq(900), f)

	require.NoError(t, menuCommand(r, false, "3", &out))
	assert.Equal(t, " 90.0 MHz - RSSI: 45\n103.8 MHz - RSSI: 45\n", out.String())
}
