package main

import (
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bartgrantham/fmrds/internal/figlet"
	"github.com/bartgrantham/fmrds/si4703"
	"github.com/bartgrantham/fmrds/si4703/si4703test"
)

func row(scr tcell.Screen, y int) string {
	w, _ := scr.Size()
	var b strings.Builder
	for x := 0; x < w; x++ {
		c, _, _, _ := scr.GetContent(x, y)
		b.WriteRune(c)
	}
	return strings.TrimSpace(b.String())
}

func testDisplay(t *testing.T, chip *si4703test.Chip) *display {
	t.Helper()
	r := testRadio(t, chip, nil)
	require.NoError(t, r.PowerUp())
	scr := tcell.NewSimulationScreen("")
	require.NoError(t, scr.Init())
	t.Cleanup(scr.Fini)
	d := &display{}
	d.setup(scr, r, false)
	f, err := r.Device().Channel()
	require.NoError(t, err)
	d.freq = f
	return d
}

func key(k tcell.Key, ch rune) *tcell.EventKey {
	return tcell.NewEventKey(k, ch, tcell.ModNone)
}

func TestDisplayDraw(t *testing.T) {
	chip := si4703test.NewChip()
	chip.Stations = []si4703.Freq{1038}
	d := testDisplay(t, chip)

	chip.Send(psGroups("SR P4   ")...)
	for i := 0; i < 4; i++ {
		require.NoError(t, d.poll())
	}
	d.draw()

	assert.Equal(t, "103.8 MHz", row(d.scr, 2))
	assert.Equal(t, "E0CD", row(d.scr, 4))
	assert.Equal(t, "RSSI  45  Stereo  X  T", row(d.scr, 7))
	assert.Equal(t, "(SR P4   )", row(d.scr, 10))
	assert.Equal(t, "", row(d.scr, 12))
	assert.Contains(t, row(d.scr, 16), "q quit")
}

func TestDisplayBanner(t *testing.T) {
	chip := si4703test.NewChip()
	d := testDisplay(t, chip)
	font := "flf2a$ 2 1 4 0 0\n"
	for _, c := range []rune(" !\"#$%&'()*+,-./0123456789") {
		s := string(c)
		font += s + s + "@\n" + s + "@@\n"
	}
	var err error
	d.big, err = figlet.Parse(strings.NewReader(font))
	require.NoError(t, err)

	d.draw()
	assert.Equal(t, "110033..88", row(d.scr, 2))
	assert.Equal(t, "103.8", row(d.scr, 3))
	assert.Equal(t, "RSSI   0  Mono", row(d.scr, 8))
	assert.Contains(t, row(d.scr, 17), "q quit")
}

func TestDisplayHandle(t *testing.T) {
	chip := si4703test.NewChip()
	chip.Stations = []si4703.Freq{1038}
	d := testDisplay(t, chip)
	band := d.r.Device().Band()

	quit, err := d.handle(key(tcell.KeyUp, 0))
	require.NoError(t, err)
	assert.False(t, quit)
	assert.Equal(t, si4703.Freq(1039), d.freq)

	_, err = d.handle(key(tcell.KeyLeft, 0))
	require.NoError(t, err)
	assert.Equal(t, si4703.Freq(1038), d.freq)
	assert.Equal(t, "", d.msg)

	_, err = d.handle(key(tcell.KeyRune, '+'))
	require.NoError(t, err)
	assert.Equal(t, "volume 2", d.msg)

	_, err = d.handle(key(tcell.KeyRune, '-'))
	require.NoError(t, err)
	assert.Equal(t, "volume 1", d.msg)

	_, err = d.r.Tune(band.First)
	require.NoError(t, err)
	d.freq = band.First
	_, err = d.handle(key(tcell.KeyDown, 0))
	require.NoError(t, err)
	assert.Equal(t, band.Last, d.freq)

	for _, ev := range []*tcell.EventKey{key(tcell.KeyEscape, 0), key(tcell.KeyCtrlC, 0), key(tcell.KeyRune, 'q')} {
		quit, err := d.handle(ev)
		require.NoError(t, err)
		assert.True(t, quit)
	}
}

func TestDisplayHandleError(t *testing.T) {
	chip := si4703test.NewChip()
	d := testDisplay(t, chip)
	chip.ReadErr = assert.AnError

	_, err := d.handle(key(tcell.KeyRune, '+'))
	assert.ErrorIs(t, err, assert.AnError)
}

func TestDisplayRunQuits(t *testing.T) {
	chip := si4703test.NewChip()
	d := testDisplay(t, chip)
	scr := d.scr.(tcell.SimulationScreen)
	scr.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)
	scr.InjectKey(tcell.KeyRune, 'x', tcell.ModNone)
	scr.InjectKey(tcell.KeyRune, 'y', tcell.ModNone)

	require.NoError(t, d.run(time.Hour))
	assert.Equal(t, si4703.Freq(1038), d.freq)
}

func TestPollEventsStopsWhenDone(t *testing.T) {
	scr := tcell.NewSimulationScreen("")
	require.NoError(t, scr.Init())
	defer scr.Fini()
	scr.InjectKey(tcell.KeyRune, 'x', tcell.ModNone)

	// nobody receives: only done can release the sender
	event := make(chan tcell.Event)
	done := make(chan struct{})
	close(done)
	returned := make(chan struct{})
	go func() {
		pollEvents(scr, event, done)
		close(returned)
	}()
	select {
	case <-returned:
	case <-time.After(5 * time.Second):
		t.Fatal("pollEvents still blocked after done was closed")
	}
}
