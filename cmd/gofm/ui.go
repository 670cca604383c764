package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell"
	"github.com/spf13/cobra"

	"github.com/bartgrantham/fmrds/internal/figlet"
	"github.com/bartgrantham/fmrds/radio"
	"github.com/bartgrantham/fmrds/rds"
	"github.com/bartgrantham/fmrds/si4703"
)

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "full-screen tuner display",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openRadio(cmd, false)
		if err != nil {
			return err
		}
		defer s.Close()

		d := display{}
		if path, _ := cmd.Flags().GetString("font"); path != "" {
			if d.big, err = figlet.Load(path); err != nil {
				return err
			}
		}

		scr, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("couldn't open screen: %w", err)
		}
		if err = scr.Init(); err != nil {
			return fmt.Errorf("couldn't init screen: %w", err)
		}
		defer scr.Fini()
		d.setup(scr, s.Radio, s.cfg.RDS.RBDS)
		return d.run(40 * time.Millisecond)
	},
}

func init() {
	uiCmd.Flags().String("font", "", "FIGlet font (.flf) for the frequency")
}

func clearRect(scr tcell.Screen, x, y, h, w int, c rune, style tcell.Style) {
	for j := y; j < y+h; j++ {
		for i := x; i < x+w; i++ {
			scr.SetContent(i, j, c, nil, style)
		}
	}
}

func drawLines(scr tcell.Screen, x, y int, style tcell.Style, lines []string) {
	for j, line := range lines {
		for i, c := range line {
			scr.SetContent(x+i, y+j, c, nil, style)
		}
	}
}

// centered clears row y and draws s in the middle of it.
func centered(scr tcell.Screen, y int, style tcell.Style, s string) {
	w, _ := scr.Size()
	clearRect(scr, 0, y, 1, w, ' ', style)
	x := (w - len(s)) / 2
	if x < 0 {
		x = 0
	}
	drawLines(scr, x, y, style, []string{s})
}

// display is the full-screen tuner. Only run's goroutine touches the radio.
type display struct {
	scr  tcell.Screen
	r    *radio.Radio
	rbds bool

	freq   si4703.Freq
	status si4703.Status
	msg    string

	// big, when set, draws the frequency as a banner.
	big *figlet.Font

	freqStyle tcell.Style
	textStyle tcell.Style
}

func (d *display) setup(scr tcell.Screen, r *radio.Radio, rbds bool) {
	black := tcell.Color(int32(232))
	white := tcell.Color(int32(255))
	d.scr, d.r, d.rbds = scr, r, rbds
	d.freqStyle = tcell.StyleDefault.Foreground(white).Background(black).Bold(true)
	d.textStyle = tcell.StyleDefault
}

func (d *display) run(tick time.Duration) error {
	f, err := d.r.Device().Channel()
	if err != nil {
		return err
	}
	d.freq = f
	d.scr.Clear()

	event := make(chan tcell.Event, 1)
	done := make(chan struct{})
	defer close(done)
	go pollEvents(d.scr, event, done)

	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case ev := <-event:
			quit, err := d.handle(ev)
			if quit || err != nil {
				return err
			}
		case <-t.C:
			if err := d.poll(); err != nil {
				return err
			}
		}
		d.draw()
	}
}

// pollEvents forwards screen events until the screen is finalized or done
// is closed.
func pollEvents(scr tcell.Screen, event chan<- tcell.Event, done <-chan struct{}) {
	for {
		ev := scr.PollEvent()
		if ev == nil {
			return
		}
		select {
		case event <- ev:
		case <-done:
			return
		}
	}
}

// poll reads the chip once, decoding any group it holds.
func (d *display) poll() error {
	st, _, _, err := d.r.Poll()
	if err != nil {
		return err
	}
	d.status = st
	return nil
}

// handle acts on one event and reports whether the display should close.
func (d *display) handle(ev tcell.Event) (bool, error) {
	key, ok := ev.(*tcell.EventKey)
	if !ok {
		if _, resized := ev.(*tcell.EventResize); resized {
			d.scr.Clear()
		}
		return false, nil
	}
	band := d.r.Device().Band()
	switch key.Key() {
	case tcell.KeyCtrlC, tcell.KeyEscape:
		return true, nil
	case tcell.KeyUp:
		f := d.freq + 1
		if f > band.Last {
			f = band.First
		}
		return false, d.tune(f)
	case tcell.KeyDown:
		f := d.freq - 1
		if f < band.First {
			f = band.Last
		}
		return false, d.tune(f)
	case tcell.KeyRight:
		return false, d.seek(si4703.Up)
	case tcell.KeyLeft:
		return false, d.seek(si4703.Down)
	case tcell.KeyRune:
		switch key.Rune() {
		case 'q':
			return true, nil
		case '+', '=':
			return false, d.volume(1)
		case '-':
			return false, d.volume(-1)
		}
	}
	return false, nil
}

func (d *display) tune(f si4703.Freq) error {
	res, err := d.r.Tune(f)
	if err != nil {
		return err
	}
	d.freq = res.Freq
	d.msg = ""
	return nil
}

func (d *display) seek(dir si4703.Direction) error {
	d.msg = "seeking " + dir.String()
	d.draw()
	res, err := d.r.Seek(dir)
	if err != nil {
		return err
	}
	d.freq = res.Freq
	d.msg = ""
	if !res.Found() {
		d.msg = "no station"
	}
	return nil
}

func (d *display) volume(delta int) error {
	v, err := d.r.Device().Volume()
	if err != nil {
		return err
	}
	if v, err = d.r.Device().SetVolume(v + delta); err != nil {
		return err
	}
	d.msg = fmt.Sprintf("volume %d", v)
	return nil
}

func (d *display) draw() {
	st := d.r.Snapshot()
	rdsr, stereo, traffic := ' ', "Mono  ", ' '
	if d.status.RDSReady {
		rdsr = 'X'
	}
	if d.status.Stereo {
		stereo = "Stereo"
	}
	if st.TP {
		traffic = 'T'
	}

	// y is the last row of the frequency
	y := 2
	if d.big != nil {
		lines := d.big.Render(strings.TrimSuffix(d.freq.String(), " MHz"))
		w, _ := d.scr.Size()
		clearRect(d.scr, 0, y, len(lines), w, ' ', d.freqStyle)
		drawLines(d.scr, (w-figlet.Width(lines))/2, y, d.freqStyle, lines)
		y += len(lines) - 1
	} else {
		centered(d.scr, y, d.freqStyle, " "+d.freq.String()+" ")
	}

	name, pty := "", ""
	if st.Seen {
		name = station(st.PI, d.rbds)
		pty = st.PTY.Name(d.rbds)
	}
	centered(d.scr, y+2, d.textStyle, name)
	centered(d.scr, y+3, d.textStyle, pty)
	centered(d.scr, y+5, d.textStyle, fmt.Sprintf("RSSI %3d  %s  %c  %c", d.status.RSSI, stereo, rdsr, traffic))

	rt := strings.TrimSpace(st.RadioText.String())
	centered(d.scr, y+7, d.textStyle, "- - - = = =  "+rt+"  = = = - - -")
	centered(d.scr, y+8, d.textStyle, "("+st.PS.Display(rds.A)+")")
	clock := ""
	if st.Clock != nil {
		clock = st.Clock.Local().Format("Mon 2006-01-02 15:04")
	}
	centered(d.scr, y+10, d.textStyle, clock)
	centered(d.scr, y+12, d.textStyle, d.msg)
	centered(d.scr, y+14, d.textStyle, "up/down tune  left/right seek  +/- volume  q quit")
	d.scr.Show()
}
