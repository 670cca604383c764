package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/bartgrantham/fmrds/rds"
	"github.com/bartgrantham/fmrds/si4703"
)

// station names the programme: call letters in RBDS mode when the PI maps
// to them, else the PI code.
func station(pi rds.PI, rbds bool) string {
	if rbds {
		if cs := pi.CallSign(); cs != "" {
			return cs
		}
	}
	return pi.String()
}

// describe writes a human readable account of g, and of the text it
// completed in st.
func describe(w io.Writer, g rds.Group, st rds.State, rbds bool) {
	fmt.Fprintf(w, "\n%s %s\n", g.Type, g.Type.Name())
	fmt.Fprintf(w, "PI: %s country %X, %s, ref %d  PTY: %s  TP: %t\n",
		station(g.PI, rbds), g.PI.Country(), g.PI.AreaName(), g.PI.Reference(), g.PTY.Name(rbds), g.TP)

	switch p := g.Payload.(type) {
	case rds.BasicTuning:
		fmt.Fprintf(w, "DI: %t, MS: %t, TA: %s, Index: %d [%s]\n",
			p.DI, p.Music, rds.TrafficState(g.TP, p.TA), p.Index, printable(p.Chars[:]))
		fmt.Fprintf(w, "Programme service: %s\n", st.PS.Display(rds.A))
		fmt.Fprintf(w, "DI: stereo %t, artificial head %t, compressed %t, dynamic PTY %t\n",
			st.DI.Stereo, st.DI.ArtificialHead, st.DI.Compressed, st.DI.DynamicPTY)
		for _, af := range p.AF {
			if af.Valid() {
				fmt.Fprintf(w, "Alt. freq.: %s\n", af)
			} else if n, ok := af.Count(); ok {
				fmt.Fprintf(w, "Alt. freqs. following: %d\n", n)
			}
		}
	case rds.ProgrammeItem:
		fmt.Fprintf(w, "Programme item number: %s Radio paging codes: %d\n", p.PIN, p.PagingCode)
		if p.Slow != nil {
			fmt.Fprintf(w, "Linkage actuator: %t Variant: %d %s\n",
				p.Slow.LinkageActuator, p.Slow.Variant, p.Slow.Describe(g.PI.Country()))
		}
	case rds.RadioTextSegment:
		fmt.Fprintf(w, "RT flag: %s, index: %d %s\n", p.Flag, p.Index, printable(p.Chars[:]))
		fmt.Fprintf(w, "RadioText A: %s\n", strings.TrimRight(st.RadioText.Display(rds.A), " "))
		fmt.Fprintf(w, "RadioText B: %s\n", strings.TrimRight(st.RadioText.Display(rds.B), " "))
	case rds.ODA:
		fmt.Fprintf(w, "Open data application %04X on %s, message %04X\n", p.AID, p.Carrier, p.Message)
	case rds.ClockTime:
		if p.Valid() {
			fmt.Fprintf(w, "Clock: %s, local %s\n", p, p.Local().Format("Mon 2006-01-02 15:04"))
		} else {
			fmt.Fprintf(w, "Clock: invalid, MJD %d\n", p.MJD)
		}
	case rds.PagingSegment:
		fmt.Fprintf(w, "Paging flag: %s, index: %d %s\n", p.Flag, p.Index, printable(p.Chars[:]))
		fmt.Fprintf(w, "Radio paging: %s\n", strings.TrimRight(st.Paging.Current(), " "))
	case rds.PTYNSegment:
		fmt.Fprintf(w, "PTYN flag: %s, index: %d %s\n", p.Flag, p.Index, printable(p.Chars[:]))
		fmt.Fprintf(w, "Programme type name: %s\n", st.PTYN.Current())
	case rds.OtherNetwork:
		fmt.Fprintf(w, "Other network %s TP: %t variant %d: %s\n", station(p.PI, rbds), p.TP, p.Variant, p.Describe())
	case rds.Unrecognized:
		b := p.Blocks
		for _, blk := range []struct {
			name string
			v    uint16
		}{{"RDSA", b.A}, {"RDSB", b.B}, {"RDSC", b.C}, {"RDSD", b.D}} {
			fmt.Fprintf(w, "%s bin: %016b\n", blk.name, blk.v)
		}
	}
}

// printable maps control characters to spaces, quoted.
func printable(chars []byte) string {
	out := make([]byte, len(chars))
	for i, c := range chars {
		if c < 0x20 || c >= 0x7F {
			c = ' '
		}
		out[i] = c
	}
	return "\"" + string(out) + "\""
}

// statusLine is the one-line summary the text menu prints between commands.
func statusLine(f si4703.Freq, rssi uint8, vol int, ps string) string {
	return fmt.Sprintf("%9s - RSSI: %d Vol: %d %s", f, rssi, vol, ps)
}
