package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/bartgrantham/fmrds/radio"
	"github.com/bartgrantham/fmrds/rds"
	"github.com/bartgrantham/fmrds/si4703"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "interactive text menu",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openRadio(cmd, true)
		if err != nil {
			return err
		}
		defer s.Close()
		return runMenu(s.Radio, s.cfg.RDS.RBDS, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

const menuText = `
pu - Power up
pd - Power down
2  - Seek up
1  - Seek down
+  - Volume up
-  - Volume down
3  - List all stations
4  - Show one RDS group
5  - Show TP, PTY and PI
6  - Show RDS groups for 10 s
7  - Show unknown RDS groups for 60 s
8  - Show registers
4A - Get time from RDS
More RDS: 0A, 1A, 2A, 10A and 14A
q  - Quit
`

// quick group types are captured for 5 s, any other for a minute.
var quick = map[rds.GroupType]bool{
	rds.Group0A: true, rds.Group1A: true, rds.Group2A: true, rds.Group10A: true, rds.Group14A: true,
}

// runMenu reads one command per line from in until q or end of input. An
// operation that fails is reported and the menu carries on.
func runMenu(r *radio.Radio, rbds bool, in io.Reader, out io.Writer) error {
	sc := bufio.NewScanner(in)
	for {
		on, err := r.Powered()
		if err != nil {
			return err
		}
		fmt.Fprintln(out)
		if on {
			line, err := menuStatus(r)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, line)
		} else {
			fmt.Fprint(out, menuText)
			fmt.Fprintln(out, "\nStatus - Power Down")
			fmt.Fprintln(out, "Write pu + ENTER for start si4703-chip")
		}

		fmt.Fprint(out, ">>")
		if !sc.Scan() {
			return sc.Err()
		}
		input := strings.ToUpper(strings.TrimSpace(sc.Text()))
		switch input {
		case "Q":
			return nil
		case "":
			fmt.Fprint(out, menuText)
			continue
		case "PU":
			err = r.PowerUp()
		case "PD":
			err = r.PowerDown()
		default:
			if on {
				err = menuCommand(r, rbds, input, out)
			}
		}
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		}
	}
}

func menuStatus(r *radio.Radio) (string, error) {
	dev := r.Device()
	f, err := dev.Channel()
	if err != nil {
		return "", err
	}
	rssi, err := dev.RSSI()
	if err != nil {
		return "", err
	}
	vol, err := dev.Volume()
	if err != nil {
		return "", err
	}
	ps, err := r.ProgramService()
	if err != nil {
		return "", err
	}
	return statusLine(f, rssi, vol, ps), nil
}

func menuCommand(r *radio.Radio, rbds bool, input string, out io.Writer) error {
	dev := r.Device()
	switch input {
	case "2", "1":
		dir := si4703.Up
		if input == "1" {
			dir = si4703.Down
		}
		_, err := r.Seek(dir)
		return err
	case "+", "-":
		v, err := dev.Volume()
		if err != nil {
			return err
		}
		if input == "+" {
			v++
		} else {
			v--
		}
		_, err = dev.SetVolume(v)
		return err
	case "3":
		found, err := r.Scan()
		for _, st := range found {
			fmt.Fprintln(out, st)
		}
		return err
	case "4":
		g, ok, err := r.FetchGroup()
		if err != nil || !ok {
			return err
		}
		describe(out, g, r.Snapshot(), rbds)
		return nil
	case "5":
		g, ok, err := r.FetchGroup()
		if err != nil || !ok {
			return err
		}
		fmt.Fprintf(out, "TP: %t PTY: %s PI: %s\n", g.TP, g.PTY.Name(rbds), station(g.PI, rbds))
		return nil
	case "6":
		return capture(r, radio.Capture{Duration: 10 * time.Second}, rbds, out)
	case "7":
		return capture(r, radio.Capture{Duration: time.Minute, FindNew: true}, rbds, out)
	case "8":
		reg, err := dev.ReadRegisters()
		if err != nil {
			return err
		}
		hex := make([]string, len(reg))
		for i, v := range reg {
			hex[i] = fmt.Sprintf("%#x", v)
		}
		fmt.Fprintln(out, strings.Join(hex, ", "))
		return nil
	}
	t, err := rds.ParseGroupType(input)
	if err != nil {
		return fmt.Errorf("unknown command %q", input)
	}
	c := radio.Capture{Duration: time.Minute, Filter: []rds.GroupType{t}}
	if quick[t] {
		c.Duration = 5 * time.Second
	}
	return capture(r, c, rbds, out)
}

// capture describes every group c lets through.
func capture(r *radio.Radio, c radio.Capture, rbds bool, out io.Writer) error {
	n, err := r.Capture(c, func(g rds.Group) {
		describe(out, g, r.Snapshot(), rbds)
	})
	fmt.Fprintf(out, "\n%d groups\n", n)
	return err
}
