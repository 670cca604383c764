package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/bartgrantham/fmrds/radio"
	"github.com/bartgrantham/fmrds/rds"
	"github.com/bartgrantham/fmrds/si4703"
)

var tuneCmd = &cobra.Command{
	Use:   "tune FREQ",
	Short: "tune to a frequency, e.g. 103.8",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := si4703.ParseFreq(args[0])
		if err != nil {
			return err
		}
		s, err := openRadio(cmd, false)
		if err != nil {
			return err
		}
		defer s.Detach()
		res, err := s.Tune(f)
		if err != nil {
			return err
		}
		return printStation(cmd, s, res)
	},
}

var seekCmd = &cobra.Command{
	Use:       "seek [up|down]",
	Short:     "seek to the next station",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"up", "down"},
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := si4703.Up
		if len(args) == 1 {
			switch args[0] {
			case "up":
			case "down":
				dir = si4703.Down
			default:
				return fmt.Errorf("seek direction %q, want up or down", args[0])
			}
		}
		s, err := openRadio(cmd, false)
		if err != nil {
			return err
		}
		defer s.Detach()
		res, err := s.Seek(dir)
		if err != nil {
			return err
		}
		if !res.Found() {
			fmt.Fprintf(cmd.OutOrStdout(), "no station, stopped at %s\n", res.Freq)
			return nil
		}
		return printStation(cmd, s, res)
	},
}

func printStation(cmd *cobra.Command, s *session, res si4703.Result) error {
	ps, err := s.ProgramService()
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%9s - RSSI: %d %s\n", res.Freq, res.RSSI, ps)
	return nil
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "list every station in the band",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openRadio(cmd, false)
		if err != nil {
			return err
		}
		defer s.Detach()
		found, err := s.Scan()
		for _, st := range found {
			fmt.Fprintln(cmd.OutOrStdout(), st)
		}
		return err
	},
}

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "print RDS groups as they arrive",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := captureOptions(cmd)
		if err != nil {
			return err
		}
		s, err := openRadio(cmd, false)
		if err != nil {
			return err
		}
		defer s.Detach()
		return capture(s.Radio, c, s.cfg.RDS.RBDS, cmd.OutOrStdout())
	},
}

func captureOptions(cmd *cobra.Command) (radio.Capture, error) {
	var c radio.Capture
	var err error
	flags := cmd.Flags()
	if c.Duration, err = flags.GetDuration("duration"); err != nil {
		return c, err
	}
	if c.Interval, err = flags.GetDuration("interval"); err != nil {
		return c, err
	}
	if c.FindNew, err = flags.GetBool("new"); err != nil {
		return c, err
	}
	groups, err := flags.GetStringSlice("group")
	if err != nil {
		return c, err
	}
	for _, g := range groups {
		t, err := rds.ParseGroupType(g)
		if err != nil {
			return c, err
		}
		c.Filter = append(c.Filter, t)
	}
	return c, nil
}

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "print the tuner's registers",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openRadio(cmd, true)
		if err != nil {
			return err
		}
		defer s.Detach()
		reg, err := s.Device().ReadRegisters()
		if err != nil {
			return err
		}
		return si4703.Dump(cmd.OutOrStdout(), reg)
	},
}

var volumeCmd = &cobra.Command{
	Use:   "volume [0-15]",
	Short: "show or set the volume",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openRadio(cmd, false)
		if err != nil {
			return err
		}
		defer s.Detach()
		var v int
		if len(args) == 1 {
			n, perr := strconv.Atoi(args[0])
			if perr != nil {
				return perr
			}
			v, err = s.Device().SetVolume(n)
		} else {
			v, err = s.Device().Volume()
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "volume %d\n", v)
		return nil
	},
}

var powerCmd = &cobra.Command{
	Use:       "power [on|off]",
	Short:     "show or change the power state",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"on", "off"},
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openRadio(cmd, true)
		if err != nil {
			return err
		}
		if len(args) == 0 {
			defer s.Detach()
			fmt.Fprintln(cmd.OutOrStdout(), s.Device().State())
			return nil
		}
		switch args[0] {
		case "on":
			defer s.Detach()
			if err := ensurePowered(s.Radio, false); err != nil {
				return err
			}
			f, err := s.Device().Channel()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "on, %s\n", f)
			return nil
		case "off":
			return s.Close()
		}
		s.Detach()
		return fmt.Errorf("power %q, want on or off", args[0])
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if _, err := cfg.Radio(); err != nil {
			return err
		}
		return cfg.Write(cmd.OutOrStdout())
	},
}

func init() {
	flags := captureCmd.Flags()
	flags.Duration("duration", 5*time.Second, "how long to capture")
	flags.Duration("interval", 50*time.Millisecond, "pause between groups")
	flags.StringSlice("group", nil, "only these group types, e.g. 2A,4A")
	flags.Bool("new", false, "only group types the decoder does not interpret")
}
