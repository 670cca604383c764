// Command gofm drives an Si4703 FM tuner: a full-screen display, the
// numbered text menu and one-shot tune, seek, scan and RDS capture
// commands.
package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/bartgrantham/fmrds/internal/bus"
	"github.com/bartgrantham/fmrds/internal/config"
	"github.com/bartgrantham/fmrds/radio"
	"github.com/bartgrantham/fmrds/rds"
)

var rootCmd = &cobra.Command{
	Use:          "gofm",
	Short:        "FM tuner with RDS",
	Long:         `Tune an Si4703 FM receiver and decode the RDS data it receives`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if v, _ := cmd.Flags().GetBool("verbose"); v {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		}
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "YAML configuration file")
	flags.String("backend", "", "transport [periph|gobot]")
	flags.String("bus", "", "i2c bus: periph name (I2C1) or gobot number (1)")
	flags.Uint16("addr", 0, "i2c address of the tuner")
	flags.String("reset-pin", "", "reset pin, GPIO name for periph, header pin for gobot")
	flags.String("sdio-pin", "", "pin held low during reset to select 2-wire mode")
	flags.Bool("rbds", false, "North American program types and call letters")
	flags.BoolP("verbose", "v", false, "log driver activity")

	rootCmd.AddCommand(uiCmd, menuCmd, tuneCmd, seekCmd, scanCmd, captureCmd, dumpCmd, volumeCmd, powerCmd, configCmd)
}

// loadConfig reads --config, if any, and applies the flags on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Flags()
	cfg := config.Default()
	if path, _ := flags.GetString("config"); path != "" {
		var err error
		if cfg, err = config.LoadConfig(path); err != nil {
			return nil, err
		}
	}
	for name, dst := range map[string]*string{
		"backend":   &cfg.Bus.Backend,
		"bus":       &cfg.Bus.Name,
		"reset-pin": &cfg.Bus.ResetPin,
		"sdio-pin":  &cfg.Bus.SDIOPin,
	} {
		if flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}
	if flags.Changed("addr") {
		cfg.Bus.Address, _ = flags.GetUint16("addr")
	}
	if flags.Changed("rbds") {
		cfg.RDS.RBDS, _ = flags.GetBool("rbds")
	}
	return cfg, nil
}

func logf(cmd *cobra.Command) func(string, ...interface{}) {
	if v, _ := cmd.Flags().GetBool("verbose"); v {
		return log.Printf
	}
	return nil
}

// clockLogger reports every valid clock-time group.
var clockLogger = rds.ClockSinkFunc(func(c rds.ClockTime) error {
	log.Printf("rds clock: %s, local %s", c, c.Local().Format("Mon 2006-01-02 15:04"))
	return nil
})

// session is an open radio. Close powers the tuner down and releases the
// bus; Detach releases the bus and leaves the tuner playing.
type session struct {
	*radio.Radio
	cfg    *config.Config
	handle *bus.Handle
}

func (s *session) Detach() error { return s.handle.Close() }

// openRadio opens the transport and returns a radio on it, powered up unless
// off is set. A chip left running is adopted without a reset.
func openRadio(cmd *cobra.Command, off bool) (*session, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	rc, err := cfg.Radio()
	if err != nil {
		return nil, err
	}
	o := cfg.BusOptions()
	o.Log = logf(cmd)
	h, err := bus.Open(o)
	if err != nil {
		return nil, err
	}
	rc.Device.Reset = h.Reset
	rc.Closer = h
	rc.Log = logf(cmd)
	if v, _ := cmd.Flags().GetBool("verbose"); v {
		rc.ClockSink = clockLogger
	}
	r, err := radio.New(h.Bus, rc)
	if err != nil {
		h.Close()
		return nil, err
	}
	if err := ensurePowered(r, off); err != nil {
		h.Close()
		return nil, err
	}
	return &session{Radio: r, cfg: cfg, handle: h}, nil
}

func ensurePowered(r *radio.Radio, off bool) error {
	on, err := r.Powered()
	if err != nil || on || off {
		return err
	}
	return r.PowerUp()
}
