// Package config reads the receiver's YAML configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bartgrantham/fmrds/internal/bus"
	"github.com/bartgrantham/fmrds/radio"
	"github.com/bartgrantham/fmrds/si4703"
)

// Freq reads "103.8", "103.8MHz" or 1038 from YAML.
type Freq si4703.Freq

func (f *Freq) UnmarshalYAML(n *yaml.Node) error {
	v, err := si4703.ParseFreq(n.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", n.Line, err)
	}
	*f = Freq(v)
	return nil
}

func (f Freq) MarshalYAML() (interface{}, error) {
	return strings.TrimSuffix(si4703.Freq(f).String(), " MHz"), nil
}

// Band reads a band name from YAML.
type Band string

var bands = map[Band]si4703.Band{
	"europe": si4703.BandEurope,
	"usa":    si4703.BandEurope,
	"wide":   si4703.BandWide,
	"japan":  si4703.BandJapan,
}

func (b Band) Band() (si4703.Band, error) {
	if b == "" {
		return si4703.BandEurope, nil
	}
	band, ok := bands[Band(strings.ToLower(string(b)))]
	if !ok {
		return si4703.Band{}, fmt.Errorf("unknown band %q", string(b))
	}
	return band, nil
}

// Config mirrors the YAML file.
type Config struct {
	Bus struct {
		Backend  string        `yaml:"backend"`
		Name     string        `yaml:"name"`
		Address  uint16        `yaml:"address"`
		ResetPin string        `yaml:"reset_pin"`
		SDIOPin  string        `yaml:"sdio_pin"`
		Pulse    time.Duration `yaml:"pulse"`
	} `yaml:"bus"`
	Tuner struct {
		Band          Band  `yaml:"band"`
		Frequency     Freq  `yaml:"frequency"`
		Deemphasis75  bool  `yaml:"deemphasis_75us"`
		Volume        int   `yaml:"volume"`
		SeekThreshold uint8 `yaml:"seek_threshold"`
		SeekSNR       uint8 `yaml:"seek_snr"`
		SeekCount     uint8 `yaml:"seek_count"`
		SeekWrap      bool  `yaml:"seek_wrap"`
		RDSVerbose    bool  `yaml:"rds_verbose"`
	} `yaml:"tuner"`
	Timing struct {
		SeekTimeout time.Duration `yaml:"seek_timeout"`
		SeekPoll    time.Duration `yaml:"seek_poll"`
		TunePolls   int           `yaml:"tune_polls"`
		TunePoll    time.Duration `yaml:"tune_poll"`
		RDSTimeout  time.Duration `yaml:"rds_timeout"`
		RDSPoll     time.Duration `yaml:"rds_poll"`
	} `yaml:"timing"`
	RDS struct {
		RBDS              bool          `yaml:"rbds"`
		DropUncorrectable bool          `yaml:"drop_uncorrectable"`
		PSWait            time.Duration `yaml:"ps_wait"`
		PSMinRSSI         uint8         `yaml:"ps_min_rssi"`
	} `yaml:"rds"`
}

// Default is the stock Raspberry Pi receiver setup.
func Default() *Config {
	c := &Config{}
	o := bus.DefaultOptions()
	c.Bus.Backend = o.Backend
	c.Bus.Name = o.Bus
	c.Bus.Address = o.Addr
	c.Bus.ResetPin = o.ResetPin
	c.Tuner.Band = "europe"
	c.Tuner.Frequency = 1038
	c.Tuner.Volume = 1
	return c
}

// LoadConfig reads the YAML configuration file over the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse reads YAML over the defaults. Unknown keys are an error.
func Parse(data []byte) (*Config, error) {
	c := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if _, err := c.Tuner.Band.Band(); err != nil {
		return nil, err
	}
	return c, nil
}

// Write renders c as YAML.
func (c *Config) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return err
	}
	return enc.Close()
}

// BusOptions returns the transport settings.
func (c *Config) BusOptions() bus.Options {
	return bus.Options{
		Backend:  c.Bus.Backend,
		Bus:      c.Bus.Name,
		Addr:     c.Bus.Address,
		ResetPin: c.Bus.ResetPin,
		SDIOPin:  c.Bus.SDIOPin,
		Pulse:    c.Bus.Pulse,
	}
}

// Radio returns the tuner and RDS settings. They are checked but not
// filled in, so the caller can still set clocks and loggers.
func (c *Config) Radio() (radio.Config, error) {
	band, err := c.Tuner.Band.Band()
	if err != nil {
		return radio.Config{}, err
	}
	rc := radio.Config{
		Device: si4703.Config{
			Band:             band,
			DefaultFrequency: si4703.Freq(c.Tuner.Frequency),
			Deemphasis75:     c.Tuner.Deemphasis75,
			Volume:           c.Tuner.Volume,
			SeekThreshold:    c.Tuner.SeekThreshold,
			SeekSNR:          c.Tuner.SeekSNR,
			SeekCount:        c.Tuner.SeekCount,
			SeekWrap:         c.Tuner.SeekWrap,
			RDSVerbose:       c.Tuner.RDSVerbose,
			SeekTimeout:      c.Timing.SeekTimeout,
			SeekPoll:         c.Timing.SeekPoll,
			TunePolls:        c.Timing.TunePolls,
			TunePoll:         c.Timing.TunePoll,
			RDSTimeout:       c.Timing.RDSTimeout,
			RDSPoll:          c.Timing.RDSPoll,
		},
		DropUncorrectable: c.RDS.DropUncorrectable,
		PSWait:            c.RDS.PSWait,
		PSMinRSSI:         c.RDS.PSMinRSSI,
	}
	check := rc
	if err := check.Validate(); err != nil {
		return radio.Config{}, err
	}
	return rc, nil
}
