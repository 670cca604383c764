package si4703

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"periph.io/x/conn/v3/physic"
)

// Freq is a broadcast frequency in tenths of a MHz: 1038 is 103.8 MHz.
type Freq uint16

// Frequency converts f to a periph frequency.
func (f Freq) Frequency() physic.Frequency {
	return physic.Frequency(f) * 100 * physic.KiloHertz
}

func (f Freq) String() string {
	return fmt.Sprintf("%d.%d MHz", f/10, f%10)
}

// FreqOf rounds a periph frequency to the 100 kHz grid.
func FreqOf(f physic.Frequency) Freq {
	step := 100 * physic.KiloHertz
	return Freq((f + step/2) / step)
}

// ParseFreq accepts "103.8", "103.8MHz" or "1038".
func ParseFreq(s string) (Freq, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(strings.TrimSuffix(s, "MHz"), "mhz")
	s = strings.TrimSpace(s)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFreq, s)
	}
	tenths := math.Round(v * 10)
	if !strings.Contains(s, ".") && v > 500 {
		// already in tenths
		tenths = v
	}
	if math.IsNaN(v) || tenths > math.MaxUint16 {
		return 0, fmt.Errorf("%w: %q out of range", ErrInvalidFreq, s)
	}
	return Freq(tenths), nil
}

// Band is a BAND select value with its channel limits, 100 kHz spacing.
type Band struct {
	Select uint8
	First  Freq
	Last   Freq
}

var (
	// BandEurope is 87.5-108 MHz, the chip default.
	BandEurope = Band{Select: 0, First: 875, Last: 1080}
	// BandWide is 76-108 MHz.
	BandWide = Band{Select: 1, First: 760, Last: 1080}
	// BandJapan is 76-90 MHz.
	BandJapan = Band{Select: 2, First: 760, Last: 900}
)

// BandBySelect returns the band for a BAND field value; reserved values fall
// back to BandEurope.
func BandBySelect(sel uint8) Band {
	switch sel {
	case 1:
		return BandWide
	case 2:
		return BandJapan
	}
	return BandEurope
}

// Clamp limits f to the band.
func (b Band) Clamp(f Freq) Freq {
	if f < b.First {
		return b.First
	}
	if f > b.Last {
		return b.Last
	}
	return f
}

// Contains reports whether f is inside the band.
func (b Band) Contains(f Freq) bool {
	return f >= b.First && f <= b.Last
}

// Channel converts a frequency to CHAN units, clamping it to the band first.
func (b Band) Channel(f Freq) uint16 {
	return uint16(b.Clamp(f) - b.First)
}

// Freq converts CHAN or READCHAN units back to a frequency.
func (b Band) Freq(ch uint16) Freq {
	return b.First + Freq(ch)
}

// Channels is the number of channels in the band.
func (b Band) Channels() int {
	return int(b.Last-b.First) + 1
}

func (b Band) String() string {
	return fmt.Sprintf("%s-%s", b.First, b.Last)
}
