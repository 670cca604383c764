package rds

import (
	"fmt"
	"math"
	"time"
)

/*
MJDToDate converts a Modified Julian Day to a Gregorian date with the
formula of EN 50067 annex G, valid from 1900-03-01 to 2100-02-28.
weekday counts from Monday = 0.

	Y' = int((MJD - 15078.2) / 365.25)
	M' = int((MJD - 14956.1 - int(Y' * 365.25)) / 30.6001)
	D  = MJD - 14956 - int(Y' * 365.25) - int(M' * 30.6001)
	K  = 1 if M' = 14 or M' = 15, else 0
	Y  = Y' + K
	M  = M' - 1 - K * 12
*/
func MJDToDate(mjd int) (year, month, day, weekday int) {
	m := float64(mjd)
	yp := math.Floor((m - 15078.2) / 365.25)
	ydays := math.Floor(yp * 365.25)
	mp := math.Floor((m - 14956.1 - ydays) / 30.6001)
	day = mjd - 14956 - int(ydays) - int(math.Floor(mp*30.6001))
	k := 0
	if mp == 14 || mp == 15 {
		k = 1
	}
	year = 1900 + int(yp) + k
	month = int(mp) - 1 - k*12
	weekday = (mjd + 2) % 7
	return
}

// ClockTime is a decoded 4A group: UTC date and time plus the local offset.
type ClockTime struct {
	MJD     int
	Year    int
	Month   int
	Day     int
	Weekday int // Monday = 0
	Hour    int // UTC
	Minute  int
	Offset  int // local time offset in half hours, signed
}

func decodeClock(b Blocks) ClockTime {
	mjd := int(b.C>>1) | int(b.B&0x3)<<15
	c := ClockTime{
		MJD:    mjd,
		Hour:   int(b.D>>12) | int(b.C&1)<<4,
		Minute: int(b.D>>6) & 0x3F,
		Offset: int(b.D & 0x1F),
	}
	if b.D&0x20 != 0 {
		c.Offset = -c.Offset
	}
	c.Year, c.Month, c.Day, c.Weekday = MJDToDate(mjd)
	return c
}

// Valid is the commit guard: only 2000-2099 with a plausible month and day
// is trusted. Anything else is line noise or a half-received group.
func (c ClockTime) Valid() bool {
	return c.Year >= 2000 && c.Year <= 2099 &&
		c.Month >= 1 && c.Month <= 12 &&
		c.Day >= 1 && c.Day <= 31
}

// Time returns the UTC instant.
func (c ClockTime) Time() time.Time {
	return time.Date(c.Year, time.Month(c.Month), c.Day, c.Hour, c.Minute, 0, 0, time.UTC)
}

// Zone is the broadcast local time offset as a fixed zone.
func (c ClockTime) Zone() *time.Location {
	secs := c.Offset * 30 * 60
	return time.FixedZone(fmt.Sprintf("UTC%+.1f", float64(c.Offset)/2), secs)
}

// Local returns the instant in the broadcast local time.
func (c ClockTime) Local() time.Time {
	return c.Time().In(c.Zone())
}

// TimeWeekday converts Weekday to a time.Weekday.
func (c ClockTime) TimeWeekday() time.Weekday {
	return time.Weekday((c.Weekday + 1) % 7)
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d UTC %+.1fh",
		c.Year, c.Month, c.Day, c.Hour, c.Minute, float64(c.Offset)/2)
}

// ClockSink receives every valid clock-time group, for instance to set a
// real time clock.
type ClockSink interface {
	SetClock(ClockTime) error
}

// ClockSinkFunc adapts a function to ClockSink.
type ClockSinkFunc func(ClockTime) error

func (f ClockSinkFunc) SetClock(c ClockTime) error { return f(c) }
