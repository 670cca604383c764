package rds

import "fmt"

// PI is the programme identification code from block A.
type PI uint16

// Country is the top nibble.
func (p PI) Country() uint8 { return uint8(p >> 12) }

// Area is the coverage-area nibble.
func (p PI) Area() uint8 { return uint8(p>>8) & 0xF }

// Reference is the programme reference byte.
func (p PI) Reference() uint8 { return uint8(p) }

// AreaName names the coverage area.
func (p PI) AreaName() string {
	switch a := p.Area(); a {
	case 0:
		return "Local"
	case 1:
		return "International"
	case 2:
		return "National"
	case 3:
		return "Supra-regional"
	default:
		return fmt.Sprintf("Regional %d", a-3)
	}
}

func (p PI) String() string {
	return fmt.Sprintf("%04X", uint16(p))
}

/*
CallSign derives North American call letters from the PI code, returning ""
when the code doesn't map to any.

See: U.S. RBDS Standard - April 1998 ("rbds1998.pdf"), pg 80-90
*/
func (p PI) CallSign() string {
	var cs [4]byte
	v := uint16(p)
	switch {
	case v&0x0F00 == 0x0000:
		// _0__ : local (unique) broadcast
		cs[0] = 'A'
		cs[1] = 'A' + byte((v>>12)&0xf)
		cs[2] = 'A' + byte((v>>4)&0xf)
		cs[3] = 'A' + byte(v&0xf)
	case v&0x00FF == 0x0000:
		// __00 : test modes
		cs[0] = 'A'
		cs[1] = 'F'
		cs[2] = 'A' + byte((v>>12)&0xf)
		cs[3] = 'A' + byte((v>>8)&0xf)
	case v >= 4096 && v <= 39247:
		// 4-letter "W" and "K" stations
		var tmp uint16
		if v < 21672 {
			cs[0] = 'K'
			tmp = v - 4096
		} else {
			cs[0] = 'W'
			tmp = v - 21672
		}
		cs[1] = 'A' + byte(tmp/676)
		tmp %= 676
		cs[2] = 'A' + byte(tmp/26)
		tmp %= 26
		cs[3] = 'A' + byte(tmp)
	default:
		return ""
	}
	return string(cs[:])
}

// ProgramType is the 5-bit PTY code.
type ProgramType uint8

// Name returns the PTY label, from the RBDS table for North America and the
// RDS one otherwise.
func (p ProgramType) Name(rbds bool) string {
	if p > 31 {
		return fmt.Sprintf("PTY %d", uint8(p))
	}
	if rbds {
		return PT_NA[p]
	}
	return PT_EU[p]
}

func (p ProgramType) String() string { return p.Name(false) }

// TrafficState combines TP and TA the way EN 50067 table 8 reads them.
func TrafficState(tp, ta bool) string {
	switch {
	case !tp && !ta:
		return "No TA"
	case !tp && ta:
		// carries EON about another programme that gives traffic information
		return "EON"
	case tp && !ta:
		return "TA & EON"
	}
	return "Active"
}

// AltFreq is one alternative frequency code from a 0A or 14A group.
type AltFreq uint8

const (
	afFirst   = 1
	afLast    = 204
	afFiller  = 205
	afCount0  = 224
	afCountN  = 249
	afLFMF    = 250
	afBaseTen = 875
)

// Tenths maps the code onto the VHF band in tenths of a MHz: 1 is 87.6.
func (f AltFreq) Tenths() uint16 { return uint16(f) + afBaseTen }

// Valid reports whether f names a frequency rather than a filler, count or
// unassigned code.
func (f AltFreq) Valid() bool { return f >= afFirst && f <= afLast }

// Count returns the number of AFs that follow for codes 224..249.
func (f AltFreq) Count() (int, bool) {
	if f >= afCount0 && f <= afCountN {
		return int(f - afCount0), true
	}
	return 0, false
}

func (f AltFreq) String() string {
	switch {
	case f.Valid():
		t := f.Tenths()
		return fmt.Sprintf("%d.%d", t/10, t%10)
	case f == afFiller:
		return "filler"
	case f == afLFMF:
		return "LF/MF follows"
	}
	if n, ok := f.Count(); ok {
		return fmt.Sprintf("%d AFs", n)
	}
	return "-"
}

var PT_NA = [32]string{
	"No program type",
	"News",
	"Information",
	"Sports",
	"Talk",
	"Rock",
	"Classic Rock",
	"Adult Hits",
	"Soft Rock",
	"Top 40",
	"Country",
	"Oldies",
	"Soft",
	"Nostalgia",
	"Jazz",
	"Classical",
	"Rhythm and Blues",
	"Soft Rhythm and Blues",
	"Language",
	"Religious Music",
	"Religious Talk",
	"Personality",
	"Public",
	"College",
	"Unassigned 24",
	"Unassigned 25",
	"Unassigned 26",
	"Unassigned 27",
	"Unassigned 28",
	"Weather",
	"Emergency Test",
	"Emergency",
}

var PT_EU = [32]string{
	"No program type",
	"News",
	"Current Affairs",
	"Information",
	"Sport",
	"Education",
	"Drama",
	"Culture",
	"Science",
	"Varied",
	"Pop Music",
	"Rock Music",
	"M.O.R. Music",
	"Light Classical",
	"Serious Classical",
	"Other Music",
	"Weather",
	"Finance",
	"Children's Programs",
	"Social Affairs",
	"Religion",
	"Phone-In",
	"Travel",
	"Leisure",
	"Jazz Music",
	"Country Music",
	"National Music",
	"Oldies Music",
	"Folk Music",
	"Documentary",
	"Alarm test",
	"Alarm",
}
