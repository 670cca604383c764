/*
Package rds decodes Radio Data System groups as delivered by an FM tuner:
four 16-bit blocks, already error corrected.

* block A: 16 bit PI code; NA: encoded call sign, EU: country/coverage/program reference
* block B:
  - Group Type      : xxxx_...._...._....
  - Version         : ...._x..._...._....
  - Traffic Program : ...._.x.._...._....
  - Program Type    : ...._..xx_xxx._....
  - GT-dependent    : ...._...._...x_xxxx
* block C: GT-dependent (version B groups repeat PI here)
* block D: GT-dependent

The PI field in block A and the PTY and TP fields within block B can be
processed with every valid group.
*/
package rds

import (
	"fmt"
	"strconv"
	"strings"
)

// Blocks is one group as read from the tuner.
type Blocks struct {
	A, B, C, D uint16
}

func (b Blocks) String() string {
	return fmt.Sprintf("%04x %04x %04x %04x", b.A, b.B, b.C, b.D)
}

// GroupType is the 4-bit group type and the version bit from block B: type
// 2 version B is 2<<1 | 1. There are exactly 32 of them.
type GroupType uint8

const (
	Group0A GroupType = iota
	Group0B
	Group1A
	Group1B
	Group2A
	Group2B
	Group3A
	Group3B
	Group4A
	Group4B
	Group5A
	Group5B
	Group6A
	Group6B
	Group7A
	Group7B
	Group8A
	Group8B
	Group9A
	Group9B
	Group10A
	Group10B
	Group11A
	Group11B
	Group12A
	Group12B
	Group13A
	Group13B
	Group14A
	Group14B
	Group15A
	Group15B

	NumGroupTypes = 32
)

// TypeOf extracts the group type from block B.
func TypeOf(b uint16) GroupType {
	return GroupType(b >> 11)
}

// Type is the group type number, 0..15.
func (g GroupType) Type() int { return int(g >> 1) }

// VersionB reports whether g is a version B group.
func (g GroupType) VersionB() bool { return g&1 == 1 }

func (g GroupType) String() string {
	if g >= NumGroupTypes {
		return fmt.Sprintf("GroupType(%d)", uint8(g))
	}
	v := "A"
	if g.VersionB() {
		v = "B"
	}
	return strconv.Itoa(g.Type()) + v
}

// Name is the group's use as allocated by the standard.
func (g GroupType) Name() string {
	if g >= NumGroupTypes {
		return ""
	}
	if g.VersionB() {
		return GroupTypesB[g.Type()]
	}
	return GroupTypesA[g.Type()]
}

// Implemented reports whether the decoder interprets g; everything else
// comes back as Unrecognized.
func (g GroupType) Implemented() bool {
	switch g {
	case Group0A, Group1A, Group1B, Group2A, Group3A, Group4A, Group7A, Group10A, Group14A:
		return true
	}
	return false
}

// ParseGroupType accepts "2A", "14b" and the like.
func ParseGroupType(s string) (GroupType, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) < 2 {
		return 0, fmt.Errorf("rds: bad group type %q", s)
	}
	n, err := strconv.Atoi(s[:len(s)-1])
	if err != nil || n < 0 || n > 15 {
		return 0, fmt.Errorf("rds: bad group type %q", s)
	}
	switch s[len(s)-1] {
	case 'A':
		return GroupType(n << 1), nil
	case 'B':
		return GroupType(n<<1 | 1), nil
	}
	return 0, fmt.Errorf("rds: bad group type %q", s)
}

var GroupTypesA = [16]string{
	"Basic Tuning and Switching Information only",
	"Program Item Number and Slow Labeling Codes only",
	"Radio Text only",
	"Applications Identification for ODA only",
	"Clock Time and Date only",
	"Transparent Data Channels (32 channels) or ODA",
	"In-House Applications of ODA",
	"Radio Paging of ODA",
	"Traffic Message Channel or ODA",
	"Emergency Warning System or ODA",
	"Program Type Name",
	"Open Data Applications",
	"Open Data Applications",
	"Enhanced Radio Paging or ODA",
	"Enhanced Other Networks Information Only",
	"Defined in RBDS only",
}

var GroupTypesB = [16]string{
	"Basic Tuning and Switching Information only",
	"Program Item Number",
	"Radio Text only",
	"Open Data Applications",
	"Open Data Applications",
	"Transparent Data Channels (32 channels) or ODA",
	"In-House Applications of ODA",
	"Radio Paging of ODA",
	"Open Data Applications",
	"Open Data Applications",
	"Open Data Applications",
	"Open Data Applications",
	"Open Data Applications",
	"Open Data Applications",
	"Enhanced Other Networks Information Only",
	"Fast Switching Information only",
}
