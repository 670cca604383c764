package rds

import "fmt"

// Payload is the group-type specific part of a decoded group.
type Payload interface {
	payload()
}

// BasicTuning is a 0A group: two characters of the programme service name,
// switching flags and an alternative frequency pair.
type BasicTuning struct {
	TA    bool
	Music bool // M/S: music rather than speech
	DI    bool // decoder identification bit for segment Index
	Index int
	Chars [2]byte
	AF    [2]AltFreq
}

// PIN is a programme item number: the scheduled start of the programme.
type PIN struct {
	Day    uint8
	Hour   uint8
	Minute uint8
}

func decodePIN(v uint16) PIN {
	return PIN{
		Day:    uint8(v>>11) & 0x1F,
		Hour:   uint8(v>>6) & 0x1F,
		Minute: uint8(v) & 0x3F,
	}
}

func (p PIN) String() string {
	return fmt.Sprintf("%02d%02d%02d", p.Day, p.Hour, p.Minute)
}

// SlowLabel is block C of a 1A group; Variant selects how Data reads.
type SlowLabel struct {
	LinkageActuator bool
	Variant         uint8
	Paging          uint8  // variant 0
	ECC             uint8  // variant 0, extended country code
	Data            uint16 // low 12 bits
}

func decodeSlowLabel(c uint16) *SlowLabel {
	return &SlowLabel{
		LinkageActuator: c&0x8000 != 0,
		Variant:         uint8(c>>12) & 0x7,
		Paging:          uint8(c>>8) & 0xF,
		ECC:             uint8(c),
		Data:            c & 0x0FFF,
	}
}

// Describe interprets the label; country is the PI country nibble the ECC
// qualifies.
func (s *SlowLabel) Describe(country uint8) string {
	switch s.Variant {
	case 0:
		if s.ECC == 0xE3 && country == 0xE {
			return "Extended country code: Sweden"
		}
		return fmt.Sprintf("Paging: %d Extended country code: %02X", s.Paging, s.ECC)
	case 1:
		return fmt.Sprintf("TMC identification: %d", s.Data)
	case 2:
		return fmt.Sprintf("Paging identification: %d", s.Data)
	case 3:
		if name, ok := languages[s.Data]; ok {
			return "Language: " + name
		}
		return fmt.Sprintf("Language: %#x", s.Data)
	case 6:
		return fmt.Sprintf("For use by broadcasters: %d", s.Data)
	case 7:
		return fmt.Sprintf("Identification of EWS channel: %d", s.Data)
	}
	return fmt.Sprintf("Not assigned: %d", s.Data)
}

// EN 50067 annex J, European languages
var languages = map[uint16]string{
	0x00: "Unknown", 0x01: "Albanian", 0x02: "Breton", 0x03: "Catalan",
	0x04: "Croatian", 0x05: "Welsh", 0x06: "Czech", 0x07: "Danish",
	0x08: "German", 0x09: "English", 0x0A: "Spanish", 0x0B: "Esperanto",
	0x0C: "Estonian", 0x0D: "Basque", 0x0E: "Faroese", 0x0F: "French",
	0x10: "Frisian", 0x11: "Irish", 0x12: "Gaelic", 0x13: "Galician",
	0x14: "Icelandic", 0x15: "Italian", 0x16: "Lappish", 0x17: "Latin",
	0x18: "Latvian", 0x19: "Luxembourgian", 0x1A: "Lithuanian", 0x1B: "Hungarian",
	0x1C: "Maltese", 0x1D: "Dutch", 0x1E: "Norwegian", 0x1F: "Occitan",
	0x20: "Polish", 0x21: "Portuguese", 0x22: "Romanian", 0x23: "Romansh",
	0x24: "Serbian", 0x25: "Slovak", 0x26: "Slovene", 0x27: "Finnish",
	0x28: "Swedish", 0x29: "Turkish", 0x2A: "Flemish", 0x2B: "Walloon",
}

// ProgrammeItem is a 1A or 1B group. Slow is nil for 1B.
type ProgrammeItem struct {
	PIN        PIN
	PagingCode uint8
	Slow       *SlowLabel
}

// TextSegment is one 4-character segment of a double-buffered text field.
type TextSegment struct {
	Flag  AB
	Index int
	Chars [4]byte
}

func decodeSegment(b Blocks, indexMask uint16) TextSegment {
	s := TextSegment{Index: int(b.B & indexMask)}
	if b.B&0x10 != 0 {
		s.Flag = B
	}
	s.Chars = [4]byte{byte(b.C >> 8), byte(b.C), byte(b.D >> 8), byte(b.D)}
	return s
}

// RadioTextSegment is a 2A group.
type RadioTextSegment struct{ TextSegment }

// PagingSegment is a 7A group.
type PagingSegment struct{ TextSegment }

// PTYNSegment is a 10A group.
type PTYNSegment struct{ TextSegment }

// ODA is a 3A group announcing an open data application: which group type
// carries it, application message bits and the AID.
type ODA struct {
	Carrier GroupType
	Message uint16
	AID     uint16
}

// OtherNetwork is a 14A group about another programme. Which fields carry
// data depends on Variant:
//
//	0-3    PS characters at Index
//	4      AF pair
//	5-9    Tuned frequency and its mapped frequency, MapIndex = Variant-5
//	10, 11 unallocated, Data
//	12     linkage information, Data
//	13     PTY and TA
//	14     PIN
//	15     reserved for broadcasters, Data
type OtherNetwork struct {
	TP      bool // TP(ON)
	PI      PI
	Variant uint8

	Index    int
	Chars    [2]byte
	AF       [2]AltFreq
	Tuned    AltFreq
	Mapped   AltFreq
	MapIndex int
	PTY      ProgramType
	TA       bool
	PIN      PIN
	Data     uint16
}

func decodeOtherNetwork(b Blocks) OtherNetwork {
	on := OtherNetwork{
		TP:      b.B&0x10 != 0,
		PI:      PI(b.D),
		Variant: uint8(b.B & 0xF),
		Data:    b.C,
	}
	hi, lo := byte(b.C>>8), byte(b.C)
	switch v := on.Variant; {
	case v <= 3:
		on.Index = int(v)
		on.Chars = [2]byte{hi, lo}
	case v == 4:
		on.AF = [2]AltFreq{AltFreq(hi), AltFreq(lo)}
	case v <= 9:
		on.Tuned, on.Mapped = AltFreq(hi), AltFreq(lo)
		on.MapIndex = int(v) - 5
	case v == 13:
		on.PTY = ProgramType(b.C >> 11)
		on.TA = b.C&1 != 0
	case v == 14:
		on.PIN = decodePIN(b.C)
	}
	return on
}

// Describe renders the variant-dependent part.
func (on OtherNetwork) Describe() string {
	switch v := on.Variant; {
	case v <= 3:
		return fmt.Sprintf("PS %d: %q", on.Index, on.Chars[:])
	case v == 4:
		return fmt.Sprintf("AF %s + %s", on.AF[0], on.AF[1])
	case v <= 9:
		return fmt.Sprintf("Tuned %s mapped FM %d: %s", on.Tuned, on.MapIndex, on.Mapped)
	case v <= 11:
		return fmt.Sprintf("Unallocated: %d", on.Data)
	case v == 12:
		return fmt.Sprintf("Linkage information: %d", on.Data)
	case v == 13:
		return fmt.Sprintf("PTY: %d TA: %t", on.PTY, on.TA)
	case v == 14:
		return "PIN: " + on.PIN.String()
	}
	return fmt.Sprintf("Reserved for broadcasters: %d", on.Data)
}

// Unrecognized is any group the decoder doesn't interpret.
type Unrecognized struct {
	Blocks Blocks
}

func (BasicTuning) payload()      {}
func (ProgrammeItem) payload()    {}
func (RadioTextSegment) payload() {}
func (PagingSegment) payload()    {}
func (PTYNSegment) payload()      {}
func (ODA) payload()              {}
func (ClockTime) payload()        {}
func (OtherNetwork) payload()     {}
func (Unrecognized) payload()     {}
