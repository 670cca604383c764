package rds

import (
	"sort"
	"sync"
)

// Group is one decoded group: the station identity carried by every group,
// plus the type-specific payload.
type Group struct {
	Type    GroupType
	PI      PI
	PTY     ProgramType
	TP      bool
	Payload Payload
	Blocks  Blocks
}

// State is everything accumulated since the last Reset.
type State struct {
	Seen  bool // any group since Reset
	PI    PI
	PTY   ProgramType
	TP    bool
	TA    bool
	Music bool
	DI    DecoderID

	PS        Text
	RadioText Text
	Paging    Text
	PTYN      Text

	AF      []uint16 // alternative frequencies in tenths of a MHz, sorted
	AFCount int      // announced by the 224..249 code
	Clock   *ClockTime
	PIN     *PIN
	ODA     map[GroupType]uint16 // AID by carrier group
	Groups  [NumGroupTypes]int   // groups received per type
}

func newState() State {
	return State{
		PS:        NewText(8, 2),
		RadioText: NewText(64, 4),
		Paging:    NewText(64, 4),
		PTYN:      NewText(8, 4),
	}
}

func (s *State) clone() State {
	c := *s
	c.AF = append([]uint16(nil), s.AF...)
	if s.Clock != nil {
		ct := *s.Clock
		c.Clock = &ct
	}
	if s.PIN != nil {
		p := *s.PIN
		c.PIN = &p
	}
	if s.ODA != nil {
		c.ODA = make(map[GroupType]uint16, len(s.ODA))
		for k, v := range s.ODA {
			c.ODA[k] = v
		}
	}
	return c
}

// Decoder turns blocks into groups and keeps the accumulated station state.
// Decode, Reset and Snapshot may be called from different goroutines; Reset
// is atomic with respect to Snapshot.
type Decoder struct {
	mu   sync.RWMutex
	st   State
	sink ClockSink
	logf func(format string, v ...interface{})
}

// NewDecoder returns a decoder that hands valid clock-time groups to sink,
// which may be nil.
func NewDecoder(sink ClockSink) *Decoder {
	return &Decoder{
		st:   newState(),
		sink: sink,
		logf: func(string, ...interface{}) {},
	}
}

// SetLogf sets where sink errors are reported.
func (d *Decoder) SetLogf(logf func(format string, v ...interface{})) {
	if logf != nil {
		d.logf = logf
	}
}

// Reset forgets everything accumulated. Call it whenever the tuner changes
// frequency.
func (d *Decoder) Reset() {
	d.mu.Lock()
	d.st = newState()
	d.mu.Unlock()
}

// Snapshot returns a copy of the accumulated state.
func (d *Decoder) Snapshot() State {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.st.clone()
}

// Decode interprets one group and folds it into the state. Malformed
// content never fails; at worst it leaves the state as it was.
func (d *Decoder) Decode(b Blocks) Group {
	g := Group{
		Type:   TypeOf(b.B),
		PI:     PI(b.A),
		PTY:    ProgramType(b.B>>5) & 0x1F,
		TP:     b.B&0x0400 != 0,
		Blocks: b,
	}

	d.mu.Lock()
	st := &d.st
	st.Seen = true
	st.PI, st.PTY, st.TP = g.PI, g.PTY, g.TP
	st.Groups[g.Type]++

	var clock *ClockTime
	switch g.Type {
	case Group0A:
		p := decodeBasicTuning(b)
		st.TA, st.Music = p.TA, p.Music
		st.DI.set(p.Index, p.DI)
		st.PS.Write(A, p.Index, p.Chars[:])
		st.addAF(p.AF)
		g.Payload = p
	case Group1A, Group1B:
		p := ProgrammeItem{
			PIN:        decodePIN(b.D),
			PagingCode: uint8(b.B & 0x1F),
		}
		if g.Type == Group1A {
			p.Slow = decodeSlowLabel(b.C)
		}
		st.PIN = &p.PIN
		g.Payload = p
	case Group2A:
		p := RadioTextSegment{decodeSegment(b, 0xF)}
		st.RadioText.Write(p.Flag, p.Index, p.Chars[:])
		g.Payload = p
	case Group3A:
		p := ODA{Carrier: GroupType(b.B & 0x1F), Message: b.C, AID: b.D}
		if st.ODA == nil {
			st.ODA = map[GroupType]uint16{}
		}
		st.ODA[p.Carrier] = p.AID
		g.Payload = p
	case Group4A:
		p := decodeClock(b)
		if p.Valid() {
			st.Clock = &p
			clock = &p
		}
		g.Payload = p
	case Group7A:
		p := PagingSegment{decodeSegment(b, 0xF)}
		st.Paging.Write(p.Flag, p.Index, p.Chars[:])
		g.Payload = p
	case Group10A:
		p := PTYNSegment{decodeSegment(b, 0x1)}
		st.PTYN.Write(p.Flag, p.Index, p.Chars[:])
		g.Payload = p
	case Group14A:
		g.Payload = decodeOtherNetwork(b)
	default:
		g.Payload = Unrecognized{Blocks: b}
	}
	d.mu.Unlock()

	if clock != nil && d.sink != nil {
		if err := d.sink.SetClock(*clock); err != nil {
			d.logf("rds: set clock: %v", err)
		}
	}
	return g
}

// DecoderID is the decoder identification carried one bit per 0A segment.
type DecoderID struct {
	Stereo         bool // segment 0
	ArtificialHead bool // segment 1
	Compressed     bool // segment 2
	DynamicPTY     bool // segment 3
}

func (d *DecoderID) set(index int, on bool) {
	switch index {
	case 0:
		d.Stereo = on
	case 1:
		d.ArtificialHead = on
	case 2:
		d.Compressed = on
	case 3:
		d.DynamicPTY = on
	}
}

func decodeBasicTuning(b Blocks) BasicTuning {
	return BasicTuning{
		TA:    b.B&0x10 != 0,
		Music: b.B&0x08 != 0,
		DI:    b.B&0x04 != 0,
		Index: int(b.B & 0x3),
		Chars: [2]byte{byte(b.D >> 8), byte(b.D)},
		AF:    [2]AltFreq{AltFreq(b.C >> 8), AltFreq(b.C)},
	}
}

func (s *State) addAF(afs [2]AltFreq) {
	for _, f := range afs {
		if n, ok := f.Count(); ok {
			s.AFCount = n
			continue
		}
		if !f.Valid() {
			continue
		}
		t := f.Tenths()
		i := sort.Search(len(s.AF), func(i int) bool { return s.AF[i] >= t })
		if i < len(s.AF) && s.AF[i] == t {
			continue
		}
		s.AF = append(s.AF, 0)
		copy(s.AF[i+1:], s.AF[i:])
		s.AF[i] = t
	}
}
