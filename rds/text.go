package rds

import "strings"

// AB selects one of a text field's two buffers, following the A/B flag
// the broadcaster toggles when the text changes.
type AB uint8

const (
	A AB = iota
	B
)

func (ab AB) String() string {
	if ab == B {
		return "B"
	}
	return "A"
}

// Unset fills a character slot nothing has been received for. It is never a
// printable character; use IsSet rather than comparing against it.
const Unset byte = 0x00

// MaxText is the widest text field, RadioText and paging.
const MaxText = 64

// Text accumulates one double-buffered RDS text field segment by segment.
// Buffers are fixed arrays so that copying a Text copies its content.
//
// A segment written with the same flag as the previous one only touches its
// own slots. When the flag changes, the buffer about to be written is cleared
// first so the new message can't blend with what was there before; the
// other buffer keeps its last content.
type Text struct {
	width   int
	segment int
	flag    AB
	buf     [2][MaxText]byte
	set     [2][MaxText]bool
}

// NewText returns an empty field width characters wide, written segment
// characters at a time.
func NewText(width, segment int) Text {
	if width > MaxText {
		width = MaxText
	}
	return Text{width: width, segment: segment}
}

// Width is the field width in characters.
func (t *Text) Width() int { return t.width }

// Segments is how many segments fill the field.
func (t *Text) Segments() int {
	if t.segment == 0 {
		return 0
	}
	return t.width / t.segment
}

// Flag returns the flag of the last write.
func (t *Text) Flag() AB { return t.flag }

// Write stores chars at segment index of the buffer selected by ab. It
// returns false, changing nothing, if the segment doesn't fit.
func (t *Text) Write(ab AB, index int, chars []byte) bool {
	if ab > B || index < 0 || len(chars) > t.segment {
		return false
	}
	off := index * t.segment
	if off+len(chars) > t.width {
		return false
	}
	if ab != t.flag {
		t.clear(ab)
	}
	for i, c := range chars {
		t.buf[ab][off+i] = c
		t.set[ab][off+i] = true
	}
	t.flag = ab
	return true
}

func (t *Text) clear(ab AB) {
	t.buf[ab] = [MaxText]byte{}
	t.set[ab] = [MaxText]bool{}
}

// Reset clears both buffers and the flag.
func (t *Text) Reset() {
	t.clear(A)
	t.clear(B)
	t.flag = A
}

// IsSet reports whether slot i of buffer ab has been received.
func (t *Text) IsSet(ab AB, i int) bool {
	if ab > B || i < 0 || i >= t.width {
		return false
	}
	return t.set[ab][i]
}

// Received counts the received slots of buffer ab.
func (t *Text) Received(ab AB) int {
	n := 0
	for i := 0; i < t.width; i++ {
		if t.set[ab][i] {
			n++
		}
	}
	return n
}

// Complete reports whether every slot of buffer ab has been received.
func (t *Text) Complete(ab AB) bool {
	return t.width > 0 && t.Received(ab) == t.width
}

// Buffer returns the raw characters of buffer ab, Unset where nothing arrived.
func (t *Text) Buffer(ab AB) []byte {
	b := make([]byte, t.width)
	copy(b, t.buf[ab][:t.width])
	return b
}

// Display renders buffer ab at full width with every unprintable character,
// Unset included, shown as a space.
func (t *Text) Display(ab AB) string {
	b := t.Buffer(ab)
	for i, c := range b {
		if c < 0x20 || c >= 0x7F {
			b[i] = ' '
		}
	}
	return string(b)
}

// Current renders the most recently written buffer.
func (t *Text) Current() string { return t.Display(t.flag) }

// String is the current text up to the first CR, trailing spaces trimmed.
func (t *Text) String() string {
	b := t.Buffer(t.flag)
	for i, c := range b {
		// 0x0d == CR (carriage return) ends a message early
		if c == 0x0d {
			b = b[:i]
			break
		}
	}
	for i, c := range b {
		if c < 0x20 || c >= 0x7F {
			b[i] = ' '
		}
	}
	return strings.TrimRight(string(b), " ")
}
