// Package figlet reads FIGlet (.flf) fonts and renders banner text with them.
package figlet

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// See: figfont.txt

// Font is a parsed FIGfont. Only the required characters are loaded.
type Font struct {
	Name      string
	Height    int
	Baseline  int
	MaxLength int
	OldLayout int
	Comments  int
	Direction int
	Layout    int
	CodeTags  int

	hardblank byte
	chars     map[rune][]string
}

var ErrParse = errors.New("couldn't parse FIGfont")

// charorder is the order the required characters appear in after the
// comment lines.
var charorder = ` !"#$%&'()*+,-./` + `0123456789:;<=>?` + `@ABCDEFGHIJKLMNO` +
	`PQRSTUVWXYZ[\]^_` + "`abcdefghijklmno" + "pqrstuvwxyz{|}~" +
	"ÄÖÜäöüß"

func (f *Font) String() string {
	return f.Name
}

// Load reads the font at path.
func Load(path string) (*Font, error) {
	r, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	f, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	f.Name = path
	return f, nil
}

// Parse reads a font. A font that ends before its last required character
// only carries the characters it has.
func Parse(r io.Reader) (*Font, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrParse
	}

	header := strings.Fields(lines[0])
	if len(header) < 2 || len(header[0]) < 6 || header[0][0:5] != "flf2a" {
		return nil, fmt.Errorf("%w: bad header %q", ErrParse, lines[0])
	}
	f := Font{hardblank: header[0][5]}
	params := []*int{&f.Height, &f.Baseline, &f.MaxLength, &f.OldLayout, &f.Comments, &f.Direction, &f.Layout, &f.CodeTags}
	for i, s := range header[1:] {
		if i == len(params) {
			break
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("%w: header: %v", ErrParse, err)
		}
		*params[i] = n
	}
	if f.Height < 1 {
		return nil, fmt.Errorf("%w: height %d", ErrParse, f.Height)
	}

	f.chars = map[rune][]string{}
	for i, c := range []rune(charorder) {
		idx := 1 + f.Comments + i*f.Height
		if idx+f.Height > len(lines) {
			break
		}
		first := lines[idx]
		if first == "" {
			return nil, fmt.Errorf("%w: empty line %d", ErrParse, idx+1)
		}
		endmark := first[len(first)-1:]
		for j := 0; j < f.Height; j++ {
			f.chars[c] = append(f.chars[c], strings.TrimRight(lines[idx+j], endmark))
		}
	}
	return &f, nil
}

// Render lays the characters of s side by side, one string per row. It does
// no kerning or smushing; characters the font lacks are skipped.
func (f *Font) Render(s string) []string {
	out := make([]string, f.Height)
	blank := string([]byte{f.hardblank})
	for _, c := range s {
		fig, ok := f.chars[c]
		if !ok {
			continue
		}
		for i := range out {
			out[i] += strings.ReplaceAll(fig[i], blank, " ")
		}
	}
	for i := range out {
		out[i] = strings.TrimRight(out[i], " ")
	}
	return out
}

// Width is the length of the longest row of lines.
func Width(lines []string) int {
	w := 0
	for _, l := range lines {
		if n := len([]rune(l)); n > w {
			w = n
		}
	}
	return w
}
