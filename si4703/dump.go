package si4703

import (
	"fmt"
	"io"
)

// Dump writes one line per register: index, name, hex and 16-bit binary.
func Dump(w io.Writer, reg [NumRegisters]uint16) error {
	for i, v := range reg {
		if _, err := fmt.Fprintf(w, "%02X %-10s %04X %016b\n", i, RegisterName(i), v, v); err != nil {
			return err
		}
	}
	return nil
}
