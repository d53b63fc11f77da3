package bitstream

import (
	"fmt"
	"strings"
)

// Order is the intra-byte bit numbering convention.
type Order uint8

const (
	// LSBFirst numbers bit 0 as the least-significant bit (value 0x01).
	LSBFirst Order = iota
	// MSBFirst numbers bit 0 as the most-significant bit (value 0x80).
	MSBFirst
)

// Mask returns the single-bit selector for the intra-byte position pos (0-7).
func (o Order) Mask(pos uint) byte {
	if o == MSBFirst {
		return 0x80 >> (pos % 8)
	}
	return 1 << (pos % 8)
}

func (o Order) String() string {
	switch o {
	case LSBFirst:
		return "lsb"
	case MSBFirst:
		return "msb"
	default:
		return fmt.Sprintf("Order(%d)", uint8(o))
	}
}

func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lsb", "lsb-first", "":
		return LSBFirst, nil
	case "msb", "msb-first":
		return MSBFirst, nil
	default:
		return 0, fmt.Errorf("invalid bit order %q; expected: lsb or msb", s)
	}
}
