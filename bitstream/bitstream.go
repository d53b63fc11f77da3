// Package bitstream provides bit-granularity access to byte buffers and
// streams. By default bits follow the LSB pattern, where the least-significant
// bit of a byte is bit 0; the MSB pattern is available as an alternate order.
package bitstream

import (
	"errors"
	"fmt"
	"strings"
)

type Bit bool

const (
	Zero Bit = false
	One  Bit = true
)

// Uint8 returns 0 or 1.
func (b Bit) Uint8() uint8 {
	if b {
		return 1
	}
	return 0
}

func (b Bit) String() string {
	if b {
		return "1"
	}
	return "0"
}

// Bits is an ordered bit sequence. Index 0 is the lowest bit address.
type Bits []Bit

// String renders the sequence as '0'/'1' characters, index 0 first.
func (bs Bits) String() string {
	var sb strings.Builder
	sb.Grow(len(bs))
	for _, b := range bs {
		if b {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// Uint8s returns the sequence as integer values in {0,1}.
func (bs Bits) Uint8s() []uint8 {
	out := make([]uint8, len(bs))
	for i, b := range bs {
		out[i] = b.Uint8()
	}
	return out
}

var ErrEmpty = errors.New("empty bit string")

// InvalidBitError reports a character other than '0' or '1' in a bit string.
type InvalidBitError struct {
	Index int
	Char  rune
}

func (err InvalidBitError) Error() string {
	return fmt.Sprintf("invalid bit %q at index %d; expected: '0' or '1'", err.Char, err.Index)
}

// ParseBits parses a non-empty string of '0' and '1' characters.
func ParseBits(s string) (Bits, error) {
	if len(s) == 0 {
		return nil, ErrEmpty
	}

	bits := make(Bits, 0, len(s))
	for i, c := range s {
		switch c {
		case '0':
			bits = append(bits, Zero)
		case '1':
			bits = append(bits, One)
		default:
			return nil, InvalidBitError{Index: i, Char: c}
		}
	}

	return bits, nil
}
