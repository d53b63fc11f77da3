// Package transport defines the memory areas a PLC exposes for byte-granular
// access and the errors shared by the transport implementations.
package transport

import (
	"fmt"
	"strconv"
	"strings"
)

type AreaKind uint8

const (
	// Inputs is the process-image input area (PE / I).
	Inputs AreaKind = iota + 1
	// Outputs is the process-image output area (PA / Q).
	Outputs
	// Merkers is the flag memory area (MK / M).
	Merkers
	// DataBlock is a numbered data block (DB).
	DataBlock
)

// Area identifies a byte-addressable memory area. DBNumber is only meaningful
// for DataBlock.
type Area struct {
	Kind     AreaKind
	DBNumber int
}

var (
	PE = Area{Kind: Inputs}
	PA = Area{Kind: Outputs}
	MK = Area{Kind: Merkers}
)

// DB returns the data block area with the given number.
func DB(number int) Area {
	return Area{Kind: DataBlock, DBNumber: number}
}

func (a Area) String() string {
	switch a.Kind {
	case Inputs:
		return "PE"
	case Outputs:
		return "PA"
	case Merkers:
		return "MK"
	case DataBlock:
		return "DB" + strconv.Itoa(a.DBNumber)
	default:
		return fmt.Sprintf("Area(%d)", a.Kind)
	}
}

// Valid reports whether a names a known area.
func (a Area) Valid() bool {
	switch a.Kind {
	case Inputs, Outputs, Merkers:
		return a.DBNumber == 0
	case DataBlock:
		return a.DBNumber > 0
	default:
		return false
	}
}

// ParseArea parses "PE", "PA", "MK" or "DB<n>", case-insensitively.
// The IEC aliases "I", "Q" and "M" are accepted as well.
func ParseArea(s string) (Area, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	switch name {
	case "PE", "I", "E":
		return PE, nil
	case "PA", "Q", "A":
		return PA, nil
	case "MK", "M":
		return MK, nil
	}

	if strings.HasPrefix(name, "DB") {
		n, err := strconv.Atoi(name[2:])
		if err != nil || n <= 0 {
			return Area{}, fmt.Errorf("invalid data block number in %q", s)
		}
		return DB(n), nil
	}

	return Area{}, fmt.Errorf("%w: %q", ErrUnknownArea, s)
}
