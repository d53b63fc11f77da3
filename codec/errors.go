package codec

import (
	"errors"
	"fmt"

	"github.com/spacemeshos/s7bits/transport"
)

var (
	// ErrInvalidInput matches every InvalidInputError via errors.Is.
	ErrInvalidInput = errors.New("invalid input")
	ErrSpanTooLarge = errors.New("span too large")
	ErrShortRead    = errors.New("short read")
)

// InvalidInputError is returned before any transport call when a request is
// malformed. No fetch or store has happened when it is returned.
type InvalidInputError struct {
	Reason string
	Err    error
}

func (err InvalidInputError) Error() string {
	if err.Err != nil {
		return fmt.Sprintf("invalid input: %s: %v", err.Reason, err.Err)
	}
	return "invalid input: " + err.Reason
}

func (err InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}

func (err InvalidInputError) Unwrap() error {
	return err.Err
}

// TransportError wraps a failed fetch or store. A failed store means the write
// is not durable; the whole write may be retried since it re-fetches first.
type TransportError struct {
	Op     string
	Area   transport.Area
	Offset uint64
	Length int
	Err    error
}

func (err *TransportError) Error() string {
	return fmt.Sprintf("%s %v bytes [%d, +%d): %v", err.Op, err.Area, err.Offset, err.Length, err.Err)
}

func (err *TransportError) Unwrap() error {
	return err.Err
}
