package transport

import "errors"

var (
	ErrUnknownArea = errors.New("unknown area")
	ErrOutOfRange  = errors.New("address out of range")
	ErrClosed      = errors.New("transport closed")
)
