// Package codec translates bit-addressed reads and writes into the whole-byte
// fetches and stores a transport can perform.
//
// A read fetches the minimal byte range covering the requested span and
// extracts the bits. A write fetches the same range, merges the new bits into
// it and stores the whole range back, so bits of partially covered boundary
// bytes keep the value they had when fetched.
//
// The read-modify-write of a write is not atomic with respect to the backing
// store. Two overlapping writes issued concurrently may lose an update on a
// shared byte; callers needing concurrent access must serialize calls per area.
package codec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/spacemeshos/s7bits/bitstream"
	"github.com/spacemeshos/s7bits/transport"
)

// Transport performs byte-granular I/O against a memory area.
type Transport interface {
	// Fetch returns exactly length bytes starting at offset.
	Fetch(ctx context.Context, area transport.Area, offset uint64, length int) ([]byte, error)
	// Store writes all of data starting at offset.
	Store(ctx context.Context, area transport.Area, offset uint64, data []byte) error
}

// Codec reads and writes bit spans of one area through a Transport.
// It keeps no state between calls.
type Codec struct {
	transport Transport
	area      transport.Area
	order     bitstream.Order
	maxBytes  uint64
	logger    *zap.Logger
}

func New(t Transport, area transport.Area, opts ...Option) (*Codec, error) {
	options := option{
		order:  bitstream.LSBFirst,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&options)
	}

	if t == nil {
		return nil, errors.New("transport is missing")
	}
	if !area.Valid() {
		return nil, fmt.Errorf("invalid area: %v", area)
	}
	if options.order != bitstream.LSBFirst && options.order != bitstream.MSBFirst {
		return nil, fmt.Errorf("invalid bit order: %v", options.order)
	}

	return &Codec{
		transport: t,
		area:      area,
		order:     options.order,
		maxBytes:  options.maxBytes,
		logger:    options.logger.With(zap.Stringer("area", area)),
	}, nil
}

// Order returns the intra-byte bit numbering used for both reads and writes.
func (c *Codec) Order() bitstream.Order {
	return c.order
}

func (c *Codec) Area() transport.Area {
	return c.area
}

// ReadBits returns bitLength bits starting at startBit, in ascending address
// order.
func (c *Codec) ReadBits(ctx context.Context, startBit, bitLength uint64) (bitstream.Bits, error) {
	rng, err := c.span(startBit, bitLength)
	if err != nil {
		return nil, err
	}

	buf, err := c.fetch(ctx, rng)
	if err != nil {
		return nil, err
	}

	br := bitstream.NewReader(bytes.NewReader(buf), c.order)
	if err := br.Skip(rng.RelativeStartBit); err != nil {
		return nil, fmt.Errorf("failed to skip to first bit: %w", err)
	}
	bits, err := br.Read(uint(bitLength))
	if err != nil {
		return nil, fmt.Errorf("failed to extract bits: %w", err)
	}

	c.logger.Debug("read bits",
		zap.Uint64("start_bit", startBit),
		zap.Uint64("bit_length", bitLength),
		zap.Stringer("bits", bits),
	)
	return bits, nil
}

// WriteBits writes a string of '0' and '1' characters starting at startBit.
func (c *Codec) WriteBits(ctx context.Context, startBit uint64, bits string) error {
	parsed, err := parseBits(bits)
	if err != nil {
		return err
	}
	return c.WriteBitValues(ctx, startBit, parsed)
}

// WriteBitsN is WriteBits with a declared bit count that must match len(bits).
func (c *Codec) WriteBitsN(ctx context.Context, startBit, count uint64, bits string) error {
	parsed, err := parseBits(bits)
	if err != nil {
		return err
	}
	if uint64(len(parsed)) != count {
		return InvalidInputError{
			Reason: fmt.Sprintf("declared bit count %d differs from the %d bits given", count, len(parsed)),
		}
	}
	return c.WriteBitValues(ctx, startBit, parsed)
}

// WriteBitValues writes bits starting at startBit.
func (c *Codec) WriteBitValues(ctx context.Context, startBit uint64, bits bitstream.Bits) error {
	if len(bits) == 0 {
		return InvalidInputError{Reason: "nothing to write", Err: bitstream.ErrEmpty}
	}

	rng, err := c.span(startBit, uint64(len(bits)))
	if err != nil {
		return err
	}

	buf, err := c.fetch(ctx, rng)
	if err != nil {
		return err
	}

	bw := bitstream.NewWriter(buf, c.order)
	if err := bw.Seek(uint64(rng.RelativeStartBit)); err != nil {
		return fmt.Errorf("failed to seek to first bit: %w", err)
	}
	if err := bw.Write(bits); err != nil {
		return fmt.Errorf("failed to merge bits: %w", err)
	}

	if err := c.transport.Store(ctx, c.area, rng.StartByte, bw.Bytes()); err != nil {
		return &TransportError{Op: "store", Area: c.area, Offset: rng.StartByte, Length: rng.Length, Err: err}
	}

	c.logger.Debug("wrote bits",
		zap.Uint64("start_bit", startBit),
		zap.Stringer("bits", bits),
		zap.Stringer("range", rng),
	)
	return nil
}

func (c *Codec) span(startBit, bitLength uint64) (ByteRange, error) {
	if bitLength == 0 {
		return ByteRange{}, InvalidInputError{Reason: "bit length must be at least 1"}
	}
	if bitLength-1 > math.MaxUint64-startBit {
		return ByteRange{}, InvalidInputError{Reason: fmt.Sprintf("span (%d, %d) overflows the bit address space", startBit, bitLength)}
	}

	rng := MapSpan(startBit, bitLength)
	numBytes := rng.EndByte - rng.StartByte + 1
	if c.maxBytes > 0 && numBytes > c.maxBytes {
		return ByteRange{}, InvalidInputError{
			Reason: fmt.Sprintf("span covers %d bytes, limit is %d", numBytes, c.maxBytes),
			Err:    ErrSpanTooLarge,
		}
	}
	if numBytes > math.MaxInt32 {
		return ByteRange{}, InvalidInputError{Reason: "span covers too many bytes", Err: ErrSpanTooLarge}
	}

	return rng, nil
}

func (c *Codec) fetch(ctx context.Context, rng ByteRange) ([]byte, error) {
	buf, err := c.transport.Fetch(ctx, c.area, rng.StartByte, rng.Length)
	if err == nil && len(buf) != rng.Length {
		err = fmt.Errorf("%w: expected %d bytes, got %d", ErrShortRead, rng.Length, len(buf))
	}
	if err != nil {
		return nil, &TransportError{Op: "fetch", Area: c.area, Offset: rng.StartByte, Length: rng.Length, Err: err}
	}
	return buf, nil
}

func parseBits(s string) (bitstream.Bits, error) {
	bits, err := bitstream.ParseBits(s)
	if err != nil {
		return nil, InvalidInputError{Reason: "bits shall only contain 0s and 1s", Err: err}
	}
	return bits, nil
}
