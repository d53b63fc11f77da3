package bitstream

import (
	"io"
)

// BitWriter sets and clears bits in place in a byte buffer, leaving every
// bit it is not asked to write untouched.
type BitWriter struct {
	buf   []byte
	order Order
	pos   uint64
}

// NewWriter returns a new instance of BitWriter positioned at bit 0 of buf.
func NewWriter(buf []byte, order Order) *BitWriter {
	return &BitWriter{buf: buf, order: order}
}

// Seek moves the writer to the absolute bit offset within the buffer.
func (bw *BitWriter) Seek(bit uint64) error {
	if bit > uint64(len(bw.buf))*8 {
		return io.ErrShortBuffer
	}
	bw.pos = bit
	return nil
}

// Pos returns the bit offset of the next write.
func (bw *BitWriter) Pos() uint64 {
	return bw.pos
}

// WriteBit writes a single bit at the current position and advances it.
func (bw *BitWriter) WriteBit(bit Bit) error {
	idx := bw.pos / 8
	if idx >= uint64(len(bw.buf)) {
		return io.ErrShortWrite
	}

	mask := bw.order.Mask(uint(bw.pos % 8))
	if bit {
		bw.buf[idx] |= mask
	} else {
		bw.buf[idx] &^= mask
	}
	bw.pos++

	return nil
}

// Write writes bits starting at the current position. Nothing is written if
// the buffer cannot hold all of them.
func (bw *BitWriter) Write(bits Bits) error {
	if bw.pos+uint64(len(bits)) > uint64(len(bw.buf))*8 {
		return io.ErrShortWrite
	}
	for _, bit := range bits {
		if err := bw.WriteBit(bit); err != nil {
			return err
		}
	}
	return nil
}

// Bytes returns the underlying buffer.
func (bw *BitWriter) Bytes() []byte {
	return bw.buf
}
