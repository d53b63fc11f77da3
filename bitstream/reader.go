package bitstream

import (
	"io"
)

// BitReader reads bits from an io.Reader.
type BitReader struct {
	stream    io.Reader
	order     Order
	pending   [1]byte
	alignment uint8
}

// NewReader returns a new instance of BitReader.
func NewReader(r io.Reader, order Order) *BitReader {
	br := new(BitReader)
	br.stream = r
	br.order = order
	br.alignment = 8
	return br
}

// ReadBit reads the next single bit from the stream, in the reader's order.
func (br *BitReader) ReadBit() (Bit, error) {
	if br.alignment == 8 {
		n, err := br.stream.Read(br.pending[:])
		if n != 1 {
			if err == nil {
				err = io.ErrNoProgress
			}
			return Zero, err
		}
		br.alignment = 0
	}

	bit := Bit(br.pending[0]&br.order.Mask(uint(br.alignment)) != 0)
	br.alignment++

	return bit, nil
}

// Skip discards the next numBits bits.
func (br *BitReader) Skip(numBits uint) error {
	for ; numBits > 0; numBits-- {
		if _, err := br.ReadBit(); err != nil {
			return err
		}
	}
	return nil
}

// Read reads the next numBits bits, regardless of the alignment.
// A stream ending before numBits is io.ErrUnexpectedEOF.
func (br *BitReader) Read(numBits uint) (Bits, error) {
	bits := make(Bits, 0, numBits)
	for ; numBits > 0; numBits-- {
		bit, err := br.ReadBit()
		if err == io.EOF {
			return nil, io.ErrUnexpectedEOF
		}
		if err != nil {
			return nil, err
		}
		bits = append(bits, bit)
	}
	return bits, nil
}
