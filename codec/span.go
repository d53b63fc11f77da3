package codec

import "fmt"

// ByteRange is the minimal run of whole bytes containing a bit span.
type ByteRange struct {
	StartByte uint64
	EndByte   uint64
	Length    int

	// RelativeStartBit is the offset of the span's first bit within the
	// fetched buffer (0-7).
	RelativeStartBit uint
}

func (r ByteRange) String() string {
	return fmt.Sprintf("bytes [%d, %d] (%d), first bit +%d", r.StartByte, r.EndByte, r.Length, r.RelativeStartBit)
}

// MapSpan computes the byte range of the span (startBit, bitLength).
// bitLength must be at least 1.
func MapSpan(startBit, bitLength uint64) ByteRange {
	startByte := startBit / 8
	endByte := (startBit + bitLength - 1) / 8
	return ByteRange{
		StartByte:        startByte,
		EndByte:          endByte,
		Length:           int(endByte - startByte + 1),
		RelativeStartBit: uint(startBit - startByte*8),
	}
}
