package asar

import (
	"encoding/binary"
	"fmt"
	"math"
)

// SizeHeaderLen is the length of the fixed prefix preceding the header JSON.
const SizeHeaderLen = 16

// The archive starts with two nested pickles: a size pickle holding the
// length of the header pickle, then the header pickle holding the header
// string. Their four uint32 fields are byte-adjacent, so they are written
// as one 16-byte block:
//
//	[0:4]   4      size pickle payload length (one uint32)
//	[4:8]   n + 8  header pickle length
//	[8:12]  n + 4  header pickle payload length
//	[12:16] n      header string length
//
// where n is the header JSON length. No alignment padding follows the
// header string.
func putSizeHeader(dst []byte, n uint32) {
	_ = dst[SizeHeaderLen-1]
	binary.LittleEndian.PutUint32(dst[0:4], 4)
	binary.LittleEndian.PutUint32(dst[4:8], n+8)
	binary.LittleEndian.PutUint32(dst[8:12], n+4)
	binary.LittleEndian.PutUint32(dst[12:16], n)
}

// headerLen checks that a header of n bytes fits the uint32 size fields.
func headerLen(n int) (uint32, error) {
	if n < 0 || uint64(n) > math.MaxUint32-8 {
		return 0, fmt.Errorf("%w: %d bytes", ErrHeaderTooLarge, n)
	}
	return uint32(n), nil //nolint:gosec // bounded above
}

// ParseHeader decodes the size header and header JSON at the start of data.
//
// It returns the header and the file offset where the data region starts.
// Payload bytes are not inspected. Archives whose header pickle carries
// alignment padding are accepted; the data region then starts after the
// padding.
func ParseHeader(data []byte) (Header, uint64, error) {
	if len(data) < SizeHeaderLen {
		return Header{}, 0, fmt.Errorf("%w: %d bytes, need %d", ErrMalformedHeader, len(data), SizeHeaderLen)
	}
	sizeLen := binary.LittleEndian.Uint32(data[0:4])
	pickleLen := uint64(binary.LittleEndian.Uint32(data[4:8]))
	payloadLen := uint64(binary.LittleEndian.Uint32(data[8:12]))
	n := uint64(binary.LittleEndian.Uint32(data[12:16]))

	if sizeLen != 4 {
		return Header{}, 0, fmt.Errorf("%w: size pickle payload %d, want 4", ErrMalformedHeader, sizeLen)
	}
	if pickleLen != payloadLen+4 {
		return Header{}, 0, fmt.Errorf("%w: header pickle %d, payload %d", ErrMalformedHeader, pickleLen, payloadLen)
	}
	if payloadLen < n+4 {
		return Header{}, 0, fmt.Errorf("%w: header string %d exceeds pickle payload %d", ErrMalformedHeader, n, payloadLen)
	}
	dataStart := 8 + pickleLen
	if uint64(len(data)) < dataStart {
		return Header{}, 0, fmt.Errorf("%w: truncated header", ErrMalformedHeader)
	}

	var h Header
	if err := h.UnmarshalJSON(data[SizeHeaderLen : SizeHeaderLen+n]); err != nil {
		return Header{}, 0, fmt.Errorf("%w: %v", ErrMalformedHeader, err)
	}
	return h, dataStart, nil
}
