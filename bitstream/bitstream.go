// Package bitstream implements the bit-addressed big-endian stream layer of
// the starpack codec.
//
// The compressed bitstream is organised as a sequence of 32-bit big-endian
// words. Positions are absolute bit indices counted from the start of the
// destination buffer, so a caller can interleave byte-aligned header copies
// with bit-aligned code words in the same buffer. Writes are read-modify-write
// on the affected words only; bits outside the addressed range are preserved.
//
// PutBits supports a size-only mode: with a nil destination the new stream
// length is computed and returned without touching memory. The encoder uses
// this to answer "how big would the compressed data be" queries.
package bitstream

import (
	"encoding/binary"
	"fmt"

	"github.com/blue-bit-shift/starpack/errs"
)

// CapBits returns the usable capacity of a destination buffer in bits.
//
// The stream layer accesses the buffer in 32-bit words, so the capacity is
// rounded down to the previous 4-byte boundary.
func CapBits(size int) uint32 {
	if size < 0 {
		return 0
	}

	return uint32(size&^0x3) * 8
}

// PutBits writes the low nBits of value into dst at the absolute bit index
// bitOffset and returns the new stream length in bits.
//
// A nil dst computes the new length without writing. maxStreamBits is the
// usable capacity of dst in bits (see CapBits) and is ignored when dst is
// nil.
//
// Errors:
//   - errs.ErrIntDecoder if nBits > 32
//   - errs.ErrSmallBuffer if the write would exceed maxStreamBits
func PutBits(dst []byte, value uint32, nBits uint, bitOffset, maxStreamBits uint32) (uint32, error) {
	if nBits > 32 {
		return 0, fmt.Errorf("%w: cannot insert %d bits into the bitstream", errs.ErrIntDecoder, nBits)
	}

	streamLen := bitOffset + uint32(nBits)
	if nBits == 0 || dst == nil {
		return streamLen, nil
	}

	if streamLen > maxStreamBits {
		return 0, errs.ErrSmallBuffer
	}

	/*
	 *                               UNSEGMENTED
	 * |-----------|XXXXXX|---------------|--------------------------------|
	 * |-bits_left-|n_bits|-------------------bits_right-------------------|
	 * ^ word
	 *                               SEGMENTED
	 * |-----------------------------|XXX|XXX|-----------------------------|
	 * |----------bits_left----------|n_bits-|---------bits_right----------|
	 */
	bitsLeft := bitOffset & 0x1F
	bitsRight := 64 - bitsLeft - uint32(nBits)
	shiftLeft := uint32(32 - nBits)

	base := (bitOffset >> 5) * 4
	word := dst[base : base+4]

	mask := (uint32(0xFFFFFFFF) << shiftLeft) >> bitsLeft
	tmp := binary.BigEndian.Uint32(word) &^ mask
	tmp |= (value << shiftLeft) >> bitsLeft
	binary.BigEndian.PutUint32(word, tmp)

	if bitsRight < 32 { // the value spans two words
		word = dst[base+4 : base+8]

		mask = uint32(0xFFFFFFFF) << bitsRight
		tmp = binary.BigEndian.Uint32(word) &^ mask
		tmp |= value << bitsRight
		binary.BigEndian.PutUint32(word, tmp)
	}

	return streamLen, nil
}

// GetBits reads nBits starting at the absolute bit index bitOffset from src
// and returns them right-aligned.
//
// Errors:
//   - errs.ErrIntDecoder if nBits > 32
//   - errs.ErrSmallBuffer if the read would run past the end of src
func GetBits(src []byte, bitOffset uint32, nBits uint) (uint32, error) {
	if nBits > 32 {
		return 0, fmt.Errorf("%w: cannot read %d bits from the bitstream", errs.ErrIntDecoder, nBits)
	}
	if nBits == 0 {
		return 0, nil
	}

	end := bitOffset + uint32(nBits)
	if uint64(end) > uint64(len(src))*8 {
		return 0, errs.ErrSmallBuffer
	}

	firstByte := bitOffset >> 3
	lastByte := (end + 7) >> 3

	var acc uint64
	for _, b := range src[firstByte:lastByte] {
		acc = acc<<8 | uint64(b)
	}

	acc >>= (lastByte-firstByte)*8 - (end - firstByte*8)
	if nBits < 32 {
		acc &= (1 << nBits) - 1
	}

	return uint32(acc), nil
}

// GetWindow reads up to 32 bits starting at bitOffset and returns them
// left-aligned in a 32-bit window, together with the number of valid bits.
//
// The window is what the Golomb and Rice decoders consume: if fewer than 32
// bits remain before streamBits, the low end of the window is zero-filled.
func GetWindow(src []byte, bitOffset, streamBits uint32) (uint32, uint, error) {
	if bitOffset > streamBits {
		return 0, 0, errs.ErrSmallBuffer
	}

	n := uint(32)
	if bitOffset+32 > streamBits {
		n = uint(streamBits - bitOffset)
	}
	if n == 0 {
		return 0, 0, errs.ErrSmallBuffer
	}

	v, err := GetBits(src, bitOffset, n)
	if err != nil {
		return 0, 0, err
	}

	return v << (32 - n), n, nil
}
