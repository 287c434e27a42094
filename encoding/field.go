package encoding

import (
	"fmt"

	"github.com/blue-bit-shift/starpack/bitstream"
	"github.com/blue-bit-shift/starpack/errs"
	"github.com/blue-bit-shift/starpack/format"
)

// Stream describes the destination of an encode run: the buffer and its
// usable capacity in bits. A nil Buf switches the encoder into size-only
// mode where stream lengths are computed but nothing is written.
type Stream struct {
	Buf     []byte
	CapBits uint32
}

// NewStream builds a Stream over dst, rounding the capacity down to the
// 32-bit word boundary the bit layer works in. capacity limits the usable
// prefix of dst in bytes.
func NewStream(dst []byte, capacity int) Stream {
	if dst == nil {
		return Stream{}
	}
	if capacity > len(dst) {
		capacity = len(dst)
	}

	return Stream{Buf: dst, CapBits: bitstream.CapBits(capacity)}
}

// FieldCoder encodes and decodes the samples of one record field. It bundles
// the compression parameter, the spillover threshold, the lossy parameter
// and the field width, and selects the code word generator and the escape
// discipline from the parameter and the compression mode.
type FieldCoder struct {
	cmpPar      uint32
	log2Par     uint32
	spill       uint32
	lossyPar    uint
	maxDataBits uint
	rice        bool
	zeroEscape  bool
}

// NewFieldCoder builds a field coder for one (cmpPar, spill) pair.
//
// Parameters that are powers of two select the Rice generator, everything
// else the Golomb generator. The escape discipline follows the mode. The
// inputs are not validated here; the blob layer validates the full
// configuration before any field coder is built.
func NewFieldCoder(mode format.Mode, cmpPar, spill uint32, lossyPar, maxDataBits uint) FieldCoder {
	return FieldCoder{
		cmpPar:      cmpPar,
		log2Par:     ILog2(cmpPar),
		spill:       spill,
		lossyPar:    lossyPar,
		maxDataBits: maxDataBits,
		rice:        IsPowerOfTwo(cmpPar),
		zeroEscape:  mode.UsesZeroEscape(),
	}
}

func (c *FieldCoder) codeWord(value uint32) (uint32, uint32) {
	if c.rice {
		return RiceCodeWord(value, c.cmpPar, c.log2Par)
	}

	return GolombCodeWord(value, c.cmpPar, c.log2Par)
}

func (c *FieldCoder) encodeNormal(s Stream, value, streamLen uint32) (uint32, error) {
	cw, cwLen := c.codeWord(value)

	return bitstream.PutBits(s.Buf, cw, uint(cwLen), streamLen, s.CapBits)
}

// windowMask returns the mask of the low maxDataBits bits.
func (c *FieldCoder) windowMask() uint32 {
	return ^uint32(0) >> (32 - c.maxDataBits)
}

// Encode subtracts the model from the data sample, maps the residual to the
// positive range and appends its code word (or escape sequence) to the
// stream at streamLen. It returns the new stream length in bits.
//
// In non-model modes the caller passes the previous sample (1d differencing)
// or zero (first sample) as model.
func (c *FieldCoder) Encode(s Stream, streamLen uint32, data, model uint32) (uint32, error) {
	mask := ^c.windowMask()

	data = RoundFwd(data, c.lossyPar)
	model = RoundFwd(model, c.lossyPar)
	if data&mask != 0 || model&mask != 0 {
		return 0, fmt.Errorf("%w: value does not fit into %d bits", errs.ErrDataValueTooLarge, c.maxDataBits)
	}

	mapped := MapToPos(data-model, c.maxDataBits)

	if c.zeroEscape {
		return c.encodeZero(s, streamLen, mapped)
	}

	return c.encodeMulti(s, streamLen, mapped)
}

// encodeZero emits mapped+1 as a plain code word, or the reserved symbol 0
// followed by the raw value when the shifted sample reaches the spillover
// threshold.
func (c *FieldCoder) encodeZero(s Stream, streamLen, mapped uint32) (uint32, error) {
	if mapped < c.spill-1 { // non-outlier
		return c.encodeNormal(s, mapped+1, streamLen)
	}

	// 0 is the escape symbol; every regular value was shifted up by one
	streamLen, err := c.encodeNormal(s, 0, streamLen)
	if err != nil {
		return 0, err
	}

	return bitstream.PutBits(s.Buf, mapped+1, c.maxDataBits, streamLen, s.CapBits)
}

// encodeMulti emits mapped as a plain code word, or an escape symbol
// spill+k followed by mapped-spill in 2*(k+1) raw bits.
func (c *FieldCoder) encodeMulti(s Stream, streamLen, mapped uint32) (uint32, error) {
	if mapped < c.spill { // non-outlier
		return c.encodeNormal(s, mapped, streamLen)
	}

	unencoded := mapped - c.spill

	// The escape symbol encodes how many raw bit pairs follow:
	// 1-2 bits of unencoded data -> spill+0, 3-4 bits -> spill+1, ...
	var escapeSymOffset uint32
	if unencoded != 0 { // ILog2(0) is undefined
		escapeSymOffset = ILog2(unencoded) >> 1
	}

	unencodedLen := uint(escapeSymOffset+1) << 1

	streamLen, err := c.encodeNormal(s, c.spill+escapeSymOffset, streamLen)
	if err != nil {
		return 0, err
	}

	return bitstream.PutBits(s.Buf, unencoded, unencodedLen, streamLen, s.CapBits)
}

func (c *FieldCoder) decodeNormal(src []byte, streamBits, readPos uint32) (uint32, uint32, error) {
	window, _, err := bitstream.GetWindow(src, readPos, streamBits)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: bitstream exhausted at bit %d", errs.ErrMalformedBitstream, readPos)
	}

	var value, cwLen uint32
	if c.rice {
		value, cwLen = RiceDecode(window, c.cmpPar, c.log2Par)
	} else {
		value, cwLen = GolombDecode(window, c.cmpPar, c.log2Par)
	}

	if cwLen == 0 || readPos+cwLen > streamBits {
		return 0, 0, fmt.Errorf("%w: invalid code word at bit %d", errs.ErrMalformedBitstream, readPos)
	}

	return value, readPos + cwLen, nil
}

// Decode reads one encoded sample starting at readPos and returns the
// sign-extended residual together with the new read position.
//
// The residual still carries the model offset; the caller adds the (rounded)
// model and masks the sum back to the field window.
func (c *FieldCoder) Decode(src []byte, streamBits, readPos uint32) (uint32, uint32, error) {
	if c.zeroEscape {
		return c.decodeZero(src, streamBits, readPos)
	}

	return c.decodeMulti(src, streamBits, readPos)
}

func (c *FieldCoder) decodeZero(src []byte, streamBits, readPos uint32) (uint32, uint32, error) {
	value, readPos, err := c.decodeNormal(src, streamBits, readPos)
	if err != nil {
		return 0, 0, err
	}

	if value >= c.spill {
		return 0, 0, fmt.Errorf("%w: zero-escape symbol %d not below spillover %d",
			errs.ErrMalformedBitstream, value, c.spill)
	}

	if value == 0 { // escape symbol: the raw value follows
		raw, err := bitstream.GetBits(src, readPos, c.maxDataBits)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: truncated zero-escape payload", errs.ErrMalformedBitstream)
		}
		readPos += uint32(c.maxDataBits)

		if raw != 0 && raw < c.spill { // non-outlier hiding behind the escape symbol
			return 0, 0, fmt.Errorf("%w: escaped value %d below spillover %d",
				errs.ErrMalformedBitstream, raw, c.spill)
		}
		value = raw
	}

	// undo the +1 shift inside the field window, then unmap
	value = (value - 1) & c.windowMask()

	return UnmapFromPos(value), readPos, nil
}

func (c *FieldCoder) decodeMulti(src []byte, streamBits, readPos uint32) (uint32, uint32, error) {
	value, readPos, err := c.decodeNormal(src, streamBits, readPos)
	if err != nil {
		return 0, 0, err
	}

	if value >= c.spill { // escape symbol: raw bit pairs follow
		unencodedLen := uint(value-c.spill+1) * 2
		// payloads come in bit pairs, so an odd field width still admits
		// one more bit than the width itself
		if unencodedLen > (c.maxDataBits+1)&^1 {
			return 0, 0, fmt.Errorf("%w: escape payload of %d bits exceeds field width %d",
				errs.ErrMalformedBitstream, unencodedLen, c.maxDataBits)
		}

		raw, err := bitstream.GetBits(src, readPos, unencodedLen)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: truncated multi-escape payload", errs.ErrMalformedBitstream)
		}
		readPos += uint32(unencodedLen)

		value = (raw + c.spill) & c.windowMask()
	}

	return UnmapFromPos(value), readPos, nil
}
