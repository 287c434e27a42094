package encoding

import "github.com/blue-bit-shift/starpack/format"

// Compression parameter and spillover threshold ranges.
const (
	MinCmpPar = 1
	MaxCmpPar = 1 << 31 // the code word generators handle at most 2^31

	MinSpill = 2

	MinRDCUGolombPar = 1
	MaxRDCUGolombPar = 63

	MaxLossyPar     = 3 // ICU compression
	MaxRDCULossyPar = 2
)

// rdcuMaxSpillLUT holds the highest valid spillover threshold per Golomb
// parameter for the hardware compressor, which generates at most 16-bit code
// words.
var rdcuMaxSpillLUT = [MaxRDCUGolombPar + 1]uint32{
	0, 8, 22, 35, 48, 60, 72, 84, 96, 107, 118, 129, 140, 151, 162, 173,
	184, 194, 204, 214, 224, 234, 244, 254, 264, 274, 284, 294, 304, 314,
	324, 334, 344, 353, 362, 371, 380, 389, 398, 407, 416, 425, 434, 443,
	452, 461, 470, 479, 488, 497, 506, 515, 524, 533, 542, 551, 560, 569,
	578, 587, 596, 605, 614, 623,
}

// RDCUMaxSpill returns the highest valid spillover threshold for an RDCU
// imagette compression with the given Golomb parameter, or 0 if the
// parameter is out of range.
func RDCUMaxSpill(golombPar uint32) uint32 {
	if golombPar >= uint32(len(rdcuMaxSpillLUT)) {
		return 0
	}

	return rdcuMaxSpillLUT[golombPar]
}

// MaxSpill returns the highest valid spillover threshold for an ICU
// compression with the given parameter, or 0 if the parameter is invalid.
//
// The bound is derived so that every escaped code word, including the
// longest escape symbol, still fits into a 32-bit code word.
func MaxSpill(cmpPar uint32) uint32 {
	if cmpPar == 0 || uint64(cmpPar) > MaxCmpPar {
		return 0
	}

	cutoff := (uint32(2) << (ILog2(cmpPar) & 0x1F)) - cmpPar
	maxEscapeSymOffset := uint32(maxCodeWordBits/2 - 1)

	return (maxCodeWordBits-1-ILog2(cmpPar))*cmpPar + cutoff - maxEscapeSymOffset - 1
}

// BestZeroSpill returns the highest useful spillover threshold for the zero
// escape mechanism: beyond maxDataBits*cmpPar+cutoff the escape sequence is
// always shorter than the plain code word.
func BestZeroSpill(cmpPar, maxDataBits uint32) uint32 {
	if cmpPar < MinCmpPar || uint64(cmpPar) > MaxCmpPar {
		return 0
	}

	maxSpill := MaxSpill(cmpPar)
	cutoff := (uint32(2) << ILog2(cmpPar)) - cmpPar

	spill := maxDataBits*cmpPar + cutoff
	if spill > maxSpill {
		spill = maxSpill
	}

	return spill
}

// SpillFor estimates a good spillover threshold for a compression parameter
// in the given mode, as the chunk compressor does when it derives the six
// entity header parameter pairs.
func SpillFor(cmpPar uint32, mode format.Mode, maxDataBits uint32) uint32 {
	if mode.UsesZeroEscape() {
		return BestZeroSpill(cmpPar, maxDataBits)
	}

	return MaxSpill(cmpPar)
}
