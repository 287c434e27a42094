package blob

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/blue-bit-shift/starpack/encoding"
	"github.com/blue-bit-shift/starpack/errs"
	"github.com/blue-bit-shift/starpack/format"
	"github.com/blue-bit-shift/starpack/section"
)

func TestCompressImagetteEntityRaw(t *testing.T) {
	data := u16be(0x0000, 0x0001, 0x0023, 0x0042, 0x8000, 0x7FFF, 0xFFFF)

	par := &ImagetteParams{
		DataType: format.DataTypeImagette,
		Mode:     format.ModeRaw,
	}

	n, err := CompressImagetteEntity(par, data, nil, nil, nil)
	require.NoError(t, err)
	require.Equal(t, section.GenericHeaderSize+14, n)

	dst := make([]byte, n)
	n, err = CompressImagetteEntity(par, data, nil, nil, dst)
	require.NoError(t, err)
	require.Equal(t, section.GenericHeaderSize+14, n)

	// the payload is the big-endian image of the input, byte for byte
	require.Equal(t, data, dst[section.GenericHeaderSize:n])

	out := make([]byte, len(data))
	size, err := DecompressImagetteEntity(dst[:n], nil, nil, out)
	require.NoError(t, err)
	require.Equal(t, len(data), size)
	require.Equal(t, data, out)
}

func TestCompressImagetteEntityModel(t *testing.T) {
	data := u16be(0x0000, 0x0001, 0x0042, 0x8000, 0x7FFF, 0xFFFF, 0xFFFF)
	model := u16be(0x0000, 0xFFFF, 0xF301, 0x8FFF, 0x0000, 0xFFFF, 0x0000)

	par := &ImagetteParams{
		DataType:   format.DataTypeImagette,
		Mode:       format.ModeModelMulti,
		ModelValue: 8,
		GolombPar:  3,
		Spill:      8,
	}

	dst := make([]byte, section.ImagetteHeaderSize+32)
	upModel := make([]byte, len(model))

	n, err := CompressImagetteEntity(par, data, model, upModel, dst)
	require.NoError(t, err)
	// 76 bits of payload behind the imagette header
	require.Equal(t, section.ImagetteHeaderSize+10, n)

	hdr, err := section.ParseEntityHeader(dst[:n])
	require.NoError(t, err)
	require.Equal(t, format.DataTypeImagette, hdr.DataType)
	require.Equal(t, uint8(3), hdr.GolombPar)
	require.Equal(t, uint16(8), hdr.Spill)
	require.Equal(t, uint32(len(data)), hdr.OriginalSize)

	require.Equal(t, u16be(0x0000, 0x8000, 0x79A1, 0x87FF, 0x3FFF, 0xFFFF, 0x7FFF), upModel)

	out := make([]byte, len(data))
	decUpModel := make([]byte, len(model))
	size, err := DecompressImagetteEntity(dst[:n], model, decUpModel, out)
	require.NoError(t, err)
	require.Equal(t, len(data), size)
	require.Equal(t, data, out)
	require.Equal(t, upModel, decUpModel)
}

func TestCompressImagetteAdaptiveSizes(t *testing.T) {
	data := u16be(0xFFFF, 0x0001, 0x0000, 0x002A, 0x8000, 0x7FFF, 0xFFFF)

	par := &ImagetteParams{
		DataType:     format.DataTypeImagetteAdaptive,
		Mode:         format.ModeDiffZero,
		GolombPar:    1,
		Spill:        8,
		Ap1GolombPar: 2,
		Ap1Spill:     16,
		Ap2GolombPar: 3,
		Ap2Spill:     35,
	}

	var info ImagetteInfo
	bits, err := CompressImagette(par, data, nil, nil, nil, &info)
	require.NoError(t, err)
	require.Equal(t, uint32(66), bits)
	require.Equal(t, uint32(66), info.CmpSizeBits)
	require.NotZero(t, info.Ap1CmpSizeBits)
	require.NotZero(t, info.Ap2CmpSizeBits)
}

// An invalid alternate parameter pair silently reports size zero; the main
// compression is unaffected.
func TestCompressImagetteInvalidAlternatePars(t *testing.T) {
	data := u16be(0xFFFF, 0x0001, 0x0000, 0x002A, 0x8000, 0x7FFF, 0xFFFF)

	par := &ImagetteParams{
		DataType:     format.DataTypeImagetteAdaptive,
		Mode:         format.ModeDiffZero,
		GolombPar:    1,
		Spill:        8,
		Ap1GolombPar: 64, // out of the RDCU range
		Ap1Spill:     16,
		Ap2GolombPar: 2,
		Ap2Spill:     23, // above RDCUMaxSpill(2)
	}

	var info ImagetteInfo
	bits, err := CompressImagette(par, data, nil, nil, nil, &info)
	require.NoError(t, err)
	require.Equal(t, uint32(66), bits)
	require.Zero(t, info.Ap1CmpSizeBits)
	require.Zero(t, info.Ap2CmpSizeBits)
}

func TestImagetteParamsValidation(t *testing.T) {
	base := ImagetteParams{
		DataType:  format.DataTypeImagette,
		Mode:      format.ModeDiffZero,
		GolombPar: 7,
		Spill:     60,
	}
	data := u16be(1, 2, 3)

	t.Run("golomb parameter out of range", func(t *testing.T) {
		par := base
		par.GolombPar = 64
		_, err := CompressImagette(&par, data, nil, nil, nil, nil)
		require.ErrorIs(t, err, errs.ErrParSpecific)
	})

	t.Run("spill above the hardware limit", func(t *testing.T) {
		par := base
		par.Spill = encoding.RDCUMaxSpill(par.GolombPar) + 1
		_, err := CompressImagette(&par, data, nil, nil, nil, nil)
		require.ErrorIs(t, err, errs.ErrParSpecific)
	})

	t.Run("lossy parameter above the hardware limit", func(t *testing.T) {
		par := base
		par.LossyPar = 3
		_, err := CompressImagette(&par, data, nil, nil, nil, nil)
		require.ErrorIs(t, err, errs.ErrParGeneric)
	})

	t.Run("non-imagette data type", func(t *testing.T) {
		par := base
		par.DataType = format.DataTypeSFX
		_, err := CompressImagette(&par, data, nil, nil, nil, nil)
		require.ErrorIs(t, err, errs.ErrParGeneric)
	})
}
