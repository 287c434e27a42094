package section

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/blue-bit-shift/starpack/errs"
	"github.com/blue-bit-shift/starpack/format"
)

func chunkHeaderFixture() EntityHeader {
	return EntityHeader{
		EntitySize:         1234,
		OriginalSize:       4096,
		StartTimestamp:     0x0000123456789ABC,
		EndTimestamp:       0x0000123456789ABD,
		DataType:           format.DataTypeChunk,
		CmpMode:            format.ModeModelMulti,
		ModelValue:         8,
		ModelCounter:       3,
		MaxUsedBitsVersion: 1,
		ModelID:            0xBEEF,
		VersionID:          0x00010203,
		LossyPar:           0,
		Pairs: [NumCmpPairs]CmpPair{
			{Spill: 8, CmpPar: 1},
			{Spill: 35, CmpPar: 3},
			{Spill: 100, CmpPar: 5},
		},
	}
}

func TestEntityHeaderRoundTrip(t *testing.T) {
	h := chunkHeaderFixture()

	b, err := h.Bytes()
	require.NoError(t, err)
	require.Len(t, b, NonImagetteHeaderSize)

	parsed, err := ParseEntityHeader(b)
	require.NoError(t, err)
	require.Equal(t, h, parsed)
}

func TestEntityHeaderWireLayout(t *testing.T) {
	h := chunkHeaderFixture()

	b, err := h.Bytes()
	require.NoError(t, err)

	require.Equal(t, []byte{0x00, 0x04, 0xD2}, b[0:3], "entity size")
	require.Equal(t, []byte{0x00, 0x10, 0x00}, b[3:6], "original size")
	require.Equal(t, []byte{0x12, 0x34, 0x56, 0x78, 0x9A, 0xBC}, b[6:12], "start timestamp")
	require.Equal(t, []byte{0x00, 0x18}, b[18:20], "data type")
	require.Equal(t, byte(3), b[20], "cmp mode")
	require.Equal(t, byte(8), b[21], "model value")
	require.Equal(t, byte(3), b[22], "model counter")
	require.Equal(t, byte(1), b[23], "max-used-bits version")
	require.Equal(t, []byte{0xBE, 0xEF}, b[24:26], "model id")
	require.Equal(t, []byte{0x00, 0x01, 0x02, 0x03}, b[26:30], "version id")
	require.Equal(t, []byte{0x00, 0x00}, b[30:32], "lossy parameter")
	// first pair starts after the 2 reserved bytes
	require.Equal(t, []byte{0x00, 0x00, 0x08, 0x00, 0x01}, b[34:39], "pair 1")
}

func TestEntityHeaderRawFlag(t *testing.T) {
	h := chunkHeaderFixture()
	h.Raw = true
	h.CmpMode = format.ModeRaw
	h.Pairs = [NumCmpPairs]CmpPair{}

	b, err := h.Bytes()
	require.NoError(t, err)
	require.Len(t, b, GenericHeaderSize)
	require.Equal(t, byte(0x80), b[18], "raw bit")

	parsed, err := ParseEntityHeader(b)
	require.NoError(t, err)
	require.True(t, parsed.Raw)
	require.Equal(t, format.DataTypeChunk, parsed.DataType)
}

func TestEntityHeaderRawModeMismatch(t *testing.T) {
	h := chunkHeaderFixture()
	h.Raw = true // mode stays MODEL_MULTI

	_, err := h.Bytes()
	require.ErrorIs(t, err, errs.ErrEntityHeader)
}

func TestEntityHeaderImagetteSizes(t *testing.T) {
	h := EntityHeader{
		EntitySize:   100,
		OriginalSize: 64,
		DataType:     format.DataTypeImagette,
		CmpMode:      format.ModeDiffZero,
		GolombPar:    7,
		Spill:        60,
	}

	b, err := h.Bytes()
	require.NoError(t, err)
	require.Len(t, b, ImagetteHeaderSize)

	parsed, err := ParseEntityHeader(b)
	require.NoError(t, err)
	require.Equal(t, uint8(7), parsed.GolombPar)
	require.Equal(t, uint16(60), parsed.Spill)

	h.DataType = format.DataTypeImagetteAdaptive
	h.Ap1GolombPar, h.Ap1Spill = 6, 48
	h.Ap2GolombPar, h.Ap2Spill = 8, 72

	b, err = h.Bytes()
	require.NoError(t, err)
	require.Len(t, b, ImagetteAdaptiveHeaderSize)

	parsed, err = ParseEntityHeader(b)
	require.NoError(t, err)
	require.Equal(t, uint8(6), parsed.Ap1GolombPar)
	require.Equal(t, uint16(72), parsed.Ap2Spill)
}

func TestEntityHeaderValidation(t *testing.T) {
	h := chunkHeaderFixture()
	h.EntitySize = 1 << 24
	require.ErrorIs(t, h.Validate(), errs.ErrEntityHeader)

	h = chunkHeaderFixture()
	h.StartTimestamp = 1 << 48
	require.ErrorIs(t, h.Validate(), errs.ErrEntityTimestamp)

	h = chunkHeaderFixture()
	h.CmpMode = 99
	require.ErrorIs(t, h.Validate(), errs.ErrEntityHeader)

	h = chunkHeaderFixture()
	h.Pairs[0].Spill = 1 << 24
	require.ErrorIs(t, h.Validate(), errs.ErrEntityHeader)
}

func TestEntityHeaderTooSmall(t *testing.T) {
	_, err := ParseEntityHeader(make([]byte, GenericHeaderSize-1))
	require.ErrorIs(t, err, errs.ErrEntityTooSmall)
}

func TestSetModelIDCounter(t *testing.T) {
	h := chunkHeaderFixture()
	b, err := h.Bytes()
	require.NoError(t, err)

	require.NoError(t, SetModelIDCounter(b, 0x1234, 9))

	parsed, err := ParseEntityHeader(b)
	require.NoError(t, err)
	require.Equal(t, uint16(0x1234), parsed.ModelID)
	require.Equal(t, uint8(9), parsed.ModelCounter)

	require.ErrorIs(t, SetModelIDCounter(nil, 0, 0), errs.ErrEntityNull)
	require.ErrorIs(t, SetModelIDCounter(make([]byte, 4), 0, 0), errs.ErrEntityTooSmall)
}
