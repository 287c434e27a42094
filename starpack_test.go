package starpack

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/blue-bit-shift/starpack/blob"
	"github.com/blue-bit-shift/starpack/errs"
	"github.com/blue-bit-shift/starpack/format"
	"github.com/blue-bit-shift/starpack/section"
)

func testChunk(t *testing.T) []byte {
	t.Helper()

	hdr := section.CollectionHeader{
		Timestamp:       42,
		ConfigurationID: 1,
		DataLength:      2 * 8,
	}
	hdr.SetSubservice(format.SubserviceImagette)

	payload := make([]byte, 16)
	for i := 0; i < 8; i++ {
		binary.BigEndian.PutUint16(payload[2*i:], uint16(0x1000+i*3))
	}

	return append(hdr.Bytes(), payload...)
}

func TestCompressDecompressRoundTrip(t *testing.T) {
	chunk := testChunk(t)

	par := &blob.Params{
		Mode:       format.ModeDiffZero,
		NCImagette: 2,
	}

	bound, err := CompressBound(chunk)
	require.NoError(t, err)

	dst := make([]byte, bound)
	n, err := Compress(chunk, nil, nil, dst, par)
	require.NoError(t, err)
	require.LessOrEqual(t, n, bound)

	size, err := Decompress(dst[:n], nil, nil, nil)
	require.NoError(t, err)
	require.Equal(t, len(chunk), size)

	out := make([]byte, size)
	_, err = Decompress(dst[:n], nil, nil, out)
	require.NoError(t, err)
	require.Equal(t, chunk, out)
}

func TestDecompressRoutesImagetteEntities(t *testing.T) {
	data := make([]byte, 12)
	for i := range data {
		data[i] = byte(i)
	}

	par := &blob.ImagetteParams{
		DataType:  format.DataTypeImagette,
		Mode:      format.ModeDiffZero,
		GolombPar: 4,
		Spill:     48,
	}

	dst := make([]byte, 128)
	n, err := blob.CompressImagetteEntity(par, data, nil, nil, dst)
	require.NoError(t, err)

	out := make([]byte, len(data))
	size, err := Decompress(dst[:n], nil, nil, out)
	require.NoError(t, err)
	require.Equal(t, len(data), size)
	require.Equal(t, data, out)
}

func TestSetModelID(t *testing.T) {
	chunk := testChunk(t)
	model := testChunk(t)

	par := &blob.Params{
		Mode:       format.ModeModelMulti,
		ModelValue: 8,
		NCImagette: 2,
	}

	bound, err := CompressBound(chunk)
	require.NoError(t, err)

	dst := make([]byte, bound)
	n, err := Compress(chunk, model, nil, dst, par)
	require.NoError(t, err)

	id := ModelID(model)
	require.NoError(t, SetModelID(dst[:n], id, 3))

	hdr, err := section.ParseEntityHeader(dst[:n])
	require.NoError(t, err)
	require.Equal(t, id, hdr.ModelID)
	require.Equal(t, uint8(3), hdr.ModelCounter)
}

func TestModelIDDeterministic(t *testing.T) {
	model := testChunk(t)

	require.Equal(t, ModelID(model), ModelID(model))

	other := testChunk(t)
	other[20] ^= 0xFF
	require.NotEqual(t, ModelID(model), ModelID(other))
}

func TestDecompressUnsupportedEntity(t *testing.T) {
	h := section.EntityHeader{
		EntitySize:   uint32(section.NonImagetteHeaderSize),
		OriginalSize: 0,
		DataType:     format.DataTypeSFX, // neither chunk nor imagette
		CmpMode:      format.ModeDiffZero,
	}
	b, err := h.Bytes()
	require.NoError(t, err)

	_, err = Decompress(b, nil, nil, nil)
	require.ErrorIs(t, err, errs.ErrDataTypeUnsupported)
}
