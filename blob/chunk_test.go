package blob

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/blue-bit-shift/starpack/errs"
	"github.com/blue-bit-shift/starpack/format"
	"github.com/blue-bit-shift/starpack/section"
)

// makeCollection frames a payload with a collection header.
func makeCollection(sub format.Subservice, payload []byte) []byte {
	hdr := section.CollectionHeader{
		Timestamp:       0x0000C0FFEE42,
		ConfigurationID: 7,
		DataLength:      uint16(len(payload)),
	}
	hdr.SetSubservice(sub)

	return append(hdr.Bytes(), payload...)
}

func TestCompressChunkRawFraming(t *testing.T) {
	// seed scenario: two short-cadence collections, RAW mode
	col1 := makeCollection(format.SubserviceSFX, sfxRecords(
		[2]uint32{0, 0x0000},
		[2]uint32{1, 0x0001},
		[2]uint32{2, 0x0023},
	))
	rec2 := make([]byte, 2*RecordSize(format.DataTypeSFXEFXNCOBECOB))
	for i := range rec2 {
		rec2[i] = byte(i)
	}
	col2 := makeCollection(format.SubserviceSFXEFXNCOBECOB, rec2)

	chunk := append(append([]byte{}, col1...), col2...)
	par := &Params{Mode: format.ModeRaw}

	n, err := CompressChunk(chunk, nil, nil, nil, par)
	require.NoError(t, err)
	require.Equal(t, section.GenericHeaderSize+len(chunk), n)

	dst := make([]byte, n)
	n, err = CompressChunk(chunk, nil, nil, dst, par)
	require.NoError(t, err)
	require.Equal(t, section.GenericHeaderSize+len(chunk), n)

	// the payload preserves the collections bit for bit, headers included
	require.Equal(t, chunk, dst[section.GenericHeaderSize:n])

	hdr, err := section.ParseEntityHeader(dst)
	require.NoError(t, err)
	require.True(t, hdr.Raw)
	require.Equal(t, format.DataTypeChunk, hdr.DataType)
	require.Equal(t, uint32(n), hdr.EntitySize)
	require.Equal(t, uint32(len(chunk)), hdr.OriginalSize)

	// round trip
	size, err := DecompressChunk(dst[:n], nil, nil, nil)
	require.NoError(t, err)
	require.Equal(t, len(chunk), size)

	out := make([]byte, size)
	_, err = DecompressChunk(dst[:n], nil, nil, out)
	require.NoError(t, err)
	require.Equal(t, chunk, out)
}

func shortCadenceParams(mode format.Mode) *Params {
	return &Params{
		Mode:       mode,
		ModelValue: 11,
		SExpFlags:  1,
		SFX:        3,
		SNCOB:      2,
		SEFX:       2,
		SECOB:      2,
	}
}

func TestCompressChunkModelRoundTrip(t *testing.T) {
	data := sfxRecords(
		[2]uint32{0, 0x0000},
		[2]uint32{1, 0x0001},
		[2]uint32{2, 0x0023},
		[2]uint32{3, 0x0042},
		[2]uint32{0, 0x001FFFFF},
		[2]uint32{0, 0x0000},
	)
	modelData := sfxRecords(
		[2]uint32{0, 0x0000},
		[2]uint32{3, 0x0001},
		[2]uint32{0, 0x0042},
		[2]uint32{0, 0x0023},
		[2]uint32{3, 0x0000},
		[2]uint32{2, 0x001FFFFF},
	)

	chunk := makeCollection(format.SubserviceSFX, data)
	model := makeCollection(format.SubserviceSFX, modelData)

	par := shortCadenceParams(format.ModeModelMulti)

	upModel := make([]byte, len(model))
	bound, err := CompressBound(chunk)
	require.NoError(t, err)

	dst := make([]byte, bound)
	n, err := CompressChunk(chunk, model, upModel, dst, par)
	require.NoError(t, err)
	require.LessOrEqual(t, n, bound)

	entity := dst[:n]

	hdr, err := section.ParseEntityHeader(entity)
	require.NoError(t, err)
	require.Equal(t, format.ModeModelMulti, hdr.CmpMode)
	require.Equal(t, uint8(11), hdr.ModelValue)
	require.Equal(t, uint16(1), hdr.Pairs[0].CmpPar, "exp_flags slot")
	require.Equal(t, uint16(3), hdr.Pairs[1].CmpPar, "fx slot")

	// decoder reproduces data and updated model
	out := make([]byte, len(chunk))
	decUpModel := make([]byte, len(model))
	size, err := DecompressChunk(entity, model, decUpModel, out)
	require.NoError(t, err)
	require.Equal(t, len(chunk), size)
	require.Equal(t, chunk, out)
	require.Equal(t, upModel, decUpModel)

	// the updated model carries the collection header verbatim
	require.Equal(t, chunk[:section.CollectionHeaderSize], upModel[:section.CollectionHeaderSize])
}

func TestCompressChunkMultipleCollections(t *testing.T) {
	colA := makeCollection(format.SubserviceSFX, sfxRecords(
		[2]uint32{0, 1}, [2]uint32{1, 2}, [2]uint32{2, 3},
	))
	colB := makeCollection(format.SubserviceSFXEFX, func() []byte {
		b := []byte{}
		for i := 0; i < 4; i++ {
			b = append(b, byte(i&3))
			b = binary.BigEndian.AppendUint32(b, uint32(i*5))
			b = binary.BigEndian.AppendUint32(b, uint32(i*9))
		}
		return b
	}())

	chunk := append(append([]byte{}, colA...), colB...)

	par := shortCadenceParams(format.ModeDiffZero)

	bound, err := CompressBound(chunk)
	require.NoError(t, err)
	dst := make([]byte, bound)

	n, err := CompressChunk(chunk, nil, nil, dst, par)
	require.NoError(t, err)

	out := make([]byte, len(chunk))
	size, err := DecompressChunk(dst[:n], nil, nil, out)
	require.NoError(t, err)
	require.Equal(t, len(chunk), size)
	require.Equal(t, chunk, out)
}

// Incompressible collections fall back to a raw re-emission inside an
// otherwise compressed entity; the length field records the payload size.
func TestCompressChunkRawFallback(t *testing.T) {
	// against a zero model every sample maps far above the spillover
	// threshold, so each escape sequence is wider than the sample itself
	samples := make([]uint16, 20)
	for i := range samples {
		samples[i] = uint16(0x4000 + i)
	}
	data := u16be(samples...)
	chunk := makeCollection(format.SubserviceImagette, data)
	model := makeCollection(format.SubserviceImagette, make([]byte, len(data)))

	par := &Params{Mode: format.ModeModelMulti, ModelValue: 8, NCImagette: 1}

	bound, err := CompressBound(chunk)
	require.NoError(t, err)
	dst := make([]byte, bound)
	upModel := make([]byte, len(model))

	n, err := CompressChunk(chunk, model, upModel, dst, par)
	require.NoError(t, err)

	// entity layout: header | size field | collection header | raw payload
	wantSize := section.NonImagetteHeaderSize + cmpColSizeFieldLen +
		section.CollectionHeaderSize + len(data)
	require.Equal(t, wantSize, n)

	sizeField := binary.BigEndian.Uint16(dst[section.NonImagetteHeaderSize:])
	require.Equal(t, uint16(len(data)), sizeField, "size field flags the raw fallback")

	// the updated model of a raw fallback is the data itself
	require.Equal(t, data, upModel[section.CollectionHeaderSize:])

	out := make([]byte, len(chunk))
	decUpModel := make([]byte, len(model))
	_, err = DecompressChunk(dst[:n], model, decUpModel, out)
	require.NoError(t, err)
	require.Equal(t, chunk, out)
	require.Equal(t, upModel, decUpModel)
}

// The bound is an upper bound for every mode and parameter choice.
func TestCompressBoundHolds(t *testing.T) {
	data := sfxRecords(
		[2]uint32{0, 0}, [2]uint32{3, 0x1FFFFF}, [2]uint32{0, 0},
		[2]uint32{3, 0x1FFFFF}, [2]uint32{0, 0x12345},
	)
	chunk := makeCollection(format.SubserviceSFX, data)
	model := makeCollection(format.SubserviceSFX, make([]byte, len(data)))

	bound, err := CompressBound(chunk)
	require.NoError(t, err)
	require.Equal(t, BoundSize(len(chunk), 1), bound)

	for _, mode := range []format.Mode{
		format.ModeRaw,
		format.ModeModelZero, format.ModeDiffZero,
		format.ModeModelMulti, format.ModeDiffMulti,
	} {
		par := shortCadenceParams(mode)
		par.ModelValue = 8

		dst := make([]byte, bound)
		n, err := CompressChunk(chunk, model, nil, dst, par)
		require.NoError(t, err, "mode %s", mode)
		require.LessOrEqual(t, n, bound, "mode %s", mode)
	}
}

func TestCompressChunkEmptyCollection(t *testing.T) {
	chunk := makeCollection(format.SubserviceSFX, nil)
	par := shortCadenceParams(format.ModeDiffZero)

	bound, err := CompressBound(chunk)
	require.NoError(t, err)
	dst := make([]byte, bound)

	n, err := CompressChunk(chunk, nil, nil, dst, par)
	require.NoError(t, err)

	out := make([]byte, len(chunk))
	size, err := DecompressChunk(dst[:n], nil, nil, out)
	require.NoError(t, err)
	require.Equal(t, len(chunk), size)
	require.Equal(t, chunk, out)
}

func TestCompressChunkErrors(t *testing.T) {
	col := makeCollection(format.SubserviceSFX, sfxRecords([2]uint32{0, 1}))
	par := shortCadenceParams(format.ModeDiffZero)

	t.Run("nil chunk", func(t *testing.T) {
		_, err := CompressChunk(nil, nil, nil, nil, par)
		require.ErrorIs(t, err, errs.ErrChunkNull)
	})

	t.Run("nil params", func(t *testing.T) {
		_, err := CompressChunk(col, nil, nil, nil, nil)
		require.ErrorIs(t, err, errs.ErrParNull)
	})

	t.Run("chunk shorter than a collection header", func(t *testing.T) {
		_, err := CompressChunk(col[:8], nil, nil, nil, par)
		require.ErrorIs(t, err, errs.ErrChunkSizeInconsistent)
	})

	t.Run("mixed chunk types", func(t *testing.T) {
		other := makeCollection(format.SubserviceSmearing, make([]byte, 10))
		mixed := append(append([]byte{}, col...), other...)

		_, err := CompressChunk(mixed, nil, nil, nil, par)
		require.ErrorIs(t, err, errs.ErrChunkSubserviceInconsistent)
	})

	t.Run("truncated collection", func(t *testing.T) {
		_, err := CompressChunk(col[:len(col)-1], nil, nil, nil, par)
		require.ErrorIs(t, err, errs.ErrChunkSizeInconsistent)
	})

	t.Run("unknown subservice", func(t *testing.T) {
		bad := makeCollection(format.Subservice(44), nil)
		_, err := CompressChunk(bad, nil, nil, nil, par)
		require.ErrorIs(t, err, errs.ErrColSubserviceUnsupported)
	})

	t.Run("invalid parameter", func(t *testing.T) {
		badPar := shortCadenceParams(format.ModeDiffZero)
		badPar.SFX = 0
		_, err := CompressChunk(col, nil, nil, nil, badPar)
		require.ErrorIs(t, err, errs.ErrParSpecific)
	})
}

func TestDecompressChunkErrors(t *testing.T) {
	col := makeCollection(format.SubserviceSFX, sfxRecords([2]uint32{0, 1}, [2]uint32{1, 2}))
	par := shortCadenceParams(format.ModeModelZero)
	model := makeCollection(format.SubserviceSFX, make([]byte, 2*RecordSize(format.DataTypeSFX)))

	bound, err := CompressBound(col)
	require.NoError(t, err)
	dst := make([]byte, bound)
	n, err := CompressChunk(col, model, nil, dst, par)
	require.NoError(t, err)
	entity := dst[:n]

	t.Run("nil entity", func(t *testing.T) {
		_, err := DecompressChunk(nil, nil, nil, nil)
		require.ErrorIs(t, err, errs.ErrEntityNull)
	})

	t.Run("size query needs no model", func(t *testing.T) {
		size, err := DecompressChunk(entity, nil, nil, nil)
		require.NoError(t, err)
		require.Equal(t, len(col), size)
	})

	t.Run("model mode without model", func(t *testing.T) {
		_, err := DecompressChunk(entity, nil, nil, make([]byte, len(col)))
		require.ErrorIs(t, err, errs.ErrParNoModel)
	})

	t.Run("destination too small", func(t *testing.T) {
		_, err := DecompressChunk(entity, model, nil, make([]byte, len(col)-1))
		require.ErrorIs(t, err, errs.ErrSmallBuffer)
	})

	t.Run("truncated entity", func(t *testing.T) {
		_, err := DecompressChunk(entity[:n-4], model, nil, make([]byte, len(col)))
		require.ErrorIs(t, err, errs.ErrEntityTooSmall)
	})
}
