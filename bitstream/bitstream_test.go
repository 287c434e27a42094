package bitstream

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/blue-bit-shift/starpack/errs"
)

func TestPutBitsSizeOnly(t *testing.T) {
	n, err := PutBits(nil, 0xFFFF, 16, 8, 0)
	require.NoError(t, err)
	require.Equal(t, uint32(24), n)

	n, err = PutBits(nil, 0, 0, 42, 0)
	require.NoError(t, err)
	require.Equal(t, uint32(42), n)
}

func TestPutBitsTooManyBits(t *testing.T) {
	_, err := PutBits(nil, 0, 33, 0, 0)
	require.ErrorIs(t, err, errs.ErrIntDecoder)

	buf := make([]byte, 8)
	_, err = PutBits(buf, 0, 33, 0, CapBits(len(buf)))
	require.ErrorIs(t, err, errs.ErrIntDecoder)
}

func TestPutBitsSmallBuffer(t *testing.T) {
	buf := make([]byte, 4)

	_, err := PutBits(buf, 1, 16, 24, CapBits(len(buf)))
	require.ErrorIs(t, err, errs.ErrSmallBuffer)

	// exactly at the boundary succeeds
	n, err := PutBits(buf, 1, 16, 16, CapBits(len(buf)))
	require.NoError(t, err)
	require.Equal(t, uint32(32), n)
}

func TestPutBitsBigEndianLayout(t *testing.T) {
	buf := make([]byte, 8)

	_, err := PutBits(buf, 0x3, 2, 0, CapBits(len(buf)))
	require.NoError(t, err)
	require.Equal(t, byte(0xC0), buf[0])

	_, err = PutBits(buf, 0x1, 1, 2, CapBits(len(buf)))
	require.NoError(t, err)
	require.Equal(t, byte(0xE0), buf[0])
}

func TestPutBitsSegmented(t *testing.T) {
	buf := make([]byte, 8)

	// 20 bits starting at bit 20 span the word boundary
	_, err := PutBits(buf, 0xABCDE, 20, 20, CapBits(len(buf)))
	require.NoError(t, err)

	got, err := GetBits(buf, 20, 20)
	require.NoError(t, err)
	require.Equal(t, uint32(0xABCDE), got)
}

func TestPutBitsPreservesNeighbors(t *testing.T) {
	buf := make([]byte, 8)
	for i := range buf {
		buf[i] = 0xFF
	}

	_, err := PutBits(buf, 0, 8, 12, CapBits(len(buf)))
	require.NoError(t, err)

	require.Equal(t, []byte{0xFF, 0xF0, 0x0F, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}, buf)
}

func TestGetBitsRoundTrip(t *testing.T) {
	buf := make([]byte, 16)

	values := []struct {
		v   uint32
		n   uint
		off uint32
	}{
		{0x1, 1, 0},
		{0x5A, 7, 1},
		{0xFFFFFFFF, 32, 8},
		{0x12345, 20, 40},
		{0x0, 4, 60},
		{0x7FF, 11, 64},
	}

	for _, tc := range values {
		_, err := PutBits(buf, tc.v, tc.n, tc.off, CapBits(len(buf)))
		require.NoError(t, err)
	}
	for _, tc := range values {
		got, err := GetBits(buf, tc.off, tc.n)
		require.NoError(t, err)
		require.Equal(t, tc.v, got, "value at bit %d", tc.off)
	}
}

func TestGetBitsOutOfRange(t *testing.T) {
	buf := make([]byte, 4)

	_, err := GetBits(buf, 24, 16)
	require.ErrorIs(t, err, errs.ErrSmallBuffer)

	_, err = GetBits(buf, 0, 33)
	require.ErrorIs(t, err, errs.ErrIntDecoder)
}

func TestGetWindow(t *testing.T) {
	buf := []byte{0xDE, 0xAD, 0xBE, 0xEF, 0xCA, 0xFE}

	w, n, err := GetWindow(buf, 0, 48)
	require.NoError(t, err)
	require.Equal(t, uint(32), n)
	require.Equal(t, uint32(0xDEADBEEF), w)

	// fewer than 32 bits remaining: left-aligned, zero-filled
	w, n, err = GetWindow(buf, 40, 48)
	require.NoError(t, err)
	require.Equal(t, uint(8), n)
	require.Equal(t, uint32(0xFE000000), w)

	_, _, err = GetWindow(buf, 48, 48)
	require.ErrorIs(t, err, errs.ErrSmallBuffer)
}

func TestCapBits(t *testing.T) {
	require.Equal(t, uint32(0), CapBits(0))
	require.Equal(t, uint32(0), CapBits(3))
	require.Equal(t, uint32(32), CapBits(4))
	require.Equal(t, uint32(32), CapBits(7))
	require.Equal(t, uint32(96), CapBits(12))
	require.Equal(t, uint32(0), CapBits(-1))
}
