package encoding

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRiceCodeWord(t *testing.T) {
	tests := []struct {
		value, m  uint32
		wantCW    uint32
		wantLen   uint32
	}{
		{0, 1, 0x0, 1},
		{1, 1, 0x2, 2},     // 10
		{2, 1, 0x6, 3},     // 110
		{4, 1, 0x1E, 5},    // 11110
		{0, 2, 0x0, 2},     // 00
		{1, 2, 0x1, 2},     // 01
		{2, 2, 0x4, 3},     // 100
		{5, 4, 0x9, 4},     // 1001
		{42, 32, 0x4A, 7},  // 1 0 01010
	}

	for _, tc := range tests {
		cw, cwLen := RiceCodeWord(tc.value, tc.m, ILog2(tc.m))
		require.Equal(t, tc.wantLen, cwLen, "length of value %d, m %d", tc.value, tc.m)
		require.Equal(t, tc.wantCW, cw, "code word of value %d, m %d", tc.value, tc.m)
	}
}

func TestGolombCodeWord(t *testing.T) {
	tests := []struct {
		value, m uint32
		wantCW   uint32
		wantLen  uint32
	}{
		// m = 3: cutoff = 1, group 0 holds only value 0
		{0, 3, 0x0, 2},
		{1, 3, 0x2, 3}, // 010
		{2, 3, 0x3, 3}, // 011
		{4, 3, 0xA, 4}, // 1010
		{37, 3, 0x7FFA, 15},
		// m = 5: cutoff = 3
		{0, 5, 0x0, 3},
		{2, 5, 0x2, 3},
		{3, 5, 0x6, 4},
		{42, 5, 0x7FA, 11},
	}

	for _, tc := range tests {
		cw, cwLen := GolombCodeWord(tc.value, tc.m, ILog2(tc.m))
		require.Equal(t, tc.wantLen, cwLen, "length of value %d, m %d", tc.value, tc.m)
		require.Equal(t, tc.wantCW, cw, "code word of value %d, m %d", tc.value, tc.m)
	}
}

// decode(encode(v)) == v for every generator as long as the code word fits
// into 32 bits.
func TestCodeWordRoundTrip(t *testing.T) {
	values := []uint32{0, 1, 2, 3, 7, 8, 15, 42, 100, 623, 1000}
	pars := []uint32{1, 2, 3, 4, 5, 7, 8, 16, 30, 63, 255}

	for _, m := range pars {
		log2M := ILog2(m)
		for _, v := range values {
			var cw, cwLen uint32
			if IsPowerOfTwo(m) {
				cw, cwLen = RiceCodeWord(v, m, log2M)
			} else {
				cw, cwLen = GolombCodeWord(v, m, log2M)
			}
			if cwLen > 32 {
				continue
			}

			window := cw << (32 - cwLen)

			var got, gotLen uint32
			if IsPowerOfTwo(m) {
				got, gotLen = RiceDecode(window, m, log2M)
			} else {
				got, gotLen = GolombDecode(window, m, log2M)
			}

			require.Equal(t, cwLen, gotLen, "m=%d v=%d", m, v)
			require.Equal(t, v, got, "m=%d v=%d", m, v)
		}
	}
}

func TestDecodeRejectsOverlongCodeWord(t *testing.T) {
	// 33 leading ones cannot form a valid 32-bit code word
	_, cwLen := RiceDecode(0xFFFFFFFF, 1, 0)
	require.Equal(t, uint32(0), cwLen)

	_, cwLen = GolombDecode(0xFFFFFFFF, 3, 1)
	require.Equal(t, uint32(0), cwLen)
}

func TestILog2(t *testing.T) {
	require.Equal(t, ^uint32(0), ILog2(0))
	require.Equal(t, uint32(0), ILog2(1))
	require.Equal(t, uint32(1), ILog2(2))
	require.Equal(t, uint32(1), ILog2(3))
	require.Equal(t, uint32(5), ILog2(32))
	require.Equal(t, uint32(31), ILog2(0x80000000))
}

func TestIsPowerOfTwo(t *testing.T) {
	require.True(t, IsPowerOfTwo(1))
	require.True(t, IsPowerOfTwo(2))
	require.True(t, IsPowerOfTwo(1024))
	require.False(t, IsPowerOfTwo(3))
	require.False(t, IsPowerOfTwo(63))
}
