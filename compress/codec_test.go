package compress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func testPayload() []byte {
	// repetitive content so every codec actually shrinks it
	return bytes.Repeat([]byte("starpack entity payload "), 256)
}

func TestCodecRoundTrip(t *testing.T) {
	for _, typ := range []Type{TypeNone, TypeZstd, TypeS2, TypeLZ4} {
		t.Run(typ.String(), func(t *testing.T) {
			codec, err := ForType(typ)
			require.NoError(t, err)

			payload := testPayload()

			packed, err := codec.Compress(payload)
			require.NoError(t, err)
			if typ != TypeNone {
				require.Less(t, len(packed), len(payload))
			}

			unpacked, err := codec.Decompress(packed)
			require.NoError(t, err)
			require.Equal(t, payload, unpacked)
		})
	}
}

func TestCodecRejectsGarbage(t *testing.T) {
	for _, typ := range []Type{TypeZstd, TypeLZ4} {
		codec, err := ForType(typ)
		require.NoError(t, err)

		_, err = codec.Decompress([]byte{0xDE, 0xAD, 0xBE, 0xEF})
		require.Error(t, err, "codec %s", typ)
	}
}

func TestParseType(t *testing.T) {
	for name, want := range map[string]Type{
		"":     TypeNone,
		"none": TypeNone,
		"zstd": TypeZstd,
		"s2":   TypeS2,
		"lz4":  TypeLZ4,
	} {
		got, err := ParseType(name)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	_, err := ParseType("brotli")
	require.Error(t, err)
}
