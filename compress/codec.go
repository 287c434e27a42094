// Package compress provides the optional outer compression applied to
// entity archive files by the starpack tooling.
//
// The codec here is not part of the wire format: a compression entity is
// self-contained. The CLI uses these codecs to shrink entity files at rest,
// which pays off for RAW-mode entities and large model archives.
package compress

import "fmt"

// Type selects an archive codec.
type Type uint8

const (
	TypeNone Type = iota
	TypeZstd
	TypeS2
	TypeLZ4
)

func (t Type) String() string {
	switch t {
	case TypeNone:
		return "none"
	case TypeZstd:
		return "zstd"
	case TypeS2:
		return "s2"
	case TypeLZ4:
		return "lz4"
	default:
		return "unknown"
	}
}

// ParseType maps a codec name to its Type.
func ParseType(name string) (Type, error) {
	switch name {
	case "", "none":
		return TypeNone, nil
	case "zstd":
		return TypeZstd, nil
	case "s2":
		return TypeS2, nil
	case "lz4":
		return TypeLZ4, nil
	default:
		return TypeNone, fmt.Errorf("unknown compression codec %q", name)
	}
}

// Codec compresses and decompresses archive payloads.
//
// Implementations are safe for concurrent use. Returned slices are newly
// allocated and owned by the caller; inputs are never modified.
type Codec interface {
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
}

// ForType returns the codec for the given type.
func ForType(t Type) (Codec, error) {
	switch t {
	case TypeNone:
		return NoOpCodec{}, nil
	case TypeZstd:
		return ZstdCodec{}, nil
	case TypeS2:
		return S2Codec{}, nil
	case TypeLZ4:
		return LZ4Codec{}, nil
	default:
		return nil, fmt.Errorf("unknown compression codec %d", t)
	}
}
