package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/edsrzf/mmap-go"

	"github.com/blue-bit-shift/starpack/compress"
	"github.com/blue-bit-shift/starpack/internal/pool"
)

// readDataFile reads a data file as raw bytes, honoring the --hex and
// --mmap flags. The returned slice is always private to the caller.
func readDataFile(path string) ([]byte, error) {
	raw, err := readFile(path)
	if err != nil {
		return nil, err
	}

	if !flagHex {
		return raw, nil
	}

	return decodeHexText(raw)
}

// readFile slurps or memory-maps a file. Mapped content is copied out
// before the mapping is dropped, so no mapping outlives this call.
func readFile(path string) ([]byte, error) {
	if !flagMmap {
		return os.ReadFile(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("mmap %s: %w", path, err)
	}
	defer m.Unmap()

	data := make([]byte, len(m))
	copy(data, m)

	return data, nil
}

// decodeHexText converts whitespace-separated hex text into bytes.
func decodeHexText(text []byte) ([]byte, error) {
	buf := pool.Get()
	defer pool.Put(buf)

	for _, tok := range strings.Fields(string(text)) {
		b, err := hex.DecodeString(tok)
		if err != nil {
			return nil, fmt.Errorf("invalid hex token %q: %w", tok, err)
		}
		buf.B = append(buf.B, b...)
	}

	data := make([]byte, buf.Len())
	copy(data, buf.Bytes())

	return data, nil
}

// hexBytesPerLine is the formatting width of hex text output.
const hexBytesPerLine = 32

// encodeHexText renders bytes as hex text, 32 bytes per line.
func encodeHexText(data []byte) []byte {
	buf := pool.Get()
	defer pool.Put(buf)

	for i, b := range data {
		buf.B = append(buf.B, []byte(fmt.Sprintf("%02X", b))...)
		if (i+1)%hexBytesPerLine == 0 || i == len(data)-1 {
			buf.B = append(buf.B, '\n')
		} else {
			buf.B = append(buf.B, ' ')
		}
	}

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())

	return out
}

// writeDataFile writes a data file, honoring the --hex flag.
func writeDataFile(path string, data []byte) error {
	if flagHex {
		data = encodeHexText(data)
	}

	return os.WriteFile(path, data, 0o644)
}

// writeEntityFile writes an entity file, applying the selected archive
// codec.
func writeEntityFile(path string, entity []byte) error {
	codecType, err := compress.ParseType(flagCodec)
	if err != nil {
		return err
	}

	codec, err := compress.ForType(codecType)
	if err != nil {
		return err
	}

	packed, err := codec.Compress(entity)
	if err != nil {
		return err
	}

	return os.WriteFile(path, packed, 0o644)
}

// readEntityFile reads an entity file, reversing the archive codec.
func readEntityFile(path string) ([]byte, error) {
	packed, err := readFile(path)
	if err != nil {
		return nil, err
	}

	codecType, err := compress.ParseType(flagCodec)
	if err != nil {
		return nil, err
	}

	codec, err := compress.ForType(codecType)
	if err != nil {
		return nil, err
	}

	return codec.Decompress(packed)
}
