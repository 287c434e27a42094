// Package section defines the fixed-layout binary structures of the starpack
// wire format: the collection header, the compression entity header and the
// versioned max-used-bits table.
//
// All structures are big-endian on the wire. Each type provides Parse and
// Bytes methods that are exact inverses of each other.
package section

import (
	"fmt"

	"github.com/blue-bit-shift/starpack/endian"
	"github.com/blue-bit-shift/starpack/errs"
	"github.com/blue-bit-shift/starpack/format"
)

// CollectionHeaderSize is the byte size of the fixed collection header.
const CollectionHeaderSize = 12

// CollectionHeader is the 12-byte header preceding every collection payload.
//
// The collection id packs four subfields:
//
//	bit  15    packet type
//	bits 14..9 subservice
//	bits  8..7 CCD id
//	bits  6..0 sequence number
type CollectionHeader struct {
	Timestamp       uint64 // 48-bit instrument timestamp
	ConfigurationID uint16
	CollectionID    uint16
	DataLength      uint16 // payload length in bytes, excluding this header
}

// Parse fills the header from the first CollectionHeaderSize bytes of data.
func (h *CollectionHeader) Parse(data []byte) error {
	if len(data) < CollectionHeaderSize {
		return fmt.Errorf("%w: collection header needs %d bytes, got %d",
			errs.ErrColSizeInconsistent, CollectionHeaderSize, len(data))
	}

	engine := endian.GetBigEndianEngine()

	h.Timestamp = endian.Uint48(data[0:6])
	h.ConfigurationID = engine.Uint16(data[6:8])
	h.CollectionID = engine.Uint16(data[8:10])
	h.DataLength = engine.Uint16(data[10:12])

	return nil
}

// Bytes serializes the header into a fresh CollectionHeaderSize byte slice.
func (h *CollectionHeader) Bytes() []byte {
	b := make([]byte, CollectionHeaderSize)

	engine := endian.GetBigEndianEngine()

	endian.PutUint48(b[0:6], h.Timestamp)
	engine.PutUint16(b[6:8], h.ConfigurationID)
	engine.PutUint16(b[8:10], h.CollectionID)
	engine.PutUint16(b[10:12], h.DataLength)

	return b
}

// Subservice extracts the subservice tag from the collection id.
func (h *CollectionHeader) Subservice() format.Subservice {
	return format.Subservice(h.CollectionID >> 9 & 0x3F)
}

// SetSubservice stores the subservice tag into the collection id.
func (h *CollectionHeader) SetSubservice(s format.Subservice) {
	h.CollectionID = h.CollectionID&^(0x3F<<9) | uint16(s&0x3F)<<9
}

// ChunkType returns the chunk family of the collection.
func (h *CollectionHeader) ChunkType() format.ChunkType {
	return h.Subservice().ChunkType()
}

// DataType returns the record layout tag of the collection.
func (h *CollectionHeader) DataType() format.DataType {
	return h.Subservice().DataType()
}

// Size returns the total byte size of the collection including the header.
func (h *CollectionHeader) Size() int {
	return CollectionHeaderSize + int(h.DataLength)
}

// ParseCollectionHeader parses a CollectionHeader from a byte slice.
func ParseCollectionHeader(data []byte) (CollectionHeader, error) {
	var h CollectionHeader
	if err := h.Parse(data); err != nil {
		return CollectionHeader{}, err
	}

	return h, nil
}
