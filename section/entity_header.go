package section

import (
	"fmt"

	"github.com/blue-bit-shift/starpack/endian"
	"github.com/blue-bit-shift/starpack/errs"
	"github.com/blue-bit-shift/starpack/format"
)

// Entity header sizes in bytes.
//
// Every entity starts with the 32-byte generic header. RAW entities carry
// nothing else. Compressed chunk entities append a 2-byte reserved field and
// six (24-bit spillover, 16-bit parameter) pairs. Compressed imagette
// entities of the legacy path append a single 16-bit spillover and an 8-bit
// Golomb parameter; the adaptive variant adds the two alternate pairs.
const (
	GenericHeaderSize          = 32
	NonImagetteHeaderSize      = GenericHeaderSize + 32
	ImagetteHeaderSize         = GenericHeaderSize + 4
	ImagetteAdaptiveHeaderSize = GenericHeaderSize + 12

	// NumCmpPairs is the number of (spill, cmp_par) slots of a chunk entity.
	NumCmpPairs = 6

	// MaxEntitySize bounds the whole entity; the size fields are 24 bit wide.
	MaxEntitySize = endian.MaxUint24

	// MaxOriginalSize bounds the uncompressed chunk an entity can describe.
	MaxOriginalSize = endian.MaxUint24
)

// rawBit flags RAW mode in the 16-bit data type field.
const rawBit = 0x8000

// CmpPair is one (spillover threshold, compression parameter) slot of the
// entity header.
type CmpPair struct {
	Spill  uint32 // 24-bit on the wire
	CmpPar uint16
}

// EntityHeader is the fixed-layout container header in front of the
// compressed data.
//
// Wire layout (big-endian):
//
//	offset size field
//	 0     3    entity size
//	 3     3    original (uncompressed) size
//	 6     6    start timestamp
//	12     6    end timestamp
//	18     2    data type (bit 15 = raw)
//	20     1    compression mode
//	21     1    model value
//	22     1    model counter
//	23     1    max-used-bits table version
//	24     2    model id
//	26     4    version id
//	30     2    lossy parameter
//	32     ...  mode-specific extension
type EntityHeader struct {
	EntitySize         uint32
	OriginalSize       uint32
	StartTimestamp     uint64
	EndTimestamp       uint64
	DataType           format.DataType
	Raw                bool
	CmpMode            format.Mode
	ModelValue         uint8
	ModelCounter       uint8
	MaxUsedBitsVersion uint8
	ModelID            uint16
	VersionID          uint32
	LossyPar           uint16

	// Pairs holds the six parameter slots of a compressed chunk entity;
	// unused slots stay zero.
	Pairs [NumCmpPairs]CmpPair

	// Spill and GolombPar form the specific header of a legacy compressed
	// imagette entity; the Ap pairs belong to the adaptive variant.
	Spill        uint16
	GolombPar    uint8
	Ap1Spill     uint16
	Ap1GolombPar uint8
	Ap2Spill     uint16
	Ap2GolombPar uint8
}

// HeaderSize returns the byte size of the header as selected by the data
// type and the raw flag.
func (h *EntityHeader) HeaderSize() int {
	if h.Raw {
		return GenericHeaderSize
	}

	switch {
	case h.DataType == format.DataTypeImagette ||
		h.DataType == format.DataTypeSatImagette ||
		h.DataType == format.DataTypeFCImagette:
		return ImagetteHeaderSize
	case h.DataType == format.DataTypeImagetteAdaptive ||
		h.DataType == format.DataTypeSatImagetteAdaptive ||
		h.DataType == format.DataTypeFCImagetteAdaptive:
		return ImagetteAdaptiveHeaderSize
	default:
		return NonImagetteHeaderSize
	}
}

// Validate checks the field ranges that the wire format can express.
func (h *EntityHeader) Validate() error {
	if h.EntitySize > MaxEntitySize || h.OriginalSize > MaxOriginalSize {
		return fmt.Errorf("%w: size field exceeds 24 bits", errs.ErrEntityHeader)
	}
	if h.StartTimestamp > endian.MaxUint48 || h.EndTimestamp > endian.MaxUint48 {
		return fmt.Errorf("%w: timestamp exceeds 48 bits", errs.ErrEntityTimestamp)
	}
	if !h.DataType.Valid() {
		return fmt.Errorf("%w: data type %d", errs.ErrEntityHeader, h.DataType)
	}
	if !h.CmpMode.Supported() {
		return fmt.Errorf("%w: compression mode %d", errs.ErrEntityHeader, h.CmpMode)
	}
	if h.Raw != h.CmpMode.IsRaw() {
		return fmt.Errorf("%w: raw bit disagrees with compression mode", errs.ErrEntityHeader)
	}
	for i := range h.Pairs {
		if h.Pairs[i].Spill > endian.MaxUint24 {
			return fmt.Errorf("%w: spillover %d exceeds 24 bits", errs.ErrEntityHeader, i+1)
		}
	}

	return nil
}

// Bytes serializes the header into a fresh slice of HeaderSize bytes.
func (h *EntityHeader) Bytes() ([]byte, error) {
	if err := h.Validate(); err != nil {
		return nil, err
	}

	b := make([]byte, h.HeaderSize())
	engine := endian.GetBigEndianEngine()

	endian.PutUint24(b[0:3], h.EntitySize)
	endian.PutUint24(b[3:6], h.OriginalSize)
	endian.PutUint48(b[6:12], h.StartTimestamp)
	endian.PutUint48(b[12:18], h.EndTimestamp)

	dataType := uint16(h.DataType)
	if h.Raw {
		dataType |= rawBit
	}
	engine.PutUint16(b[18:20], dataType)

	b[20] = uint8(h.CmpMode)
	b[21] = h.ModelValue
	b[22] = h.ModelCounter
	b[23] = h.MaxUsedBitsVersion
	engine.PutUint16(b[24:26], h.ModelID)
	engine.PutUint32(b[26:30], h.VersionID)
	engine.PutUint16(b[30:32], h.LossyPar)

	if h.Raw {
		return b, nil
	}

	switch h.HeaderSize() {
	case NonImagetteHeaderSize:
		off := 34 // 2 reserved bytes after the generic header
		for i := range h.Pairs {
			endian.PutUint24(b[off:off+3], h.Pairs[i].Spill)
			engine.PutUint16(b[off+3:off+5], h.Pairs[i].CmpPar)
			off += 5
		}
	case ImagetteAdaptiveHeaderSize:
		engine.PutUint16(b[32:34], h.Spill)
		b[34] = h.GolombPar
		engine.PutUint16(b[35:37], h.Ap1Spill)
		b[37] = h.Ap1GolombPar
		engine.PutUint16(b[38:40], h.Ap2Spill)
		b[40] = h.Ap2GolombPar
	case ImagetteHeaderSize:
		engine.PutUint16(b[32:34], h.Spill)
		b[34] = h.GolombPar
	}

	return b, nil
}

// Parse fills the header from the start of data. The mode-specific extension
// is selected by the parsed data type and raw bit.
func (h *EntityHeader) Parse(data []byte) error {
	if len(data) < GenericHeaderSize {
		return fmt.Errorf("%w: %d bytes", errs.ErrEntityTooSmall, len(data))
	}

	engine := endian.GetBigEndianEngine()

	h.EntitySize = endian.Uint24(data[0:3])
	h.OriginalSize = endian.Uint24(data[3:6])
	h.StartTimestamp = endian.Uint48(data[6:12])
	h.EndTimestamp = endian.Uint48(data[12:18])

	dataType := engine.Uint16(data[18:20])
	h.Raw = dataType&rawBit != 0
	h.DataType = format.DataType(dataType &^ rawBit)

	h.CmpMode = format.Mode(data[20])
	h.ModelValue = data[21]
	h.ModelCounter = data[22]
	h.MaxUsedBitsVersion = data[23]
	h.ModelID = engine.Uint16(data[24:26])
	h.VersionID = engine.Uint32(data[26:30])
	h.LossyPar = engine.Uint16(data[30:32])

	if len(data) < h.HeaderSize() {
		return fmt.Errorf("%w: header needs %d bytes, got %d",
			errs.ErrEntityTooSmall, h.HeaderSize(), len(data))
	}

	if !h.Raw {
		switch h.HeaderSize() {
		case NonImagetteHeaderSize:
			off := 34
			for i := range h.Pairs {
				h.Pairs[i].Spill = endian.Uint24(data[off : off+3])
				h.Pairs[i].CmpPar = engine.Uint16(data[off+3 : off+5])
				off += 5
			}
		case ImagetteAdaptiveHeaderSize:
			h.Spill = engine.Uint16(data[32:34])
			h.GolombPar = data[34]
			h.Ap1Spill = engine.Uint16(data[35:37])
			h.Ap1GolombPar = data[37]
			h.Ap2Spill = engine.Uint16(data[38:40])
			h.Ap2GolombPar = data[40]
		case ImagetteHeaderSize:
			h.Spill = engine.Uint16(data[32:34])
			h.GolombPar = data[34]
		}
	}

	return h.Validate()
}

// ParseEntityHeader parses an EntityHeader from the start of an entity.
func ParseEntityHeader(data []byte) (EntityHeader, error) {
	var h EntityHeader
	if err := h.Parse(data); err != nil {
		return EntityHeader{}, err
	}

	return h, nil
}

// SetModelIDCounter patches the model id and model counter of an already
// serialized entity without touching anything else.
func SetModelIDCounter(entity []byte, modelID uint16, modelCounter uint8) error {
	if entity == nil {
		return errs.ErrEntityNull
	}
	if len(entity) < GenericHeaderSize {
		return fmt.Errorf("%w: %d bytes", errs.ErrEntityTooSmall, len(entity))
	}

	endian.GetBigEndianEngine().PutUint16(entity[24:26], modelID)
	entity[22] = modelCounter

	return nil
}
