package blob

import (
	"fmt"

	"github.com/blue-bit-shift/starpack/encoding"
	"github.com/blue-bit-shift/starpack/errs"
	"github.com/blue-bit-shift/starpack/format"
	"github.com/blue-bit-shift/starpack/section"
)

// ImagetteParams configures the legacy imagette path: a bare sequence of
// 16-bit pixel samples compressed into an imagette entity without collection
// framing, with the parameter ranges of the hardware compressor.
type ImagetteParams struct {
	DataType   format.DataType // an imagette data type
	Mode       format.Mode
	ModelValue uint8
	LossyPar   uint

	GolombPar uint32
	Spill     uint32

	// Alternate parameter pairs of the adaptive data types. Their
	// compressed sizes are recomputed for telemetry only; the main
	// bitstream always uses GolombPar/Spill.
	Ap1GolombPar uint32
	Ap1Spill     uint32
	Ap2GolombPar uint32
	Ap2Spill     uint32
}

// ImagetteInfo reports the bit sizes of an imagette compression, including
// the recomputed alternate-parameter sizes of the adaptive path.
type ImagetteInfo struct {
	CmpSizeBits    uint32
	Ap1CmpSizeBits uint32
	Ap2CmpSizeBits uint32
}

func validateRDCUPair(golombPar, spill uint32, mode format.Mode) error {
	if mode.IsRaw() {
		return nil
	}

	if golombPar < encoding.MinRDCUGolombPar || golombPar > encoding.MaxRDCUGolombPar {
		return fmt.Errorf("%w: imagette Golomb parameter %d out of range [%d, %d]",
			errs.ErrParSpecific, golombPar, encoding.MinRDCUGolombPar, encoding.MaxRDCUGolombPar)
	}
	if spill < encoding.MinSpill || spill > encoding.RDCUMaxSpill(golombPar) {
		return fmt.Errorf("%w: imagette spillover %d out of range [%d, %d]",
			errs.ErrParSpecific, spill, encoding.MinSpill, encoding.RDCUMaxSpill(golombPar))
	}

	return nil
}

func (p *ImagetteParams) validate() error {
	if !p.DataType.IsImagette() {
		return fmt.Errorf("%w: %s is not an imagette data type", errs.ErrParGeneric, p.DataType)
	}
	if !p.Mode.Supported() {
		return fmt.Errorf("%w: mode %d", errs.ErrParGeneric, p.Mode)
	}
	if p.Mode.IsModel() && p.ModelValue > encoding.MaxModelValue {
		return fmt.Errorf("%w: model value %d", errs.ErrParGeneric, p.ModelValue)
	}
	if p.LossyPar > encoding.MaxRDCULossyPar {
		return fmt.Errorf("%w: lossy parameter %d exceeds %d",
			errs.ErrParGeneric, p.LossyPar, encoding.MaxRDCULossyPar)
	}

	return validateRDCUPair(p.GolombPar, p.Spill, p.Mode)
}

func (p *ImagetteParams) config(golombPar, spill uint32, table *section.MaxUsedBits) Config {
	return Config{
		DataType:    p.DataType,
		Mode:        p.Mode,
		ModelValue:  p.ModelValue,
		LossyPar:    p.LossyPar,
		Imagette:    FieldPar{CmpPar: golombPar, Spill: spill},
		MaxUsedBits: table,
	}
}

func (p *ImagetteParams) adaptive() bool {
	switch p.DataType {
	case format.DataTypeImagetteAdaptive, format.DataTypeSatImagetteAdaptive,
		format.DataTypeFCImagetteAdaptive:
		return true
	default:
		return false
	}
}

// CompressImagette compresses big-endian 16-bit imagette samples the way the
// hardware compressor does and returns the bitstream length in bits.
//
// For adaptive data types the two alternate parameter pairs are recomputed
// in size-only mode and reported through info; an invalid alternate pair
// silently reports size 0. A nil dst computes sizes without writing.
func CompressImagette(par *ImagetteParams, data, model, updatedModel, dst []byte, info *ImagetteInfo) (uint32, error) {
	if par == nil {
		return 0, errs.ErrParNull
	}
	if err := par.validate(); err != nil {
		return 0, err
	}

	table := currentMaxUsedBits()
	cfg := par.config(par.GolombPar, par.Spill, table)

	if err := checkBuffers(&cfg, data, model, updatedModel, dst); err != nil {
		return 0, err
	}

	if info != nil {
		*info = ImagetteInfo{}

		if par.adaptive() {
			// alternate sizes are advisory: invalid pairs report zero
			if validateRDCUPair(par.Ap1GolombPar, par.Ap1Spill, par.Mode) == nil {
				apCfg := par.config(par.Ap1GolombPar, par.Ap1Spill, table)
				if bits, err := compressData(&apCfg, data, model, nil, nil, 0, 0); err == nil {
					info.Ap1CmpSizeBits = bits
				}
			}
			if validateRDCUPair(par.Ap2GolombPar, par.Ap2Spill, par.Mode) == nil {
				apCfg := par.config(par.Ap2GolombPar, par.Ap2Spill, table)
				if bits, err := compressData(&apCfg, data, model, nil, nil, 0, 0); err == nil {
					info.Ap2CmpSizeBits = bits
				}
			}
		}
	}

	bits, err := compressData(&cfg, data, model, updatedModel, dst, len(dst), 0)
	if err != nil {
		return 0, err
	}

	if info != nil {
		info.CmpSizeBits = bits
	}

	return bits, nil
}

// imagetteHeaderSize returns the entity header size of the legacy imagette
// path for the given parameters.
func imagetteHeaderSize(par *ImagetteParams) int {
	switch {
	case par.Mode.IsRaw():
		return section.GenericHeaderSize
	case par.adaptive():
		return section.ImagetteAdaptiveHeaderSize
	default:
		return section.ImagetteHeaderSize
	}
}

// CompressImagetteEntity wraps CompressImagette into a compression entity:
// the entity header followed by the compressed (or raw big-endian) samples.
//
// Returns the entity byte size. A nil dst computes the size only.
func CompressImagetteEntity(par *ImagetteParams, data, model, updatedModel, dst []byte) (int, error) {
	startTimestamp := currentTimestamp()

	if par == nil {
		return 0, errs.ErrParNull
	}
	if err := par.validate(); err != nil {
		return 0, err
	}

	headerSize := imagetteHeaderSize(par)
	if dst != nil && len(dst) < headerSize {
		return 0, errs.ErrSmallBuffer
	}

	table := currentMaxUsedBits()
	cfg := par.config(par.GolombPar, par.Spill, table)

	if err := checkBuffers(&cfg, data, model, updatedModel, dst); err != nil {
		return 0, err
	}

	var payload []byte
	if dst != nil {
		payload = dst
	}

	bits, err := compressData(&cfg, data, model, updatedModel, payload, len(dst), uint32(headerSize)*8)
	if err != nil {
		return 0, err
	}

	entitySize := int((bits + 7) / 8)

	if dst != nil {
		h := section.EntityHeader{
			EntitySize:         uint32(entitySize),
			OriginalSize:       uint32(len(data)),
			StartTimestamp:     startTimestamp,
			EndTimestamp:       currentTimestamp(),
			DataType:           par.DataType,
			Raw:                par.Mode.IsRaw(),
			CmpMode:            par.Mode,
			ModelValue:         par.ModelValue,
			MaxUsedBitsVersion: table.Version,
			VersionID:          currentVersionID(),
			LossyPar:           uint16(par.LossyPar),
			Spill:              uint16(par.Spill),
			GolombPar:          uint8(par.GolombPar),
			Ap1Spill:           uint16(par.Ap1Spill),
			Ap1GolombPar:       uint8(par.Ap1GolombPar),
			Ap2Spill:           uint16(par.Ap2Spill),
			Ap2GolombPar:       uint8(par.Ap2GolombPar),
		}
		b, err := h.Bytes()
		if err != nil {
			return 0, err
		}
		copy(dst, b)
	}

	return entitySize, nil
}

// DecompressImagetteEntity reverses CompressImagetteEntity. A nil dst
// returns the required byte count only.
func DecompressImagetteEntity(entity, modelOfData, updatedModel, dst []byte) (int, error) {
	if entity == nil {
		return 0, errs.ErrEntityNull
	}

	hdr, err := section.ParseEntityHeader(entity)
	if err != nil {
		return 0, err
	}
	if !hdr.DataType.IsImagette() {
		return 0, fmt.Errorf("%w: entity data type %s", errs.ErrDataTypeUnsupported, hdr.DataType)
	}
	if int(hdr.EntitySize) > len(entity) {
		return 0, fmt.Errorf("%w: header claims %d bytes, buffer has %d",
			errs.ErrEntityTooSmall, hdr.EntitySize, len(entity))
	}

	origSize := int(hdr.OriginalSize)
	if dst == nil {
		return origSize, nil
	}
	if len(dst) < origSize {
		return 0, errs.ErrSmallBuffer
	}
	if hdr.CmpMode.IsModel() {
		if modelOfData == nil {
			return 0, errs.ErrParNoModel
		}
		if len(modelOfData) < origSize {
			return 0, fmt.Errorf("%w: model buffer of %d bytes for %d bytes of data",
				errs.ErrParBuffers, len(modelOfData), origSize)
		}
		if updatedModel != nil && len(updatedModel) < origSize {
			return 0, fmt.Errorf("%w: updated model buffer of %d bytes for %d bytes of data",
				errs.ErrParBuffers, len(updatedModel), origSize)
		}
	}

	table, err := tableForVersion(hdr.MaxUsedBitsVersion)
	if err != nil {
		return 0, err
	}

	payload := entity[hdr.HeaderSize():hdr.EntitySize]

	if hdr.Raw {
		if len(payload) != origSize {
			return 0, fmt.Errorf("%w: raw payload of %d bytes for original size %d",
				errs.ErrEntityHeader, len(payload), origSize)
		}
		copy(dst, payload)

		return origSize, nil
	}

	cfg := Config{
		DataType:    hdr.DataType,
		Mode:        hdr.CmpMode,
		ModelValue:  hdr.ModelValue,
		LossyPar:    uint(hdr.LossyPar),
		Imagette:    FieldPar{CmpPar: uint32(hdr.GolombPar), Spill: uint32(hdr.Spill)},
		MaxUsedBits: table,
	}
	if err := validateRDCUPair(cfg.Imagette.CmpPar, cfg.Imagette.Spill, cfg.Mode); err != nil {
		return 0, err
	}

	if err := decompressData(&cfg, payload, uint32(len(payload))*8, modelOfData, dst[:origSize], updatedModel); err != nil {
		return 0, err
	}

	return origSize, nil
}
