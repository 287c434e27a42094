// Package blob implements the collection and chunk level of the starpack
// codec: per-record-type field dispatch, chunk framing with per-collection
// length prefixes, entity header construction and parameter validation.
package blob

import (
	"fmt"

	"github.com/blue-bit-shift/starpack/encoding"
	"github.com/blue-bit-shift/starpack/errs"
	"github.com/blue-bit-shift/starpack/format"
	"github.com/blue-bit-shift/starpack/section"
)

// MaxChunkCmpPar is the largest compression parameter a chunk entity header
// can record; the wire field is 16 bits wide.
const MaxChunkCmpPar = 0xFFFF

// maxNonImaSpill is the largest spillover threshold any chunk compression
// can use, reached at the largest representable parameter.
var maxNonImaSpill = encoding.MaxSpill(MaxChunkCmpPar)

// FieldPar is one (compression parameter, spillover threshold) pair.
type FieldPar struct {
	CmpPar uint32
	Spill  uint32
}

// Params carries the user-facing compression parameters for a chunk
// compression: the mode, the model weighting, the lossy parameter and one
// compression parameter per field group. Spillover thresholds are derived
// from the parameters (see encoding.SpillFor), mirroring the six pairs the
// entity header can carry.
type Params struct {
	Mode       format.Mode
	ModelValue uint8
	LossyPar   uint16

	NCImagette  uint32
	SatImagette uint32
	FCImagette  uint32

	SExpFlags uint32
	SFX       uint32
	SNCOB     uint32
	SEFX      uint32
	SECOB     uint32

	LExpFlags      uint32
	LFX            uint32
	LNCOB          uint32
	LEFX           uint32
	LECOB          uint32
	LFXCOBVariance uint32

	FFX   uint32
	FNCOB uint32
	FEFX  uint32
	FECOB uint32

	NCOffsetMean     uint32
	NCOffsetVariance uint32

	NCBackgroundMean          uint32
	NCBackgroundVariance      uint32
	NCBackgroundOutlierPixels uint32

	SmearingMean          uint32
	SmearingVarianceMean  uint32
	SmearingOutlierPixels uint32

	FCOffsetMean     uint32
	FCOffsetVariance uint32

	FCBackgroundMean          uint32
	FCBackgroundVariance      uint32
	FCBackgroundOutlierPixels uint32
}

// Config is the resolved per-collection compression configuration: explicit
// (parameter, spillover) pairs per field group. The chunk compressor derives
// it from Params; tests and the legacy imagette path build it directly.
type Config struct {
	DataType   format.DataType
	Mode       format.Mode
	ModelValue uint8
	LossyPar   uint

	Imagette FieldPar

	ExpFlags      FieldPar
	FX            FieldPar
	NCOB          FieldPar
	EFX           FieldPar
	ECOB          FieldPar
	FXCOBVariance FieldPar

	OffsetMean     FieldPar
	OffsetVariance FieldPar

	BackgroundMean        FieldPar
	BackgroundVariance    FieldPar
	BackgroundPixelsError FieldPar

	SmearingMean        FieldPar
	SmearingVariance    FieldPar
	SmearingPixelsError FieldPar

	// MaxUsedBits selects the field width table; nil uses the process-wide
	// table configured with SetMaxUsedBits.
	MaxUsedBits *section.MaxUsedBits
}

func (c *Config) maxUsedBits() *section.MaxUsedBits {
	if c.MaxUsedBits != nil {
		return c.MaxUsedBits
	}

	return currentMaxUsedBits()
}

// validateGeneric checks mode, model value and lossy parameter (C11).
func (c *Config) validateGeneric() error {
	if !c.DataType.Valid() || c.DataType == format.DataTypeChunk {
		return fmt.Errorf("%w: data type %s", errs.ErrParGeneric, c.DataType)
	}
	if !c.Mode.Supported() {
		return fmt.Errorf("%w: mode %d", errs.ErrParGeneric, c.Mode)
	}
	if c.Mode.IsModel() && c.ModelValue > encoding.MaxModelValue {
		return fmt.Errorf("%w: model value %d exceeds %d",
			errs.ErrParGeneric, c.ModelValue, encoding.MaxModelValue)
	}
	if c.LossyPar > encoding.MaxLossyPar {
		return fmt.Errorf("%w: lossy parameter %d exceeds %d",
			errs.ErrParGeneric, c.LossyPar, encoding.MaxLossyPar)
	}

	return nil
}

// validatePair checks one (cmp_par, spill) combination against the code-word
// length bound.
func validatePair(p FieldPar, mode format.Mode, name string) error {
	if mode.IsRaw() {
		return nil
	}

	if p.CmpPar < encoding.MinCmpPar || uint64(p.CmpPar) > encoding.MaxCmpPar {
		return fmt.Errorf("%w: %s compression parameter %d out of range",
			errs.ErrParSpecific, name, p.CmpPar)
	}
	if p.Spill < encoding.MinSpill {
		return fmt.Errorf("%w: %s spillover %d below minimum %d",
			errs.ErrParSpecific, name, p.Spill, encoding.MinSpill)
	}

	maxSpill := encoding.MaxSpill(p.CmpPar)
	if maxSpill > maxNonImaSpill {
		maxSpill = maxNonImaSpill
	}
	if p.Spill > maxSpill {
		return fmt.Errorf("%w: %s spillover %d exceeds maximum %d for parameter %d",
			errs.ErrParSpecific, name, p.Spill, maxSpill, p.CmpPar)
	}

	return nil
}

// Validate checks the full configuration: generic parameters, the pairs the
// data type needs, and the max-used-bits table (C11).
func (c *Config) Validate() error {
	if err := c.validateGeneric(); err != nil {
		return err
	}
	if err := c.maxUsedBits().Validate(); err != nil {
		return err
	}
	if c.Mode.IsRaw() {
		return nil
	}

	fields, err := scheduleFor(c)
	if err != nil {
		return err
	}
	for _, f := range fields {
		if err := validatePair(f.par, c.Mode, f.name); err != nil {
			return err
		}
	}

	return nil
}
