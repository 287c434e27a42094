package section

import (
	"fmt"

	"github.com/blue-bit-shift/starpack/errs"
	"github.com/blue-bit-shift/starpack/format"
)

// MaxUsedBits records, per collection field, the width in bits beyond which
// a sample is illegal. The table is versioned; the version travels in the
// entity header so both ends of the link agree on the widths.
type MaxUsedBits struct {
	Version uint8

	NCImagette  uint8
	SatImagette uint8
	FCImagette  uint8

	SExpFlags uint8
	SFX       uint8
	SEFX      uint8
	SNCOB     uint8
	SECOB     uint8

	LExpFlags      uint8
	LFX            uint8
	LEFX           uint8
	LNCOB          uint8
	LECOB          uint8
	LFXCOBVariance uint8

	FFX   uint8
	FEFX  uint8
	FNCOB uint8
	FECOB uint8

	NCOffsetMean     uint8
	NCOffsetVariance uint8

	NCBackgroundMean          uint8
	NCBackgroundVariance      uint8
	NCBackgroundOutlierPixels uint8

	SmearingMean          uint8
	SmearingVarianceMean  uint8
	SmearingOutlierPixels uint8

	FCOffsetMean     uint8
	FCOffsetVariance uint8

	FCBackgroundMean          uint8
	FCBackgroundVariance      uint8
	FCBackgroundOutlierPixels uint8
}

// MaxUsedBitsSafe returns the version-0 table where every field may use the
// full width of its storage type. Compression gains nothing from it, but it
// never rejects a sample.
func MaxUsedBitsSafe() MaxUsedBits {
	return MaxUsedBits{
		Version: 0,

		NCImagette:  16,
		SatImagette: 16,
		FCImagette:  16,

		SExpFlags: 8,
		SFX:       32,
		SEFX:      32,
		SNCOB:     32,
		SECOB:     32,

		LExpFlags:      32,
		LFX:            32,
		LEFX:           32,
		LNCOB:          32,
		LECOB:          32,
		LFXCOBVariance: 32,

		FFX:   32,
		FEFX:  32,
		FNCOB: 32,
		FECOB: 32,

		NCOffsetMean:     32,
		NCOffsetVariance: 32,

		NCBackgroundMean:          32,
		NCBackgroundVariance:      32,
		NCBackgroundOutlierPixels: 16,

		SmearingMean:          32,
		SmearingVarianceMean:  32,
		SmearingOutlierPixels: 16,

		FCOffsetMean:     32,
		FCOffsetVariance: 32,

		FCBackgroundMean:          32,
		FCBackgroundVariance:      32,
		FCBackgroundOutlierPixels: 16,
	}
}

// MaxUsedBitsV1 returns the version-1 table with the mission field widths.
func MaxUsedBitsV1() MaxUsedBits {
	return MaxUsedBits{
		Version: 1,

		NCImagette:  16,
		SatImagette: 16,
		FCImagette:  16,

		SExpFlags: 2,
		SFX:       21,
		SEFX:      16,
		SNCOB:     20,
		SECOB:     20,

		LExpFlags:      3,
		LFX:            21,
		LEFX:           16,
		LNCOB:          20,
		LECOB:          20,
		LFXCOBVariance: 30,

		FFX:   21,
		FEFX:  16,
		FNCOB: 20,
		FECOB: 20,

		NCOffsetMean:     12,
		NCOffsetVariance: 20,

		NCBackgroundMean:          16,
		NCBackgroundVariance:      16,
		NCBackgroundOutlierPixels: 5,

		SmearingMean:          16,
		SmearingVarianceMean:  16,
		SmearingOutlierPixels: 5,

		FCOffsetMean:     12,
		FCOffsetVariance: 20,

		FCBackgroundMean:          10,
		FCBackgroundVariance:      9,
		FCBackgroundOutlierPixels: 2,
	}
}

// storage widths of the record fields, used to validate custom tables.
var maxUsedBitsStorage = MaxUsedBitsSafe()

// Validate checks that every field width is non-zero and does not exceed the
// width of the field's storage type.
func (m *MaxUsedBits) Validate() error {
	checks := []struct {
		name  string
		value uint8
		limit uint8
	}{
		{"nc_imagette", m.NCImagette, maxUsedBitsStorage.NCImagette},
		{"saturated_imagette", m.SatImagette, maxUsedBitsStorage.SatImagette},
		{"fc_imagette", m.FCImagette, maxUsedBitsStorage.FCImagette},
		{"s_exp_flags", m.SExpFlags, maxUsedBitsStorage.SExpFlags},
		{"s_fx", m.SFX, maxUsedBitsStorage.SFX},
		{"s_efx", m.SEFX, maxUsedBitsStorage.SEFX},
		{"s_ncob", m.SNCOB, maxUsedBitsStorage.SNCOB},
		{"s_ecob", m.SECOB, maxUsedBitsStorage.SECOB},
		{"l_exp_flags", m.LExpFlags, maxUsedBitsStorage.LExpFlags},
		{"l_fx", m.LFX, maxUsedBitsStorage.LFX},
		{"l_efx", m.LEFX, maxUsedBitsStorage.LEFX},
		{"l_ncob", m.LNCOB, maxUsedBitsStorage.LNCOB},
		{"l_ecob", m.LECOB, maxUsedBitsStorage.LECOB},
		{"l_fx_cob_variance", m.LFXCOBVariance, maxUsedBitsStorage.LFXCOBVariance},
		{"f_fx", m.FFX, maxUsedBitsStorage.FFX},
		{"f_efx", m.FEFX, maxUsedBitsStorage.FEFX},
		{"f_ncob", m.FNCOB, maxUsedBitsStorage.FNCOB},
		{"f_ecob", m.FECOB, maxUsedBitsStorage.FECOB},
		{"nc_offset_mean", m.NCOffsetMean, maxUsedBitsStorage.NCOffsetMean},
		{"nc_offset_variance", m.NCOffsetVariance, maxUsedBitsStorage.NCOffsetVariance},
		{"nc_background_mean", m.NCBackgroundMean, maxUsedBitsStorage.NCBackgroundMean},
		{"nc_background_variance", m.NCBackgroundVariance, maxUsedBitsStorage.NCBackgroundVariance},
		{"nc_background_outlier_pixels", m.NCBackgroundOutlierPixels, maxUsedBitsStorage.NCBackgroundOutlierPixels},
		{"smearing_mean", m.SmearingMean, maxUsedBitsStorage.SmearingMean},
		{"smearing_variance_mean", m.SmearingVarianceMean, maxUsedBitsStorage.SmearingVarianceMean},
		{"smearing_outlier_pixels", m.SmearingOutlierPixels, maxUsedBitsStorage.SmearingOutlierPixels},
		{"fc_offset_mean", m.FCOffsetMean, maxUsedBitsStorage.FCOffsetMean},
		{"fc_offset_variance", m.FCOffsetVariance, maxUsedBitsStorage.FCOffsetVariance},
		{"fc_background_mean", m.FCBackgroundMean, maxUsedBitsStorage.FCBackgroundMean},
		{"fc_background_variance", m.FCBackgroundVariance, maxUsedBitsStorage.FCBackgroundVariance},
		{"fc_background_outlier_pixels", m.FCBackgroundOutlierPixels, maxUsedBitsStorage.FCBackgroundOutlierPixels},
	}

	for _, c := range checks {
		if c.value == 0 || c.value > c.limit {
			return fmt.Errorf("%w: %s = %d (limit %d)", errs.ErrParMaxUsedBits, c.name, c.value, c.limit)
		}
	}

	return nil
}

// ImagetteBits returns the pixel width for an imagette data type.
func (m *MaxUsedBits) ImagetteBits(dt format.DataType) uint8 {
	switch dt {
	case format.DataTypeFCImagette, format.DataTypeFCImagetteAdaptive:
		return m.FCImagette
	case format.DataTypeSatImagette, format.DataTypeSatImagetteAdaptive:
		return m.SatImagette
	default:
		return m.NCImagette
	}
}
