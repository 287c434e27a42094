package blob

import (
	"fmt"

	"github.com/blue-bit-shift/starpack/errs"
	"github.com/blue-bit-shift/starpack/format"
)

// fieldSpec is one entry of a record schedule: the wire width of the field,
// the parameter pair compressing it and its max-used-bits width.
type fieldSpec struct {
	name    string
	width   int // bytes on the wire
	par     FieldPar
	maxBits uint
}

// RecordSize returns the wire size in bytes of one record of the data type,
// or 0 for an unknown type.
func RecordSize(dt format.DataType) int {
	switch dt {
	case format.DataTypeImagette, format.DataTypeImagetteAdaptive,
		format.DataTypeSatImagette, format.DataTypeSatImagetteAdaptive,
		format.DataTypeFCImagette, format.DataTypeFCImagetteAdaptive:
		return 2
	case format.DataTypeSFX:
		return 5 // exp_flags(1) fx(4)
	case format.DataTypeSFXEFX:
		return 9
	case format.DataTypeSFXNCOB:
		return 13
	case format.DataTypeSFXEFXNCOBECOB:
		return 25
	case format.DataTypeLFX:
		return 12 // exp_flags(4) fx(4) fx_variance(4)
	case format.DataTypeLFXEFX:
		return 16
	case format.DataTypeLFXNCOB:
		return 28
	case format.DataTypeLFXEFXNCOBECOB:
		return 40
	case format.DataTypeFFX:
		return 4
	case format.DataTypeFFXEFX:
		return 8
	case format.DataTypeFFXNCOB:
		return 12
	case format.DataTypeFFXEFXNCOBECOB:
		return 24
	case format.DataTypeOffset, format.DataTypeFCOffset:
		return 8 // mean(4) variance(4)
	case format.DataTypeBackground, format.DataTypeFCBackground:
		return 10 // mean(4) variance(4) outlier_pixels(2)
	case format.DataTypeSmearing:
		return 10 // mean(4) variance_mean(4) outlier_pixels(2)
	default:
		return 0
	}
}

// scheduleFor returns the ordered field schedule of the configured data
// type. The schedule drives both the encoder and the decoder, so the two
// stay field-for-field symmetric by construction.
func scheduleFor(c *Config) ([]fieldSpec, error) {
	bits := c.maxUsedBits()

	sExpFlags := fieldSpec{"s_exp_flags", 1, c.ExpFlags, uint(bits.SExpFlags)}
	sFX := fieldSpec{"s_fx", 4, c.FX, uint(bits.SFX)}
	sNCOBX := fieldSpec{"s_ncob_x", 4, c.NCOB, uint(bits.SNCOB)}
	sNCOBY := fieldSpec{"s_ncob_y", 4, c.NCOB, uint(bits.SNCOB)}
	sEFX := fieldSpec{"s_efx", 4, c.EFX, uint(bits.SEFX)}
	sECOBX := fieldSpec{"s_ecob_x", 4, c.ECOB, uint(bits.SECOB)}
	sECOBY := fieldSpec{"s_ecob_y", 4, c.ECOB, uint(bits.SECOB)}

	lExpFlags := fieldSpec{"l_exp_flags", 4, c.ExpFlags, uint(bits.LExpFlags)}
	lFX := fieldSpec{"l_fx", 4, c.FX, uint(bits.LFX)}
	lNCOBX := fieldSpec{"l_ncob_x", 4, c.NCOB, uint(bits.LNCOB)}
	lNCOBY := fieldSpec{"l_ncob_y", 4, c.NCOB, uint(bits.LNCOB)}
	lEFX := fieldSpec{"l_efx", 4, c.EFX, uint(bits.LEFX)}
	lECOBX := fieldSpec{"l_ecob_x", 4, c.ECOB, uint(bits.LECOB)}
	lECOBY := fieldSpec{"l_ecob_y", 4, c.ECOB, uint(bits.LECOB)}
	// one parameter pair governs every variance field of a record
	lFXVar := fieldSpec{"l_fx_variance", 4, c.FXCOBVariance, uint(bits.LFXCOBVariance)}
	lCOBXVar := fieldSpec{"l_cob_x_variance", 4, c.FXCOBVariance, uint(bits.LFXCOBVariance)}
	lCOBYVar := fieldSpec{"l_cob_y_variance", 4, c.FXCOBVariance, uint(bits.LFXCOBVariance)}

	fFX := fieldSpec{"f_fx", 4, c.FX, uint(bits.FFX)}
	fNCOBX := fieldSpec{"f_ncob_x", 4, c.NCOB, uint(bits.FNCOB)}
	fNCOBY := fieldSpec{"f_ncob_y", 4, c.NCOB, uint(bits.FNCOB)}
	fEFX := fieldSpec{"f_efx", 4, c.EFX, uint(bits.FEFX)}
	fECOBX := fieldSpec{"f_ecob_x", 4, c.ECOB, uint(bits.FECOB)}
	fECOBY := fieldSpec{"f_ecob_y", 4, c.ECOB, uint(bits.FECOB)}

	switch c.DataType {
	case format.DataTypeImagette, format.DataTypeImagetteAdaptive,
		format.DataTypeSatImagette, format.DataTypeSatImagetteAdaptive,
		format.DataTypeFCImagette, format.DataTypeFCImagetteAdaptive:
		return []fieldSpec{
			{"imagette", 2, c.Imagette, uint(bits.ImagetteBits(c.DataType))},
		}, nil

	case format.DataTypeSFX:
		return []fieldSpec{sExpFlags, sFX}, nil
	case format.DataTypeSFXEFX:
		return []fieldSpec{sExpFlags, sFX, sEFX}, nil
	case format.DataTypeSFXNCOB:
		return []fieldSpec{sExpFlags, sFX, sNCOBX, sNCOBY}, nil
	case format.DataTypeSFXEFXNCOBECOB:
		return []fieldSpec{sExpFlags, sFX, sNCOBX, sNCOBY, sEFX, sECOBX, sECOBY}, nil

	case format.DataTypeLFX:
		return []fieldSpec{lExpFlags, lFX, lFXVar}, nil
	case format.DataTypeLFXEFX:
		return []fieldSpec{lExpFlags, lFX, lEFX, lFXVar}, nil
	case format.DataTypeLFXNCOB:
		return []fieldSpec{lExpFlags, lFX, lNCOBX, lNCOBY, lFXVar, lCOBXVar, lCOBYVar}, nil
	case format.DataTypeLFXEFXNCOBECOB:
		return []fieldSpec{lExpFlags, lFX, lNCOBX, lNCOBY, lEFX, lECOBX, lECOBY,
			lFXVar, lCOBXVar, lCOBYVar}, nil

	case format.DataTypeFFX:
		return []fieldSpec{fFX}, nil
	case format.DataTypeFFXEFX:
		return []fieldSpec{fFX, fEFX}, nil
	case format.DataTypeFFXNCOB:
		return []fieldSpec{fFX, fNCOBX, fNCOBY}, nil
	case format.DataTypeFFXEFXNCOBECOB:
		return []fieldSpec{fFX, fNCOBX, fNCOBY, fEFX, fECOBX, fECOBY}, nil

	case format.DataTypeOffset:
		return []fieldSpec{
			{"offset_mean", 4, c.OffsetMean, uint(bits.NCOffsetMean)},
			{"offset_variance", 4, c.OffsetVariance, uint(bits.NCOffsetVariance)},
		}, nil
	case format.DataTypeFCOffset:
		return []fieldSpec{
			{"offset_mean", 4, c.OffsetMean, uint(bits.FCOffsetMean)},
			{"offset_variance", 4, c.OffsetVariance, uint(bits.FCOffsetVariance)},
		}, nil

	case format.DataTypeBackground:
		return []fieldSpec{
			{"background_mean", 4, c.BackgroundMean, uint(bits.NCBackgroundMean)},
			{"background_variance", 4, c.BackgroundVariance, uint(bits.NCBackgroundVariance)},
			{"background_outlier_pixels", 2, c.BackgroundPixelsError, uint(bits.NCBackgroundOutlierPixels)},
		}, nil
	case format.DataTypeFCBackground:
		return []fieldSpec{
			{"background_mean", 4, c.BackgroundMean, uint(bits.FCBackgroundMean)},
			{"background_variance", 4, c.BackgroundVariance, uint(bits.FCBackgroundVariance)},
			{"background_outlier_pixels", 2, c.BackgroundPixelsError, uint(bits.FCBackgroundOutlierPixels)},
		}, nil

	case format.DataTypeSmearing:
		return []fieldSpec{
			{"smearing_mean", 4, c.SmearingMean, uint(bits.SmearingMean)},
			{"smearing_variance_mean", 4, c.SmearingVariance, uint(bits.SmearingVarianceMean)},
			{"smearing_outlier_pixels", 2, c.SmearingPixelsError, uint(bits.SmearingOutlierPixels)},
		}, nil

	default:
		return nil, fmt.Errorf("%w: %s", errs.ErrDataTypeUnsupported, c.DataType)
	}
}
