package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/blue-bit-shift/starpack/blob"
	"github.com/blue-bit-shift/starpack/format"
)

// parseMode maps a configuration value to a compression mode; both the
// numeric and the symbolic spelling are accepted.
func parseMode(s string) (format.Mode, error) {
	switch strings.ToUpper(s) {
	case "0", "RAW", "MODE_RAW":
		return format.ModeRaw, nil
	case "1", "MODEL_ZERO", "MODE_MODEL_ZERO":
		return format.ModeModelZero, nil
	case "2", "DIFF_ZERO", "MODE_DIFF_ZERO":
		return format.ModeDiffZero, nil
	case "3", "MODEL_MULTI", "MODE_MODEL_MULTI":
		return format.ModeModelMulti, nil
	case "4", "DIFF_MULTI", "MODE_DIFF_MULTI":
		return format.ModeDiffMulti, nil
	default:
		return 0, fmt.Errorf("unknown compression mode %q", s)
	}
}

// loadConfig reads a key=value configuration file into compression
// parameters. Empty lines and '#' comments are skipped; unknown keys are
// rejected so typos do not silently fall back to defaults.
func loadConfig(path string) (*blob.Params, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	par := &blob.Params{}

	fields := map[string]*uint32{
		"nc_imagette":                  &par.NCImagette,
		"sat_imagette":                 &par.SatImagette,
		"fc_imagette":                  &par.FCImagette,
		"s_exp_flags":                  &par.SExpFlags,
		"s_fx":                         &par.SFX,
		"s_ncob":                       &par.SNCOB,
		"s_efx":                        &par.SEFX,
		"s_ecob":                       &par.SECOB,
		"l_exp_flags":                  &par.LExpFlags,
		"l_fx":                         &par.LFX,
		"l_ncob":                       &par.LNCOB,
		"l_efx":                        &par.LEFX,
		"l_ecob":                       &par.LECOB,
		"l_fx_cob_variance":            &par.LFXCOBVariance,
		"f_fx":                         &par.FFX,
		"f_ncob":                       &par.FNCOB,
		"f_efx":                        &par.FEFX,
		"f_ecob":                       &par.FECOB,
		"nc_offset_mean":               &par.NCOffsetMean,
		"nc_offset_variance":           &par.NCOffsetVariance,
		"nc_background_mean":           &par.NCBackgroundMean,
		"nc_background_variance":       &par.NCBackgroundVariance,
		"nc_background_outlier_pixels": &par.NCBackgroundOutlierPixels,
		"smearing_mean":                &par.SmearingMean,
		"smearing_variance_mean":       &par.SmearingVarianceMean,
		"smearing_outlier_pixels":      &par.SmearingOutlierPixels,
		"fc_offset_mean":               &par.FCOffsetMean,
		"fc_offset_variance":           &par.FCOffsetVariance,
		"fc_background_mean":           &par.FCBackgroundMean,
		"fc_background_variance":       &par.FCBackgroundVariance,
		"fc_background_outlier_pixels": &par.FCBackgroundOutlierPixels,
	}

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			return nil, fmt.Errorf("%s:%d: expected key = value", path, lineNo)
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "cmp_mode":
			mode, err := parseMode(value)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
			}
			par.Mode = mode
		case "model_value":
			v, err := strconv.ParseUint(value, 0, 8)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
			}
			par.ModelValue = uint8(v)
		case "lossy_par":
			v, err := strconv.ParseUint(value, 0, 16)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
			}
			par.LossyPar = uint16(v)
		default:
			dst, ok := fields[key]
			if !ok {
				return nil, fmt.Errorf("%s:%d: unknown key %q", path, lineNo, key)
			}
			v, err := strconv.ParseUint(value, 0, 32)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
			}
			*dst = uint32(v)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return par, nil
}
