package blob

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/blue-bit-shift/starpack/bitstream"
	"github.com/blue-bit-shift/starpack/encoding"
	"github.com/blue-bit-shift/starpack/errs"
	"github.com/blue-bit-shift/starpack/format"
	"github.com/blue-bit-shift/starpack/section"
)

// cmpColSizeFieldLen is the byte size of the per-collection compressed
// length prefix of a non-RAW entity.
const cmpColSizeFieldLen = 2

// derivePar builds a field parameter pair from a chunk compression
// parameter, estimating the spillover threshold for the mode.
func derivePar(cmpPar uint32, mode format.Mode, maxBits uint8) FieldPar {
	return FieldPar{CmpPar: cmpPar, Spill: encoding.SpillFor(cmpPar, mode, uint32(maxBits))}
}

// configFromParams resolves the chunk compression parameters into a
// collection configuration for the chunk type.
//
// The chunk API derives the spillover thresholds from the compression
// parameters; lossy compression is not supported for chunks, so the lossy
// parameter is forced to zero.
func configFromParams(ct format.ChunkType, par *Params, table *section.MaxUsedBits) (Config, error) {
	cfg := Config{
		Mode:        par.Mode,
		ModelValue:  par.ModelValue,
		LossyPar:    0,
		MaxUsedBits: table,
	}

	m := par.Mode
	switch ct {
	case format.ChunkTypeNCAMImagette:
		cfg.Imagette = derivePar(par.NCImagette, m, table.NCImagette)
	case format.ChunkTypeSatImagette:
		cfg.Imagette = derivePar(par.SatImagette, m, table.SatImagette)
	case format.ChunkTypeShortCadence:
		cfg.ExpFlags = derivePar(par.SExpFlags, m, table.SExpFlags)
		cfg.FX = derivePar(par.SFX, m, table.SFX)
		cfg.NCOB = derivePar(par.SNCOB, m, table.SNCOB)
		cfg.EFX = derivePar(par.SEFX, m, table.SEFX)
		cfg.ECOB = derivePar(par.SECOB, m, table.SECOB)
	case format.ChunkTypeLongCadence:
		cfg.ExpFlags = derivePar(par.LExpFlags, m, table.LExpFlags)
		cfg.FX = derivePar(par.LFX, m, table.LFX)
		cfg.NCOB = derivePar(par.LNCOB, m, table.LNCOB)
		cfg.EFX = derivePar(par.LEFX, m, table.LEFX)
		cfg.ECOB = derivePar(par.LECOB, m, table.LECOB)
		cfg.FXCOBVariance = derivePar(par.LFXCOBVariance, m, table.LFXCOBVariance)
	case format.ChunkTypeFastCadence:
		cfg.FX = derivePar(par.FFX, m, table.FFX)
		cfg.NCOB = derivePar(par.FNCOB, m, table.FNCOB)
		cfg.EFX = derivePar(par.FEFX, m, table.FEFX)
		cfg.ECOB = derivePar(par.FECOB, m, table.FECOB)
	case format.ChunkTypeOffsetBackground:
		cfg.OffsetMean = derivePar(par.NCOffsetMean, m, table.NCOffsetMean)
		cfg.OffsetVariance = derivePar(par.NCOffsetVariance, m, table.NCOffsetVariance)
		cfg.BackgroundMean = derivePar(par.NCBackgroundMean, m, table.NCBackgroundMean)
		cfg.BackgroundVariance = derivePar(par.NCBackgroundVariance, m, table.NCBackgroundVariance)
		cfg.BackgroundPixelsError = derivePar(par.NCBackgroundOutlierPixels, m, table.NCBackgroundOutlierPixels)
	case format.ChunkTypeSmearing:
		cfg.SmearingMean = derivePar(par.SmearingMean, m, table.SmearingMean)
		cfg.SmearingVariance = derivePar(par.SmearingVarianceMean, m, table.SmearingVarianceMean)
		cfg.SmearingPixelsError = derivePar(par.SmearingOutlierPixels, m, table.SmearingOutlierPixels)
	case format.ChunkTypeFastChain:
		cfg.Imagette = derivePar(par.FCImagette, m, table.FCImagette)
		cfg.OffsetMean = derivePar(par.FCOffsetMean, m, table.FCOffsetMean)
		cfg.OffsetVariance = derivePar(par.FCOffsetVariance, m, table.FCOffsetVariance)
		cfg.BackgroundMean = derivePar(par.FCBackgroundMean, m, table.FCBackgroundMean)
		cfg.BackgroundVariance = derivePar(par.FCBackgroundVariance, m, table.FCBackgroundVariance)
		cfg.BackgroundPixelsError = derivePar(par.FCBackgroundOutlierPixels, m, table.FCBackgroundOutlierPixels)
	default:
		return Config{}, fmt.Errorf("%w: chunk type %s", errs.ErrColSubserviceUnsupported, ct)
	}

	if !m.IsRaw() {
		for _, p := range chunkPars(ct, &cfg) {
			if p.CmpPar > MaxChunkCmpPar {
				return Config{}, fmt.Errorf("%w: compression parameter %d exceeds the 16-bit header field",
					errs.ErrParSpecific, p.CmpPar)
			}
		}
	}

	return cfg, nil
}

// chunkPars lists the parameter pairs a chunk type uses, in entity header
// slot order.
func chunkPars(ct format.ChunkType, cfg *Config) []FieldPar {
	switch ct {
	case format.ChunkTypeNCAMImagette, format.ChunkTypeSatImagette:
		return []FieldPar{cfg.Imagette}
	case format.ChunkTypeShortCadence:
		return []FieldPar{cfg.ExpFlags, cfg.FX, cfg.NCOB, cfg.EFX, cfg.ECOB}
	case format.ChunkTypeLongCadence:
		return []FieldPar{cfg.ExpFlags, cfg.FX, cfg.NCOB, cfg.EFX, cfg.ECOB, cfg.FXCOBVariance}
	case format.ChunkTypeFastCadence:
		return []FieldPar{cfg.FX, cfg.NCOB, cfg.EFX, cfg.ECOB}
	case format.ChunkTypeOffsetBackground:
		return []FieldPar{cfg.OffsetMean, cfg.OffsetVariance, cfg.BackgroundMean,
			cfg.BackgroundVariance, cfg.BackgroundPixelsError}
	case format.ChunkTypeSmearing:
		return []FieldPar{cfg.SmearingMean, cfg.SmearingVariance, cfg.SmearingPixelsError}
	case format.ChunkTypeFastChain:
		return []FieldPar{cfg.Imagette, cfg.OffsetMean, cfg.OffsetVariance,
			cfg.BackgroundMean, cfg.BackgroundVariance, cfg.BackgroundPixelsError}
	default:
		return nil
	}
}

// setChunkPars is the inverse of chunkPars: it distributes the entity header
// slots back onto the configuration.
func setChunkPars(ct format.ChunkType, cfg *Config, pars []FieldPar) {
	targets := func() []*FieldPar {
		switch ct {
		case format.ChunkTypeNCAMImagette, format.ChunkTypeSatImagette:
			return []*FieldPar{&cfg.Imagette}
		case format.ChunkTypeShortCadence:
			return []*FieldPar{&cfg.ExpFlags, &cfg.FX, &cfg.NCOB, &cfg.EFX, &cfg.ECOB}
		case format.ChunkTypeLongCadence:
			return []*FieldPar{&cfg.ExpFlags, &cfg.FX, &cfg.NCOB, &cfg.EFX, &cfg.ECOB, &cfg.FXCOBVariance}
		case format.ChunkTypeFastCadence:
			return []*FieldPar{&cfg.FX, &cfg.NCOB, &cfg.EFX, &cfg.ECOB}
		case format.ChunkTypeOffsetBackground:
			return []*FieldPar{&cfg.OffsetMean, &cfg.OffsetVariance, &cfg.BackgroundMean,
				&cfg.BackgroundVariance, &cfg.BackgroundPixelsError}
		case format.ChunkTypeSmearing:
			return []*FieldPar{&cfg.SmearingMean, &cfg.SmearingVariance, &cfg.SmearingPixelsError}
		case format.ChunkTypeFastChain:
			return []*FieldPar{&cfg.Imagette, &cfg.OffsetMean, &cfg.OffsetVariance,
				&cfg.BackgroundMean, &cfg.BackgroundVariance, &cfg.BackgroundPixelsError}
		default:
			return nil
		}
	}()

	for i, t := range targets {
		if i < len(pars) {
			*t = pars[i]
		}
	}
}

// headerPairs converts the configured parameter pairs into the six entity
// header slots.
func headerPairs(ct format.ChunkType, cfg *Config) [section.NumCmpPairs]section.CmpPair {
	var pairs [section.NumCmpPairs]section.CmpPair

	for i, p := range chunkPars(ct, cfg) {
		if i >= section.NumCmpPairs {
			break
		}
		pairs[i] = section.CmpPair{Spill: p.Spill, CmpPar: uint16(p.CmpPar)}
	}

	return pairs
}

// compressCollection compresses one collection (header plus payload) into
// dst at the byte offset dstSize and returns the new used size.
//
// The 12-byte collection header is copied verbatim. In non-RAW mode a 16-bit
// compressed-size field is reserved in front of the header copy and filled
// in after the field loop. When the payload does not compress below its
// uncompressed size, the collection is re-emitted raw; the size field then
// equals the payload length, which is how the decoder detects the fallback.
func compressCollection(col, colModel, colUpModel, dst []byte, cfg *Config, dstSize int) (int, error) {
	begin := dstSize

	hdr, err := section.ParseCollectionHeader(col)
	if err != nil {
		return 0, err
	}

	dt := hdr.DataType()
	if dt == format.DataTypeUnknown {
		return 0, fmt.Errorf("%w: subservice %d", errs.ErrColSubserviceUnsupported, hdr.Subservice())
	}
	cfg.DataType = dt

	dataLen := int(hdr.DataLength)
	recSize := RecordSize(dt)
	if recSize == 0 || dataLen%recSize != 0 {
		return 0, fmt.Errorf("%w: data length %d, record size %d",
			errs.ErrCollectionSizeInconsistent, dataLen, recSize)
	}

	src := col[section.CollectionHeaderSize:]

	var model, upModel []byte
	if colModel != nil {
		model = colModel[section.CollectionHeaderSize:]
	}
	if colUpModel != nil {
		upModel = colUpModel[section.CollectionHeaderSize:]
	}

	if err := cfg.Validate(); err != nil {
		return 0, err
	}
	if err := checkBuffers(cfg, src, model, upModel, dst); err != nil {
		return 0, err
	}

	raw := cfg.Mode.IsRaw()
	if !raw {
		dstSize += cmpColSizeFieldLen // reserve the compressed-size field
	}

	if dst != nil {
		if dstSize+section.CollectionHeaderSize > len(dst) {
			return 0, errs.ErrSmallBuffer
		}
		copy(dst[dstSize:], col[:section.CollectionHeaderSize])
	}
	dstSize += section.CollectionHeaderSize

	if cfg.Mode.IsModel() && colUpModel != nil {
		copy(colUpModel[:section.CollectionHeaderSize], col[:section.CollectionHeaderSize])
	}

	var bits uint32
	if (dst == nil || len(dst) >= dstSize+dataLen) && !raw {
		// cap the budget one byte below the uncompressed size so
		// incompressible data trips the raw fallback
		probeCap := dstSize + dataLen - 1

		bits, err = compressData(cfg, src, model, upModel, dst, probeCap, uint32(dstSize)*8)
		if errors.Is(err, errs.ErrSmallBuffer) ||
			(dst == nil && err == nil && bits > bitstream.CapBits(probeCap)) {
			rawCfg := *cfg
			rawCfg.Mode = format.ModeRaw

			bits, err = compressData(&rawCfg, src, model, upModel, dst, dstSize+dataLen, uint32(dstSize)*8)
			if err == nil && cfg.Mode.IsModel() && upModel != nil {
				// the raw re-emission bypasses the model loop
				copy(upModel[:dataLen], src[:dataLen])
			}
		}
	} else {
		bits, err = compressData(cfg, src, model, upModel, dst, len(dst), uint32(dstSize)*8)
	}
	if err != nil {
		return 0, err
	}

	dstSize = int((bits + 7) / 8)

	if !raw && dst != nil {
		cmpColSize := dstSize - begin - section.CollectionHeaderSize - cmpColSizeFieldLen
		if cmpColSize > 0xFFFF {
			return 0, fmt.Errorf("%w: %d bytes", errs.ErrCmpColTooLarge, cmpColSize)
		}
		binary.BigEndian.PutUint16(dst[begin:], uint16(cmpColSize))
	}

	return dstSize, nil
}

// buildChunkHeader serializes the entity header for a compressed chunk into
// the first bytes of dst and returns the header size. A nil dst only
// computes the size.
func buildChunkHeader(dst []byte, chunkSize int, cfg *Config, ct format.ChunkType,
	startTimestamp uint64, entitySize int) (int, error) {
	raw := cfg.Mode.IsRaw()

	headerSize := section.NonImagetteHeaderSize
	if raw {
		headerSize = section.GenericHeaderSize
	}

	if dst == nil {
		return headerSize, nil
	}

	h := section.EntityHeader{
		EntitySize:         uint32(entitySize),
		OriginalSize:       uint32(chunkSize),
		StartTimestamp:     startTimestamp,
		EndTimestamp:       currentTimestamp(),
		DataType:           format.DataTypeChunk,
		Raw:                raw,
		CmpMode:            cfg.Mode,
		ModelValue:         cfg.ModelValue,
		MaxUsedBitsVersion: cfg.maxUsedBits().Version,
		VersionID:          currentVersionID(),
		LossyPar:           uint16(cfg.LossyPar),
	}
	if !raw {
		h.Pairs = headerPairs(ct, cfg)
	}

	b, err := h.Bytes()
	if err != nil {
		return 0, err
	}
	copy(dst, b)

	return headerSize, nil
}

// CompressChunk compresses a chunk of collections into a compression entity.
//
// chunk holds one or more big-endian collections of a single chunk type
// family. chunkModel, when model compression is used, has the same layout
// and size; updatedChunkModel receives the model for the next compression
// and may alias chunkModel. A nil dst computes the entity size without
// writing. The model id and counter of the produced entity are zero; set
// them with SetModelIDCounter.
//
// Returns the byte size of the entity.
func CompressChunk(chunk, chunkModel, updatedChunkModel, dst []byte, par *Params) (int, error) {
	startTimestamp := currentTimestamp()

	if chunk == nil {
		return 0, errs.ErrChunkNull
	}
	if par == nil {
		return 0, errs.ErrParNull
	}
	if len(chunk) < section.CollectionHeaderSize {
		return 0, fmt.Errorf("%w: chunk of %d bytes", errs.ErrChunkSizeInconsistent, len(chunk))
	}
	if len(chunk) > section.MaxOriginalSize {
		return 0, fmt.Errorf("%w: chunk of %d bytes", errs.ErrChunkTooLarge, len(chunk))
	}
	if chunkModel != nil && len(chunkModel) < len(chunk) {
		return 0, fmt.Errorf("%w: chunk model of %d bytes for a %d byte chunk",
			errs.ErrParBuffers, len(chunkModel), len(chunk))
	}
	if updatedChunkModel != nil && len(updatedChunkModel) < len(chunk) {
		return 0, fmt.Errorf("%w: updated chunk model of %d bytes for a %d byte chunk",
			errs.ErrParBuffers, len(updatedChunkModel), len(chunk))
	}

	firstHdr, err := section.ParseCollectionHeader(chunk)
	if err != nil {
		return 0, err
	}
	chunkType := firstHdr.ChunkType()
	if chunkType == format.ChunkTypeUnknown {
		return 0, fmt.Errorf("%w: subservice %d", errs.ErrColSubserviceUnsupported, firstHdr.Subservice())
	}

	cfg, err := configFromParams(chunkType, par, currentMaxUsedBits())
	if err != nil {
		return 0, err
	}

	// reserve space for the entity header; it is built after the
	// compression when the sizes and timestamps are known
	entitySize, err := buildChunkHeader(nil, len(chunk), &cfg, chunkType, startTimestamp, 0)
	if err != nil {
		return 0, err
	}
	if dst != nil && len(dst) < entitySize {
		return 0, errs.ErrSmallBuffer
	}

	read := 0
	for read <= len(chunk)-section.CollectionHeaderSize {
		hdr, err := section.ParseCollectionHeader(chunk[read:])
		if err != nil {
			return 0, err
		}
		if hdr.ChunkType() != chunkType {
			return 0, fmt.Errorf("%w: %s collection in a %s chunk",
				errs.ErrChunkSubserviceInconsistent, hdr.ChunkType(), chunkType)
		}

		colSize := hdr.Size()
		if read+colSize > len(chunk) {
			break // header claims more data than the chunk holds
		}

		col := chunk[read : read+colSize]
		var colModel, colUpModel []byte
		if chunkModel != nil {
			colModel = chunkModel[read : read+colSize]
		}
		if updatedChunkModel != nil {
			colUpModel = updatedChunkModel[read : read+colSize]
		}

		entitySize, err = compressCollection(col, colModel, colUpModel, dst, &cfg, entitySize)
		if err != nil {
			return 0, fmt.Errorf("collection at offset %d: %w", read, err)
		}

		read += colSize
	}
	if read != len(chunk) {
		return 0, fmt.Errorf("%w: collection sizes sum to %d, chunk is %d bytes",
			errs.ErrChunkSizeInconsistent, read, len(chunk))
	}

	if _, err := buildChunkHeader(dst, len(chunk), &cfg, chunkType, startTimestamp, entitySize); err != nil {
		return 0, err
	}

	return entitySize, nil
}

// SetModelIDCounter writes the model id and model counter into an already
// produced entity without re-encoding.
func SetModelIDCounter(entity []byte, modelID uint16, modelCounter uint8) error {
	return section.SetModelIDCounter(entity, modelID, modelCounter)
}

// tableForVersion resolves a max-used-bits table version from the entity
// header: the process-wide table if it matches, otherwise a built-in one.
func tableForVersion(v uint8) (*section.MaxUsedBits, error) {
	cur := currentMaxUsedBits()
	if cur.Version == v {
		return cur, nil
	}

	switch v {
	case 0:
		t := section.MaxUsedBitsSafe()
		return &t, nil
	case 1:
		t := section.MaxUsedBitsV1()
		return &t, nil
	default:
		return nil, fmt.Errorf("%w: unknown table version %d", errs.ErrParMaxUsedBits, v)
	}
}

// DecompressChunk decompresses a chunk compression entity.
//
// A nil dst returns the required decompressed size without decoding.
// modelOfData supplies the model for model-mode entities; updatedModel, when
// non-nil, receives the updated model and may alias modelOfData.
//
// Returns the decompressed byte count.
func DecompressChunk(entity, modelOfData, updatedModel, dst []byte) (int, error) {
	if entity == nil {
		return 0, errs.ErrEntityNull
	}

	hdr, err := section.ParseEntityHeader(entity)
	if err != nil {
		return 0, err
	}
	if hdr.DataType != format.DataTypeChunk {
		return 0, fmt.Errorf("%w: entity data type %s", errs.ErrDataTypeUnsupported, hdr.DataType)
	}
	if int(hdr.EntitySize) > len(entity) {
		return 0, fmt.Errorf("%w: header claims %d bytes, buffer has %d",
			errs.ErrEntityTooSmall, hdr.EntitySize, len(entity))
	}
	if int(hdr.EntitySize) < hdr.HeaderSize() {
		return 0, fmt.Errorf("%w: entity size %d below header size", errs.ErrEntityHeader, hdr.EntitySize)
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
		return decompressRawChunk(&hdr, payload, dst[:origSize])
	}

	return decompressChunkPayload(&hdr, table, payload, modelOfData, updatedModel, dst[:origSize])
}

// decompressRawChunk copies a RAW entity payload back out, validating the
// embedded collection framing on the way.
func decompressRawChunk(hdr *section.EntityHeader, payload, dst []byte) (int, error) {
	if len(payload) != len(dst) {
		return 0, fmt.Errorf("%w: raw payload of %d bytes for original size %d",
			errs.ErrEntityHeader, len(payload), len(dst))
	}

	chunkType := format.ChunkTypeUnknown
	for off := 0; off < len(payload); {
		colHdr, err := section.ParseCollectionHeader(payload[off:])
		if err != nil {
			return 0, err
		}
		if chunkType == format.ChunkTypeUnknown {
			chunkType = colHdr.ChunkType()
			if chunkType == format.ChunkTypeUnknown {
				return 0, fmt.Errorf("%w: subservice %d", errs.ErrColSubserviceUnsupported, colHdr.Subservice())
			}
		} else if colHdr.ChunkType() != chunkType {
			return 0, errs.ErrChunkSubserviceInconsistent
		}

		if off+colHdr.Size() > len(payload) {
			return 0, fmt.Errorf("%w: collection at offset %d overruns the payload",
				errs.ErrColSizeInconsistent, off)
		}
		off += colHdr.Size()
	}

	copy(dst, payload)

	return len(dst), nil
}

// decompressChunkPayload walks the (size field, collection header, block)
// sequence of a compressed entity and reconstructs the original chunk.
func decompressChunkPayload(hdr *section.EntityHeader, table *section.MaxUsedBits,
	payload, model, upModel, dst []byte) (int, error) {
	var cfg Config
	chunkType := format.ChunkTypeUnknown

	off, outOff := 0, 0
	for outOff < len(dst) {
		if off+cmpColSizeFieldLen+section.CollectionHeaderSize > len(payload) {
			return 0, fmt.Errorf("%w: truncated collection framing at offset %d",
				errs.ErrColSizeInconsistent, off)
		}

		cmpColSize := int(binary.BigEndian.Uint16(payload[off:]))

		colHdr, err := section.ParseCollectionHeader(payload[off+cmpColSizeFieldLen:])
		if err != nil {
			return 0, err
		}

		if chunkType == format.ChunkTypeUnknown {
			chunkType = colHdr.ChunkType()
			if chunkType == format.ChunkTypeUnknown {
				return 0, fmt.Errorf("%w: subservice %d", errs.ErrColSubserviceUnsupported, colHdr.Subservice())
			}

			cfg = Config{
				Mode:        hdr.CmpMode,
				ModelValue:  hdr.ModelValue,
				LossyPar:    uint(hdr.LossyPar),
				MaxUsedBits: table,
			}
			pars := make([]FieldPar, 0, section.NumCmpPairs)
			for _, p := range hdr.Pairs {
				pars = append(pars, FieldPar{CmpPar: uint32(p.CmpPar), Spill: p.Spill})
			}
			setChunkPars(chunkType, &cfg, pars)
		} else if colHdr.ChunkType() != chunkType {
			return 0, errs.ErrChunkSubserviceInconsistent
		}

		dataLen := int(colHdr.DataLength)
		if outOff+section.CollectionHeaderSize+dataLen > len(dst) {
			return 0, fmt.Errorf("%w: decompressed data exceeds the original size",
				errs.ErrChunkSizeInconsistent)
		}

		blockStart := off + cmpColSizeFieldLen + section.CollectionHeaderSize
		if blockStart+cmpColSize > len(payload) {
			return 0, fmt.Errorf("%w: compressed block at offset %d overruns the entity",
				errs.ErrColSizeInconsistent, off)
		}
		block := payload[blockStart : blockStart+cmpColSize]

		// reproduce the verbatim header copy
		copy(dst[outOff:], payload[off+cmpColSizeFieldLen:blockStart])

		var colModel, colUpModel []byte
		if model != nil {
			colModel = model[outOff : outOff+section.CollectionHeaderSize+dataLen]
		}
		if upModel != nil {
			colUpModel = upModel[outOff : outOff+section.CollectionHeaderSize+dataLen]
			copy(colUpModel[:section.CollectionHeaderSize], payload[off+cmpColSizeFieldLen:blockStart])
		}

		cfg.DataType = colHdr.DataType()
		out := dst[outOff+section.CollectionHeaderSize : outOff+section.CollectionHeaderSize+dataLen]

		if cmpColSize == dataLen {
			// the encoder fell back to a raw re-emission of this collection
			copy(out, block)
			if cfg.Mode.IsModel() && colUpModel != nil {
				copy(colUpModel[section.CollectionHeaderSize:], block)
			}
		} else {
			if err := cfg.Validate(); err != nil {
				return 0, err
			}

			var colModelData, colUpModelData []byte
			if colModel != nil {
				colModelData = colModel[section.CollectionHeaderSize:]
			}
			if colUpModel != nil {
				colUpModelData = colUpModel[section.CollectionHeaderSize:]
			}

			if err := decompressData(&cfg, block, uint32(cmpColSize)*8, colModelData, out, colUpModelData); err != nil {
				return 0, fmt.Errorf("collection at offset %d: %w", off, err)
			}
		}

		off = blockStart + cmpColSize
		outOff += section.CollectionHeaderSize + dataLen
	}

	if off != len(payload) {
		return 0, fmt.Errorf("%w: %d entity bytes left after the last collection",
			errs.ErrChunkSizeInconsistent, len(payload)-off)
	}

	return outOff, nil
}
